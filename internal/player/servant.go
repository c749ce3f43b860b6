// Package player implements the server side of a logged in player.
package player

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sync"

	"github.com/benbjohnson/clock"

	"github.com/pixil98/go-cave/internal/extension"
	"github.com/pixil98/go-cave/internal/game"
	"github.com/pixil98/go-cave/internal/session"
	"github.com/pixil98/go-cave/internal/storage"
)

// PageSize is the number of wall messages per page.
const PageSize = 8

// Servant serves one player's session. Position, region and the current
// room are cached and re-read from storage after every change the servant
// makes and after every extension command.
type Servant struct {
	id       string
	token    string
	status   game.LoginResult
	storage  storage.CaveStorage
	commands *extension.Registry
	clock    clock.Clock
	locks    *session.KeyedMutex

	mu     sync.Mutex
	record game.PlayerRecord
	room   *game.Room
}

var _ game.Player = (*Servant)(nil)

type ServantOpt func(*Servant)

// WithClock sets the clock wall messages are aged against.
func WithClock(c clock.Clock) ServantOpt {
	return func(s *Servant) {
		s.clock = c
	}
}

// WithCommands sets the registry Execute resolves commands in.
func WithCommands(r *extension.Registry) ServantOpt {
	return func(s *Servant) {
		s.commands = r
	}
}

// WithLocks shares the per player locks with other writers of player
// records, e.g. login and logout.
func WithLocks(l *session.KeyedMutex) ServantOpt {
	return func(s *Servant) {
		s.locks = l
	}
}

// NewServant creates the servant for a player whose record is in storage.
func NewServant(ctx context.Context, id string, status game.LoginResult, s storage.CaveStorage, opts ...ServantOpt) (*Servant, error) {
	srv := &Servant{
		id:       id,
		status:   status,
		storage:  s,
		commands: extension.NewDefaultRegistry(),
		clock:    clock.New(),
		locks:    session.NewKeyedMutex(),
	}

	for _, opt := range opts {
		opt(srv)
	}

	srv.mu.Lock()
	defer srv.mu.Unlock()

	err := srv.refresh(ctx)
	if err != nil {
		return nil, err
	}
	srv.token = srv.record.AccessToken

	return srv, nil
}

// refresh re-reads the player record and current room. mu must be held.
func (s *Servant) refresh(ctx context.Context) error {
	rec, err := s.storage.GetPlayerByID(ctx, s.id)
	if err != nil {
		return fmt.Errorf("reading player %s: %w", s.id, err)
	}
	if rec == nil {
		return fmt.Errorf("reading player %s: %w", s.id, game.ErrPlayerNotFound)
	}

	room, err := s.storage.GetRoom(ctx, rec.Position)
	if err != nil {
		return fmt.Errorf("reading room %s: %w", rec.Position, err)
	}

	s.record = *rec
	s.room = room
	return nil
}

// lockSession serializes record writers for this player, then takes the
// cache lock. It fails with game.ErrSessionExpired once a later login or a
// logout has replaced the token this servant was created for. On success
// the stored record is returned and the caller must release both locks.
func (s *Servant) lockSession(ctx context.Context) (*game.PlayerRecord, func(), error) {
	unlockPlayer := s.locks.Lock(s.id)
	s.mu.Lock()
	unlock := func() {
		s.mu.Unlock()
		unlockPlayer()
	}

	rec, err := s.storage.GetPlayerByID(ctx, s.id)
	if err != nil {
		unlock()
		return nil, nil, err
	}
	if rec == nil {
		unlock()
		return nil, nil, fmt.Errorf("player %s: %w", s.id, game.ErrPlayerNotFound)
	}
	if rec.AccessToken != s.token {
		unlock()
		return nil, nil, fmt.Errorf("player %s: %w", s.id, game.ErrSessionExpired)
	}
	return rec, unlock, nil
}

func (s *Servant) ID() string {
	return s.id
}

func (s *Servant) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record.Name
}

func (s *Servant) AccessToken() string {
	return s.token
}

func (s *Servant) AuthenticationStatus() game.LoginResult {
	return s.status
}

func (s *Servant) Position(_ context.Context) (game.Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record.Position, nil
}

func (s *Servant) Region(_ context.Context) (game.Region, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record.Region, nil
}

// currentRoom returns the cached room. mu must be held.
func (s *Servant) currentRoom() (game.Room, error) {
	if s.room == nil {
		return game.Room{}, fmt.Errorf("position %s: %w", s.record.Position, game.ErrRoomNotFound)
	}
	return *s.room, nil
}

func (s *Servant) ShortRoomDescription(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, err := s.currentRoom()
	if err != nil {
		return "", err
	}
	return room.Description, nil
}

func (s *Servant) ExitSet(ctx context.Context) ([]game.Direction, error) {
	pos, _ := s.Position(ctx)
	return s.storage.GetExits(ctx, pos)
}

// PlayersHere lists the names of everyone in the current room, this player
// included, sorted by name.
func (s *Servant) PlayersHere(ctx context.Context) ([]string, error) {
	pos, _ := s.Position(ctx)

	here, err := s.storage.ComputeListOfPlayersAt(ctx, pos)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(here))
	for _, p := range here {
		names = append(names, p.Name)
	}
	slices.Sort(names)
	return names, nil
}

func (s *Servant) Move(ctx context.Context, d game.Direction) (game.UpdateResult, error) {
	rec, unlock, err := s.lockSession(ctx)
	if err != nil {
		return "", err
	}
	defer unlock()

	target := s.record.Position.Translate(d)
	room, err := s.storage.GetRoom(ctx, target)
	if err != nil {
		return "", err
	}
	if room == nil {
		return game.FailAsNotFound, nil
	}

	rec.Position = target
	err = s.storage.UpdatePlayerRecord(ctx, *rec)
	if err != nil {
		return "", err
	}

	return game.UpdateOK, s.refresh(ctx)
}

// DigRoom creates a room next to the current one. The player stays put.
func (s *Servant) DigRoom(ctx context.Context, d game.Direction, description string) (game.UpdateResult, error) {
	_, unlock, err := s.lockSession(ctx)
	if err != nil {
		return "", err
	}
	defer unlock()

	status, err := s.storage.AddRoom(ctx, s.record.Position.Translate(d), game.NewRoom(description, s.id))
	if err != nil {
		return "", err
	}
	return game.UpdateResultFromStatus(status)
}

// UpdateRoom rewrites the description of the current room. Only the room's
// creator may do so.
func (s *Servant) UpdateRoom(ctx context.Context, description string) (game.UpdateResult, error) {
	_, unlock, err := s.lockSession(ctx)
	if err != nil {
		return "", err
	}
	defer unlock()

	room, err := s.currentRoom()
	if err != nil {
		return "", err
	}

	room.Description = description
	room.CreatorID = s.id
	status, err := s.storage.UpdateRoom(ctx, s.record.Position, room)
	if err != nil {
		return "", err
	}

	result, err := game.UpdateResultFromStatus(status)
	if err != nil {
		return "", err
	}
	if result == game.UpdateOK {
		return result, s.refresh(ctx)
	}
	return result, nil
}

func (s *Servant) AddMessage(ctx context.Context, contents string) error {
	_, unlock, err := s.lockSession(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	return s.storage.AddMessage(ctx, s.record.Position, game.NewMessage(contents, s.id, s.record.Name))
}

func (s *Servant) UpdateMessage(ctx context.Context, messageID, contents string) (game.UpdateResult, error) {
	_, unlock, err := s.lockSession(ctx)
	if err != nil {
		return "", err
	}
	defer unlock()

	status, err := s.storage.UpdateMessage(ctx, s.record.Position, messageID, game.NewMessage(contents, s.id, s.record.Name))
	if err != nil {
		return "", err
	}
	return game.UpdateResultFromStatus(status)
}

// MessageList returns page number page of the wall, newest first. Pages
// before the first or past the last are empty.
func (s *Servant) MessageList(ctx context.Context, page int) ([]game.WallMessage, error) {
	if page < 0 || page > math.MaxInt/PageSize {
		return []game.WallMessage{}, nil
	}
	pos, _ := s.Position(ctx)

	msgs, err := s.storage.GetMessageList(ctx, pos, page*PageSize, PageSize)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	wall := make([]game.WallMessage, 0, len(msgs))
	for _, m := range msgs {
		wall = append(wall, game.WallMessage{ID: m.ID, Message: FormatWallPosting(now, m)})
	}
	return wall, nil
}

// Execute runs an extension command with direct storage access, then
// re-reads everything it caches.
func (s *Servant) Execute(ctx context.Context, command string, params ...string) ([]string, error) {
	_, unlock, err := s.lockSession(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	out, err := s.commands.Run(ctx, extension.Env{PlayerID: s.id, Storage: s.storage}, command, params...)
	if err != nil {
		return nil, err
	}

	return out, s.refresh(ctx)
}
