// Package cave implements the server side entry point of the game: login,
// logout and the live session table.
package cave

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/benbjohnson/clock"

	"github.com/pixil98/go-cave/internal/extension"
	"github.com/pixil98/go-cave/internal/game"
	"github.com/pixil98/go-cave/internal/player"
	"github.com/pixil98/go-cave/internal/session"
	"github.com/pixil98/go-cave/internal/storage"
	"github.com/pixil98/go-cave/internal/subscription"
)

// Notice is published to a player's channel when their session ends from
// the server side.
type Notice struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

const (
	NoticeSuperseded = "session-superseded"
	NoticeLoggedOut  = "session-ended"
)

type Servant struct {
	storage       storage.CaveStorage
	subscriptions subscription.Service
	commands      *extension.Registry
	clock         clock.Clock
	publisher     game.Publisher

	sessions *session.Registry[*player.Servant]
	locks    *session.KeyedMutex
}

var _ game.Cave = (*Servant)(nil)

type ServantOpt func(*Servant)

// WithClock sets the clock handed to player servants.
func WithClock(c clock.Clock) ServantOpt {
	return func(s *Servant) {
		s.clock = c
	}
}

// WithCommands sets the extension commands players can execute.
func WithCommands(r *extension.Registry) ServantOpt {
	return func(s *Servant) {
		s.commands = r
	}
}

// WithPublisher enables notices to players whose session is taken over or
// ended.
func WithPublisher(p game.Publisher) ServantOpt {
	return func(s *Servant) {
		s.publisher = p
	}
}

func NewServant(s storage.CaveStorage, subs subscription.Service, opts ...ServantOpt) *Servant {
	srv := &Servant{
		storage:       s,
		subscriptions: subs,
		commands:      extension.NewDefaultRegistry(),
		clock:         clock.New(),
		sessions:      session.NewRegistry[*player.Servant](),
		locks:         session.NewKeyedMutex(),
	}

	for _, opt := range opts {
		opt(srv)
	}

	return srv
}

// Start holds the session table for the lifetime of ctx. On shutdown every
// session is dropped, every stored token is cleared and storage is closed.
func (s *Servant) Start(ctx context.Context) error {
	slog.InfoContext(ctx, "cave open", "storage", s.storage.Describe(), "subscriptions", s.subscriptions.Describe())

	<-ctx.Done()

	slog.InfoContext(ctx, "cave closing", "sessions", s.sessions.Len())
	s.sessions.Clear()

	// ctx is done; the tokens are cleared without it.
	err := s.storage.ClearAccessTokens(context.WithoutCancel(ctx))
	return errors.Join(err, s.storage.Close())
}

// Login authenticates loginName and opens a session for the player. A
// player that is already in the cave gets a new session and the old token
// stops working.
func (s *Servant) Login(ctx context.Context, loginName, password string) (game.Player, game.LoginResult, error) {
	sub, err := s.subscriptions.Authorize(ctx, loginName, password)
	if errors.Is(err, subscription.ErrUnknownSubscription) {
		slog.InfoContext(ctx, "login rejected", "login", loginName)
		return nil, game.LoginFailedUnknownSubscription, nil
	}
	if err != nil {
		slog.WarnContext(ctx, "subscription service failed", "login", loginName, "error", err)
		return nil, game.LoginFailedServerError, nil
	}

	unlock := s.locks.Lock(sub.PlayerID)
	defer unlock()

	rec, err := s.storage.GetPlayerByID(ctx, sub.PlayerID)
	if err != nil {
		return nil, game.LoginFailedServerError, fmt.Errorf("login %s: %w", sub.PlayerID, err)
	}

	result := game.LoginSuccess
	if rec == nil {
		rec = &game.PlayerRecord{ID: sub.PlayerID, Position: game.Origin}
	} else if rec.InCave() {
		result = game.LoginSuccessPlayerAlreadyInCave
	}
	rec.Name = sub.PlayerName
	rec.GroupName = sub.GroupName
	rec.Region = sub.Region
	rec.AccessToken = sub.AccessToken

	err = s.storage.UpdatePlayerRecord(ctx, *rec)
	if err != nil {
		return nil, game.LoginFailedServerError, fmt.Errorf("login %s: %w", sub.PlayerID, err)
	}

	p, err := player.NewServant(ctx, sub.PlayerID, result, s.storage,
		player.WithClock(s.clock),
		player.WithCommands(s.commands),
		player.WithLocks(s.locks),
	)
	if err != nil {
		return nil, game.LoginFailedServerError, fmt.Errorf("login %s: %w", sub.PlayerID, err)
	}

	if result == game.LoginSuccessPlayerAlreadyInCave {
		s.notify(ctx, sub.PlayerID, Notice{Kind: NoticeSuperseded, Message: "Another connection has taken over your session."})
	}
	s.sessions.Add(sub.PlayerID, sub.AccessToken, p)

	slog.InfoContext(ctx, "player logged in", "player", sub.PlayerID, "name", sub.PlayerName, "result", result)
	return p, result, nil
}

// Logout ends the session of playerID.
func (s *Servant) Logout(ctx context.Context, playerID string) (game.LogoutResult, error) {
	unlock := s.locks.Lock(playerID)
	defer unlock()

	rec, err := s.storage.GetPlayerByID(ctx, playerID)
	if err != nil {
		return game.LogoutServerFailure, fmt.Errorf("logout %s: %w", playerID, err)
	}
	if rec == nil || !rec.InCave() {
		return game.LogoutNotInCave, nil
	}

	rec.AccessToken = ""
	err = s.storage.UpdatePlayerRecord(ctx, *rec)
	if err != nil {
		return game.LogoutServerFailure, fmt.Errorf("logout %s: %w", playerID, err)
	}
	s.sessions.Remove(playerID)

	s.notify(ctx, playerID, Notice{Kind: NoticeLoggedOut, Message: "You have left the cave."})
	slog.InfoContext(ctx, "player logged out", "player", playerID)
	return game.LogoutSuccess, nil
}

// DescribeConfiguration lists the collaborators the cave was built with.
func (s *Servant) DescribeConfiguration(_ context.Context) (string, error) {
	var b strings.Builder
	b.WriteString("CaveServant configuration:\n")
	fmt.Fprintf(&b, "  CaveStorage: %s\n", s.storage.Describe())
	fmt.Fprintf(&b, "  SubscriptionService: %s\n", s.subscriptions.Describe())
	fmt.Fprintf(&b, "  Commands: %s\n", strings.Join(s.commands.Names(), ", "))
	fmt.Fprintf(&b, "  Sessions: %d active", s.sessions.Len())
	return b.String(), nil
}

// Session returns the player servant if token is the live session of
// playerID, and game.ErrSessionExpired otherwise.
func (s *Servant) Session(playerID, token string) (game.Player, error) {
	p, err := s.sessions.Validate(playerID, token)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Servant) notify(ctx context.Context, playerID string, n Notice) {
	if s.publisher == nil {
		return
	}

	data, err := json.Marshal(n)
	if err != nil {
		slog.WarnContext(ctx, "encoding notice", "player", playerID, "error", err)
		return
	}
	if err := s.publisher.PublishToPlayer(playerID, data); err != nil {
		slog.WarnContext(ctx, "publishing notice", "player", playerID, "kind", n.Kind, "error", err)
	}
}
