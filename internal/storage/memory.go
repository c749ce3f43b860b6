package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/pixil98/go-cave/internal/game"
)

// MemoryStore is the in-memory CaveStorage. Maps stand in for the tables of
// a database; all access goes through one lock.
type MemoryStore struct {
	clock clock.Clock
	newID func() string

	mu       sync.RWMutex
	rooms    map[game.Position]game.Room
	players  map[string]game.PlayerRecord
	messages map[game.Position][]game.Message // oldest first
}

var _ CaveStorage = (*MemoryStore)(nil)

type MemoryStoreOpt func(*MemoryStore)

// WithClock sets the clock used to timestamp new rooms and messages.
func WithClock(c clock.Clock) MemoryStoreOpt {
	return func(s *MemoryStore) {
		s.clock = c
	}
}

func NewMemoryStore(opts ...MemoryStoreOpt) *MemoryStore {
	s := &MemoryStore{
		clock:    clock.New(),
		newID:    uuid.NewString,
		rooms:    map[game.Position]game.Room{},
		players:  map[string]game.PlayerRecord{},
		messages: map[game.Position][]game.Message{},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *MemoryStore) GetRoom(_ context.Context, pos game.Position) (*game.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.rooms[pos]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (s *MemoryStore) AddRoom(_ context.Context, pos game.Position, draft game.Room) (game.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[pos]; ok {
		return game.StatusForbidden, nil
	}

	draft.ID = s.newID()
	draft.CreatedAt = s.clock.Now()
	s.rooms[pos] = draft
	return game.StatusCreated, nil
}

func (s *MemoryStore) UpdateRoom(_ context.Context, pos game.Position, draft game.Room) (game.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.rooms[pos]
	if !ok {
		return game.StatusNotFound, nil
	}
	if stored.CreatorID != draft.CreatorID {
		return game.StatusUnauthorized, nil
	}

	stored.Description = draft.Description
	stored.CreatorID = draft.CreatorID
	s.rooms[pos] = stored
	return game.StatusOK, nil
}

func (s *MemoryStore) GetExits(_ context.Context, pos game.Position) ([]game.Direction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	exits := []game.Direction{}
	for _, d := range game.Directions {
		if _, ok := s.rooms[pos.Translate(d)]; ok {
			exits = append(exits, d)
		}
	}
	return exits, nil
}

func (s *MemoryStore) GetPlayerByID(_ context.Context, id string) (*game.PlayerRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.players[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *MemoryStore) UpdatePlayerRecord(_ context.Context, record game.PlayerRecord) error {
	if record.ID == "" {
		return fmt.Errorf("player record without id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.players[record.ID] = record
	return nil
}

func (s *MemoryStore) ClearAccessTokens(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, p := range s.players {
		p.AccessToken = ""
		s.players[id] = p
	}
	return nil
}

func (s *MemoryStore) ComputeListOfPlayersAt(_ context.Context, pos game.Position) ([]game.PlayerRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	here := []game.PlayerRecord{}
	for _, p := range s.players {
		if p.InCave() && p.Position == pos {
			here = append(here, p)
		}
	}
	return here, nil
}

func (s *MemoryStore) AddMessage(_ context.Context, pos game.Position, draft game.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft.ID = s.newID()
	draft.CreatedAt = s.clock.Now()
	s.messages[pos] = append(s.messages[pos], draft)
	return nil
}

func (s *MemoryStore) UpdateMessage(_ context.Context, pos game.Position, id string, draft game.Message) (game.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wall := s.messages[pos]
	for i := range wall {
		if wall[i].ID != id {
			continue
		}
		if wall[i].CreatorID != draft.CreatorID {
			return game.StatusUnauthorized, nil
		}
		wall[i].Contents = draft.Contents
		return game.StatusOK, nil
	}

	return game.StatusNotFound, nil
}

func (s *MemoryStore) GetMessageList(_ context.Context, pos game.Position, start, size int) ([]game.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wall := s.messages[pos]
	n := len(wall)
	from, to := clipPage(n, start, size)

	page := make([]game.Message, 0, to-from)
	for i := from; i < to; i++ {
		page = append(page, wall[n-1-i])
	}
	return page, nil
}

func (s *MemoryStore) Describe() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return fmt.Sprintf("MemoryStore (%d rooms, %d players)", len(s.rooms), len(s.players))
}

func (s *MemoryStore) Close() error {
	return nil
}
