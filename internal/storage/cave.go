package storage

import (
	"context"
	"fmt"

	"github.com/pixil98/go-cave/internal/game"
)

// CaveStorage holds rooms, player records and wall messages.
//
// Domain outcomes (room already there, not the creator, ...) are reported as
// a game.Status. The error return is reserved for infrastructure failures.
type CaveStorage interface {
	// GetRoom returns nil if there is no room at pos.
	GetRoom(ctx context.Context, pos game.Position) (*game.Room, error)
	// AddRoom returns StatusCreated, or StatusForbidden if pos is taken. The
	// id and creation time of the draft are ignored and assigned here.
	AddRoom(ctx context.Context, pos game.Position, draft game.Room) (game.Status, error)
	// UpdateRoom returns StatusOK, StatusNotFound, or StatusUnauthorized if
	// the draft's creator differs from the stored one.
	UpdateRoom(ctx context.Context, pos game.Position, draft game.Room) (game.Status, error)
	// GetExits lists the directions that lead to an existing room.
	GetExits(ctx context.Context, pos game.Position) ([]game.Direction, error)

	// GetPlayerByID returns nil if the player has never logged in.
	GetPlayerByID(ctx context.Context, id string) (*game.PlayerRecord, error)
	UpdatePlayerRecord(ctx context.Context, record game.PlayerRecord) error
	// ComputeListOfPlayersAt lists the players in the cave at pos.
	ComputeListOfPlayersAt(ctx context.Context, pos game.Position) ([]game.PlayerRecord, error)
	// ClearAccessTokens takes every player out of the cave.
	ClearAccessTokens(ctx context.Context) error

	// AddMessage puts the message in front of the room's wall.
	AddMessage(ctx context.Context, pos game.Position, draft game.Message) error
	// UpdateMessage overwrites the contents of a message. It returns
	// StatusOK, StatusNotFound, or StatusUnauthorized for non-creators.
	UpdateMessage(ctx context.Context, pos game.Position, id string, draft game.Message) (game.Status, error)
	// GetMessageList returns up to size messages, newest first, starting at
	// start. The result is empty, never nil, past the end of the wall.
	GetMessageList(ctx context.Context, pos game.Position, start, size int) ([]game.Message, error)

	Describe() string
	Close() error
}

var seedRooms = []struct {
	pos  game.Position
	desc string
}{
	{game.Position{X: 0, Y: 0, Z: 0}, "You are standing at the end of a road before a small brick building."},
	{game.Position{X: 0, Y: 1, Z: 0}, "You are in open forest, with a deep valley to one side."},
	{game.Position{X: 1, Y: 0, Z: 0}, "You are inside a building, a well house for a large spring."},
	{game.Position{X: -1, Y: 0, Z: 0}, "You have walked up a hill, still in the forest."},
	{game.Position{X: 0, Y: 0, Z: 1}, "You are in the top of a tall tree, at the end of a road."},
}

// Seed creates the initial rooms of the cave. Rooms that already exist are
// left alone, so Seed can run against a reopened store.
func Seed(ctx context.Context, s CaveStorage) error {
	for _, r := range seedRooms {
		status, err := s.AddRoom(ctx, r.pos, game.NewRoom(r.desc, game.WillCrowtherID))
		if err != nil {
			return fmt.Errorf("seeding room %s: %w", r.pos, err)
		}
		if status != game.StatusCreated && status != game.StatusForbidden {
			return fmt.Errorf("seeding room %s: unexpected status %s", r.pos, status)
		}
	}
	return nil
}

// clipPage returns the [start, start+size) window of a sequence of length n.
func clipPage(n, start, size int) (int, int) {
	if start < 0 {
		start = 0
	}
	if size < 0 {
		size = 0
	}
	if start > n {
		start = n
	}
	if size > n-start {
		return start, n
	}
	return start, start + size
}
