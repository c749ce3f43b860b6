package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/pixil98/go-testutil"

	"github.com/pixil98/go-cave/internal/game"
	"github.com/pixil98/go-cave/internal/storage"
	"github.com/pixil98/go-cave/internal/storage/storagetest"
)

func openTempStore(t *testing.T, clk clock.Clock) storage.CaveStorage {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "cave.db"), WithClock(clk))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	err = storage.Seed(context.Background(), s)
	if err != nil {
		t.Fatalf("seeding: %v", err)
	}
	return s
}

func TestStore(t *testing.T) {
	storagetest.Run(t, openTempStore)
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("  ")
	testutil.AssertErrorContains(t, err, "storage path is required")
}

func TestStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cave.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	err = storage.Seed(ctx, s)
	if err != nil {
		t.Fatalf("seeding: %v", err)
	}
	_, err = s.AddRoom(ctx, game.Position{Y: 2}, game.NewRoom("Dug before restart.", "user-001"))
	if err != nil {
		t.Fatalf("add room: %v", err)
	}
	err = s.AddMessage(ctx, game.Origin, game.NewMessage("still here", "user-001", "Mikkel"))
	if err != nil {
		t.Fatalf("add message: %v", err)
	}
	err = s.Close()
	if err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	t.Cleanup(func() { _ = reopened.Close() })

	// Migrations and seeding must both tolerate an existing database.
	err = storage.Seed(ctx, reopened)
	if err != nil {
		t.Fatalf("reseeding: %v", err)
	}

	r, err := reopened.GetRoom(ctx, game.Position{Y: 2})
	if err != nil {
		t.Fatalf("get room: %v", err)
	}
	testutil.AssertEqual(t, "dug room kept", r != nil && r.Description == "Dug before restart.", true)

	msgs, err := reopened.GetMessageList(ctx, game.Origin, 0, 8)
	if err != nil {
		t.Fatalf("message list: %v", err)
	}
	testutil.AssertEqual(t, "message count", len(msgs), 1)
	testutil.AssertEqual(t, "message", msgs[0].Contents, "still here")
}
