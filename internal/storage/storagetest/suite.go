// Package storagetest holds the behaviour every storage.CaveStorage must
// share, run against each implementation from its own tests.
package storagetest

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pixil98/go-testutil"
	"golang.org/x/sync/errgroup"

	"github.com/pixil98/go-cave/internal/game"
	"github.com/pixil98/go-cave/internal/storage"
)

// Factory builds a fresh, seeded store whose timestamps come from clk.
type Factory func(t *testing.T, clk clock.Clock) storage.CaveStorage

// Start is the time the mock clock is set to before every test.
var Start = time.Date(2024, time.March, 14, 12, 0, 0, 0, time.UTC)

// Run executes the storage contract against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	tests := map[string]func(t *testing.T, s storage.CaveStorage, clk *clock.Mock){
		"seed rooms":               testSeedRooms,
		"seed is idempotent":       testSeedIdempotent,
		"add room":                 testAddRoom,
		"update room":              testUpdateRoom,
		"exits":                    testExits,
		"player records":           testPlayerRecords,
		"players at position":      testPlayersAt,
		"message ordering":         testMessageOrdering,
		"message paging":           testMessagePaging,
		"concurrent dig":           testConcurrentDig,
		"clear access tokens":      testClearAccessTokens,
		"update message":           testUpdateMessage,
		"walls are per position":   testWallsPerPosition,
		"describe mentions a name": testDescribe,
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			clk := clock.NewMock()
			clk.Set(Start)

			s := newStore(t, clk)
			t.Cleanup(func() { _ = s.Close() })

			tt(t, s, clk)
		})
	}
}

func testSeedRooms(t *testing.T, s storage.CaveStorage, _ *clock.Mock) {
	ctx := context.Background()

	r, err := s.GetRoom(ctx, game.Origin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r == nil {
		t.Fatal("expected room at origin")
	}
	testutil.AssertEqual(t, "description", r.Description, "You are standing at the end of a road before a small brick building.")
	testutil.AssertEqual(t, "creator", r.CreatorID, game.WillCrowtherID)
	testutil.AssertEqual(t, "has id", r.ID != "", true)

	for _, pos := range []game.Position{{Y: 1}, {X: 1}, {X: -1}, {Z: 1}} {
		r, err := s.GetRoom(ctx, pos)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		testutil.AssertEqual(t, "room at "+pos.String(), r != nil, true)
	}

	r, err = s.GetRoom(ctx, game.Position{X: 7, Y: 7, Z: 7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "missing room is nil", r == nil, true)
}

func testSeedIdempotent(t *testing.T, s storage.CaveStorage, _ *clock.Mock) {
	ctx := context.Background()

	before, err := s.GetRoom(ctx, game.Origin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = storage.Seed(ctx, s)
	if err != nil {
		t.Fatalf("reseeding: %v", err)
	}

	after, err := s.GetRoom(ctx, game.Origin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "room id kept", after.ID, before.ID)
}

func testAddRoom(t *testing.T, s storage.CaveStorage, clk *clock.Mock) {
	ctx := context.Background()
	pos := game.Position{X: 0, Y: 2, Z: 0}

	clk.Add(time.Hour)
	status, err := s.AddRoom(ctx, pos, game.NewRoom("A dark corridor.", "user-001"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "status", status, game.StatusCreated)

	r, err := s.GetRoom(ctx, pos)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "description", r.Description, "A dark corridor.")
	testutil.AssertEqual(t, "creator", r.CreatorID, "user-001")
	testutil.AssertEqual(t, "created at", r.CreatedAt.Equal(Start.Add(time.Hour)), true)

	status, err = s.AddRoom(ctx, pos, game.NewRoom("Another corridor.", "user-002"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "second add", status, game.StatusForbidden)

	r, err = s.GetRoom(ctx, pos)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "description unchanged", r.Description, "A dark corridor.")
}

func testUpdateRoom(t *testing.T, s storage.CaveStorage, _ *clock.Mock) {
	ctx := context.Background()
	pos := game.Position{X: 5}

	_, err := s.AddRoom(ctx, pos, game.NewRoom("Old.", "user-001"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	orig, err := s.GetRoom(ctx, pos)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := map[string]struct {
		pos       game.Position
		creator   string
		expStatus game.Status
		expDesc   string
	}{
		"not the creator": {pos: pos, creator: "user-002", expStatus: game.StatusUnauthorized, expDesc: "Old."},
		"no such room":    {pos: game.Position{X: 99}, creator: "user-001", expStatus: game.StatusNotFound, expDesc: "Old."},
		"creator updates": {pos: pos, creator: "user-001", expStatus: game.StatusOK, expDesc: "New."},
	}

	for _, name := range []string{"not the creator", "no such room", "creator updates"} {
		tt := tests[name]
		t.Run(name, func(t *testing.T) {
			status, err := s.UpdateRoom(ctx, tt.pos, game.NewRoom("New.", tt.creator))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "status", status, tt.expStatus)

			r, err := s.GetRoom(ctx, pos)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "description", r.Description, tt.expDesc)
			testutil.AssertEqual(t, "id unchanged", r.ID, orig.ID)
			testutil.AssertEqual(t, "created at unchanged", r.CreatedAt.Equal(orig.CreatedAt), true)
		})
	}
}

func testExits(t *testing.T, s storage.CaveStorage, _ *clock.Mock) {
	ctx := context.Background()

	exits, err := s.GetExits(ctx, game.Origin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "origin exits", fmt.Sprint(exits), "[NORTH EAST WEST UP]")

	exits, err = s.GetExits(ctx, game.Position{X: 40})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "no exits", len(exits), 0)
	testutil.AssertEqual(t, "not nil", exits != nil, true)
}

func testPlayerRecords(t *testing.T, s storage.CaveStorage, _ *clock.Mock) {
	ctx := context.Background()

	p, err := s.GetPlayerByID(ctx, "user-001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "unknown player is nil", p == nil, true)

	rec := game.PlayerRecord{
		ID:          "user-001",
		Name:        "Mikkel",
		GroupName:   "grp01",
		Region:      game.RegionAarhus,
		Position:    game.Position{X: 1},
		AccessToken: "token-a",
	}
	err = s.UpdatePlayerRecord(ctx, rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p, err = s.GetPlayerByID(ctx, "user-001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "record", *p, rec)

	rec.AccessToken = ""
	rec.Position = game.Position{X: 1, Z: -3}
	err = s.UpdatePlayerRecord(ctx, rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p, err = s.GetPlayerByID(ctx, "user-001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "overwritten record", *p, rec)
	testutil.AssertEqual(t, "in cave", p.InCave(), false)
}

func testPlayersAt(t *testing.T, s storage.CaveStorage, _ *clock.Mock) {
	ctx := context.Background()

	records := []game.PlayerRecord{
		{ID: "user-001", Name: "Mikkel", Region: game.RegionAarhus, AccessToken: "a"},
		{ID: "user-002", Name: "Magnus", Region: game.RegionCopenhagen, AccessToken: "b"},
		{ID: "user-003", Name: "Mathilde", Region: game.RegionAalborg},
		{ID: "user-004", Name: "Elsewhere", Region: game.RegionOdense, Position: game.Position{Y: 1}, AccessToken: "d"},
	}
	for _, r := range records {
		err := s.UpdatePlayerRecord(ctx, r)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	here, err := s.ComputeListOfPlayersAt(ctx, game.Origin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ids := map[string]bool{}
	for _, p := range here {
		ids[p.ID] = true
	}
	testutil.AssertEqual(t, "count", len(here), 2)
	testutil.AssertEqual(t, "mikkel here", ids["user-001"], true)
	testutil.AssertEqual(t, "magnus here", ids["user-002"], true)

	here, err = s.ComputeListOfPlayersAt(ctx, game.Position{Z: 9})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "empty not nil", here != nil, true)
	testutil.AssertEqual(t, "empty", len(here), 0)
}

func testMessageOrdering(t *testing.T, s storage.CaveStorage, clk *clock.Mock) {
	ctx := context.Background()

	for _, c := range []string{"first", "second", "third"} {
		clk.Add(time.Minute)
		err := s.AddMessage(ctx, game.Origin, game.NewMessage(c, "user-001", "Mikkel"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	msgs, err := s.GetMessageList(ctx, game.Origin, 0, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "count", len(msgs), 3)
	testutil.AssertEqual(t, "newest first", msgs[0].Contents, "third")
	testutil.AssertEqual(t, "oldest last", msgs[2].Contents, "first")
	testutil.AssertEqual(t, "creator name", msgs[0].CreatorName, "Mikkel")
	testutil.AssertEqual(t, "timestamp", msgs[0].CreatedAt.Equal(Start.Add(3*time.Minute)), true)
	testutil.AssertEqual(t, "distinct ids", msgs[0].ID != msgs[1].ID && msgs[0].ID != "", true)
}

func testMessagePaging(t *testing.T, s storage.CaveStorage, _ *clock.Mock) {
	ctx := context.Background()

	for i := range 100 {
		err := s.AddMessage(ctx, game.Origin, game.NewMessage(fmt.Sprintf("M%d", i), "user-001", "Mikkel"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	tests := map[string]struct {
		start    int
		size     int
		expCount int
		expFirst string
		expLast  string
	}{
		"first sixteen":   {start: 0, size: 16, expCount: 16, expFirst: "M99", expLast: "M84"},
		"second page":     {start: 8, size: 8, expCount: 8, expFirst: "M91", expLast: "M84"},
		"clipped tail":    {start: 97, size: 10, expCount: 3, expFirst: "M2", expLast: "M0"},
		"at the end":      {start: 100, size: 10, expCount: 0},
		"past the end":    {start: 156, size: 8, expCount: 0},
		"zero size":       {start: 0, size: 0, expCount: 0},
		"whole wall":      {start: 0, size: 200, expCount: 100, expFirst: "M99", expLast: "M0"},
		"huge size":       {start: 1, size: math.MaxInt, expCount: 99, expFirst: "M98", expLast: "M0"},
		"negative offset": {start: -3, size: 1, expCount: 1, expFirst: "M99", expLast: "M99"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			msgs, err := s.GetMessageList(ctx, game.Origin, tt.start, tt.size)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "not nil", msgs != nil, true)
			testutil.AssertEqual(t, "count", len(msgs), tt.expCount)
			if tt.expCount > 0 {
				testutil.AssertEqual(t, "first", msgs[0].Contents, tt.expFirst)
				testutil.AssertEqual(t, "last", msgs[len(msgs)-1].Contents, tt.expLast)
			}
		})
	}
}

func testConcurrentDig(t *testing.T, s storage.CaveStorage, _ *clock.Mock) {
	ctx := context.Background()
	target := game.Position{X: 5, Y: 5, Z: 5}

	const diggers = 2
	statuses := make([]game.Status, diggers)
	ready := make(chan struct{})

	var g errgroup.Group
	for i := range diggers {
		g.Go(func() error {
			<-ready
			var err error
			statuses[i], err = s.AddRoom(ctx, target, game.NewRoom(fmt.Sprintf("Dug by %d.", i), fmt.Sprintf("user-00%d", i+1)))
			return err
		})
	}
	close(ready)
	if err := g.Wait(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	counts := map[game.Status]int{}
	for _, st := range statuses {
		counts[st]++
	}
	testutil.AssertEqual(t, "created", counts[game.StatusCreated], 1)
	testutil.AssertEqual(t, "forbidden", counts[game.StatusForbidden], 1)

	r, err := s.GetRoom(ctx, target)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, st := range statuses {
		if st == game.StatusCreated {
			testutil.AssertEqual(t, "winner's room", r.CreatorID, fmt.Sprintf("user-00%d", i+1))
		}
	}
}

func testClearAccessTokens(t *testing.T, s storage.CaveStorage, _ *clock.Mock) {
	ctx := context.Background()

	records := []game.PlayerRecord{
		{ID: "user-001", Name: "Mikkel", Region: game.RegionAarhus, AccessToken: "a"},
		{ID: "user-002", Name: "Magnus", Region: game.RegionCopenhagen, Position: game.Position{Y: 1}, AccessToken: "b"},
		{ID: "user-003", Name: "Mathilde", Region: game.RegionAalborg},
	}
	for _, r := range records {
		err := s.UpdatePlayerRecord(ctx, r)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	err := s.ClearAccessTokens(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, r := range records {
		rec, err := s.GetPlayerByID(ctx, r.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		testutil.AssertEqual(t, r.ID+" out of the cave", rec.InCave(), false)
		testutil.AssertEqual(t, r.ID+" position kept", rec.Position, r.Position)
	}

	here, err := s.ComputeListOfPlayersAt(ctx, game.Origin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "nobody here", len(here), 0)
}

func testUpdateMessage(t *testing.T, s storage.CaveStorage, _ *clock.Mock) {
	ctx := context.Background()

	err := s.AddMessage(ctx, game.Origin, game.NewMessage("Hello", "user-001", "Mikkel"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	msgs, err := s.GetMessageList(ctx, game.Origin, 0, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	orig := msgs[0]

	tests := map[string]struct {
		pos       game.Position
		id        string
		creator   string
		expStatus game.Status
		expText   string
	}{
		"not the creator": {pos: game.Origin, id: orig.ID, creator: "user-002", expStatus: game.StatusUnauthorized, expText: "Hello"},
		"unknown id":      {pos: game.Origin, id: "nope", creator: "user-001", expStatus: game.StatusNotFound, expText: "Hello"},
		"wrong room":      {pos: game.Position{Y: 1}, id: orig.ID, creator: "user-001", expStatus: game.StatusNotFound, expText: "Hello"},
		"creator updates": {pos: game.Origin, id: orig.ID, creator: "user-001", expStatus: game.StatusOK, expText: "Goodbye"},
	}

	for _, name := range []string{"not the creator", "unknown id", "wrong room", "creator updates"} {
		tt := tests[name]
		t.Run(name, func(t *testing.T) {
			status, err := s.UpdateMessage(ctx, tt.pos, tt.id, game.NewMessage("Goodbye", tt.creator, "Someone"))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "status", status, tt.expStatus)

			msgs, err := s.GetMessageList(ctx, game.Origin, 0, 1)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "contents", msgs[0].Contents, tt.expText)
			testutil.AssertEqual(t, "creator name kept", msgs[0].CreatorName, "Mikkel")
			testutil.AssertEqual(t, "timestamp kept", msgs[0].CreatedAt.Equal(orig.CreatedAt), true)
		})
	}
}

func testWallsPerPosition(t *testing.T, s storage.CaveStorage, _ *clock.Mock) {
	ctx := context.Background()

	err := s.AddMessage(ctx, game.Origin, game.NewMessage("here", "user-001", "Mikkel"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	msgs, err := s.GetMessageList(ctx, game.Position{Y: 1}, 0, 8)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "other wall empty", len(msgs), 0)
}

func testDescribe(t *testing.T, s storage.CaveStorage, _ *clock.Mock) {
	testutil.AssertEqual(t, "describe", s.Describe() != "", true)
}
