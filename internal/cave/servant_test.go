package cave

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"
	"golang.org/x/sync/errgroup"

	"github.com/pixil98/go-cave/internal/game"
	"github.com/pixil98/go-cave/internal/storage"
	"github.com/pixil98/go-cave/internal/storage/sqlite"
	"github.com/pixil98/go-cave/internal/subscription"
)

// mockPublisher records published notices per player.
type mockPublisher struct {
	mu      sync.Mutex
	notices map[string][]Notice
}

func (m *mockPublisher) PublishToPlayer(playerID string, data []byte) error {
	var n Notice
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.notices == nil {
		m.notices = map[string][]Notice{}
	}
	m.notices[playerID] = append(m.notices[playerID], n)
	return nil
}

func (m *mockPublisher) kinds(playerID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var kinds []string
	for _, n := range m.notices[playerID] {
		kinds = append(kinds, n.Kind)
	}
	return strings.Join(kinds, ",")
}

func newCave(t *testing.T, opts ...ServantOpt) (*Servant, *storage.MemoryStore) {
	t.Helper()

	store := storage.NewMemoryStore()
	if err := storage.Seed(context.Background(), store); err != nil {
		t.Fatalf("seeding: %v", err)
	}
	subs, err := subscription.NewStubService()
	if err != nil {
		t.Fatalf("creating subscriptions: %v", err)
	}
	return NewServant(store, subs, opts...), store
}

func login(t *testing.T, c *Servant, name, password string) game.Player {
	t.Helper()

	p, result, err := c.Login(context.Background(), name, password)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !result.Valid() {
		t.Fatalf("login %s failed: %s", name, result)
	}
	return p
}

func TestServant_Login(t *testing.T) {
	tests := map[string]struct {
		login     string
		password  string
		expResult game.LoginResult
		expID     string
		expName   string
	}{
		"mikkel": {
			login: "mikkel_aarskort", password: "123",
			expResult: game.LoginSuccess, expID: "user-001", expName: "Mikkel",
		},
		"mathilde": {
			login: "mathilde_aarskort", password: "321",
			expResult: game.LoginSuccess, expID: "user-003", expName: "Mathilde",
		},
		"wrong password": {
			login: "mikkel_aarskort", password: "nope",
			expResult: game.LoginFailedUnknownSubscription,
		},
		"unknown login": {
			login: "frodo", password: "123",
			expResult: game.LoginFailedUnknownSubscription,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			c, store := newCave(t)

			p, result, err := c.Login(ctx, tt.login, tt.password)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "result", result, tt.expResult)

			if !tt.expResult.Valid() {
				testutil.AssertEqual(t, "no player", p == nil, true)
				return
			}

			testutil.AssertEqual(t, "id", p.ID(), tt.expID)
			testutil.AssertEqual(t, "name", p.Name(), tt.expName)
			testutil.AssertEqual(t, "status", p.AuthenticationStatus(), tt.expResult)

			rec, err := store.GetPlayerByID(ctx, tt.expID)
			if err != nil {
				t.Fatalf("reading record: %v", err)
			}
			testutil.AssertEqual(t, "stored token", rec.AccessToken, p.AccessToken())
			testutil.AssertEqual(t, "starts at origin", rec.Position, game.Origin)
		})
	}
}

func TestServant_LoginServerError(t *testing.T) {
	c := NewServant(storage.NewMemoryStore(), subscription.SaboteurService{})

	p, result, err := c.Login(context.Background(), "mikkel_aarskort", "123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "result", result, game.LoginFailedServerError)
	testutil.AssertEqual(t, "no player", p == nil, true)
}

func TestServant_Supersession(t *testing.T) {
	ctx := context.Background()
	pub := &mockPublisher{}
	c, _ := newCave(t, WithPublisher(pub))

	first := login(t, c, "mikkel_aarskort", "123")
	if _, err := first.Move(ctx, game.North); err != nil {
		t.Fatalf("move: %v", err)
	}

	second, result, err := c.Login(ctx, "mikkel_aarskort", "123")
	if err != nil {
		t.Fatalf("second login: %v", err)
	}
	testutil.AssertEqual(t, "second result", result, game.LoginSuccessPlayerAlreadyInCave)
	testutil.AssertEqual(t, "same player", second.ID(), first.ID())
	testutil.AssertEqual(t, "new token", second.AccessToken() != first.AccessToken(), true)

	_, err = c.Session(first.ID(), first.AccessToken())
	testutil.AssertEqual(t, "first session expired", errors.Is(err, game.ErrSessionExpired), true)

	live, err := c.Session(second.ID(), second.AccessToken())
	if err != nil {
		t.Fatalf("second session: %v", err)
	}
	pos, err := live.Position(ctx)
	if err != nil {
		t.Fatalf("position: %v", err)
	}
	testutil.AssertEqual(t, "position carried over", pos, game.Position{Y: 1})
	testutil.AssertEqual(t, "notices", pub.kinds("user-001"), NoticeSuperseded)
}

func TestServant_Logout(t *testing.T) {
	ctx := context.Background()
	pub := &mockPublisher{}
	c, store := newCave(t, WithPublisher(pub))

	p := login(t, c, "magnus_aarskort", "312")

	result, err := c.Logout(ctx, p.ID())
	if err != nil {
		t.Fatalf("logout: %v", err)
	}
	testutil.AssertEqual(t, "logout", result, game.LogoutSuccess)

	rec, err := store.GetPlayerByID(ctx, p.ID())
	if err != nil {
		t.Fatalf("reading record: %v", err)
	}
	testutil.AssertEqual(t, "offline", rec.InCave(), false)

	_, err = c.Session(p.ID(), p.AccessToken())
	testutil.AssertEqual(t, "session gone", errors.Is(err, game.ErrSessionExpired), true)

	result, err = c.Logout(ctx, p.ID())
	if err != nil {
		t.Fatalf("second logout: %v", err)
	}
	testutil.AssertEqual(t, "second logout", result, game.LogoutNotInCave)

	result, err = c.Logout(ctx, "user-404")
	if err != nil {
		t.Fatalf("unknown logout: %v", err)
	}
	testutil.AssertEqual(t, "unknown player", result, game.LogoutNotInCave)

	testutil.AssertEqual(t, "notices", pub.kinds("user-002"), NoticeLoggedOut)

	again, loginResult, err := c.Login(ctx, "magnus_aarskort", "312")
	if err != nil {
		t.Fatalf("login again: %v", err)
	}
	testutil.AssertEqual(t, "fresh login after logout", loginResult, game.LoginSuccess)
	testutil.AssertEqual(t, "same id", again.ID(), p.ID())
}

func TestServant_ConcurrentLogins(t *testing.T) {
	ctx := context.Background()
	c, store := newCave(t)

	results := make([]game.LoginResult, 10)
	var g errgroup.Group
	for i := range results {
		g.Go(func() error {
			_, r, err := c.Login(ctx, "mikkel_aarskort", "123")
			results[i] = r
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("login: %v", err)
	}

	fresh := 0
	for _, r := range results {
		if r == game.LoginSuccess {
			fresh++
		}
	}
	testutil.AssertEqual(t, "exactly one fresh login", fresh, 1)

	rec, err := store.GetPlayerByID(ctx, "user-001")
	if err != nil {
		t.Fatalf("reading record: %v", err)
	}
	_, err = c.Session("user-001", rec.AccessToken)
	testutil.AssertEqual(t, "stored token is the live session", err == nil, true)
}

func TestServant_DescribeConfiguration(t *testing.T) {
	c, _ := newCave(t)
	login(t, c, "mikkel_aarskort", "123")

	desc, err := c.DescribeConfiguration(context.Background())
	if err != nil {
		t.Fatalf("describe: %v", err)
	}

	for _, exp := range []string{"MemoryStore", "StubService (4 subscriptions)", "HomeCommand, JumpCommand", "Sessions: 1 active"} {
		if !strings.Contains(desc, exp) {
			t.Errorf("configuration %q does not mention %q", desc, exp)
		}
	}
}

func TestServant_Start(t *testing.T) {
	c, _ := newCave(t)
	p := login(t, c, "mikkel_aarskort", "123")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("cave did not stop")
	}

	_, err := c.Session(p.ID(), p.AccessToken())
	testutil.AssertEqual(t, "sessions cleared", errors.Is(err, game.ErrSessionExpired), true)
}

func TestServant_RestartEmptiesCave(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cave.db")

	open := func() *sqlite.Store {
		s, err := sqlite.Open(path)
		if err != nil {
			t.Fatalf("open store: %v", err)
		}
		if err := storage.Seed(ctx, s); err != nil {
			t.Fatalf("seeding: %v", err)
		}
		return s
	}
	subs, err := subscription.NewStubService()
	if err != nil {
		t.Fatalf("creating subscriptions: %v", err)
	}

	c := NewServant(open(), subs)
	login(t, c, "mikkel_aarskort", "123")

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- c.Start(runCtx) }()
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("cave did not stop")
	}

	store := open()
	t.Cleanup(func() { _ = store.Close() })

	here, err := store.ComputeListOfPlayersAt(ctx, game.Origin)
	if err != nil {
		t.Fatalf("players at origin: %v", err)
	}
	testutil.AssertEqual(t, "players in cave after restart", len(here), 0)

	_, result, err := NewServant(store, subs).Login(ctx, "mikkel_aarskort", "123")
	if err != nil {
		t.Fatalf("login after restart: %v", err)
	}
	testutil.AssertEqual(t, "login after restart", result, game.LoginSuccess)
}
