package shell

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/pixil98/go-testutil"

	"github.com/pixil98/go-cave/internal/broker"
	"github.com/pixil98/go-cave/internal/cave"
	"github.com/pixil98/go-cave/internal/client"
	"github.com/pixil98/go-cave/internal/game"
	"github.com/pixil98/go-cave/internal/invoker"
	"github.com/pixil98/go-cave/internal/storage"
	"github.com/pixil98/go-cave/internal/subscription"
	"github.com/pixil98/go-cave/internal/transport"
)

// conn feeds scripted input and collects everything written.
type conn struct {
	io.Reader
	out bytes.Buffer
}

func (c *conn) Write(p []byte) (int, error) {
	return c.out.Write(p)
}

func newConn(lines ...string) *conn {
	return &conn{Reader: strings.NewReader(strings.Join(lines, "\n") + "\n")}
}

// newCave returns a proxy to a fresh cave, so session checks apply as they
// do for remote players.
func newCave(t *testing.T) game.Cave {
	t.Helper()

	store := storage.NewMemoryStore()
	if err := storage.Seed(context.Background(), store); err != nil {
		t.Fatalf("seeding: %v", err)
	}
	subs, err := subscription.NewStubService()
	if err != nil {
		t.Fatalf("creating subscriptions: %v", err)
	}
	servant := cave.NewServant(store, subs)

	root := invoker.NewRoot()
	if err := root.Register(broker.CavePrefix, invoker.NewCaveHandler(servant)); err != nil {
		t.Fatalf("register cave: %v", err)
	}
	if err := root.Register(broker.PlayerPrefix, invoker.NewPlayerHandler(servant)); err != nil {
		t.Fatalf("register player: %v", err)
	}
	return client.NewCaveProxy(client.NewRequestor(transport.NewLocal(root)))
}

func assertContains(t *testing.T, output string, exp ...string) {
	t.Helper()
	for _, e := range exp {
		if !strings.Contains(output, e) {
			t.Errorf("output does not contain %q:\n%s", e, output)
		}
	}
}

func TestTerminal_Prompt(t *testing.T) {
	digits := func(s string) (bool, string) {
		if strings.Trim(s, "0123456789") != "" || s == "" {
			return false, "digits only\n"
		}
		return true, ""
	}

	tests := map[string]struct {
		input  string
		opts   []PromptOpt
		exp    string
		expErr string
	}{
		"plain":          {input: "hello\n", exp: "hello"},
		"crlf":           {input: "hello\r\n", exp: "hello"},
		"no newline":     {input: "hello", exp: "hello"},
		"eof":            {input: "", expErr: "EOF"},
		"retry":          {input: "x\n42\n", opts: []PromptOpt{WithValidator(digits)}, exp: "42"},
		"too many tries": {input: "x\ny\n", opts: []PromptOpt{WithValidator(digits), WithMaxTries(2)}, expErr: "too many tries"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			c := &conn{Reader: strings.NewReader(tt.input)}
			got, err := NewTerminal(c).Prompt("? ", tt.opts...)
			testutil.AssertErrorContains(t, err, tt.expErr)
			testutil.AssertEqual(t, "input", got, tt.exp)
		})
	}
}

func TestLogin(t *testing.T) {
	tests := map[string]struct {
		lines     []string
		expID     string
		expErr    string
		expOutput []string
	}{
		"first try": {
			lines:     []string{"mikkel_aarskort", "123"},
			expID:     "user-001",
			expOutput: []string{"Welcome to SkyCave!", "Trying to log in player with loginName: mikkel_aarskort"},
		},
		"second try": {
			lines:     []string{"mikkel_aarskort", "000", "", "magnus_aarskort", "312"},
			expID:     "user-002",
			expOutput: []string{"*** SORRY! The login failed. Reason: LOGIN_FAILED_UNKNOWN_SUBSCRIPTION", "Please enter a login name."},
		},
		"three failures": {
			lines:  []string{"a", "1", "b", "2", "c", "3"},
			expErr: "too many tries",
		},
		"hang up": {
			lines:  []string{"mikkel_aarskort"},
			expErr: "EOF",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			c := newConn(tt.lines...)
			p, err := Login(context.Background(), newCave(t), NewTerminal(c))
			testutil.AssertErrorContains(t, err, tt.expErr)
			if tt.expErr != "" {
				return
			}
			testutil.AssertEqual(t, "player", p.ID(), tt.expID)
			assertContains(t, c.out.String(), tt.expOutput...)
		})
	}
}

func TestRun_Session(t *testing.T) {
	c := newConn(
		"mikkel_aarskort", "123",
		"h",
		"s",
		"n",
		"p",
		"dig x somewhere",
		"dig s A muddy pit",
		"dig s Another pit",
		"who",
		"post Hello wall",
		"read",
		"upd 0 Goodbye wall",
		"upd 5 nothing",
		"read zero",
		"read",
		"change A forest with a river",
		"exec JumpCommand (0,0,0)",
		"exec",
		"sys",
		"z",
		"frobnicate",
		"l",
		"q",
	)

	err := Run(context.Background(), newCave(t), c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertContains(t, c.out.String(),
		"== Welcome to SkyCave, player Mikkel ==",
		"=== Help on the SkyCave commands. ===",
		"There is no exit going SOUTH",
		"You moved NORTH\nYou are in open forest, with a deep valley to one side.",
		"Your position in the cave is: (0,1,0)",
		"You entered an illegal direction character, must be one of (n,e,s,w,u,d).",
		"You cannot dig there as there is already a room in direction SOUTH",
		"You are: Mikkel/user-001 in Region AARHUS",
		"You posted a message.",
		" 0: [Mikkel, just now] Hello wall",
		"You changed the message.",
		"The message no is invalid. There are only 1 messages on the last read page.",
		"You have to provide a numeric parameter for page number.",
		" 0: [Mikkel, just now] Goodbye wall",
		"You cannot change the room. It was not created by you.",
		"You jumped to position: (0,0,0)",
		"Exec commands require the name of the command to run.",
		"System information:",
		"I do not understand that command. (Type 'h' for help)",
		"I do not understand that long command. (Type 'h' for help)",
		"You are standing at the end of a road before a small brick building.",
		"Logged player out, result = SUCCESS",
		"Leaving SkyCave - Goodbye.",
	)
}

func TestRun_Quote(t *testing.T) {
	c := newConn(
		"mathilde_aarskort", "321",
		"quote 7",
		"quote 16",
		"quote seven",
		"q",
	)

	if err := Run(context.Background(), newCave(t), c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertContains(t, c.out.String(),
		"The true sign of intelligence is not knowledge but imagination. - Albert Einstein",
		"*The requested quote was not found*",
		"You have to provide a numeric parameter to quote.",
	)
}

func TestRun_DigThenChange(t *testing.T) {
	c := newConn(
		"magnus_aarskort", "312",
		"dig d A damp cellar",
		"d",
		"change A dry cellar",
		"q",
	)

	if err := Run(context.Background(), newCave(t), c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertContains(t, c.out.String(),
		"You dug a new room in direction DOWN",
		"You moved DOWN\nA damp cellar",
		"You changed the room's description.",
	)
}

func TestInterpreter_SessionSuperseded(t *testing.T) {
	ctx := context.Background()
	cv := newCave(t)

	first, _, err := cv.Login(ctx, "mikkel_aarskort", "123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, _, err := cv.Login(ctx, "mikkel_aarskort", "123"); err != nil {
		t.Fatalf("second login: %v", err)
	}

	c := newConn("n", "p")
	err = NewInterpreter(cv, first, NewTerminal(c)).Run(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := c.out.String()
	assertContains(t, out, "Another session has started with the same loginID.")
	if strings.Contains(out, "Your position") {
		t.Errorf("commands ran after the session expired:\n%s", out)
	}
}

func TestInterpreter_HangUpLogsOut(t *testing.T) {
	ctx := context.Background()
	cv := newCave(t)

	p, _, err := cv.Login(ctx, "mathilde_aarskort", "321")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	c := &conn{Reader: strings.NewReader("p\n")}
	if err := NewInterpreter(cv, p, NewTerminal(c)).Run(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, result, err := cv.Login(ctx, "mathilde_aarskort", "321")
	if err != nil {
		t.Fatalf("login again: %v", err)
	}
	testutil.AssertEqual(t, "was logged out", result, game.LoginSuccess)
}
