package messaging

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"

	"github.com/pixil98/go-cave/internal/transport"
)

type upper struct{}

func (upper) HandleRequest(_ context.Context, request []byte) []byte {
	return []byte(strings.ToUpper(string(request)))
}

func startServer(t *testing.T, opts ...NatsServerOpt) *NatsServer {
	t.Helper()

	opts = append([]NatsServerOpt{WithPort(-1)}, opts...)
	ns, err := NewNatsServer(opts...)
	if err != nil {
		t.Fatalf("creating nats server: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ns.Start(ctx) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("nats server stopped with error: %v", err)
			}
		case <-time.After(10 * time.Second):
			t.Error("nats server did not stop")
		}
	})

	select {
	case <-ns.Ready():
	case err := <-done:
		t.Fatalf("nats server exited early: %v", err)
	case <-time.After(10 * time.Second):
		t.Fatal("nats server not ready")
	}
	return ns
}

func TestNatsServer_RequestReply(t *testing.T) {
	ns := startServer(t, WithRequestHandler("cave", upper{}))

	client, err := transport.DialNats(ns.ClientURL(), "cave")
	if err != nil {
		t.Fatalf("dialing: %v", err)
	}
	defer func() { _ = client.Close() }()

	tests := map[string]struct {
		request string
		exp     string
	}{
		"word":  {request: "hello", exp: "HELLO"},
		"json":  {request: `{"operationName":"cave-login"}`, exp: `{"OPERATIONNAME":"CAVE-LOGIN"}`},
		"empty": {request: "", exp: ""},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			reply, err := client.Send(ctx, []byte(tt.request))
			if err != nil {
				t.Fatalf("send: %v", err)
			}
			testutil.AssertEqual(t, "reply", string(reply), tt.exp)
		})
	}
}

func TestNatsServer_NoResponder(t *testing.T) {
	ns := startServer(t)

	client, err := transport.DialNats(ns.ClientURL(), "cave", transport.WithRequestTimeout(time.Second))
	if err != nil {
		t.Fatalf("dialing: %v", err)
	}
	defer func() { _ = client.Close() }()

	_, err = client.Send(context.Background(), []byte("hello"))
	testutil.AssertErrorContains(t, err, "nats request on cave")
}

func TestNatsServer_NotStarted(t *testing.T) {
	ns, err := NewNatsServer(WithPort(-1))
	if err != nil {
		t.Fatalf("creating nats server: %v", err)
	}

	err = ns.Publish("player-user-001", []byte("x"))
	testutil.AssertErrorContains(t, err, "not started")

	_, err = ns.Subscribe("player-user-001", func([]byte) {})
	testutil.AssertErrorContains(t, err, "not started")
}

func TestNatsPublisher_PublishToPlayer(t *testing.T) {
	ns := startServer(t)

	client, err := transport.DialNats(ns.ClientURL(), "cave")
	if err != nil {
		t.Fatalf("dialing: %v", err)
	}
	defer func() { _ = client.Close() }()

	got := make(chan string, 1)
	unsubscribe, err := client.Subscribe(PlayerSubject("user-001"), func(data []byte) {
		got <- string(data)
	})
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}
	defer unsubscribe()

	// Make sure the subscription reached the server before publishing.
	if _, err := client.Send(context.Background(), nil); err == nil {
		t.Fatal("expected no responders on cave")
	}

	pub := NewNatsPublisher(ns)
	if err := pub.PublishToPlayer("user-002", []byte("not for you")); err != nil {
		t.Fatalf("publishing: %v", err)
	}
	if err := pub.PublishToPlayer("user-001", []byte("session-superseded")); err != nil {
		t.Fatalf("publishing: %v", err)
	}

	select {
	case msg := <-got:
		testutil.AssertEqual(t, "notice", msg, "session-superseded")
	case <-time.After(5 * time.Second):
		t.Fatal("no notice received")
	}
}
