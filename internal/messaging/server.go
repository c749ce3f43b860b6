// Package messaging runs the embedded NATS server the cave is reachable
// over and publishes notices on per player subjects.
package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"

	"github.com/pixil98/go-cave/internal/transport"
)

// queueGroup spreads requests across every cave server on the subject.
const queueGroup = "cave-servers"

type NatsServer struct {
	ns   *server.Server
	conn *nats.Conn

	startupTimeout time.Duration
	host           string
	port           int
	handlers       map[string]transport.RequestHandler

	ready     chan struct{}
	readyOnce sync.Once

	mu       sync.RWMutex
	closing  bool
	inflight sync.WaitGroup
}

func NewNatsServer(opts ...NatsServerOpt) (*NatsServer, error) {
	s := &NatsServer{
		startupTimeout: 10 * time.Second,
		host:           "127.0.0.1",
		handlers:       map[string]transport.RequestHandler{},
		ready:          make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	ns, err := server.NewServer(&server.Options{
		Host:   s.host,
		Port:   s.port,
		NoSigs: true, // Let the application handle signals
	})
	if err != nil {
		return nil, err
	}
	s.ns = ns

	return s, nil
}

func (n *NatsServer) Start(ctx context.Context) error {
	n.ns.Start()

	if !n.ns.ReadyForConnections(n.startupTimeout) {
		n.ns.Shutdown()
		return fmt.Errorf("nats server not ready for connections")
	}

	// Create internal client connection
	conn, err := nats.Connect(n.ns.ClientURL(), nats.Name("cave-server"))
	if err != nil {
		n.ns.Shutdown()
		return fmt.Errorf("creating nats client connection: %w", err)
	}
	n.conn = conn

	for subject, h := range n.handlers {
		if err := n.serve(ctx, subject, h); err != nil {
			n.shutdown()
			return fmt.Errorf("serving %s: %w", subject, err)
		}
	}

	slog.InfoContext(ctx, "nats server listening", "addr", n.ns.Addr(), "subjects", len(n.handlers))
	n.readyOnce.Do(func() { close(n.ready) })

	<-ctx.Done()
	n.shutdown()

	return nil
}

func (n *NatsServer) shutdown() {
	n.mu.Lock()
	n.closing = true
	n.mu.Unlock()

	n.inflight.Wait()
	n.conn.Close()
	n.ns.Shutdown()
	n.ns.WaitForShutdown()
}

// serve answers every request on subject with h. Requests are handled
// concurrently.
func (n *NatsServer) serve(ctx context.Context, subject string, h transport.RequestHandler) error {
	_, err := n.conn.QueueSubscribe(subject, queueGroup, func(msg *nats.Msg) {
		if msg.Reply == "" {
			slog.WarnContext(ctx, "dropping nats message without reply subject", "subject", subject)
			return
		}

		n.mu.RLock()
		defer n.mu.RUnlock()
		if n.closing {
			return
		}

		n.inflight.Add(1)
		go func() {
			defer n.inflight.Done()
			if err := msg.Respond(h.HandleRequest(ctx, msg.Data)); err != nil {
				slog.WarnContext(ctx, "responding to nats request", "subject", subject, "error", err)
			}
		}()
	})
	return err
}

// Ready is closed once the server accepts connections and its request
// handlers are subscribed.
func (n *NatsServer) Ready() <-chan struct{} {
	return n.ready
}

// ClientURL is the url clients connect to. Valid once Ready is closed.
func (n *NatsServer) ClientURL() string {
	return n.ns.ClientURL()
}

// Subscribe creates a subscription on the given subject.
// The handler is called for each message received.
// Returns an unsubscribe function to remove the subscription.
func (n *NatsServer) Subscribe(subject string, handler func(data []byte)) (func(), error) {
	if n.conn == nil {
		return nil, fmt.Errorf("nats server not started")
	}
	sub, err := n.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Data)
	})
	if err != nil {
		return nil, err
	}
	return func() { _ = sub.Unsubscribe() }, nil
}

// Publish sends a message to the given subject
func (n *NatsServer) Publish(subject string, data []byte) error {
	if n.conn == nil {
		return fmt.Errorf("nats server not started")
	}
	return n.conn.Publish(subject, data)
}
