package transport

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// DefaultRequestTimeout bounds a NATS request whose context has no deadline.
const DefaultRequestTimeout = 10 * time.Second

// Nats sends requests as NATS request/reply messages on one subject.
type Nats struct {
	conn    *nats.Conn
	subject string
	timeout time.Duration
}

var _ Handler = (*Nats)(nil)

type NatsOpt func(*Nats)

// WithRequestTimeout sets the timeout used when ctx has no deadline.
func WithRequestTimeout(d time.Duration) NatsOpt {
	return func(n *Nats) {
		n.timeout = d
	}
}

// DialNats connects to the NATS server at url.
func DialNats(url, subject string, opts ...NatsOpt) (*Nats, error) {
	conn, err := nats.Connect(url, nats.Name("cave-client"))
	if err != nil {
		return nil, fmt.Errorf("connecting to nats at %s: %w", url, err)
	}

	n := &Nats{
		conn:    conn,
		subject: subject,
		timeout: DefaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(n)
	}

	return n, nil
}

func (n *Nats) Send(ctx context.Context, request []byte) ([]byte, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}

	msg, err := n.conn.RequestWithContext(ctx, n.subject, request)
	if err != nil {
		return nil, fmt.Errorf("nats request on %s: %w", n.subject, err)
	}
	return msg.Data, nil
}

// Subscribe delivers the messages published on subject, e.g. the notices
// on a player's channel, until the returned function is called.
func (n *Nats) Subscribe(subject string, handler func(data []byte)) (func(), error) {
	sub, err := n.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Data)
	})
	if err != nil {
		return nil, err
	}
	return func() { _ = sub.Unsubscribe() }, nil
}

func (n *Nats) Close() error {
	n.conn.Close()
	return nil
}
