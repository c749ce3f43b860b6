// Package client holds the proxies that give remote callers the game.Cave
// and game.Player interfaces over a transport.
package client

import (
	"context"
	"fmt"

	"github.com/pixil98/go-cave/internal/broker"
	"github.com/pixil98/go-cave/internal/game"
	"github.com/pixil98/go-cave/internal/transport"
)

// ReplyError is a reply whose status is not a success.
type ReplyError struct {
	Operation string
	Status    game.Status
	Message   string
	Payload   string
}

func (e *ReplyError) Error() string {
	return fmt.Sprintf("%s failed with %s: %s", e.Operation, e.Status, e.Message)
}

// Requestor marshals calls into requests and unmarshals their replies.
type Requestor struct {
	transport transport.Handler
}

func NewRequestor(h transport.Handler) *Requestor {
	return &Requestor{transport: h}
}

// SendRequestAndAwaitReply calls op on objectID with the positional args and
// decodes a successful reply into result, which may be nil. Unsuccessful
// replies are returned as *ReplyError.
func (r *Requestor) SendRequestAndAwaitReply(ctx context.Context, objectID, op string, result any, args ...any) error {
	req, err := broker.NewRequest(objectID, op, args...)
	if err != nil {
		return err
	}
	data, err := broker.MarshalRequest(req)
	if err != nil {
		return fmt.Errorf("marshalling %s: %w", op, err)
	}

	raw, err := r.transport.Send(ctx, data)
	if err != nil {
		return fmt.Errorf("sending %s: %w", op, err)
	}

	reply, err := broker.UnmarshalReply(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	status, err := reply.Status()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if !status.IsSuccess() {
		return &ReplyError{
			Operation: op,
			Status:    status,
			Message:   reply.Message(),
			Payload:   reply.Payload,
		}
	}

	if result == nil {
		return nil
	}
	if err := reply.Decode(result); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Close closes the underlying transport.
func (r *Requestor) Close() error {
	return r.transport.Close()
}
