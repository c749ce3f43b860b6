// Package invoker turns wire requests into calls on the server side
// servants and their results into replies.
package invoker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pixil98/go-cave/internal/broker"
	"github.com/pixil98/go-cave/internal/game"
)

// Handler answers the requests of one operation prefix.
type Handler interface {
	Handle(ctx context.Context, req broker.Request) broker.Reply
}

// Root routes raw requests to the handler registered for the prefix of
// their operation name.
type Root struct {
	handlers map[string]Handler
}

func NewRoot() *Root {
	return &Root{handlers: map[string]Handler{}}
}

// Register routes operations starting with prefix, e.g. "cave-", to h.
func (r *Root) Register(prefix string, h Handler) error {
	if prefix == "" || broker.Prefix(prefix) != prefix {
		return fmt.Errorf("prefix %q must end in its first '-'", prefix)
	}
	if h == nil {
		return fmt.Errorf("handler for %q cannot be nil", prefix)
	}
	if _, exists := r.handlers[prefix]; exists {
		return fmt.Errorf("handler for %q already registered", prefix)
	}
	r.handlers[prefix] = h
	return nil
}

// HandleRequest decodes a request, dispatches it and encodes the reply. It
// always produces a reply; failures are reported in its status code.
func (r *Root) HandleRequest(ctx context.Context, data []byte) []byte {
	start := time.Now()

	reply := r.handle(ctx, data)

	out, err := broker.MarshalReply(reply)
	if err != nil {
		slog.ErrorContext(ctx, "encoding reply", "error", err)
		out, _ = broker.MarshalReply(broker.ErrorReply(game.StatusInternalError, "encoding reply: %v", err))
	}

	slog.DebugContext(ctx, "request handled", "status", reply.StatusCode, "took", time.Since(start))
	return out
}

func (r *Root) handle(ctx context.Context, data []byte) broker.Reply {
	req, err := broker.UnmarshalRequest(data)
	if err != nil {
		slog.WarnContext(ctx, "malformed request", "error", err)
		return broker.ErrorReply(game.StatusBadRequest, "Malformed request: %v", err)
	}

	h, ok := r.handlers[broker.Prefix(req.OperationName)]
	if !ok {
		slog.WarnContext(ctx, "unhandled request", "operation", req.OperationName)
		return unknownOperation(req.OperationName)
	}

	return h.Handle(ctx, req)
}

func unknownOperation(op string) broker.Reply {
	return broker.ErrorReply(game.StatusBadRequest, "Unhandled request, method key '%s' is unknown", op)
}
