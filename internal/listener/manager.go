// Package listener lets players reach the cave with a plain telnet or ssh
// client. Every connection runs the text shell against a game.Cave.
package listener

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/pixil98/go-cave/internal/game"
	"github.com/pixil98/go-cave/internal/shell"
)

type ConnectionManager struct {
	cave   game.Cave
	active atomic.Int64
}

func NewConnectionManager(c game.Cave) *ConnectionManager {
	return &ConnectionManager{
		cave: c,
	}
}

func (m *ConnectionManager) AcceptConnection(ctx context.Context, conn io.ReadWriter) {
	m.active.Add(1)
	defer m.active.Add(-1)

	err := shell.Run(ctx, m.cave, newLineEndings(conn))
	switch {
	case err == nil, errors.Is(err, io.EOF):
	case errors.Is(err, shell.ErrTooManyTries):
		slog.InfoContext(ctx, "connection gave up logging in")
	default:
		slog.WarnContext(ctx, "shell session", "error", err)
	}
}

// Active is the number of connections currently running a shell.
func (m *ConnectionManager) Active() int {
	return int(m.active.Load())
}
