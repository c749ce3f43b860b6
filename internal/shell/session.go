package shell

import (
	"context"
	"io"

	"github.com/pixil98/go-cave/internal/game"
)

// Run logs a player in over rw and runs their commands until they leave.
func Run(ctx context.Context, cave game.Cave, rw io.ReadWriter) error {
	t := NewTerminal(rw)

	p, err := Login(ctx, cave, t)
	if err != nil {
		return err
	}

	return NewInterpreter(cave, p, t).Run(ctx)
}
