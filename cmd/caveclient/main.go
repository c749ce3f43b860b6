// Command caveclient plays the cave from a terminal. It connects to a cave
// server over NATS or WebSocket, as selected by CAVE_TRANSPORT.
package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pixil98/go-cave/internal/client"
	"github.com/pixil98/go-cave/internal/shell"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, struct {
		io.Reader
		io.Writer
	}{os.Stdin, os.Stdout}); err != nil {
		slog.Error("running client", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, rw io.ReadWriter) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}

	h, err := cfg.dial(ctx)
	if err != nil {
		return err
	}
	r := client.NewRequestor(h)
	defer func() { _ = r.Close() }()

	return shell.Run(ctx, client.NewCaveProxy(r), rw)
}
