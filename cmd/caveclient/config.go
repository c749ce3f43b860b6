package main

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/pixil98/go-cave/internal/transport"
)

// Config selects how the client reaches the cave.
type Config struct {
	Transport      string        `env:"CAVE_TRANSPORT"       envDefault:"nats"`
	NatsURL        string        `env:"CAVE_NATS_URL"        envDefault:"nats://127.0.0.1:4222"`
	NatsSubject    string        `env:"CAVE_NATS_SUBJECT"    envDefault:"cave"`
	WebSocketURL   string        `env:"CAVE_WEBSOCKET_URL"   envDefault:"ws://127.0.0.1:8080/cave"`
	RequestTimeout time.Duration `env:"CAVE_REQUEST_TIMEOUT" envDefault:"10s"`
}

// LoadConfig reads the configuration from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func (c Config) dial(ctx context.Context) (transport.Handler, error) {
	switch c.Transport {
	case "nats":
		return transport.DialNats(c.NatsURL, c.NatsSubject, transport.WithRequestTimeout(c.RequestTimeout))
	case "websocket":
		dialCtx, cancel := context.WithTimeout(ctx, c.RequestTimeout)
		defer cancel()
		return transport.DialWebSocket(dialCtx, c.WebSocketURL)
	default:
		return nil, fmt.Errorf("unknown transport %q, use nats or websocket", c.Transport)
	}
}
