package main

import (
	"context"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"
)

func TestLoadConfig(t *testing.T) {
	tests := map[string]struct {
		env    map[string]string
		exp    Config
		expErr string
	}{
		"defaults": {
			exp: Config{
				Transport:      "nats",
				NatsURL:        "nats://127.0.0.1:4222",
				NatsSubject:    "cave",
				WebSocketURL:   "ws://127.0.0.1:8080/cave",
				RequestTimeout: 10 * time.Second,
			},
		},
		"websocket": {
			env: map[string]string{
				"CAVE_TRANSPORT":       "websocket",
				"CAVE_WEBSOCKET_URL":   "ws://cave.example:9000/play",
				"CAVE_REQUEST_TIMEOUT": "2s",
			},
			exp: Config{
				Transport:      "websocket",
				NatsURL:        "nats://127.0.0.1:4222",
				NatsSubject:    "cave",
				WebSocketURL:   "ws://cave.example:9000/play",
				RequestTimeout: 2 * time.Second,
			},
		},
		"bad timeout": {
			env:    map[string]string{"CAVE_REQUEST_TIMEOUT": "soon"},
			expErr: "parse env",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := LoadConfig()
			testutil.AssertErrorContains(t, err, tt.expErr)
			testutil.AssertEqual(t, "config", cfg, tt.exp)
		})
	}
}

func TestConfig_Dial(t *testing.T) {
	tests := map[string]struct {
		cfg    Config
		expErr string
	}{
		"unknown transport": {
			cfg:    Config{Transport: "carrier-pigeon"},
			expErr: `unknown transport "carrier-pigeon"`,
		},
		"nats unreachable": {
			cfg:    Config{Transport: "nats", NatsURL: "nats://127.0.0.1:1", RequestTimeout: time.Second},
			expErr: "connecting to nats",
		},
		"websocket unreachable": {
			cfg:    Config{Transport: "websocket", WebSocketURL: "ws://127.0.0.1:1/cave", RequestTimeout: time.Second},
			expErr: "dialing ws://127.0.0.1:1/cave",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := tt.cfg.dial(context.Background())
			testutil.AssertErrorContains(t, err, tt.expErr)
		})
	}
}
