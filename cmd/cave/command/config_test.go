package command

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/pixil98/go-testutil"

	"github.com/pixil98/go-cave/internal/game"
	"github.com/pixil98/go-cave/internal/storage/sqlite"
)

func TestConfig_Validate(t *testing.T) {
	dir := t.TempDir()

	tests := map[string]struct {
		json   string
		expErr string
	}{
		"defaults": {
			json: `{}`,
		},
		"sqlite": {
			json: `{"storage":{"type":"sqlite","path":"cave.db"},"nats":{"port":4222,"start_timeout":"5s"}}`,
		},
		"sqlite without path": {
			json:   `{"storage":{"type":"sqlite"}}`,
			expErr: "path is required for sqlite",
		},
		"file subscriptions": {
			json: `{"subscriptions":{"type":"file","path":"` + dir + `"}}`,
		},
		"missing subscription dir": {
			json:   `{"subscriptions":{"type":"file","path":"` + filepath.Join(dir, "nope") + `"}}`,
			expErr: "subscriptions: invalid path",
		},
		"bad timeout": {
			json:   `{"nats":{"start_timeout":"soon"}}`,
			expErr: "parsing start_timeout",
		},
		"bad nats port": {
			json:   `{"nats":{"port":70000}}`,
			expErr: "out of range",
		},
		"websocket without port": {
			json:   `{"websocket":{"path":"/cave"}}`,
			expErr: "port must be set",
		},
		"listeners": {
			json: `{"listeners":[{"protocol":"telnet","port":4000},{"protocol":"ssh","port":4001}]}`,
		},
		"listener without port": {
			json:   `{"listeners":[{"protocol":"telnet"}]}`,
			expErr: "listener 0: port must be set",
		},
		"telnet host key": {
			json:   `{"listeners":[{"protocol":"telnet","port":4000,"host_key_path":"key"}]}`,
			expErr: "only used by ssh listeners",
		},
		"websocket bad path": {
			json:   `{"websocket":{"port":8080,"path":"cave"}}`,
			expErr: "must start with '/'",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var cfg Config
			if err := json.Unmarshal([]byte(tt.json), &cfg); err != nil {
				t.Fatalf("unmarshalling: %v", err)
			}
			testutil.AssertErrorContains(t, cfg.Validate(), tt.expErr)
		})
	}
}

func TestConfig_UnknownTypes(t *testing.T) {
	tests := map[string]struct {
		json   string
		expErr string
	}{
		"storage":       {json: `{"storage":{"type":"redis"}}`, expErr: "unknown storage type: redis"},
		"subscriptions": {json: `{"subscriptions":{"type":"ldap"}}`, expErr: "unknown subscription service type: ldap"},
		"listener":      {json: `{"listeners":[{"protocol":"gopher","port":70}]}`, expErr: "unknown listener type: gopher"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var cfg Config
			err := json.Unmarshal([]byte(tt.json), &cfg)
			testutil.AssertErrorContains(t, err, tt.expErr)
		})
	}
}

func TestBuildWorkers(t *testing.T) {
	tests := map[string]struct {
		config     *Config
		expWorkers []string
	}{
		"memory": {
			config:     &Config{Nats: NatsConfig{Port: -1}},
			expWorkers: []string{"cave", "nats"},
		},
		"sqlite with websocket": {
			config: &Config{
				Storage:   StorageConfig{Type: StorageTypeSqlite, Path: filepath.Join(t.TempDir(), "cave.db")},
				Nats:      NatsConfig{Port: -1},
				WebSocket: &WebSocketConfig{Host: "127.0.0.1", Port: 8080},
			},
			expWorkers: []string{"cave", "nats", "websocket"},
		},
		"listeners": {
			config: &Config{
				Nats: NatsConfig{Port: -1},
				Listeners: []ListenerConfig{
					{Protocol: ListenerTypeTelnet, Port: 4000},
					{Protocol: ListenerTypeSSH, Port: 4001},
				},
			},
			expWorkers: []string{"cave", "nats", "listeners"},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			workers, err := BuildWorkers(tt.config)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "worker count", len(workers), len(tt.expWorkers))
			for _, name := range tt.expWorkers {
				if _, ok := workers[name]; !ok {
					t.Errorf("missing worker %q", name)
				}
			}
		})
	}
}

func TestBuildWorkers_WrongConfig(t *testing.T) {
	_, err := BuildWorkers(struct{}{})
	testutil.AssertErrorContains(t, err, "unable to cast config")
}

func TestBuildStorage_ClearsStaleTokens(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cave.db")

	// A server that died without shutting down leaves its sessions behind.
	crashed, err := sqlite.Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	err = crashed.UpdatePlayerRecord(ctx, game.PlayerRecord{
		ID: "user-001", Name: "Mikkel", Region: game.RegionAarhus, Position: game.Origin, AccessToken: "stale",
	})
	if err != nil {
		t.Fatalf("update player: %v", err)
	}
	if err := crashed.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	cfg := StorageConfig{Type: StorageTypeSqlite, Path: path}
	s, err := cfg.buildStorage(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	here, err := s.ComputeListOfPlayersAt(ctx, game.Origin)
	if err != nil {
		t.Fatalf("players at origin: %v", err)
	}
	testutil.AssertEqual(t, "players in cave", len(here), 0)

	rec, err := s.GetPlayerByID(ctx, "user-001")
	if err != nil {
		t.Fatalf("get player: %v", err)
	}
	testutil.AssertEqual(t, "token", rec.AccessToken, "")
	testutil.AssertEqual(t, "position kept", rec.Position, game.Origin)
}

func TestBuildWorkers_BadListener(t *testing.T) {
	dir := t.TempDir()
	storageCfg := StorageConfig{Type: StorageTypeSqlite, Path: filepath.Join(dir, "cave.db")}

	_, err := BuildWorkers(&Config{
		Storage: storageCfg,
		Nats:    NatsConfig{Port: -1},
		Listeners: []ListenerConfig{
			{Protocol: ListenerTypeSSH, Port: 4001, HostKeyPath: filepath.Join(dir, "missing_key")},
		},
	})
	testutil.AssertErrorContains(t, err, "reading host key")

	// The failed build released the database.
	workers, err := BuildWorkers(&Config{Storage: storageCfg, Nats: NatsConfig{Port: -1}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "worker count", len(workers), 2)
}
