package command

import (
	"context"
	"fmt"

	"github.com/pixil98/go-service"

	"github.com/pixil98/go-cave/internal/broker"
	"github.com/pixil98/go-cave/internal/cave"
	"github.com/pixil98/go-cave/internal/client"
	"github.com/pixil98/go-cave/internal/invoker"
	"github.com/pixil98/go-cave/internal/listener"
	"github.com/pixil98/go-cave/internal/messaging"
	"github.com/pixil98/go-cave/internal/transport"
)

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	store, err := cfg.Storage.buildStorage(context.Background())
	if err != nil {
		return nil, fmt.Errorf("creating storage: %w", err)
	}

	subs, err := cfg.Subscriptions.buildService()
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("creating subscription service: %w", err)
	}

	root := invoker.NewRoot()

	natsServer, err := cfg.Nats.buildNatsServer(root)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("creating nats server: %w", err)
	}

	// The cave owns the session registry and closes storage on shutdown.
	caveServant := cave.NewServant(store, subs,
		cave.WithPublisher(messaging.NewNatsPublisher(natsServer)),
	)

	err = root.Register(broker.CavePrefix, invoker.NewCaveHandler(caveServant))
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	err = root.Register(broker.PlayerPrefix, invoker.NewPlayerHandler(caveServant))
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	workers := service.WorkerList{
		"cave": caveServant,
		"nats": natsServer,
	}
	if cfg.WebSocket != nil {
		workers["websocket"] = cfg.WebSocket.buildServer(root)
	}

	// Shell players go through the same invoker as remote clients so their
	// sessions are checked the same way.
	if len(cfg.Listeners) > 0 {
		local := client.NewCaveProxy(client.NewRequestor(transport.NewLocal(root)))
		cm := listener.NewConnectionManager(local)

		listeners := make(service.WorkerList, len(cfg.Listeners))
		for i, l := range cfg.Listeners {
			lw, err := l.buildListener(cm)
			if err != nil {
				_ = store.Close()
				return nil, fmt.Errorf("creating listener %d: %w", i, err)
			}
			listeners[fmt.Sprintf("listener-%d", i)] = lw
		}
		workers["listeners"] = &listeners
	}

	return workers, nil
}
