package command

import (
	"fmt"

	"github.com/pixil98/go-errors"
)

type Config struct {
	Storage       StorageConfig      `json:"storage"`
	Subscriptions SubscriptionConfig `json:"subscriptions"`
	Nats          NatsConfig         `json:"nats"`
	WebSocket     *WebSocketConfig   `json:"websocket,omitempty"`
	Listeners     []ListenerConfig   `json:"listeners"`
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	el.Add(c.Storage.validate())
	el.Add(c.Subscriptions.validate())
	el.Add(c.Nats.validate())
	if c.WebSocket != nil {
		el.Add(c.WebSocket.validate())
	}

	for i, l := range c.Listeners {
		err := l.validate()
		if err != nil {
			el.Add(fmt.Errorf("listener %d: %w", i, err))
		}
	}

	return el.Err()
}
