package messaging

import (
	"github.com/pixil98/go-cave/internal/game"
)

// PlayerSubject is the subject notices for a player are published on.
func PlayerSubject(playerID string) string {
	return "player-" + playerID
}

// NatsPublisher publishes messages to individual player NATS channels.
type NatsPublisher struct {
	server *NatsServer
}

var _ game.Publisher = (*NatsPublisher)(nil)

// NewNatsPublisher wraps a NatsServer for per-player message delivery.
func NewNatsPublisher(server *NatsServer) *NatsPublisher {
	return &NatsPublisher{server: server}
}

func (p *NatsPublisher) PublishToPlayer(playerID string, data []byte) error {
	return p.server.Publish(PlayerSubject(playerID), data)
}
