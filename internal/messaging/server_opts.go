package messaging

import (
	"time"

	"github.com/pixil98/go-cave/internal/transport"
)

type NatsServerOpt func(*NatsServer)

// WithStartTimeout sets the startup timeout for the nats server
func WithStartTimeout(d time.Duration) NatsServerOpt {
	return func(n *NatsServer) {
		n.startupTimeout = d
	}
}

// WithHost sets the host for the nats server
func WithHost(host string) NatsServerOpt {
	return func(n *NatsServer) {
		n.host = host
	}
}

// WithPort sets the port for the nats server
func WithPort(port int) NatsServerOpt {
	return func(n *NatsServer) {
		n.port = port
	}
}

// WithRequestHandler answers NATS requests on subject once the server is up.
func WithRequestHandler(subject string, h transport.RequestHandler) NatsServerOpt {
	return func(n *NatsServer) {
		n.handlers[subject] = h
	}
}
