package command

import (
	"fmt"
	"strings"

	"github.com/pixil98/go-errors"

	"github.com/pixil98/go-cave/internal/transport"
)

type WebSocketConfig struct {
	Host string `json:"host"`
	Port uint16 `json:"port"`
	Path string `json:"path"`
}

func (c *WebSocketConfig) validate() error {
	el := errors.NewErrorList()

	if c.Port == 0 {
		el.Add(fmt.Errorf("websocket: port must be set to a positive integer"))
	}
	if c.Path != "" && !strings.HasPrefix(c.Path, "/") {
		el.Add(fmt.Errorf("websocket: path %q must start with '/'", c.Path))
	}

	return el.Err()
}

func (c *WebSocketConfig) buildServer(h transport.RequestHandler) *transport.WebSocketServer {
	path := c.Path
	if path == "" {
		path = "/cave"
	}
	return transport.NewWebSocketServer(fmt.Sprintf("%s:%d", c.Host, c.Port), path, h)
}
