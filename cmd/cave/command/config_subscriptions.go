package command

import (
	"fmt"
	"os"

	"github.com/pixil98/go-errors"

	"github.com/pixil98/go-cave/internal/subscription"
)

type SubscriptionType int

const (
	SubscriptionTypeStub SubscriptionType = iota
	SubscriptionTypeFile
)

func (st *SubscriptionType) UnmarshalText(text []byte) error {
	switch string(text) {
	case "stub":
		*st = SubscriptionTypeStub
	case "file":
		*st = SubscriptionTypeFile
	default:
		return fmt.Errorf("unknown subscription service type: %s", text)
	}
	return nil
}

type SubscriptionConfig struct {
	Type SubscriptionType `json:"type"`
	Path string           `json:"path,omitempty"`
}

func (c *SubscriptionConfig) validate() error {
	el := errors.NewErrorList()

	if c.Type == SubscriptionTypeFile {
		if c.Path == "" {
			el.Add(fmt.Errorf("subscriptions: path is required"))
		} else if _, err := os.Stat(c.Path); err != nil {
			el.Add(fmt.Errorf("subscriptions: invalid path %q: %w", c.Path, err))
		}
	}

	return el.Err()
}

func (c *SubscriptionConfig) buildService() (subscription.Service, error) {
	switch c.Type {
	case SubscriptionTypeStub:
		return subscription.NewStubService()
	case SubscriptionTypeFile:
		return subscription.NewFileService(c.Path)
	default:
		return nil, fmt.Errorf("unknown subscription service type: %v", c.Type)
	}
}
