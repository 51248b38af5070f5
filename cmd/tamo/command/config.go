package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-tamo/internal/game"
)

type Config struct {
	TickInterval string           `json:"tick_interval"`
	Listeners    []ListenerConfig `json:"listeners"`
	Storage      StorageConfig    `json:"storage"`
	Nats         NatsConfig       `json:"nats"`
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	if c.TickInterval != "" {
		d, err := time.ParseDuration(c.TickInterval)
		if err != nil {
			el.Add(fmt.Errorf("parsing tick_interval: %w", err))
		} else if d < time.Second {
			el.Add(fmt.Errorf("tick_interval must be at least 1 second"))
		}
	}

	for i, l := range c.Listeners {
		err := l.validate()
		if err != nil {
			el.Add(fmt.Errorf("listener %d: %w", i, err))
		}
	}

	el.Add(c.Storage.validate())
	el.Add(c.Nats.validate())

	return el.Err()
}

func (c *Config) tickInterval() time.Duration {
	if c.TickInterval == "" {
		return game.DefaultTickLength
	}
	d, err := time.ParseDuration(c.TickInterval)
	if err != nil {
		return game.DefaultTickLength
	}
	return d
}

// listeners returns the configured listeners, or the single default tcp
// listener when none are configured.
func (c *Config) listeners() []ListenerConfig {
	if len(c.Listeners) == 0 {
		return []ListenerConfig{{Protocol: ListenerTypeTcp}}
	}
	return c.Listeners
}
