package game

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

const (
	DefaultTickLength = time.Second * 5
)

type Ticker interface {
	Tick(context.Context) error
}

// Driver ticks its handlers on a fixed interval. When a handler reports
// ErrCreatureDead the driver stops ticking but stays up until ctx is done,
// so the rest of the server keeps running.
type Driver struct {
	tickLength time.Duration
	handlers   []Ticker
}

type DriverOpt func(*Driver)

func WithTickLength(tickLength time.Duration) DriverOpt {
	return func(d *Driver) {
		d.tickLength = tickLength
	}
}

func NewDriver(h []Ticker, opts ...DriverOpt) *Driver {
	d := &Driver{
		tickLength: DefaultTickLength,
		handlers:   h,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

func (d *Driver) Start(ctx context.Context) error {
	ticker := time.NewTicker(d.tickLength)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			err := d.Tick(ctx)
			if errors.Is(err, ErrCreatureDead) {
				ticker.Stop()
				slog.WarnContext(ctx, "decay stopped")
				<-ctx.Done()
				return nil
			}
			if err != nil {
				return err
			}
		}
	}
}

func (d *Driver) Tick(ctx context.Context) error {
	for _, m := range d.handlers {
		err := m.Tick(ctx)
		if err != nil {
			return err
		}
	}
	return nil
}
