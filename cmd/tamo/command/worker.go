package command

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/pixil98/go-service"
	"github.com/pixil98/go-tamo/internal/game"
	"github.com/pixil98/go-tamo/internal/listener"
)

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	store, storeCloser, err := cfg.Storage.BuildStore()
	if err != nil {
		return nil, fmt.Errorf("creating store: %w", err)
	}

	journal, err := cfg.Storage.BuildJournal()
	if err != nil {
		closeAll(storeCloser)
		return nil, fmt.Errorf("creating journal: %w", err)
	}
	closers := []io.Closer{storeCloser, journal}

	workers := service.WorkerList{}
	opts := []game.HabitatOpt{}
	if journal != nil {
		opts = append(opts, game.WithJournal(journal))
	}

	if cfg.Nats.Enabled {
		ns, err := cfg.Nats.buildNatsServer()
		if err != nil {
			closeAll(closers...)
			return nil, fmt.Errorf("creating nats server: %w", err)
		}
		opts = append(opts, game.WithPublisher(ns, cfg.Nats.subject()))
		workers["nats"] = ns
	}

	// A missing or malformed record is fatal here.
	habitat, err := game.LoadHabitat(store, opts...)
	if err != nil {
		closeAll(closers...)
		return nil, err
	}

	// Create Listeners
	cm := listener.NewConnectionManager(habitat)
	listeners := service.WorkerList{}
	for i, l := range cfg.listeners() {
		w, err := l.BuildListener(cm)
		if err != nil {
			closeAll(closers...)
			return nil, fmt.Errorf("creating listener %d: %w", i, err)
		}
		listeners[fmt.Sprintf("listener-%d-%s", i, l.Protocol)] = w
	}

	workers["habitat"] = &habitatWorker{
		habitat: habitat,
		closers: closers,
	}
	workers["driver"] = game.NewDriver([]game.Ticker{habitat}, game.WithTickLength(cfg.tickInterval()))
	workers["listeners"] = &listeners

	return workers, nil
}

// habitatWorker saves the creature on shutdown and then releases storage.
type habitatWorker struct {
	habitat *game.Habitat
	closers []io.Closer
}

func (w *habitatWorker) Start(ctx context.Context) error {
	err := w.habitat.Start(ctx)
	closeAll(w.closers...)
	return err
}

func closeAll(closers ...io.Closer) {
	for _, c := range closers {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil {
			slog.Warn("closing storage", "error", err)
		}
	}
}
