package game

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pixil98/go-tamo/internal/commands"
	"github.com/pixil98/go-tamo/internal/creature"
	"github.com/pixil98/go-tamo/internal/storage"
)

const DefaultStatusSubject = "tamo.status"

// Habitat is the single owner of the creature. Every read or change goes
// through its lock, and every change is persisted before the lock is
// released.
type Habitat struct {
	mu       sync.Mutex
	creature *creature.Creature

	store     storage.Storer
	journal   Recorder
	publisher Publisher
	subject   string
}

type HabitatOpt func(*Habitat)

// WithJournal records every persisted state to r.
func WithJournal(r Recorder) HabitatOpt {
	return func(h *Habitat) {
		h.journal = r
	}
}

// WithPublisher publishes the status string to subject after every persisted
// change.
func WithPublisher(p Publisher, subject string) HabitatOpt {
	return func(h *Habitat) {
		h.publisher = p
		h.subject = subject
	}
}

func NewHabitat(c *creature.Creature, store storage.Storer, opts ...HabitatOpt) *Habitat {
	h := &Habitat{
		creature: c,
		store:    store,
		subject:  DefaultStatusSubject,
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// LoadHabitat loads the persisted creature from store.
func LoadHabitat(store storage.Storer, opts ...HabitatOpt) (*Habitat, error) {
	c, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("loading creature: %w", err)
	}
	return NewHabitat(c, store, opts...), nil
}

// WithCreature runs fn with exclusive access to the creature and returns its
// result. fn must not keep the pointer after returning.
func WithCreature[T any](h *Habitat, fn func(*creature.Creature) T) T {
	h.mu.Lock()
	defer h.mu.Unlock()

	return fn(h.creature)
}

// Snapshot returns a copy of the creature.
func (h *Habitat) Snapshot() creature.Creature {
	return WithCreature(h, func(c *creature.Creature) creature.Creature {
		return *c
	})
}

// Apply runs cmd, advances time by one tick, persists, and returns the
// resulting status. The returned status always matches what was written to
// storage.
func (h *Habitat) Apply(ctx context.Context, cmd commands.Command) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	cmd.Apply(h.creature)
	h.creature.TimePass()

	err := h.persist(ctx, "command:"+cmd.Code())
	if err != nil {
		return "", err
	}

	return h.creature.Status(), nil
}

// Tick advances time by one tick and persists. Once the creature is dead the
// tick is not persisted and ErrCreatureDead is returned.
func (h *Habitat) Tick(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.creature.TimePass()
	if h.creature.IsDead() {
		slog.WarnContext(ctx, "creature died", "name", h.creature.Name)
		return ErrCreatureDead
	}

	err := h.persist(ctx, "tick")
	if err != nil {
		slog.ErrorContext(ctx, "persisting tick", "error", err)
		return nil
	}

	slog.DebugContext(ctx, "time passed", "status", h.creature.Status())
	return nil
}

// Save persists the current state without changing it.
func (h *Habitat) Save(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.persist(ctx, "save")
}

// Start blocks until ctx is done and then persists one final time.
// In-flight connections are not waited on.
func (h *Habitat) Start(ctx context.Context) error {
	status := WithCreature(h, func(c *creature.Creature) string { return c.Status() })
	slog.InfoContext(ctx, "habitat ready", "status", status)

	<-ctx.Done()

	// ctx is already canceled; keep its values for logging only.
	err := h.Save(context.WithoutCancel(ctx))
	if err != nil {
		return fmt.Errorf("final save: %w", err)
	}
	slog.InfoContext(ctx, "creature saved on shutdown")
	return nil
}

// persist must be called with h.mu held.
func (h *Habitat) persist(ctx context.Context, source string) error {
	err := h.store.Save(h.creature)
	if err != nil {
		return fmt.Errorf("saving creature: %w", err)
	}

	if h.journal != nil {
		if err := h.journal.Record(source, h.creature); err != nil {
			slog.WarnContext(ctx, "recording journal entry", "source", source, "error", err)
		}
	}

	if h.publisher != nil {
		if err := h.publisher.Publish(h.subject, []byte(h.creature.Status())); err != nil {
			slog.WarnContext(ctx, "publishing status", "subject", h.subject, "error", err)
		}
	}

	return nil
}
