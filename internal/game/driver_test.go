package game

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pixil98/go-tamo/internal/creature"
	"github.com/pixil98/go-testutil"
)

type mockTicker struct {
	err error
}

func (m *mockTicker) Tick(context.Context) error {
	return m.err
}

func TestDriver_StopsTickingOnDeath(t *testing.T) {
	c := creature.Build("Tamo")
	c.Energy = 1.12
	store := &mockStore{}
	h := NewHabitat(c, store)

	d := NewDriver([]Ticker{h}, WithTickLength(5*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- d.Start(ctx)
	}()

	time.Sleep(150 * time.Millisecond)

	exp := creature.Build("Tamo")
	exp.Energy = 1.12
	for range 3 {
		exp.TimePass()
	}

	testutil.AssertEqual(t, "creature", h.Snapshot(), *exp)
	testutil.AssertEqual(t, "dead", exp.IsDead(), true)
	testutil.AssertEqual(t, "saves", len(store.Saved()), 2)

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("driver did not stop")
	}
}

func TestDriver_Start_Error(t *testing.T) {
	errBoom := errors.New("boom")
	d := NewDriver([]Ticker{&mockTicker{err: errBoom}}, WithTickLength(time.Millisecond))

	err := d.Start(context.Background())
	if !errors.Is(err, errBoom) {
		t.Errorf("expected boom, got %v", err)
	}
}

func TestDriver_Start_Canceled(t *testing.T) {
	d := NewDriver([]Ticker{&mockTicker{}}, WithTickLength(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := d.Start(ctx); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
