package messaging

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/pixil98/go-tamo/internal/commands"
	"github.com/pixil98/go-tamo/internal/creature"
	"github.com/pixil98/go-tamo/internal/game"
	"github.com/pixil98/go-tamo/internal/storage"
	"github.com/pixil98/go-testutil"
)

func TestNatsServer_PublishesStatus(t *testing.T) {
	ns, err := NewNatsServer(WithPort(server.RANDOM_PORT), WithStartTimeout(5*time.Second))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Not started yet
	err = ns.Publish(game.DefaultStatusSubject, []byte("early"))
	testutil.AssertErrorContains(t, err, "not started")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- ns.Start(ctx)
	}()

	select {
	case <-ns.Ready():
	case err := <-done:
		t.Fatalf("nats server exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("nats server not ready")
	}

	msgs := make(chan string, 4)
	unsub, err := ns.Subscribe(game.DefaultStatusSubject, func(data []byte) {
		msgs <- string(data)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer unsub()

	// Outside subscribers reach the server through ClientURL.
	ext, err := nats.Connect(ns.ClientURL())
	if err != nil {
		t.Fatalf("connecting: %v", err)
	}
	defer ext.Close()
	extMsgs := make(chan string, 4)
	_, err = ext.Subscribe(game.DefaultStatusSubject, func(msg *nats.Msg) {
		extMsgs <- string(msg.Data)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ext.Flush(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	store := storage.NewFileStore(filepath.Join(t.TempDir(), "tamo.txt"))
	h := game.NewHabitat(creature.Build("Tamo"), store, game.WithPublisher(ns, game.DefaultStatusSubject))

	status, err := h.Apply(context.Background(), commands.Play)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case got := <-msgs:
		testutil.AssertEqual(t, "published status", got, status)
	case <-time.After(5 * time.Second):
		t.Fatal("no status published")
	}
	select {
	case got := <-extMsgs:
		testutil.AssertEqual(t, "external status", got, status)
	case <-time.After(5 * time.Second):
		t.Fatal("no status received by external subscriber")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("nats server did not stop")
	}
}
