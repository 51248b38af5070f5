package session

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/pixil98/go-tamo/internal/creature"
	"github.com/pixil98/go-tamo/internal/game"
	"github.com/pixil98/go-tamo/internal/storage"
	"github.com/pixil98/go-testutil"
)

var errMockWrite = errors.New("broken pipe")

// mockReadWriter implements io.ReadWriter for testing sessions
type mockReadWriter struct {
	readBuf  *bytes.Buffer
	writeBuf *bytes.Buffer
	writeErr error
}

func newMockReadWriter(input string) *mockReadWriter {
	return &mockReadWriter{
		readBuf:  bytes.NewBufferString(input),
		writeBuf: &bytes.Buffer{},
	}
}

func (m *mockReadWriter) Read(p []byte) (n int, err error) {
	return m.readBuf.Read(p)
}

func (m *mockReadWriter) Write(p []byte) (n int, err error) {
	if m.writeErr != nil {
		return 0, m.writeErr
	}
	return m.writeBuf.Write(p)
}

type failingStore struct{}

func (failingStore) Save(*creature.Creature) error {
	return errors.New("disk full")
}

func (failingStore) Load() (*creature.Creature, error) {
	return creature.Build("Tamo"), nil
}

func newFileHabitat(t *testing.T) (*game.Habitat, *storage.FileStore) {
	t.Helper()
	store := storage.NewFileStore(filepath.Join(t.TempDir(), "tamo.txt"))
	return game.NewHabitat(creature.Build("Tamo"), store), store
}

func TestSession_Run(t *testing.T) {
	h, store := newFileHabitat(t)
	rw := newMockReadWriter("Q\nF\nP\n")

	err := NewSession(rw, h).Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	exp := creature.Build("Tamo")
	var lines []string
	for _, op := range []func(*creature.Creature){(*creature.Creature).Quench, (*creature.Creature).Feed, (*creature.Creature).Play} {
		op(exp)
		exp.TimePass()
		lines = append(lines, strconv.Quote(exp.Status()))
	}

	testutil.AssertEqual(t, "output", rw.writeBuf.String(), strings.Join(lines, "\n")+"\n")

	persisted, err := store.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "persisted", *persisted, *exp)

	// quench, feed, play: one step each plus three ticks
	snap := h.Snapshot()
	testutil.AssertEqual(t, "food", snap.Room.Food, uint32(100))
	if snap.Thirst < 9.0 || snap.Thirst > 9.1 {
		t.Errorf("thirst = %v, expected about 9.06", snap.Thirst)
	}
	if snap.Hunger < 9.0 || snap.Hunger > 9.1 {
		t.Errorf("hunger = %v, expected about 9.03", snap.Hunger)
	}
	if snap.Happiness < 109.8 || snap.Happiness > 109.9 {
		t.Errorf("happiness = %v, expected about 109.85", snap.Happiness)
	}
	if snap.Energy < 84.8 || snap.Energy > 84.9 {
		t.Errorf("energy = %v, expected about 84.85", snap.Energy)
	}
}

func TestSession_Run_Responses(t *testing.T) {
	status := func(ops ...func(*creature.Creature)) string {
		c := creature.Build("Tamo")
		for _, op := range ops {
			op(c)
			c.TimePass()
		}
		return strconv.Quote(c.Status()) + "\n"
	}

	tests := map[string]struct {
		input  string
		exp    string
		expErr string
	}{
		"unknown command": {
			input: "X\n",
			exp:   "\"\"\n",
		},
		"empty line": {
			input: "\n",
			exp:   "\"\"\n",
		},
		"unknown does not tick": {
			input: "hello\nF\n",
			exp:   "\"\"\n" + status((*creature.Creature).Feed),
		},
		"crlf": {
			input: "P\r\n",
			exp:   status((*creature.Creature).Play),
		},
		"last line without newline": {
			input: "F",
			exp:   status((*creature.Creature).Feed),
		},
		"no input": {
			input: "",
			exp:   "",
		},
		"invalid utf8": {
			input:  "\xff\xfe\nF\n",
			exp:    "",
			expErr: "valid UTF-8",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			h, _ := newFileHabitat(t)
			rw := newMockReadWriter(tt.input)

			err := NewSession(rw, h).Run(context.Background())

			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "output", rw.writeBuf.String(), tt.exp)
		})
	}
}

func TestSession_Run_SaveError(t *testing.T) {
	h := game.NewHabitat(creature.Build("Tamo"), failingStore{})
	rw := newMockReadWriter("X\nF\nP\n")

	err := NewSession(rw, h).Run(context.Background())

	testutil.AssertErrorContains(t, err, "applying feed")
	testutil.AssertEqual(t, "output", rw.writeBuf.String(), "\"\"\n")
}

func TestSession_Run_WriteError(t *testing.T) {
	h, _ := newFileHabitat(t)
	rw := newMockReadWriter("F\nF\n")
	rw.writeErr = errMockWrite

	err := NewSession(rw, h).Run(context.Background())

	if !errors.Is(err, errMockWrite) {
		t.Fatalf("expected write error, got %v", err)
	}
	// the first command was applied before the write failed
	exp := creature.Build("Tamo")
	exp.Feed()
	exp.TimePass()
	testutil.AssertEqual(t, "creature", h.Snapshot(), *exp)
}

func TestNewSession_UniqueIds(t *testing.T) {
	h, _ := newFileHabitat(t)
	a := NewSession(newMockReadWriter(""), h)
	b := NewSession(newMockReadWriter(""), h)

	if a.Id() == "" || a.Id() == b.Id() {
		t.Errorf("expected distinct non-empty ids, got %q and %q", a.Id(), b.Id())
	}
}
