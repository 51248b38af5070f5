package storage

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/pixil98/go-tamo/internal/creature"
)

var (
	ErrNotFound = errors.New("creature record not found")
	ErrFormat   = errors.New("invalid creature record format")
)

const recordFields = 8

// Storer persists the single creature.
type Storer interface {
	Save(*creature.Creature) error
	Load() (*creature.Creature, error)
}

// FileStore keeps the creature as one comma separated line in a text file.
// Every save truncates and rewrites the whole file.
type FileStore struct {
	path string

	mu sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Save(c *creature.Creature) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", s.path, err)
	}

	_, err = f.WriteString(EncodeRecord(c))
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("writing %s: %w", s.path, err)
	}

	return f.Close()
}

func (s *FileStore) Load() (*creature.Creature, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, s.path)
		}
		return nil, fmt.Errorf("opening file: %w", err)
	}

	// Ignoring close error - file is read-only, error is not actionable
	defer func() { _ = file.Close() }()

	line, err := bufio.NewReader(file).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	return DecodeRecord(line)
}

// EncodeRecord renders the eight persisted fields in order:
// name, age, hunger, thirst, happiness, energy, food, water.
func EncodeRecord(c *creature.Creature) string {
	return strings.Join([]string{
		c.Name,
		creature.FormatStat(c.Age),
		creature.FormatStat(c.Hunger),
		creature.FormatStat(c.Thirst),
		creature.FormatStat(c.Happiness),
		creature.FormatStat(c.Energy),
		strconv.FormatUint(uint64(c.Room.Food), 10),
		strconv.FormatUint(uint64(c.Room.Water), 10),
	}, ",") + "\n"
}

// DecodeRecord parses a record line. Whitespace around fields is ignored.
// A numeric field that fails to parse loads as zero rather than failing the
// whole record.
func DecodeRecord(line string) (*creature.Creature, error) {
	parts := strings.Split(strings.TrimSpace(line), ",")
	if len(parts) != recordFields {
		return nil, fmt.Errorf("%w: expected %d fields, got %d", ErrFormat, recordFields, len(parts))
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	return &creature.Creature{
		Name:      parts[0],
		Age:       parseStat("age", parts[1]),
		Hunger:    parseStat("hunger", parts[2]),
		Thirst:    parseStat("thirst", parts[3]),
		Happiness: parseStat("happiness", parts[4]),
		Energy:    parseStat("energy", parts[5]),
		Room: creature.Room{
			Food:  parseStock("food", parts[6]),
			Water: parseStock("water", parts[7]),
		},
	}, nil
}

// parseStat reads a decimal float. Values too large for a float32 load as
// infinity; hexadecimal forms are not part of the record format.
func parseStat(field, raw string) float32 {
	if strings.ContainsAny(raw, "xX") {
		slog.Warn("defaulting unparseable field to zero", "field", field, "value", raw)
		return 0
	}
	v, err := strconv.ParseFloat(raw, 32)
	if errors.Is(err, strconv.ErrRange) {
		return float32(v)
	}
	if err != nil {
		slog.Warn("defaulting unparseable field to zero", "field", field, "value", raw)
		return 0
	}
	return float32(v)
}

func parseStock(field, raw string) uint32 {
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		slog.Warn("defaulting unparseable field to zero", "field", field, "value", raw)
		return 0
	}
	return uint32(v)
}
