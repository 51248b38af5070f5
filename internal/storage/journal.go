package storage

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/pixil98/go-tamo/internal/creature"
)

// JournalEntry is one row of the journal CSV.
type JournalEntry struct {
	Timestamp string `csv:"timestamp"`
	Source    string `csv:"source"`
	Name      string `csv:"name"`
	Age       string `csv:"age"`
	Hunger    string `csv:"hunger"`
	Thirst    string `csv:"thirst"`
	Happiness string `csv:"happiness"`
	Energy    string `csv:"energy"`
	Food      uint32 `csv:"food"`
	Water     uint32 `csv:"water"`
}

// Journal appends a CSV row for every persisted change to the creature.
type Journal struct {
	file          *os.File
	headerWritten bool
	now           func() time.Time

	mu sync.Mutex
}

// OpenJournal opens path for appending. Returns nil if path is empty
// (journal disabled); a nil *Journal ignores all records.
func OpenJournal(path string) (*Journal, error) {
	if path == "" {
		return nil, nil
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening journal %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("stat journal %s: %w", path, err)
	}

	return &Journal{
		file:          f,
		headerWritten: info.Size() > 0,
		now:           time.Now,
	}, nil
}

// Record appends the creature's current state, tagged with what changed it.
func (j *Journal) Record(source string, c *creature.Creature) error {
	if j == nil {
		return nil
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	records := []JournalEntry{{
		Timestamp: j.now().UTC().Format(time.RFC3339Nano),
		Source:    source,
		Name:      c.Name,
		Age:       creature.FormatStat(c.Age),
		Hunger:    creature.FormatStat(c.Hunger),
		Thirst:    creature.FormatStat(c.Thirst),
		Happiness: creature.FormatStat(c.Happiness),
		Energy:    creature.FormatStat(c.Energy),
		Food:      c.Room.Food,
		Water:     c.Room.Water,
	}}

	if !j.headerWritten {
		if err := gocsv.Marshal(records, j.file); err != nil {
			return fmt.Errorf("writing journal: %w", err)
		}
		j.headerWritten = true
		return nil
	}

	if err := gocsv.MarshalWithoutHeaders(records, j.file); err != nil {
		return fmt.Errorf("writing journal: %w", err)
	}
	return nil
}

func (j *Journal) Close() error {
	if j == nil {
		return nil
	}
	return j.file.Close()
}

// ReadJournal loads every entry from a journal file.
func ReadJournal(path string) ([]JournalEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening journal %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var entries []JournalEntry
	if err := gocsv.UnmarshalFile(f, &entries); err != nil {
		return nil, fmt.Errorf("reading journal: %w", err)
	}
	return entries, nil
}
