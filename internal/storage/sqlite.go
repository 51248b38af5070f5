package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pixil98/go-tamo/internal/creature"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore keeps the creature as the single row of the creature table.
type SQLiteStore struct {
	db *sql.DB

	mu sync.Mutex
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging sqlite database: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS creature (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		name TEXT NOT NULL,
		age REAL NOT NULL,
		hunger REAL NOT NULL,
		thirst REAL NOT NULL,
		happiness REAL NOT NULL,
		energy REAL NOT NULL,
		food INTEGER NOT NULL,
		water INTEGER NOT NULL
	);`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Save(c *creature.Creature) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO creature (id, name, age, hunger, thirst, happiness, energy, food, water)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			age = excluded.age,
			hunger = excluded.hunger,
			thirst = excluded.thirst,
			happiness = excluded.happiness,
			energy = excluded.energy,
			food = excluded.food,
			water = excluded.water
	`,
		c.Name,
		float64(c.Age), float64(c.Hunger), float64(c.Thirst), float64(c.Happiness), float64(c.Energy),
		int64(c.Room.Food), int64(c.Room.Water),
	)
	if err != nil {
		return fmt.Errorf("saving creature: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Load() (*creature.Creature, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		name                                   string
		age, hunger, thirst, happiness, energy float64
		food, water                            int64
	)
	err := s.db.QueryRow(`SELECT name, age, hunger, thirst, happiness, energy, food, water FROM creature WHERE id = 1`).
		Scan(&name, &age, &hunger, &thirst, &happiness, &energy, &food, &water)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading creature: %w", err)
	}

	return &creature.Creature{
		Name:      name,
		Age:       float32(age),
		Hunger:    float32(hunger),
		Thirst:    float32(thirst),
		Happiness: float32(happiness),
		Energy:    float32(energy),
		Room: creature.Room{
			Food:  uint32(food),
			Water: uint32(water),
		},
	}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
