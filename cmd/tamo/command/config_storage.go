package command

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-tamo/internal/storage"
)

const DefaultStoragePath = "tamo.txt"

type StorageDriver int

const (
	StorageDriverFile StorageDriver = iota
	StorageDriverSQLite
)

func (sd *StorageDriver) UnmarshalText(text []byte) error {
	switch string(text) {
	case "file", "":
		*sd = StorageDriverFile
	case "sqlite":
		*sd = StorageDriverSQLite
	default:
		return fmt.Errorf("unknown storage driver: %s", text)
	}
	return nil
}

type StorageConfig struct {
	Driver      StorageDriver `json:"driver"`
	Path        string        `json:"path"`
	JournalPath string        `json:"journal_path,omitempty"`
}

func (c *StorageConfig) validate() error {
	el := errors.NewErrorList()

	if c.Driver != StorageDriverFile && c.Driver != StorageDriverSQLite {
		el.Add(fmt.Errorf("storage: unknown driver %d", c.Driver))
	}

	if c.JournalPath != "" {
		dir := filepath.Dir(c.JournalPath)
		if _, err := os.Stat(dir); err != nil {
			el.Add(fmt.Errorf("storage: invalid journal_path %q: %w", c.JournalPath, err))
		}
	}

	return el.Err()
}

func (c *StorageConfig) path() string {
	if c.Path == "" {
		return DefaultStoragePath
	}
	return c.Path
}

// BuildStore opens the configured store. The returned closer is nil when the
// store holds nothing open.
func (c *StorageConfig) BuildStore() (storage.Storer, io.Closer, error) {
	switch c.Driver {
	case StorageDriverFile:
		return storage.NewFileStore(c.path()), nil, nil
	case StorageDriverSQLite:
		s, err := storage.OpenSQLite(c.path())
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		return s, s, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver: %d", c.Driver)
	}
}

// BuildJournal opens the journal, or returns nil when none is configured.
func (c *StorageConfig) BuildJournal() (*storage.Journal, error) {
	return storage.OpenJournal(c.JournalPath)
}
