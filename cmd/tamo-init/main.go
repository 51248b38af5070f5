package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/pixil98/go-tamo/internal/creature"
	"github.com/pixil98/go-tamo/internal/storage"
)

func main() {
	err := run(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		slog.Error("initializing creature", "error", err)
		os.Exit(1)
	}
}

// run creates a fresh creature record and saves it to the selected store.
func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("tamo-init", flag.ContinueOnError)
	fs.SetOutput(out)

	name := fs.String("name", "", "name of the new creature")
	path := fs.String("path", "tamo.txt", "path of the record file or database")
	driver := fs.String("driver", "file", "storage driver: file or sqlite")
	force := fs.Bool("force", false, "overwrite an existing creature")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := validateName(*name); err != nil {
		return err
	}

	store, closer, err := openStore(*driver, *path)
	if err != nil {
		return err
	}
	if closer != nil {
		defer func() { _ = closer.Close() }()
	}

	existing, err := store.Load()
	switch {
	case err == nil && !*force:
		return fmt.Errorf("%s already holds %s, use -force to replace it", *path, existing.Name)
	case err != nil && !errors.Is(err, storage.ErrNotFound) && !errors.Is(err, storage.ErrFormat):
		return fmt.Errorf("checking existing creature: %w", err)
	}

	c := creature.Build(*name)
	if err := store.Save(c); err != nil {
		return fmt.Errorf("saving creature: %w", err)
	}

	slog.Info("creature created", "name", c.Name, "path", *path, "driver", *driver)
	return nil
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name is required")
	}
	if strings.ContainsAny(name, ",\r\n") {
		return fmt.Errorf("name %q must not contain commas or line breaks", name)
	}
	if strings.TrimSpace(name) != name {
		return fmt.Errorf("name %q must not start or end with whitespace", name)
	}
	return nil
}

func openStore(driver, path string) (storage.Storer, io.Closer, error) {
	switch driver {
	case "file":
		return storage.NewFileStore(path), nil, nil
	case "sqlite":
		s, err := storage.OpenSQLite(path)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver: %s", driver)
	}
}
