package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"latchkey/internal/config"
	"latchkey/internal/filestore"
	"latchkey/internal/server"
	"latchkey/internal/store"
	"latchkey/internal/tracker"
)

// itemStore is the registry surface shared by both backends.
type itemStore interface {
	RegisteredItems() ([]tracker.Item, error)
	AddItem(itemID, name string) error
	RemoveItem(itemID string) error
}

// stores bundles the collaborators the active storage backend provides. db is
// non-nil only for the sqlite backend, which additionally carries the
// activity log.
type stores struct {
	state    tracker.StateStore
	events   tracker.EventLog
	registry tracker.Registry
	admin    itemStore
	history  server.SightingHistory
	db       *store.DB
}

func (s *stores) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func loadConfig() (config.Config, error) {
	path := configPath
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return config.Config{}, err
		}
	}
	return config.Load(path)
}

// openStores opens the storage backend named by the config.
func openStores(cfg config.Config) (*stores, error) {
	switch cfg.Storage.Backend {
	case "file":
		dir := cfg.Storage.Dir
		if dir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("get home dir: %w", err)
			}
			dir = filepath.Join(home, ".latchkey", "state")
		}
		fs, err := filestore.New(dir)
		if err != nil {
			return nil, fmt.Errorf("open file store: %w", err)
		}
		return &stores{state: fs, events: fs, registry: fs, admin: fs, history: fs}, nil

	case "", "sqlite":
		path := cfg.Storage.Path
		if path == "" {
			var err error
			path, err = store.DefaultDBPath()
			if err != nil {
				return nil, fmt.Errorf("resolve db path: %w", err)
			}
		}
		db, err := store.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		return &stores{state: db, events: db, registry: db, admin: db, history: db, db: db}, nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func trackerConfig(cfg config.Config) tracker.Config {
	return tracker.Config{
		ExitRoom:    cfg.Tracker.ExitRoom,
		ExitTimeout: time.Duration(cfg.Tracker.ExitTimeoutSeconds) * time.Second,
		Cooldown:    time.Duration(cfg.Tracker.CooldownSeconds) * time.Second,
	}
}
