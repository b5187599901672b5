package store

import (
	"fmt"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "items: registered item catalog",
		SQL: `
CREATE TABLE items (
    id         INTEGER PRIMARY KEY,
    item_id    TEXT NOT NULL UNIQUE,
    name       TEXT NOT NULL,
    created_at INTEGER NOT NULL
);
`,
	},
	{
		Version:     2,
		Description: "last_seen: most recent qualifying sighting per item",
		SQL: `
CREATE TABLE last_seen (
    item_id   TEXT PRIMARY KEY,
    room      TEXT NOT NULL,
    timestamp TEXT NOT NULL,
    rssi      INTEGER
);
`,
	},
	{
		Version:     3,
		Description: "sightings: append-only sighting log",
		SQL: `
CREATE TABLE sightings (
    id        INTEGER PRIMARY KEY,
    item_id   TEXT NOT NULL,
    room      TEXT NOT NULL,
    timestamp TEXT NOT NULL,
    rssi      INTEGER
);

CREATE INDEX idx_sightings_item ON sightings(item_id);
`,
	},
	{
		Version:     4,
		Description: "events: severity-tagged activity log",
		SQL: `
CREATE TABLE events (
    id        INTEGER PRIMARY KEY,
    level     TEXT NOT NULL CHECK (level IN ('Info', 'Warning', 'Error', 'Critical')),
    event     TEXT NOT NULL,
    timestamp INTEGER NOT NULL
);

CREATE INDEX idx_events_timestamp ON events(timestamp DESC);
`,
	},
}

func (db *DB) migrate() error {
	// Create schema_versions table if it doesn't exist
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_versions (
			version     INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at  INTEGER NOT NULL DEFAULT (strftime('%s', 'now') * 1000)
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_versions: %w", err)
	}

	for _, m := range migrations {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM schema_versions WHERE version = ?", m.Version).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %d: %w", m.Version, err)
		}
		if count > 0 {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}

		if _, err := tx.Exec(
			"INSERT INTO schema_versions (version, description) VALUES (?, ?)",
			m.Version, m.Description,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}

// SchemaVersion returns the current schema version.
func (db *DB) SchemaVersion() (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_versions").Scan(&version)
	return version, err
}
