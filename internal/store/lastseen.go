package store

import (
	"database/sql"
	"fmt"
	"time"

	"latchkey/internal/tracker"
)

// timeLayout is the persisted timestamp format: ISO-8601 with a fixed
// fraction width so lexicographic order matches time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// LoadLastSeen reads the whole last-seen record set. An empty table yields an
// empty map.
func (db *DB) LoadLastSeen() (map[string]tracker.LastSeen, error) {
	rows, err := db.Query(`SELECT item_id, room, timestamp, rssi FROM last_seen`)
	if err != nil {
		return nil, fmt.Errorf("load last seen: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]tracker.LastSeen)
	for rows.Next() {
		var (
			itemID, room, ts string
			rssi             sql.NullInt64
		)
		if err := rows.Scan(&itemID, &room, &ts, &rssi); err != nil {
			return nil, fmt.Errorf("scan last seen: %w", err)
		}
		when, err := time.Parse(timeLayout, ts)
		if err != nil {
			return nil, fmt.Errorf("parse last seen timestamp for %s: %w", itemID, err)
		}
		rec := tracker.LastSeen{Room: room, Timestamp: when}
		if rssi.Valid {
			v := int(rssi.Int64)
			rec.RSSI = &v
		}
		seen[itemID] = rec
	}
	return seen, rows.Err()
}

// SaveLastSeen replaces the whole last-seen record set in one transaction, so
// a reader never observes a partially written set.
func (db *DB) SaveLastSeen(seen map[string]tracker.LastSeen) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("save last seen: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM last_seen`); err != nil {
		tx.Rollback()
		return fmt.Errorf("clear last seen: %w", err)
	}
	for itemID, rec := range seen {
		var rssi any
		if rec.RSSI != nil {
			rssi = *rec.RSSI
		}
		if _, err := tx.Exec(`
			INSERT INTO last_seen (item_id, room, timestamp, rssi) VALUES (?, ?, ?, ?)
		`, itemID, rec.Room, rec.Timestamp.UTC().Format(timeLayout), rssi); err != nil {
			tx.Rollback()
			return fmt.Errorf("save last seen for %s: %w", itemID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit last seen: %w", err)
	}
	return nil
}
