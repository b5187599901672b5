package store

import (
	"database/sql"
	"fmt"
	"time"

	"latchkey/internal/tracker"
)

// AppendSighting appends one sighting to the log. The log is append-only;
// rowid order is arrival order.
func (db *DB) AppendSighting(s tracker.Sighting) error {
	var rssi any
	if s.RSSI != nil {
		rssi = *s.RSSI
	}
	_, err := db.Exec(`
		INSERT INTO sightings (item_id, room, timestamp, rssi) VALUES (?, ?, ?, ?)
	`, s.Item, s.Room, s.Timestamp.UTC().Format(timeLayout), rssi)
	if err != nil {
		return fmt.Errorf("append sighting for %s: %w", s.Item, err)
	}
	return nil
}

// Sightings returns logged sightings in arrival order. A non-zero since
// filters to sightings stamped at or after it.
func (db *DB) Sightings(since time.Time) ([]tracker.Sighting, error) {
	rows, err := db.Query(`SELECT item_id, room, timestamp, rssi FROM sightings ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list sightings: %w", err)
	}
	defer rows.Close()

	var sightings []tracker.Sighting
	for rows.Next() {
		var (
			s    tracker.Sighting
			ts   string
			rssi sql.NullInt64
		)
		if err := rows.Scan(&s.Item, &s.Room, &ts, &rssi); err != nil {
			return nil, fmt.Errorf("scan sighting: %w", err)
		}
		when, err := time.Parse(timeLayout, ts)
		if err != nil {
			return nil, fmt.Errorf("parse sighting timestamp for %s: %w", s.Item, err)
		}
		s.Timestamp = when
		if rssi.Valid {
			v := int(rssi.Int64)
			s.RSSI = &v
		}
		if !since.IsZero() && s.Timestamp.Before(since) {
			continue
		}
		sightings = append(sightings, s)
	}
	return sightings, rows.Err()
}
