package store

import (
	"fmt"
	"log"
	"time"

	"latchkey/internal/tracker"
)

// DefaultRetention bounds how far back RecentEvents reads.
const DefaultRetention = 14 * 24 * time.Hour

// Event is one activity log entry.
type Event struct {
	ID        int64
	Level     tracker.Severity
	Message   string
	Timestamp time.Time
}

// Record implements tracker.ActivityLog. A write failure falls back to the
// process log; a broken activity log must not take ingestion down.
func (db *DB) Record(level tracker.Severity, message string) {
	_, err := db.Exec(`
		INSERT INTO events (level, event, timestamp) VALUES (?, ?, ?)
	`, string(level), message, time.Now().UnixMilli())
	if err != nil {
		log.Printf("activity log: %v (dropped %s: %s)", err, level, message)
	}
}

// RecentEvents returns activity entries within the retention window, oldest
// first. A zero window means DefaultRetention.
func (db *DB) RecentEvents(window time.Duration) ([]Event, error) {
	if window <= 0 {
		window = DefaultRetention
	}
	cutoff := time.Now().Add(-window).UnixMilli()

	rows, err := db.Query(`
		SELECT id, level, event, timestamp FROM events WHERE timestamp >= ? ORDER BY id
	`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("recent events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			e  Event
			ts int64
		)
		if err := rows.Scan(&e.ID, &e.Level, &e.Message, &ts); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Timestamp = time.UnixMilli(ts)
		events = append(events, e)
	}
	return events, rows.Err()
}
