// Package filestore persists tracker state as flat JSON files: last_seen.json
// keyed by item, log.json holding the sighting log under an "events" list,
// and registered_items.json keyed by item. Each file is read or rewritten
// whole. Writes land in a temp file in the same directory and are published
// by rename, so a crash mid-write never clobbers the previous good state.
package filestore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"latchkey/internal/tracker"
)

const (
	lastSeenFile = "last_seen.json"
	logFile      = "log.json"
	itemsFile    = "registered_items.json"
)

// Store is a flat-file backing for the tracker's persistence contracts.
type Store struct {
	mu  sync.Mutex
	dir string
}

// New creates (if needed) the state directory and returns a Store over it.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the state directory.
func (s *Store) Dir() string {
	return s.dir
}

type lastSeenRecord struct {
	Room      string `json:"room"`
	Timestamp string `json:"timestamp"`
	RSSI      *int   `json:"rssi"`
}

type logEntry struct {
	Item      string `json:"item"`
	Room      string `json:"room"`
	Timestamp string `json:"timestamp"`
	RSSI      *int   `json:"rssi"`
}

type logDocument struct {
	Events []logEntry `json:"events"`
}

// LoadLastSeen reads the whole last-seen record set. A missing file is an
// empty set; a corrupt file returns an error alongside an empty set so the
// caller can degrade and keep running.
func (s *Store) LoadLastSeen() (map[string]tracker.LastSeen, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]tracker.LastSeen)

	data, err := os.ReadFile(filepath.Join(s.dir, lastSeenFile))
	if err != nil {
		if os.IsNotExist(err) {
			return seen, nil
		}
		return seen, fmt.Errorf("read %s: %w", lastSeenFile, err)
	}

	var raw map[string]lastSeenRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return seen, fmt.Errorf("parse %s: %w", lastSeenFile, err)
	}

	for itemID, rec := range raw {
		when, err := parseTimestamp(rec.Timestamp)
		if err != nil {
			return seen, fmt.Errorf("parse %s timestamp for %s: %w", lastSeenFile, itemID, err)
		}
		seen[itemID] = tracker.LastSeen{Room: rec.Room, Timestamp: when, RSSI: rec.RSSI}
	}
	return seen, nil
}

// SaveLastSeen rewrites the whole last-seen record set atomically.
func (s *Store) SaveLastSeen(seen map[string]tracker.LastSeen) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw := make(map[string]lastSeenRecord, len(seen))
	for itemID, rec := range seen {
		raw[itemID] = lastSeenRecord{
			Room:      rec.Room,
			Timestamp: rec.Timestamp.Format(time.RFC3339Nano),
			RSSI:      rec.RSSI,
		}
	}

	data, err := json.MarshalIndent(raw, "", "    ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", lastSeenFile, err)
	}
	return s.writeFileAtomic(lastSeenFile, data)
}

// AppendSighting appends one sighting to the log, rewriting the whole file.
// Whole-rewrite is fine at this scale; the rename publication keeps the
// previous log intact if the rewrite dies halfway. An unreadable log restarts
// empty rather than blocking ingestion.
func (s *Store) AppendSighting(sighting tracker.Sighting) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var doc logDocument
	if data, err := os.ReadFile(filepath.Join(s.dir, logFile)); err == nil {
		_ = json.Unmarshal(data, &doc)
	}

	doc.Events = append(doc.Events, logEntry{
		Item:      sighting.Item,
		Room:      sighting.Room,
		Timestamp: sighting.Timestamp.Format(time.RFC3339Nano),
		RSSI:      sighting.RSSI,
	})

	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", logFile, err)
	}
	return s.writeFileAtomic(logFile, data)
}

// Sightings returns logged sightings in arrival order. A non-zero since
// filters to sightings stamped at or after it.
func (s *Store) Sightings(since time.Time) ([]tracker.Sighting, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(filepath.Join(s.dir, logFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", logFile, err)
	}

	var doc logDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", logFile, err)
	}

	var sightings []tracker.Sighting
	for _, e := range doc.Events {
		when, err := parseTimestamp(e.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("parse %s timestamp for %s: %w", logFile, e.Item, err)
		}
		if !since.IsZero() && when.Before(since) {
			continue
		}
		sightings = append(sightings, tracker.Sighting{
			Item:      e.Item,
			Room:      e.Room,
			Timestamp: when,
			RSSI:      e.RSSI,
		})
	}
	return sightings, nil
}

// parseTimestamp accepts RFC 3339 and the zone-less ISO-8601 form older
// deployments wrote.
func parseTimestamp(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02T15:04:05.999999999", value)
}

func (s *Store) writeFileAtomic(name string, data []byte) error {
	path := filepath.Join(s.dir, name)
	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", name, err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("publish %s: %w", name, err)
	}
	return nil
}
