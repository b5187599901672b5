// Package tracker implements the presence-correlation core: it folds beacon
// sightings into a last-seen record per item and, on a motion trigger at the
// exit, reports the registered items that are not currently with the user.
package tracker

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"
)

// Defaults for an unconfigured tracker. The cooldown is the logical debounce
// between exit evaluations and is deliberately larger than any hardware-level
// sensor bounce.
const (
	DefaultExitRoom    = "Front Door"
	DefaultExitTimeout = 20 * time.Second
	DefaultCooldown    = 5 * time.Second
)

// notifyTimeout bounds a single notifier delivery.
const notifyTimeout = 10 * time.Second

// Severity classifies activity log entries. One enum for every consumer;
// presentation layers must not re-derive their own labels.
type Severity string

const (
	SeverityInfo     Severity = "Info"
	SeverityWarning  Severity = "Warning"
	SeverityError    Severity = "Error"
	SeverityCritical Severity = "Critical"
)

// Sighting is one report that an item was observed in a room. Immutable once
// created.
type Sighting struct {
	Item      string
	Room      string
	Timestamp time.Time
	RSSI      *int
}

// LastSeen is the most recent qualifying sighting for an item. The exit room
// is never written here: walking past the exit sensor is not evidence the
// item is with the user.
type LastSeen struct {
	Room      string
	Timestamp time.Time
	RSSI      *int
}

// Item is a registry entry: a beacon identifier and its display name.
type Item struct {
	ID   string
	Name string
}

// StateStore persists the last-seen records. Load and Save each cover the
// whole record set as one unit. A failed or absent load degrades to empty
// state rather than refusing to start.
type StateStore interface {
	LoadLastSeen() (map[string]LastSeen, error)
	SaveLastSeen(map[string]LastSeen) error
}

// EventLog records every sighting in arrival order, exit-room sightings
// included.
type EventLog interface {
	AppendSighting(Sighting) error
}

// Registry supplies the registered items in registration order. Read-only to
// the tracker.
type Registry interface {
	RegisteredItems() ([]Item, error)
}

// ActivityLog receives diagnostics and exit-check results.
type ActivityLog interface {
	Record(sev Severity, message string)
}

// Notifier consumes a missing-items report. An empty report means all items
// are accounted for.
type Notifier interface {
	Notify(ctx context.Context, missing []Item) error
}

// Config holds the presence-correlation thresholds.
type Config struct {
	ExitRoom    string
	ExitTimeout time.Duration
	Cooldown    time.Duration
}

// Tracker correlates sightings with exit motion. Ingest and Motion are safe
// for concurrent use; sighting store mutations are serialized under one
// mutex, and EvaluateExit reads a consistent snapshot.
type Tracker struct {
	cfg      Config
	state    StateStore
	events   EventLog
	registry Registry
	activity ActivityLog
	notifier Notifier

	mu       sync.RWMutex
	lastSeen map[string]LastSeen

	debounce *Debouncer
	queue    chan envelope

	now func() time.Time
}

// New creates a Tracker backed by the given collaborators, loading any
// previously persisted last-seen state. An unreadable state store is reported
// and the tracker starts empty.
func New(cfg Config, state StateStore, events EventLog, registry Registry) *Tracker {
	if cfg.ExitRoom == "" {
		cfg.ExitRoom = DefaultExitRoom
	}
	if cfg.ExitTimeout <= 0 {
		cfg.ExitTimeout = DefaultExitTimeout
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = DefaultCooldown
	}

	t := &Tracker{
		cfg:      cfg,
		state:    state,
		events:   events,
		registry: registry,
		debounce: NewDebouncer(cfg.Cooldown),
		queue:    make(chan envelope, 64),
		now:      time.Now,
	}

	seen, err := state.LoadLastSeen()
	if err != nil {
		t.recordf(SeverityWarning, "last-seen state unavailable, starting empty: %v", err)
		seen = nil
	}
	if seen == nil {
		seen = make(map[string]LastSeen)
	}
	t.lastSeen = seen
	return t
}

// SetNotifier configures the missing-items consumer.
func (t *Tracker) SetNotifier(n Notifier) {
	t.notifier = n
}

// SetActivityLog configures the diagnostics sink. Without one, diagnostics go
// to the process log.
func (t *Tracker) SetActivityLog(a ActivityLog) {
	t.activity = a
}

// Ingest folds one sighting into the tracker. It never fails the caller:
// malformed sightings are dropped with a diagnostic, and persistence errors
// are reported without unwinding the transport. A zero Timestamp is stamped
// with the arrival time.
//
// Every well-formed sighting is appended to the event log. Only sightings
// outside the exit room replace the item's last-seen record; the newest
// arrival wins regardless of its Timestamp field.
func (t *Tracker) Ingest(s Sighting) {
	if s.Item == "" || s.Room == "" {
		t.recordf(SeverityWarning, "dropped malformed sighting (item=%q room=%q)", s.Item, s.Room)
		return
	}
	if s.Timestamp.IsZero() {
		s.Timestamp = t.now()
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.events.AppendSighting(s); err != nil {
		t.recordf(SeverityError, "append sighting for %s: %v", s.Item, err)
	}

	if s.Room == t.cfg.ExitRoom {
		return
	}

	t.lastSeen[s.Item] = LastSeen{Room: s.Room, Timestamp: s.Timestamp, RSSI: s.RSSI}
	if err := t.state.SaveLastSeen(t.snapshotLocked()); err != nil {
		t.recordf(SeverityError, "save last-seen state: %v", err)
	}
}

// EvaluateExit reports the registered items judged not currently with the
// user: items never sighted, and items whose last qualifying sighting is
// older than the exit timeout. Seen exactly at the timeout boundary counts as
// present, as does a timestamp in the future (clock skew). The report
// preserves registration order. EvaluateExit has no side effects and is safe
// to call concurrently with ingestion.
func (t *Tracker) EvaluateExit(now time.Time) ([]Item, error) {
	items, err := t.registry.RegisteredItems()
	if err != nil {
		return nil, fmt.Errorf("load registry: %w", err)
	}

	t.mu.RLock()
	seen := t.snapshotLocked()
	t.mu.RUnlock()

	missing := []Item{}
	for _, it := range items {
		rec, ok := seen[it.ID]
		if !ok {
			missing = append(missing, it)
			continue
		}
		if now.Sub(rec.Timestamp) > t.cfg.ExitTimeout {
			missing = append(missing, it)
		}
	}
	return missing, nil
}

// Motion handles one exit trigger pulse. Pulses while the debouncer is
// cooling are dropped, not queued: the report covers the first motion of an
// exit episode. An accepted pulse evaluates synchronously and hands the
// report to the notifier. The second return value reports whether the pulse
// fired an evaluation.
func (t *Tracker) Motion(now time.Time) ([]Item, bool) {
	if !t.debounce.TryFire(now) {
		return nil, false
	}

	missing, err := t.EvaluateExit(now)
	if err != nil {
		t.recordf(SeverityError, "exit evaluation failed: %v", err)
		return nil, true
	}
	t.report(missing)
	return missing, true
}

// Snapshot returns a copy of the current last-seen records.
func (t *Tracker) Snapshot() map[string]LastSeen {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snapshotLocked()
}

func (t *Tracker) snapshotLocked() map[string]LastSeen {
	seen := make(map[string]LastSeen, len(t.lastSeen))
	for id, rec := range t.lastSeen {
		seen[id] = rec
	}
	return seen
}

func (t *Tracker) report(missing []Item) {
	if len(missing) == 0 {
		t.recordf(SeverityInfo, "exit check: all items accounted for")
	} else {
		names := make([]string, len(missing))
		for i, it := range missing {
			names[i] = it.Name
		}
		t.recordf(SeverityWarning, "exit check: missing %s", strings.Join(names, ", "))
	}

	if t.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()
	if err := t.notifier.Notify(ctx, missing); err != nil {
		t.recordf(SeverityError, "notify: %v", err)
	}
}

func (t *Tracker) recordf(sev Severity, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if t.activity != nil {
		t.activity.Record(sev, msg)
		return
	}
	log.Printf("%s: %s", sev, msg)
}

// envelope is one unit of work for the coordination loop: either a sighting
// or a motion pulse.
type envelope struct {
	sighting *Sighting
	at       time.Time
}

// EnqueueSighting hands a sighting to the coordination loop without blocking
// the caller. If the queue is full the sighting is ingested inline instead of
// being dropped.
func (t *Tracker) EnqueueSighting(s Sighting) {
	if s.Timestamp.IsZero() {
		s.Timestamp = t.now()
	}
	select {
	case t.queue <- envelope{sighting: &s}:
	default:
		t.Ingest(s)
	}
}

// Pulse hands a motion trigger to the coordination loop without blocking the
// caller. The trigger carries its arrival time.
func (t *Tracker) Pulse() {
	now := t.now()
	select {
	case t.queue <- envelope{at: now}:
	default:
		t.Motion(now)
	}
}

// Run consumes the queue until ctx is cancelled. Transports that deliver via
// interrupt-style callbacks enqueue here, so sighting ingestion and trigger
// handling are serialized on a single goroutine instead of racing across
// callback contexts.
func (t *Tracker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-t.queue:
			if ev.sighting != nil {
				t.Ingest(*ev.sighting)
			} else {
				t.Motion(ev.at)
			}
		}
	}
}
