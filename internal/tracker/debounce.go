package tracker

import (
	"sync"
	"time"
)

// Debouncer gates repeated motion triggers so an exit evaluation runs at most
// once per quiet interval. Two states: Quiet, where a trigger fires, and
// Cooling, where triggers are dropped until the cooldown elapses. Initial
// state is Quiet.
type Debouncer struct {
	mu       sync.Mutex
	cooldown time.Duration
	quietAt  time.Time
}

// NewDebouncer creates a Debouncer with the given cooldown.
func NewDebouncer(cooldown time.Duration) *Debouncer {
	return &Debouncer{cooldown: cooldown}
}

// TryFire reports whether a trigger at now should fire. A firing trigger
// moves the state to Cooling until now plus the cooldown; triggers during
// Cooling return false and leave the deadline untouched.
func (d *Debouncer) TryFire(now time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if now.Before(d.quietAt) {
		return false
	}
	d.quietAt = now.Add(d.cooldown)
	return true
}
