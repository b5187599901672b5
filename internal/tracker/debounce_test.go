package tracker

import (
	"testing"
	"time"
)

func TestDebouncerInitialStateQuiet(t *testing.T) {
	d := NewDebouncer(3 * time.Second)
	if !d.TryFire(time.Now()) {
		t.Fatal("first trigger must fire")
	}
}

func TestDebouncerCooling(t *testing.T) {
	d := NewDebouncer(3 * time.Second)
	t0 := time.Now()

	if !d.TryFire(t0) {
		t.Fatal("first trigger must fire")
	}
	if d.TryFire(t0.Add(time.Second)) {
		t.Error("trigger during cooldown must be dropped")
	}
	if d.TryFire(t0.Add(2999 * time.Millisecond)) {
		t.Error("trigger just inside the cooldown must be dropped")
	}
	if !d.TryFire(t0.Add(3 * time.Second)) {
		t.Error("trigger at the cooldown boundary must fire")
	}
}

func TestDebouncerDroppedTriggersDoNotExtendCooldown(t *testing.T) {
	d := NewDebouncer(3 * time.Second)
	t0 := time.Now()

	d.TryFire(t0)
	// A flurry of footsteps during the cooldown.
	for i := 1; i <= 5; i++ {
		d.TryFire(t0.Add(time.Duration(i) * 500 * time.Millisecond))
	}
	if !d.TryFire(t0.Add(3 * time.Second)) {
		t.Error("dropped triggers must not push the quiet deadline out")
	}
}
