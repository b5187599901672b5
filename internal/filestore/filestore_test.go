package filestore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"latchkey/internal/tracker"
)

func rssi(v int) *int { return &v }

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestLastSeenRoundTrip(t *testing.T) {
	s := testStore(t)

	t0 := time.Date(2026, 2, 3, 22, 45, 3, 0, time.UTC)
	in := map[string]tracker.LastSeen{
		"aa": {Room: "Bedroom", Timestamp: t0, RSSI: rssi(-61)},
		"bb": {Room: "Kitchen", Timestamp: t0.Add(time.Second)},
	}
	if err := s.SaveLastSeen(in); err != nil {
		t.Fatalf("SaveLastSeen: %v", err)
	}

	out, err := s.LoadLastSeen()
	if err != nil {
		t.Fatalf("LoadLastSeen: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("records = %d, want 2", len(out))
	}
	if out["aa"].Room != "Bedroom" || !out["aa"].Timestamp.Equal(t0) {
		t.Errorf("aa = %+v", out["aa"])
	}
	if out["bb"].RSSI != nil {
		t.Errorf("bb rssi = %v, want nil", out["bb"].RSSI)
	}
}

func TestLoadLastSeenMissingFile(t *testing.T) {
	s := testStore(t)

	out, err := s.LoadLastSeen()
	if err != nil {
		t.Fatalf("LoadLastSeen: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("records = %v, want empty", out)
	}
}

func TestLoadLastSeenCorruptFile(t *testing.T) {
	s := testStore(t)

	if err := os.WriteFile(filepath.Join(s.Dir(), lastSeenFile), []byte("{nope"), 0644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	out, err := s.LoadLastSeen()
	if err == nil {
		t.Error("corrupt file should surface an error")
	}
	if out == nil || len(out) != 0 {
		t.Errorf("records = %v, want empty map for degraded start", out)
	}
}

func TestLoadLastSeenZonelessTimestamp(t *testing.T) {
	s := testStore(t)

	// Older deployments wrote naive ISO-8601 timestamps.
	raw := `{"aa": {"room": "Bedroom", "timestamp": "2026-02-03T22:45:03.123456", "rssi": null}}`
	if err := os.WriteFile(filepath.Join(s.Dir(), lastSeenFile), []byte(raw), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	out, err := s.LoadLastSeen()
	if err != nil {
		t.Fatalf("LoadLastSeen: %v", err)
	}
	if out["aa"].Room != "Bedroom" || out["aa"].Timestamp.IsZero() {
		t.Errorf("aa = %+v", out["aa"])
	}
}

func TestAppendSightingLogShape(t *testing.T) {
	s := testStore(t)

	t0 := time.Now()
	sightings := []tracker.Sighting{
		{Item: "aa", Room: "Bedroom", Timestamp: t0, RSSI: rssi(-70)},
		{Item: "aa", Room: "Front Door", Timestamp: t0.Add(time.Second)},
	}
	for _, sg := range sightings {
		if err := s.AppendSighting(sg); err != nil {
			t.Fatalf("AppendSighting: %v", err)
		}
	}

	// The on-disk document keeps the events under an "events" list.
	data, err := os.ReadFile(filepath.Join(s.Dir(), logFile))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("parse log: %v", err)
	}
	if _, ok := doc["events"]; !ok {
		t.Fatalf("log document missing events list: %s", data)
	}

	out, err := s.Sightings(time.Time{})
	if err != nil {
		t.Fatalf("Sightings: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("sightings = %d, want 2", len(out))
	}
	if out[0].Room != "Bedroom" || out[1].Room != "Front Door" {
		t.Errorf("order = %q then %q, want Bedroom then Front Door", out[0].Room, out[1].Room)
	}
}

func TestAtomicWriteLeavesNoTempFiles(t *testing.T) {
	s := testStore(t)

	for i := 0; i < 5; i++ {
		err := s.SaveLastSeen(map[string]tracker.LastSeen{
			"aa": {Room: "Kitchen", Timestamp: time.Now()},
		})
		if err != nil {
			t.Fatalf("SaveLastSeen: %v", err)
		}
	}

	entries, err := os.ReadDir(s.Dir())
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Errorf("leftover temp file %s", e.Name())
		}
	}
}

func TestItemsRegistrationOrder(t *testing.T) {
	s := testStore(t)

	for _, it := range []tracker.Item{
		{ID: "cc", Name: "Phone"},
		{ID: "aa", Name: "Wallet"},
		{ID: "bb", Name: "Keys"},
	} {
		if err := s.AddItem(it.ID, it.Name); err != nil {
			t.Fatalf("AddItem: %v", err)
		}
	}

	items, err := s.RegisteredItems()
	if err != nil {
		t.Fatalf("RegisteredItems: %v", err)
	}
	want := []string{"Phone", "Wallet", "Keys"}
	if len(items) != len(want) {
		t.Fatalf("items = %d, want %d", len(items), len(want))
	}
	for i, name := range want {
		if items[i].Name != name {
			t.Errorf("item %d = %q, want %q (registration order)", i, items[i].Name, name)
		}
	}
}

func TestItemsAddDuplicateAndRemove(t *testing.T) {
	s := testStore(t)

	if err := s.AddItem("aa", "Wallet"); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if err := s.AddItem("aa", "Wallet again"); err == nil {
		t.Error("duplicate item id should be rejected")
	}

	if err := s.RemoveItem("aa"); err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	if err := s.RemoveItem("aa"); err == nil {
		t.Error("removing an unregistered item should error")
	}

	items, err := s.RegisteredItems()
	if err != nil {
		t.Fatalf("RegisteredItems: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("items = %v, want none", items)
	}
}

func TestRegisteredItemsHandCraftedFile(t *testing.T) {
	s := testStore(t)

	// Registry files are also edited by hand; key order is registration order.
	raw := `{
    "ff:ee:dd": {"name": "Keys", "icon": "key"},
    "aa:bb:cc": {"name": "Wallet"}
}`
	if err := os.WriteFile(filepath.Join(s.Dir(), itemsFile), []byte(raw), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	items, err := s.RegisteredItems()
	if err != nil {
		t.Fatalf("RegisteredItems: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}
	if items[0].Name != "Keys" || items[1].Name != "Wallet" {
		t.Errorf("order = %q then %q, want Keys then Wallet", items[0].Name, items[1].Name)
	}
}
