package mqtt

import (
	"testing"
)

func TestParseSighting(t *testing.T) {
	s, err := ParseSighting([]byte(`{"item": "aa:bb:cc", "room": "Bedroom", "rssi": -61}`))
	if err != nil {
		t.Fatalf("ParseSighting: %v", err)
	}
	if s.Item != "aa:bb:cc" || s.Room != "Bedroom" {
		t.Errorf("sighting = %+v", s)
	}
	if s.RSSI == nil || *s.RSSI != -61 {
		t.Errorf("rssi = %v, want -61", s.RSSI)
	}
	if !s.Timestamp.IsZero() {
		t.Errorf("timestamp = %v, want zero (stamped at ingest)", s.Timestamp)
	}
}

func TestParseSightingNoRSSI(t *testing.T) {
	s, err := ParseSighting([]byte(`{"item": "aa", "room": "Kitchen"}`))
	if err != nil {
		t.Fatalf("ParseSighting: %v", err)
	}
	if s.RSSI != nil {
		t.Errorf("rssi = %v, want nil", s.RSSI)
	}
}

func TestParseSightingRejectsMalformed(t *testing.T) {
	cases := []struct {
		name    string
		payload string
	}{
		{"bad json", `{nope`},
		{"missing item", `{"room": "Kitchen"}`},
		{"missing room", `{"item": "aa"}`},
		{"empty fields", `{"item": "", "room": ""}`},
	}
	for _, tc := range cases {
		if _, err := ParseSighting([]byte(tc.payload)); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}
