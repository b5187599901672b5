package mqtt

import (
	"encoding/json"
	"fmt"

	"latchkey/internal/tracker"
)

// ParseSighting decodes an inbound sighting payload:
//
//	{"item": "aa:bb:cc:dd:ee:ff", "room": "Bedroom", "rssi": -61}
//
// rssi is optional. The sighting carries no timestamp; the tracker stamps it
// with the arrival time. Missing item or room is rejected here so the bad
// payload is reported against its topic, though the tracker would drop it
// anyway.
func ParseSighting(data []byte) (tracker.Sighting, error) {
	var p struct {
		Item string `json:"item"`
		Room string `json:"room"`
		RSSI *int   `json:"rssi"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return tracker.Sighting{}, fmt.Errorf("decode sighting: %w", err)
	}
	if p.Item == "" || p.Room == "" {
		return tracker.Sighting{}, fmt.Errorf("sighting missing item or room")
	}
	return tracker.Sighting{Item: p.Item, Room: p.Room, RSSI: p.RSSI}, nil
}
