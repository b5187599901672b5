package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"latchkey/internal/store"
	"latchkey/internal/tracker"
)

func (s *Server) handleIngestSighting(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Item string `json:"item"`
		Room string `json:"room"`
		RSSI *int   `json:"rssi"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	if req.Item == "" || req.Room == "" {
		http.Error(w, `{"error":"item and room required"}`, http.StatusBadRequest)
		return
	}

	s.trk.Ingest(tracker.Sighting{Item: req.Item, Room: req.Room, RSSI: req.RSSI})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleMotion(w http.ResponseWriter, r *http.Request) {
	missing, fired := s.trk.Motion(time.Now())

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"evaluated": fired,
		"missing":   displayNames(missing),
	})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	missing, err := s.trk.EvaluateExit(time.Now())
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"missing": displayNames(missing),
		"count":   len(missing),
	})
}

func (s *Server) handleLastSeen(w http.ResponseWriter, r *http.Request) {
	type recordJSON struct {
		Room      string    `json:"room"`
		Timestamp time.Time `json:"timestamp"`
		RSSI      *int      `json:"rssi,omitempty"`
	}

	seen := s.trk.Snapshot()
	out := make(map[string]recordJSON, len(seen))
	for itemID, rec := range seen {
		out[itemID] = recordJSON{Room: rec.Room, Timestamp: rec.Timestamp, RSSI: rec.RSSI}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

func (s *Server) handleSightingLog(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.unavailable(w, "sighting log")
		return
	}

	var since time.Time
	if raw := r.URL.Query().Get("since"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			http.Error(w, `{"error":"since must be RFC 3339"}`, http.StatusBadRequest)
			return
		}
		since = t
	}

	sightings, err := s.history.Sightings(since)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	type sightingJSON struct {
		Item      string    `json:"item"`
		Room      string    `json:"room"`
		Timestamp time.Time `json:"timestamp"`
		RSSI      *int      `json:"rssi,omitempty"`
	}
	out := make([]sightingJSON, len(sightings))
	for i, sg := range sightings {
		out[i] = sightingJSON{Item: sg.Item, Room: sg.Room, Timestamp: sg.Timestamp, RSSI: sg.RSSI}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"count":  len(out),
		"events": out,
	})
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.items.RegisteredItems()
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	type itemJSON struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	out := make([]itemJSON, len(items))
	for i, it := range items {
		out[i] = itemJSON{ID: it.ID, Name: it.Name}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"items": out})
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	if req.ID == "" || req.Name == "" {
		http.Error(w, `{"error":"id and name required"}`, http.StatusBadRequest)
		return
	}

	if err := s.items.AddItem(req.ID, req.Name); err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusConflict)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")

	if err := s.items.RemoveItem(itemID); err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "removed"})
}

func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	if s.activity == nil {
		s.unavailable(w, "activity log")
		return
	}

	window := store.DefaultRetention
	if raw := r.URL.Query().Get("days"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			window = time.Duration(n) * 24 * time.Hour
		}
	}

	events, err := s.activity.RecentEvents(window)
	if err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	type eventJSON struct {
		Level     string    `json:"level"`
		Message   string    `json:"message"`
		Timestamp time.Time `json:"timestamp"`
	}
	out := make([]eventJSON, len(events))
	for i, e := range events {
		out[i] = eventJSON{Level: string(e.Level), Message: e.Message, Timestamp: e.Timestamp}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"count":  len(out),
		"events": out,
	})
}

func displayNames(items []tracker.Item) []string {
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.Name
	}
	return names
}
