package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"latchkey/internal/store"
	"latchkey/internal/tracker"
)

// ItemAdmin is the registry CRUD surface exposed over the API. The tracker
// core only ever reads the registry; writes are surrounding-application glue.
type ItemAdmin interface {
	RegisteredItems() ([]tracker.Item, error)
	AddItem(itemID, name string) error
	RemoveItem(itemID string) error
}

// SightingHistory exposes the persisted sighting log to the viewer routes.
type SightingHistory interface {
	Sightings(since time.Time) ([]tracker.Sighting, error)
}

// ActivityHistory exposes the severity activity log to the viewer routes.
type ActivityHistory interface {
	RecentEvents(window time.Duration) ([]store.Event, error)
}

// Server is the latchkey HTTP API server.
type Server struct {
	trk      *tracker.Tracker
	items    ItemAdmin
	history  SightingHistory
	activity ActivityHistory
	ping     func() error
	router   chi.Router
	version  string
	started  time.Time
}

// New creates a new Server around the tracker core and registry surface.
// History, activity, and ping are optional and backend-dependent; configure
// them with the setters before serving.
func New(trk *tracker.Tracker, items ItemAdmin, version string) *Server {
	s := &Server{
		trk:     trk,
		items:   items,
		version: version,
		started: time.Now(),
	}
	s.routes()
	return s
}

// SetSightingHistory enables the sighting log route.
func (s *Server) SetSightingHistory(h SightingHistory) {
	s.history = h
}

// SetActivityHistory enables the activity log route.
func (s *Server) SetActivityHistory(a ActivityHistory) {
	s.activity = a
}

// SetPing configures the storage health probe reported by /api/health.
func (s *Server) SetPing(ping func() error) {
	s.ping = ping
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Post("/sightings", s.handleIngestSighting)
		r.Get("/sightings/log", s.handleSightingLog)
		r.Post("/motion", s.handleMotion)
		r.Get("/report", s.handleReport)
		r.Get("/lastseen", s.handleLastSeen)

		r.Get("/items", s.handleListItems)
		r.Post("/items", s.handleAddItem)
		r.Delete("/items/{itemID}", s.handleRemoveItem)

		r.Get("/activity", s.handleActivity)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	storageOK := true
	if s.ping != nil && s.ping() != nil {
		storageOK = false
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"version": s.version,
		"uptime":  time.Since(s.started).Seconds(),
		"storage": storageOK,
	})
}

// unavailable reports a route whose backing isn't wired for the active
// storage backend.
func (s *Server) unavailable(w http.ResponseWriter, what string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotImplemented)
	json.NewEncoder(w).Encode(map[string]string{
		"error": what + " not available with this storage backend",
	})
}
