package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"latchkey/internal/store"
	"latchkey/internal/tracker"
)

func testServer(t *testing.T) (*Server, *store.DB) {
	t.Helper()
	db, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cfg := tracker.Config{ExitTimeout: 20 * time.Second, Cooldown: 3 * time.Second}
	trk := tracker.New(cfg, db, db, db)
	trk.SetActivityLog(db)

	srv := New(trk, db, "test-version")
	srv.SetSightingHistory(db)
	srv.SetActivityHistory(db)
	srv.SetPing(db.Ping)
	return srv, db
}

// doJSON runs one request against the server and decodes the JSON response.
func doJSON(t *testing.T, srv *Server, method, path, body string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	decoded := map[string]any{}
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("decode %s %s response %q: %v", method, path, w.Body.String(), err)
		}
	}
	return w.Code, decoded
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := testServer(t)

	req := httptest.NewRequest("GET", "/api/health", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %v, want ok", body["status"])
	}
	if body["version"] != "test-version" {
		t.Errorf("version = %v, want test-version", body["version"])
	}
	if body["storage"] != true {
		t.Errorf("storage = %v, want true", body["storage"])
	}
}

func TestUnavailableRoutesWithoutHistory(t *testing.T) {
	db, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	trk := tracker.New(tracker.Config{}, db, db, db)
	srv := New(trk, db, "test-version")

	for _, path := range []string{"/api/sightings/log", "/api/activity"} {
		req := httptest.NewRequest("GET", path, nil)
		w := httptest.NewRecorder()
		srv.ServeHTTP(w, req)
		if w.Code != http.StatusNotImplemented {
			t.Errorf("%s status = %d, want %d", path, w.Code, http.StatusNotImplemented)
		}
	}
}
