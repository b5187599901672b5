// Package notify delivers missing-item reports to the outside world.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"latchkey/internal/tracker"
)

const httpTimeout = 5 * time.Second

// Webhook posts each report as JSON to a configured URL:
//
//	{"missing": ["Keys", "Wallet"], "count": 2}
//
// An empty report is still delivered; "all items accounted for" is a result,
// not a non-event.
type Webhook struct {
	url  string
	http *http.Client
}

// NewWebhook creates a webhook notifier for the given URL.
func NewWebhook(url string) *Webhook {
	return &Webhook{
		url:  url,
		http: &http.Client{Timeout: httpTimeout},
	}
}

// Notify implements tracker.Notifier.
func (w *Webhook) Notify(ctx context.Context, missing []tracker.Item) error {
	names := make([]string, len(missing))
	for i, it := range missing {
		names[i] = it.Name
	}

	body, err := json.Marshal(map[string]any{
		"missing": names,
		"count":   len(names),
	})
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("POST %s: %w", w.url, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.http.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", w.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("POST %s: status %d: %s", w.url, resp.StatusCode, data)
	}
	return nil
}
