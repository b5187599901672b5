package filestore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"latchkey/internal/tracker"
)

// RegisteredItems returns the registered items in registration order. The
// file is a JSON object keyed by item id; decoding through a map would lose
// the key order the exit report depends on, so the object is walked
// token-by-token instead.
func (s *Store) RegisteredItems() ([]tracker.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readItemsLocked()
}

// AddItem registers an item, appending it to the end of the registry file.
func (s *Store) AddItem(itemID, name string) error {
	if itemID == "" || name == "" {
		return fmt.Errorf("add item: item id and name required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.readItemsLocked()
	if err != nil {
		return err
	}
	for _, it := range items {
		if it.ID == itemID {
			return fmt.Errorf("add item %s: already registered", itemID)
		}
	}
	items = append(items, tracker.Item{ID: itemID, Name: name})
	return s.writeItemsLocked(items)
}

// RemoveItem unregisters an item.
func (s *Store) RemoveItem(itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.readItemsLocked()
	if err != nil {
		return err
	}
	kept := items[:0]
	for _, it := range items {
		if it.ID != itemID {
			kept = append(kept, it)
		}
	}
	if len(kept) == len(items) {
		return fmt.Errorf("remove item %s: not registered", itemID)
	}
	return s.writeItemsLocked(kept)
}

func (s *Store) readItemsLocked() ([]tracker.Item, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, itemsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", itemsFile, err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", itemsFile, err)
	}
	if tok != json.Delim('{') {
		return nil, fmt.Errorf("parse %s: expected object, got %v", itemsFile, tok)
	}

	var items []tracker.Item
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", itemsFile, err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("parse %s: expected key, got %v", itemsFile, keyTok)
		}

		var info struct {
			Name string `json:"name"`
		}
		if err := dec.Decode(&info); err != nil {
			return nil, fmt.Errorf("parse %s entry %s: %w", itemsFile, key, err)
		}
		items = append(items, tracker.Item{ID: key, Name: info.Name})
	}
	return items, nil
}

// writeItemsLocked renders the registry by hand so the object keys keep
// registration order on disk.
func (s *Store) writeItemsLocked(items []tracker.Item) error {
	var buf bytes.Buffer
	buf.WriteString("{")
	for i, it := range items {
		if i > 0 {
			buf.WriteString(",")
		}
		buf.WriteString("\n    ")
		key, err := json.Marshal(it.ID)
		if err != nil {
			return fmt.Errorf("encode %s: %w", itemsFile, err)
		}
		val, err := json.Marshal(struct {
			Name string `json:"name"`
		}{Name: it.Name})
		if err != nil {
			return fmt.Errorf("encode %s: %w", itemsFile, err)
		}
		buf.Write(key)
		buf.WriteString(": ")
		buf.Write(val)
	}
	if len(items) > 0 {
		buf.WriteString("\n")
	}
	buf.WriteString("}")

	return s.writeFileAtomic(itemsFile, buf.Bytes())
}
