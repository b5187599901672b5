package store

import (
	"fmt"
	"time"

	"latchkey/internal/tracker"
)

// AddItem registers an item. Registration order is preserved through the
// rowid, which is what the exit report is ordered by.
func (db *DB) AddItem(itemID, name string) error {
	if itemID == "" || name == "" {
		return fmt.Errorf("add item: item id and name required")
	}
	_, err := db.Exec(`
		INSERT INTO items (item_id, name, created_at) VALUES (?, ?, ?)
	`, itemID, name, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("add item %s: %w", itemID, err)
	}
	return nil
}

// RemoveItem unregisters an item.
func (db *DB) RemoveItem(itemID string) error {
	res, err := db.Exec(`DELETE FROM items WHERE item_id = ?`, itemID)
	if err != nil {
		return fmt.Errorf("remove item %s: %w", itemID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("remove item %s: not registered", itemID)
	}
	return nil
}

// RegisteredItems returns all registered items in registration order.
func (db *DB) RegisteredItems() ([]tracker.Item, error) {
	rows, err := db.Query(`SELECT item_id, name FROM items ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []tracker.Item
	for rows.Next() {
		var it tracker.Item
		if err := rows.Scan(&it.ID, &it.Name); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
