package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/nholt/grocerly/internal/model"
)

// GroceryStore persists grocery stores and their items.
type GroceryStore struct {
	db *sql.DB
}

func NewGroceryStore(db *sql.DB) *GroceryStore {
	return &GroceryStore{db: db}
}

// --- Store methods ---

func scanStore(scanner interface{ Scan(...any) error }) (*model.GroceryStore, error) {
	var st model.GroceryStore
	err := scanner.Scan(&st.ID, &st.Title, &st.Address, &st.CreatedAt, &st.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

const storeCols = `id, title, address, created_at, updated_at`

func (s *GroceryStore) CreateStore(title, address string) (*model.GroceryStore, error) {
	result, err := s.db.Exec(
		`INSERT INTO grocery_stores (title, address) VALUES (?, ?)`,
		title, address,
	)
	if err != nil {
		return nil, fmt.Errorf("insert store: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetStoreByID(id)
}

func (s *GroceryStore) GetStoreByID(id int64) (*model.GroceryStore, error) {
	row := s.db.QueryRow(`SELECT `+storeCols+` FROM grocery_stores WHERE id = ?`, id)
	st, err := scanStore(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get store: %w", err)
	}
	return st, nil
}

func (s *GroceryStore) ListStores() ([]model.GroceryStore, error) {
	rows, err := s.db.Query(`SELECT ` + storeCols + ` FROM grocery_stores ORDER BY title ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	defer rows.Close()

	var stores []model.GroceryStore
	for rows.Next() {
		st, err := scanStore(rows)
		if err != nil {
			return nil, fmt.Errorf("scan store: %w", err)
		}
		stores = append(stores, *st)
	}
	return stores, rows.Err()
}

func (s *GroceryStore) UpdateStore(id int64, title, address string) (*model.GroceryStore, error) {
	_, err := s.db.Exec(
		`UPDATE grocery_stores SET title = ?, address = ?, updated_at = ? WHERE id = ?`,
		title, address, time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update store: %w", err)
	}
	return s.GetStoreByID(id)
}

// --- Item methods ---

func scanItem(scanner interface{ Scan(...any) error }) (*model.GroceryItem, error) {
	var item model.GroceryItem
	err := scanner.Scan(
		&item.ID, &item.Name, &item.Price, &item.Category, &item.PhotoURL,
		&item.StoreID, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

const itemCols = `id, name, price, category, photo_url, store_id, created_at, updated_at`

func (s *GroceryStore) CreateItem(name string, price float64, category, photoURL string, storeID int64) (*model.GroceryItem, error) {
	result, err := s.db.Exec(
		`INSERT INTO grocery_items (name, price, category, photo_url, store_id) VALUES (?, ?, ?, ?, ?)`,
		name, price, category, photoURL, storeID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetItemByID(id)
}

func (s *GroceryStore) GetItemByID(id int64) (*model.GroceryItem, error) {
	row := s.db.QueryRow(`SELECT `+itemCols+` FROM grocery_items WHERE id = ?`, id)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

func (s *GroceryStore) ListItemsByStore(storeID int64) ([]model.GroceryItem, error) {
	rows, err := s.db.Query(
		`SELECT `+itemCols+` FROM grocery_items WHERE store_id = ? ORDER BY category ASC, name ASC, id ASC`,
		storeID,
	)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []model.GroceryItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (s *GroceryStore) UpdateItem(id int64, name string, price float64, category, photoURL string, storeID int64) (*model.GroceryItem, error) {
	_, err := s.db.Exec(
		`UPDATE grocery_items SET name = ?, price = ?, category = ?, photo_url = ?, store_id = ?, updated_at = ? WHERE id = ?`,
		name, price, category, photoURL, storeID, time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	return s.GetItemByID(id)
}

// CountItems returns the number of items for a store.
func (s *GroceryStore) CountItems(storeID int64) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM grocery_items WHERE store_id = ?`, storeID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return count, nil
}
