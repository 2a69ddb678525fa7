package store

import (
	"testing"

	"github.com/nholt/grocerly/internal/database"
)

func setupGroceryTestDB(t *testing.T) *GroceryStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewGroceryStore(db)
}

func TestStoreCRUD(t *testing.T) {
	gs := setupGroceryTestDB(t)

	// Create
	st, err := gs.CreateStore("Corner Market", "12 Main St")
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	if st.Title != "Corner Market" {
		t.Errorf("title = %q, want %q", st.Title, "Corner Market")
	}
	if st.Address != "12 Main St" {
		t.Errorf("address = %q, want %q", st.Address, "12 Main St")
	}
	if st.ID == 0 {
		t.Error("expected non-zero ID")
	}

	// GetByID
	got, err := gs.GetStoreByID(st.ID)
	if err != nil {
		t.Fatalf("get store: %v", err)
	}
	if got.Title != "Corner Market" {
		t.Errorf("got title = %q, want %q", got.Title, "Corner Market")
	}

	// Update overwrites in place
	updated, err := gs.UpdateStore(st.ID, "New Market", "34 Elm St")
	if err != nil {
		t.Fatalf("update store: %v", err)
	}
	if updated.ID != st.ID {
		t.Errorf("update changed id: %d != %d", updated.ID, st.ID)
	}
	if updated.Title != "New Market" {
		t.Errorf("updated title = %q, want %q", updated.Title, "New Market")
	}
	if updated.Address != "34 Elm St" {
		t.Errorf("updated address = %q, want %q", updated.Address, "34 Elm St")
	}

	// List
	if _, err := gs.CreateStore("Another Market", "56 Oak St"); err != nil {
		t.Fatalf("create second store: %v", err)
	}
	stores, err := gs.ListStores()
	if err != nil {
		t.Fatalf("list stores: %v", err)
	}
	if len(stores) != 2 {
		t.Fatalf("expected 2 stores, got %d", len(stores))
	}
}

func TestStoreGetByIDNotFound(t *testing.T) {
	gs := setupGroceryTestDB(t)

	st, err := gs.GetStoreByID(999)
	if err != nil {
		t.Fatalf("get store: %v", err)
	}
	if st != nil {
		t.Error("expected nil for nonexistent store")
	}
}

func TestItemCRUD(t *testing.T) {
	gs := setupGroceryTestDB(t)

	st, err := gs.CreateStore("Corner Market", "12 Main St")
	if err != nil {
		t.Fatalf("create store: %v", err)
	}

	// Create
	item, err := gs.CreateItem("Whole Milk", 3.49, "dairy", "https://example.com/milk.jpg", st.ID)
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	if item.Name != "Whole Milk" {
		t.Errorf("name = %q, want %q", item.Name, "Whole Milk")
	}
	if item.Price != 3.49 {
		t.Errorf("price = %v, want 3.49", item.Price)
	}
	if item.Category != "dairy" {
		t.Errorf("category = %q, want %q", item.Category, "dairy")
	}
	if item.StoreID != st.ID {
		t.Errorf("store_id = %d, want %d", item.StoreID, st.ID)
	}

	// GetByID
	got, err := gs.GetItemByID(item.ID)
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if got.Name != "Whole Milk" {
		t.Errorf("got name = %q, want %q", got.Name, "Whole Milk")
	}

	// Update overwrites in place
	updated, err := gs.UpdateItem(item.ID, "Skim Milk", 2.99, "dairy", "https://example.com/skim.jpg", st.ID)
	if err != nil {
		t.Fatalf("update item: %v", err)
	}
	if updated.ID != item.ID {
		t.Errorf("update changed id: %d != %d", updated.ID, item.ID)
	}
	if updated.Name != "Skim Milk" {
		t.Errorf("updated name = %q, want %q", updated.Name, "Skim Milk")
	}
	if updated.Price != 2.99 {
		t.Errorf("updated price = %v, want 2.99", updated.Price)
	}

	// List by store
	items, err := gs.ListItemsByStore(st.ID)
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}

	count, err := gs.CountItems(st.ID)
	if err != nil {
		t.Fatalf("count items: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestItemRequiresExistingStore(t *testing.T) {
	gs := setupGroceryTestDB(t)

	if _, err := gs.CreateItem("Orphan", 1.00, "other", "https://example.com/x.jpg", 999); err == nil {
		t.Fatal("expected foreign key error for missing store, got nil")
	}
}

func TestItemGetByIDNotFound(t *testing.T) {
	gs := setupGroceryTestDB(t)

	item, err := gs.GetItemByID(999)
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if item != nil {
		t.Error("expected nil for nonexistent item")
	}
}
