package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/nholt/grocerly/internal/form"
	"github.com/nholt/grocerly/internal/model"
	"github.com/nholt/grocerly/internal/store"
	"github.com/nholt/grocerly/internal/websocket"
)

// GroceryHandler serves the store and item pages.
type GroceryHandler struct {
	groceryStore *store.GroceryStore
	hub          *websocket.Hub
	logger       *slog.Logger
}

func NewGroceryHandler(gs *store.GroceryStore, hub *websocket.Hub, logger *slog.Logger) *GroceryHandler {
	return &GroceryHandler{groceryStore: gs, hub: hub, logger: logger}
}

// Home lists all stores.
func (h *GroceryHandler) Home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	stores, err := h.groceryStore.ListStores()
	if err != nil {
		h.logger.Error("list stores", "error", err)
		http.Error(w, "failed to load stores", http.StatusInternalServerError)
		return
	}

	data := pageData(r)
	data["Stores"] = stores
	render(w, "home.html", data)
}

// NewStorePage renders the blank store form.
func (h *GroceryHandler) NewStorePage(w http.ResponseWriter, r *http.Request) {
	data := pageData(r)
	data["Form"] = &form.StoreForm{Errors: map[string]string{}}
	render(w, "new_store.html", data)
}

// NewStore validates the submitted form, creates the store, and redirects
// to its detail page. An invalid form is re-rendered with its errors and
// nothing is persisted.
func (h *GroceryHandler) NewStore(w http.ResponseWriter, r *http.Request) {
	f := form.ParseStoreForm(r)
	if !f.Validate() {
		data := pageData(r)
		data["Form"] = f
		render(w, "new_store.html", data)
		return
	}

	st, err := h.groceryStore.CreateStore(f.Title, f.Address)
	if err != nil {
		h.logger.Error("create store", "error", err)
		http.Error(w, "failed to create store", http.StatusInternalServerError)
		return
	}

	h.hub.Broadcast("store", "created", st.ID)
	http.Redirect(w, r, fmt.Sprintf("/store/%d", st.ID), http.StatusSeeOther)
}

// StoreDetail shows a store with its items and an edit form prefilled from
// the current field values.
func (h *GroceryHandler) StoreDetail(w http.ResponseWriter, r *http.Request) {
	st := h.storeFromPath(w, r)
	if st == nil {
		return
	}

	data, ok := h.storeDetailData(w, r, st)
	if !ok {
		return
	}
	data["Form"] = form.StoreFormFrom(st)
	render(w, "store_detail.html", data)
}

// storeDetailData loads the items and item count for a store's detail page.
// On a load failure it writes a 500 and reports false.
func (h *GroceryHandler) storeDetailData(w http.ResponseWriter, r *http.Request, st *model.GroceryStore) (map[string]any, bool) {
	items, err := h.groceryStore.ListItemsByStore(st.ID)
	if err != nil {
		h.logger.Error("list items", "error", err)
		http.Error(w, "failed to load items", http.StatusInternalServerError)
		return nil, false
	}
	count, err := h.groceryStore.CountItems(st.ID)
	if err != nil {
		h.logger.Error("count items", "error", err)
		http.Error(w, "failed to load items", http.StatusInternalServerError)
		return nil, false
	}

	data := pageData(r)
	data["Store"] = st
	data["Items"] = items
	data["ItemCount"] = count
	return data, true
}

// StoreUpdate overwrites the store's fields from a valid form and redirects
// back to the detail page.
func (h *GroceryHandler) StoreUpdate(w http.ResponseWriter, r *http.Request) {
	st := h.storeFromPath(w, r)
	if st == nil {
		return
	}

	f := form.ParseStoreForm(r)
	if !f.Validate() {
		data, ok := h.storeDetailData(w, r, st)
		if !ok {
			return
		}
		data["Form"] = f
		render(w, "store_detail.html", data)
		return
	}

	f.Apply(st)
	if _, err := h.groceryStore.UpdateStore(st.ID, st.Title, st.Address); err != nil {
		h.logger.Error("update store", "error", err)
		http.Error(w, "failed to update store", http.StatusInternalServerError)
		return
	}

	h.hub.Broadcast("store", "updated", st.ID)
	http.Redirect(w, r, fmt.Sprintf("/store/%d", st.ID), http.StatusSeeOther)
}

// NewItemPage renders the blank item form with category and store choices.
func (h *GroceryHandler) NewItemPage(w http.ResponseWriter, r *http.Request) {
	h.renderItemForm(w, r, "new_item.html", &form.ItemForm{Errors: map[string]string{}}, nil)
}

// NewItem validates the submitted form, creates the item, and redirects to
// its detail page.
func (h *GroceryHandler) NewItem(w http.ResponseWriter, r *http.Request) {
	f := form.ParseItemForm(r)
	if !h.validateItemForm(f) {
		h.renderItemForm(w, r, "new_item.html", f, nil)
		return
	}

	item, err := h.groceryStore.CreateItem(f.Name, f.Price, f.Category, f.PhotoURL, f.StoreID)
	if err != nil {
		h.logger.Error("create item", "error", err)
		http.Error(w, "failed to create item", http.StatusInternalServerError)
		return
	}

	h.hub.Broadcast("item", "created", item.ID)
	http.Redirect(w, r, fmt.Sprintf("/item/%d", item.ID), http.StatusSeeOther)
}

// ItemDetail shows an item with an edit form prefilled from its current
// field values.
func (h *GroceryHandler) ItemDetail(w http.ResponseWriter, r *http.Request) {
	item := h.itemFromPath(w, r)
	if item == nil {
		return
	}
	h.renderItemForm(w, r, "item_detail.html", form.ItemFormFrom(item), item)
}

// ItemUpdate overwrites the item's fields from a valid form and redirects
// back to the detail page.
func (h *GroceryHandler) ItemUpdate(w http.ResponseWriter, r *http.Request) {
	item := h.itemFromPath(w, r)
	if item == nil {
		return
	}

	f := form.ParseItemForm(r)
	if !h.validateItemForm(f) {
		h.renderItemForm(w, r, "item_detail.html", f, item)
		return
	}

	f.Apply(item)
	if _, err := h.groceryStore.UpdateItem(item.ID, item.Name, item.Price, item.Category, item.PhotoURL, item.StoreID); err != nil {
		h.logger.Error("update item", "error", err)
		http.Error(w, "failed to update item", http.StatusInternalServerError)
		return
	}

	h.hub.Broadcast("item", "updated", item.ID)
	http.Redirect(w, r, fmt.Sprintf("/item/%d", item.ID), http.StatusSeeOther)
}

// validateItemForm runs the field rules plus the cross-field check that the
// chosen store actually exists.
func (h *GroceryHandler) validateItemForm(f *form.ItemForm) bool {
	if !f.Validate() {
		return false
	}
	st, err := h.groceryStore.GetStoreByID(f.StoreID)
	if err != nil {
		h.logger.Error("lookup store choice", "error", err)
	}
	if st == nil {
		f.Errors["store_id"] = "Not a valid choice."
		return false
	}
	return true
}

func (h *GroceryHandler) renderItemForm(w http.ResponseWriter, r *http.Request, name string, f *form.ItemForm, item *model.GroceryItem) {
	stores, err := h.groceryStore.ListStores()
	if err != nil {
		h.logger.Error("list stores", "error", err)
		http.Error(w, "failed to load stores", http.StatusInternalServerError)
		return
	}

	data := pageData(r)
	data["Form"] = f
	data["Stores"] = stores
	data["Categories"] = model.Categories
	if item != nil {
		data["Item"] = item
		data["CategoryLabel"] = model.CategoryLabel(item.Category)
	}
	render(w, name, data)
}

// storeFromPath resolves {store_id}; it writes a 404 and returns nil when
// the id is malformed or unknown.
func (h *GroceryHandler) storeFromPath(w http.ResponseWriter, r *http.Request) *model.GroceryStore {
	id, err := strconv.ParseInt(r.PathValue("store_id"), 10, 64)
	if err != nil {
		http.Error(w, "store not found", http.StatusNotFound)
		return nil
	}
	st, err := h.groceryStore.GetStoreByID(id)
	if err != nil {
		h.logger.Error("get store", "error", err)
		http.Error(w, "failed to load store", http.StatusInternalServerError)
		return nil
	}
	if st == nil {
		http.Error(w, "store not found", http.StatusNotFound)
		return nil
	}
	return st
}

// itemFromPath resolves {item_id} the same way.
func (h *GroceryHandler) itemFromPath(w http.ResponseWriter, r *http.Request) *model.GroceryItem {
	id, err := strconv.ParseInt(r.PathValue("item_id"), 10, 64)
	if err != nil {
		http.Error(w, "item not found", http.StatusNotFound)
		return nil
	}
	item, err := h.groceryStore.GetItemByID(id)
	if err != nil {
		h.logger.Error("get item", "error", err)
		http.Error(w, "failed to load item", http.StatusInternalServerError)
		return nil
	}
	if item == nil {
		http.Error(w, "item not found", http.StatusNotFound)
		return nil
	}
	return item
}
