// Package form holds the request forms for grocerly pages. Each form is
// parsed from a request, validated field by field, and either applied to an
// entity or handed back to the template with its error messages.
package form

import (
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/nholt/grocerly/internal/model"
)

// Field rules return an empty string on success or a message for the user.
// Validation of a single field stops at its first failing rule; fields are
// checked independently so every field reports its own error.

func required(value string) string {
	if value == "" {
		return "This field is required."
	}
	return ""
}

func length(value string, min, max int) string {
	n := len([]rune(value))
	if n < min || n > max {
		return fmt.Sprintf("Field must be between %d and %d characters long.", min, max)
	}
	return ""
}

func urlShape(value string) string {
	u, err := url.Parse(value)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "Invalid URL."
	}
	return ""
}

// parseFloatMin parses value as a finite number not below min. ParseFloat
// accepts NaN and the infinities, which are never valid entry values, so
// they are rejected here. The parsed value is only meaningful when the
// message is empty.
func parseFloatMin(value string, min float64) (float64, string) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, "Not a valid number."
	}
	if f < min {
		return 0, fmt.Sprintf("Number must be at least %g.", min)
	}
	return f, ""
}

// StoreForm adds or updates a GroceryStore.
type StoreForm struct {
	Title   string
	Address string
	Errors  map[string]string
}

func ParseStoreForm(r *http.Request) *StoreForm {
	return &StoreForm{
		Title:   strings.TrimSpace(r.FormValue("title")),
		Address: strings.TrimSpace(r.FormValue("address")),
		Errors:  make(map[string]string),
	}
}

// StoreFormFrom prefills the form from an existing store.
func StoreFormFrom(st *model.GroceryStore) *StoreForm {
	return &StoreForm{
		Title:   st.Title,
		Address: st.Address,
		Errors:  make(map[string]string),
	}
}

func (f *StoreForm) Validate() bool {
	if msg := firstError(f.Title, required, lengthRule(3, 80)); msg != "" {
		f.Errors["title"] = msg
	}
	if msg := firstError(f.Address, required, lengthRule(3, 80)); msg != "" {
		f.Errors["address"] = msg
	}
	return len(f.Errors) == 0
}

// Apply copies every form field onto the store. Only the listed fields are
// touched; ids and timestamps belong to the database layer.
func (f *StoreForm) Apply(st *model.GroceryStore) {
	st.Title = f.Title
	st.Address = f.Address
}

// ItemForm adds or updates a GroceryItem. Raw fields hold the submitted
// text so an invalid form re-renders exactly what the user typed.
type ItemForm struct {
	Name     string
	PriceRaw string
	Category string
	PhotoURL string
	StoreRaw string

	Price   float64
	StoreID int64

	Errors map[string]string
}

func ParseItemForm(r *http.Request) *ItemForm {
	return &ItemForm{
		Name:     strings.TrimSpace(r.FormValue("name")),
		PriceRaw: strings.TrimSpace(r.FormValue("price")),
		Category: r.FormValue("category"),
		PhotoURL: strings.TrimSpace(r.FormValue("photo_url")),
		StoreRaw: strings.TrimSpace(r.FormValue("store_id")),
		Errors:   make(map[string]string),
	}
}

// ItemFormFrom prefills the form from an existing item.
func ItemFormFrom(item *model.GroceryItem) *ItemForm {
	return &ItemForm{
		Name:     item.Name,
		PriceRaw: strconv.FormatFloat(item.Price, 'f', -1, 64),
		Category: item.Category,
		PhotoURL: item.PhotoURL,
		StoreRaw: strconv.FormatInt(item.StoreID, 10),
		Price:    item.Price,
		StoreID:  item.StoreID,
		Errors:   make(map[string]string),
	}
}

func (f *ItemForm) Validate() bool {
	if msg := firstError(f.Name, required, lengthRule(3, 80)); msg != "" {
		f.Errors["name"] = msg
	}

	if msg := required(f.PriceRaw); msg != "" {
		f.Errors["price"] = msg
	} else if price, msg := parseFloatMin(f.PriceRaw, 0); msg != "" {
		f.Errors["price"] = msg
	} else {
		f.Price = price
	}

	if msg := required(f.Category); msg != "" {
		f.Errors["category"] = msg
	} else if !model.ValidCategory(f.Category) {
		f.Errors["category"] = "Not a valid choice."
	}

	if msg := firstError(f.PhotoURL, required, urlShape); msg != "" {
		f.Errors["photo_url"] = msg
	}

	if msg := required(f.StoreRaw); msg != "" {
		f.Errors["store_id"] = msg
	} else if id, err := strconv.ParseInt(f.StoreRaw, 10, 64); err != nil || id <= 0 {
		f.Errors["store_id"] = "Not a valid choice."
	} else {
		f.StoreID = id
	}

	return len(f.Errors) == 0
}

// Apply copies every form field onto the item. Call only after Validate.
func (f *ItemForm) Apply(item *model.GroceryItem) {
	item.Name = f.Name
	item.Price = f.Price
	item.Category = f.Category
	item.PhotoURL = f.PhotoURL
	item.StoreID = f.StoreID
}

// SignUpForm creates a new account.
type SignUpForm struct {
	Username string
	Password string
	Errors   map[string]string
}

func ParseSignUpForm(r *http.Request) *SignUpForm {
	return &SignUpForm{
		Username: strings.TrimSpace(r.FormValue("username")),
		Password: r.FormValue("password"),
		Errors:   make(map[string]string),
	}
}

func (f *SignUpForm) Validate() bool {
	if msg := firstError(f.Username, required, lengthRule(3, 50)); msg != "" {
		f.Errors["username"] = msg
	}
	if msg := required(f.Password); msg != "" {
		f.Errors["password"] = msg
	}
	return len(f.Errors) == 0
}

// LoginForm authenticates an existing account.
type LoginForm struct {
	Username string
	Password string
	Errors   map[string]string
}

func ParseLoginForm(r *http.Request) *LoginForm {
	return &LoginForm{
		Username: strings.TrimSpace(r.FormValue("username")),
		Password: r.FormValue("password"),
		Errors:   make(map[string]string),
	}
}

func (f *LoginForm) Validate() bool {
	if msg := required(f.Username); msg != "" {
		f.Errors["username"] = msg
	}
	if msg := required(f.Password); msg != "" {
		f.Errors["password"] = msg
	}
	return len(f.Errors) == 0
}

// firstError runs rules in order and returns the first failure message.
func firstError(value string, rules ...func(string) string) string {
	for _, rule := range rules {
		if msg := rule(value); msg != "" {
			return msg
		}
	}
	return ""
}

func lengthRule(min, max int) func(string) string {
	return func(value string) string {
		return length(value, min, max)
	}
}
