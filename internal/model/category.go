package model

// Category is a choice for GroceryItem.Category. The value is what gets
// stored; the label is what forms display.
type Category struct {
	Value string
	Label string
}

// Categories is the fixed list of item categories, in display order.
var Categories = []Category{
	{"produce", "Produce"},
	{"deli", "Deli"},
	{"bakery", "Bakery"},
	{"pantry", "Pantry"},
	{"frozen", "Frozen"},
	{"dairy", "Dairy"},
	{"other", "Other"},
}

// ValidCategory reports whether value is one of the known category values.
func ValidCategory(value string) bool {
	for _, c := range Categories {
		if c.Value == value {
			return true
		}
	}
	return false
}

// CategoryLabel returns the display label for a stored category value,
// falling back to the value itself.
func CategoryLabel(value string) string {
	for _, c := range Categories {
		if c.Value == value {
			return c.Label
		}
	}
	return value
}
