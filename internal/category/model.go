package category

import "time"

// Category is a node of the storefront taxonomy. Top-level categories have
// no parent; subcategories point at one.
type Category struct {
	ID            string     `json:"id"`
	ParentID      *string    `json:"parent_id"`
	Name          string     `json:"name"`
	Slug          string     `json:"slug"`
	Description   string     `json:"description"`
	IconURL       *string    `json:"icon_url"`
	SortOrder     int        `json:"sort_order"`
	CreatedAt     time.Time  `json:"created_at"`
	Subcategories []Category `json:"subcategories,omitempty"`
}
