package wishlist

import (
	"time"

	"github.com/shopspring/decimal"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Wishlist is a named product list. ItemCount is maintained alongside item
// inserts and deletes.
type Wishlist struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsPublic    bool      `json:"is_public"`
	ItemCount   int       `json:"item_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Item struct {
	ID              string           `json:"id"`
	WishlistID      string           `json:"wishlist_id"`
	ProductID       string           `json:"product_id"`
	Priority        Priority         `json:"priority"`
	TargetPrice     *decimal.Decimal `json:"target_price"`
	Notes           string           `json:"notes"`
	NotifyOnSale    bool             `json:"notify_on_sale"`
	NotifyOnRestock bool             `json:"notify_on_restock"`
	AddedAt         time.Time        `json:"added_at"`
}

// ProductInfo is the live product data shown next to a wishlist item.
type ProductInfo struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	Price         decimal.Decimal  `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discount_price"`
	Images        []string         `json:"images"`
	InStock       bool             `json:"in_stock"`
	AverageRating decimal.Decimal  `json:"average_rating"`
	TotalReviews  int              `json:"total_reviews"`
}

type Line struct {
	Item
	Product ProductInfo `json:"product"`
}

type CreateInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsPublic    bool   `json:"is_public"`
}

// AddItemInput leaves the notify flags nil to mean "on".
type AddItemInput struct {
	ProductID       string           `json:"product_id"`
	Priority        Priority         `json:"priority"`
	TargetPrice     *decimal.Decimal `json:"target_price"`
	Notes           string           `json:"notes"`
	NotifyOnSale    *bool            `json:"notify_on_sale"`
	NotifyOnRestock *bool            `json:"notify_on_restock"`
}
