package cart

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Cart is the single active cart of a user. The row survives checkout.
type Cart struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Item is one cart line. VariantID is empty when the product has no variant.
// PriceSnapshot is captured when the line is first inserted and is never
// rewritten by later adds.
type Item struct {
	ID            string          `json:"id"`
	CartID        string          `json:"cart_id"`
	ProductID     string          `json:"product_id"`
	VariantID     string          `json:"variant_id,omitempty"`
	Quantity      int             `json:"quantity"`
	PriceSnapshot decimal.Decimal `json:"price_snapshot"`
	CustomOptions json.RawMessage `json:"custom_options,omitempty"`
	Notes         *string         `json:"notes,omitempty"`
	AddedAt       time.Time       `json:"added_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ProductInfo is the live product data shown next to a cart line.
type ProductInfo struct {
	ID            string           `json:"id"`
	SellerID      string           `json:"seller_id"`
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	Price         decimal.Decimal  `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discount_price"`
	Images        []string         `json:"images"`
	InStock       bool             `json:"in_stock"`
}

type Line struct {
	Item
	Product ProductInfo `json:"product"`
}

type View struct {
	Cart      Cart            `json:"cart"`
	Items     []Line          `json:"items"`
	ItemCount int             `json:"item_count"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type AddItemInput struct {
	ProductID     string          `json:"product_id"`
	VariantID     string          `json:"variant_id"`
	Quantity      int             `json:"quantity"`
	CustomOptions json.RawMessage `json:"custom_options"`
	Notes         *string         `json:"notes"`
}

type UpdateItemInput struct {
	Quantity *int    `json:"quantity"`
	Notes    *string `json:"notes"`
}
