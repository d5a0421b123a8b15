package product

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusDraft    = "draft"

	DefaultProductType = "physical"
)

type Product struct {
	ID            string           `json:"id"`
	SellerID      string           `json:"seller_id"`
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	Price         decimal.Decimal  `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discount_price"`
	Category      string           `json:"category"`
	Subcategory   string           `json:"subcategory"`
	ProductType   string           `json:"product_type"`
	InStock       bool             `json:"in_stock"`
	Images        []string         `json:"images"`
	Tags          []string         `json:"tags"`
	Status        string           `json:"status"`
	AverageRating decimal.Decimal  `json:"average_rating"`
	TotalReviews  int              `json:"total_reviews"`
	TotalSales    int              `json:"total_sales"`
	ViewCount     int              `json:"view_count"`
	ClickCount    int              `json:"click_count"`
	BoostLevel    int              `json:"boost_level"`
	BoostedUntil  *time.Time       `json:"boosted_until"`
	IsSponsored   bool             `json:"is_sponsored"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// UnitPrice is the price a buyer pays right now.
func (p Product) UnitPrice() decimal.Decimal {
	if p.DiscountPrice != nil {
		return *p.DiscountPrice
	}
	return p.Price
}

// EffectiveBoostLevel is level while the boost window is open and 0 after it
// has lapsed. Expiry is never swept; every read derives it.
func EffectiveBoostLevel(level int, until *time.Time, now time.Time) int {
	if level <= 0 || until == nil || !until.After(now) {
		return 0
	}
	return level
}

// ApplyBoostWindow replaces the stored boost fields with their values at now.
func (p *Product) ApplyBoostWindow(now time.Time) {
	p.BoostLevel = EffectiveBoostLevel(p.BoostLevel, p.BoostedUntil, now)
	p.IsSponsored = p.BoostLevel > 0
}

type SortBy string

const (
	SortRecent    SortBy = "recent"
	SortPriceLow  SortBy = "price-low"
	SortPriceHigh SortBy = "price-high"
	SortRating    SortBy = "rating"
	SortPopular   SortBy = "popular"
	SortBoosted   SortBy = "boosted"
	SortRelevance SortBy = "relevance"
)

type ListOptions struct {
	Category    string
	Subcategory string
	ProductType string
	SellerID    string
	Search      string
	Tags        []string
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
	MinRating   *decimal.Decimal
	InStock     *bool
	Sponsored   *bool
	Sort        SortBy
	Page        int
	Limit       int

	// Now anchors the boost window used by the sponsored filter and the
	// boosted and relevance sorts.
	Now time.Time
}

type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

type Page struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
}

type SearchFilters struct {
	Category    string           `json:"category,omitempty"`
	MinPrice    *decimal.Decimal `json:"min_price,omitempty"`
	MaxPrice    *decimal.Decimal `json:"max_price,omitempty"`
	Rating      *decimal.Decimal `json:"rating,omitempty"`
	InStock     *bool            `json:"in_stock,omitempty"`
	ProductType string           `json:"product_type,omitempty"`
}

type SearchInput struct {
	Query   string        `json:"query"`
	Filters SearchFilters `json:"filters"`
	SortBy  SortBy        `json:"sort_by"`
	Page    int           `json:"page"`
	Limit   int           `json:"limit"`
}

type SearchResult struct {
	Results        []Product     `json:"results"`
	Pagination     Pagination    `json:"pagination"`
	SearchQuery    string        `json:"search_query"`
	AppliedFilters SearchFilters `json:"applied_filters"`
}

type CreateInput struct {
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	Price         decimal.Decimal  `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discount_price"`
	Category      string           `json:"category"`
	Subcategory   string           `json:"subcategory"`
	ProductType   string           `json:"product_type"`
	InStock       *bool            `json:"in_stock"`
	Images        []string         `json:"images"`
	Tags          []string         `json:"tags"`
}

// UpdateInput enumerates the seller-editable fields. Aggregates (ratings,
// sales, views, boosts) are absent on purpose and cannot be patched.
type UpdateInput struct {
	Name           *string          `json:"name"`
	Description    *string          `json:"description"`
	Price          *decimal.Decimal `json:"price"`
	DiscountPrice  *decimal.Decimal `json:"discount_price"`
	RemoveDiscount bool             `json:"remove_discount"`
	Category       *string          `json:"category"`
	Subcategory    *string          `json:"subcategory"`
	ProductType    *string          `json:"product_type"`
	InStock        *bool            `json:"in_stock"`
	Images         *[]string        `json:"images"`
	Tags           *[]string        `json:"tags"`
	Status         *string          `json:"status"`
}

func (in UpdateInput) IsEmpty() bool {
	return in.Name == nil && in.Description == nil && in.Price == nil &&
		in.DiscountPrice == nil && !in.RemoveDiscount && in.Category == nil &&
		in.Subcategory == nil && in.ProductType == nil && in.InStock == nil &&
		in.Images == nil && in.Tags == nil && in.Status == nil
}

// TouchesPrice reports whether the patch may change what a buyer pays.
func (in UpdateInput) TouchesPrice() bool {
	return in.Price != nil || in.DiscountPrice != nil || in.RemoveDiscount
}

// PricePoint is one recorded change of a product's list or discount price.
type PricePoint struct {
	ID                    string           `json:"id"`
	ProductID             string           `json:"product_id"`
	Price                 decimal.Decimal  `json:"price"`
	DiscountPrice         *decimal.Decimal `json:"discount_price"`
	PreviousPrice         decimal.Decimal  `json:"previous_price"`
	PreviousDiscountPrice *decimal.Decimal `json:"previous_discount_price"`
	ChangedBy             string           `json:"changed_by"`
	CreatedAt             time.Time        `json:"created_at"`
}

// View describes one product page impression by an authenticated user.
type View struct {
	ProductID string
	UserID    string
	Source    string
	IPAddress string
	UserAgent string
}
