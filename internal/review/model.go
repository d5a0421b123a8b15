package review

import (
	"time"

	"github.com/shopspring/decimal"
)

const ModerationApproved = "approved"

type Review struct {
	ID                 string    `json:"id"`
	OrderID            string    `json:"order_id"`
	ProductID          string    `json:"product_id"`
	ReviewerID         string    `json:"reviewer_id"`
	SellerID           string    `json:"seller_id"`
	OverallRating      int       `json:"overall_rating"`
	QualityRating      *int      `json:"quality_rating"`
	ValueRating        *int      `json:"value_rating"`
	ShippingRating     *int      `json:"shipping_rating"`
	ServiceRating      *int      `json:"service_rating"`
	Title              string    `json:"title"`
	Comment            string    `json:"comment"`
	Pros               []string  `json:"pros"`
	Cons               []string  `json:"cons"`
	Images             []string  `json:"images"`
	IsVerifiedPurchase bool      `json:"is_verified_purchase"`
	HelpfulVotes       int       `json:"helpful_votes"`
	TotalVotes         int       `json:"total_votes"`
	ModerationStatus   string    `json:"moderation_status"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type CreateInput struct {
	OrderID        string   `json:"order_id"`
	OverallRating  int      `json:"overall_rating"`
	QualityRating  *int     `json:"quality_rating"`
	ValueRating    *int     `json:"value_rating"`
	ShippingRating *int     `json:"shipping_rating"`
	ServiceRating  *int     `json:"service_rating"`
	Title          string   `json:"title"`
	Comment        string   `json:"comment"`
	Pros           []string `json:"pros"`
	Cons           []string `json:"cons"`
	Images         []string `json:"images"`
}

// Aggregate is the product rating after a recompute.
type Aggregate struct {
	AverageRating decimal.Decimal `json:"average_rating"`
	TotalReviews  int             `json:"total_reviews"`
}

type Created struct {
	Review  Review    `json:"review"`
	Product Aggregate `json:"product"`
}

type SortBy string

const (
	SortRecent     SortBy = "recent"
	SortRatingHigh SortBy = "rating-high"
	SortRatingLow  SortBy = "rating-low"
	SortHelpful    SortBy = "helpful"
)

type ListOptions struct {
	Sort   SortBy
	Limit  int
	Offset int
}

type ListResult struct {
	Reviews []Review `json:"reviews"`
	Total   int      `json:"total"`
	Limit   int      `json:"limit"`
	Offset  int      `json:"offset"`
}
