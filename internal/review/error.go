package review

import "errors"

var (
	// -- Validation & Input --
	ErrOrderRequired = errors.New("order_id is required")
	ErrInvalidOrder  = errors.New("order_id must be a valid UUID")
	ErrInvalidRating = errors.New("ratings must be between 1 and 5")
	ErrInvalidSort   = errors.New("invalid review sort")

	// -- Business Rules --
	ErrNotPurchased    = errors.New("a completed order for this product is required to review it")
	ErrDuplicateReview = errors.New("review already exists for this order and product")
)
