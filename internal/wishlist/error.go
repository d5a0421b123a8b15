package wishlist

import "errors"

var (
	// -- Validation & Input --
	ErrNameRequired       = errors.New("name is required")
	ErrProductRequired    = errors.New("product_id is required")
	ErrInvalidProduct     = errors.New("product_id must be a valid UUID")
	ErrInvalidPriority    = errors.New("priority must be low, medium or high")
	ErrInvalidTargetPrice = errors.New("target_price must not be negative")

	// -- Resource State --
	ErrWishlistNotFound     = errors.New("wishlist not found")
	ErrWishlistItemNotFound = errors.New("wishlist item not found")
	ErrAlreadyInWishlist    = errors.New("product already in wishlist")
)
