package cart

import "errors"

var (
	// -- Validation & Input --
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrProductRequired = errors.New("product_id is required")
	ErrInvalidProduct  = errors.New("product_id must be a valid UUID")
	ErrEmptyItemUpdate = errors.New("nothing to update")
	ErrInvalidOptions  = errors.New("custom_options must be a JSON object")

	// -- Resource State --
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrOutOfStock       = errors.New("product is out of stock")
)
