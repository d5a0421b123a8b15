package product

import "errors"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrProductInUse    = errors.New("product is referenced by an open order")
)

// validation
var (
	ErrNameRequired       = errors.New("name is required")
	ErrCategoryRequired   = errors.New("category is required")
	ErrInvalidPrice       = errors.New("price must be greater than zero")
	ErrInvalidDiscount    = errors.New("discount price must be between zero and price")
	ErrInvalidStatus      = errors.New("invalid product status")
	ErrEmptyUpdate        = errors.New("no updatable fields provided")
	ErrInvalidPriceFilter = errors.New("min price exceeds max price")
)
