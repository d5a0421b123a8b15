package order

import "errors"

var (
	// -- Validation & Input --
	ErrShippingAddressRequired = errors.New("shipping address is required")
	ErrPaymentMethodRequired   = errors.New("payment method is required")
	ErrInvalidStatus           = errors.New("invalid order status")

	// -- Checkout --
	ErrCartNotFound    = errors.New("cart not found")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrMultiSellerCart = errors.New("cart contains items from more than one seller")

	// -- Resource State --
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidTransition = errors.New("order status transition not allowed")
)
