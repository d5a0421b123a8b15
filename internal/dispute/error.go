package dispute

import "errors"

var (
	// -- Validation & Input --
	ErrOrderRequired  = errors.New("order_id is required")
	ErrInvalidOrder   = errors.New("order_id must be a valid UUID")
	ErrTypeRequired   = errors.New("dispute_type is required")
	ErrReasonRequired = errors.New("reason is required")
	ErrInvalidAmount  = errors.New("requested_amount must not be negative")
	ErrInvalidStatus  = errors.New("invalid dispute status")
	ErrEmptyUpdate    = errors.New("nothing to update")

	// -- Resource State --
	ErrDisputeNotFound   = errors.New("dispute not found")
	ErrDuplicateDispute  = errors.New("dispute already exists for this order")
	ErrInvalidTransition = errors.New("dispute status transition not allowed")
)
