package campaign

import "errors"

var (
	// -- Validation & Input --
	ErrProductRequired = errors.New("product_id is required")
	ErrInvalidProduct  = errors.New("product_id must be a valid UUID")

	// -- Resource State --
	ErrCampaignNotFound = errors.New("campaign not found")
	ErrAlreadyJoined    = errors.New("product already participating in campaign")
)
