package category

import "errors"

var (
	// -- Resource State --
	ErrCategoryNotFound = errors.New("category not found")
)
