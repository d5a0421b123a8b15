package order

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewOrderNumber renders ORD-YYYYMMDD-HHMMSS-xxxxxxxxxxxx. The random suffix
// keeps numbers unique when checkouts land in the same second.
func NewOrderNumber(at time.Time) string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
	return "ORD-" + at.UTC().Format("20060102-150405") + "-" + suffix
}
