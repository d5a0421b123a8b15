package boost

import (
	"time"

	"socialmart-be/internal/product"

	"github.com/shopspring/decimal"
)

// Boost is one purchase in the ledger.
type Boost struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	UserID      string          `json:"user_id"`
	BoostType   string          `json:"boost_type"`
	Duration    int             `json:"duration"`
	Cost        decimal.Decimal `json:"cost"`
	Currency    string          `json:"currency"`
	StartDate   time.Time       `json:"start_date"`
	EndDate     time.Time       `json:"end_date"`
	Impressions int             `json:"impressions"`
	Clicks      int             `json:"clicks"`
	Conversions int             `json:"conversions"`
	CreatedAt   time.Time       `json:"created_at"`
}

// State is the product's boost after a purchase.
type State struct {
	BoostLevel   int       `json:"boost_level"`
	BoostedUntil time.Time `json:"boosted_until"`
	IsSponsored  bool      `json:"is_sponsored"`
}

type Result struct {
	Boost   Boost `json:"boost"`
	Product State `json:"product"`
}

// Merge combines the product's stored boost with a new purchase of level
// ending at end. A lapsed boost counts as level 0. The higher level wins and
// the window runs to whichever active end is later.
func Merge(curLevel int, curUntil *time.Time, now time.Time, level int, end time.Time) State {
	effective := product.EffectiveBoostLevel(curLevel, curUntil, now)

	s := State{BoostLevel: max(effective, level), BoostedUntil: end, IsSponsored: true}
	if effective > 0 && curUntil.After(end) {
		s.BoostedUntil = *curUntil
	}
	return s
}
