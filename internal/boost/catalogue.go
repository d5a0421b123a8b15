package boost

import "github.com/shopspring/decimal"

const (
	CurrencySoftPoints = "SOFT_POINTS"
	CurrencyUSDT       = "USDT"
)

// Option is one purchasable tier. Level is the value written to
// products.boost_level.
type Option struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	BoostType     string          `json:"boost_type"`
	Level         int             `json:"level"`
	DurationHours int             `json:"duration"`
	Price         decimal.Decimal `json:"price"`
	Currency      string          `json:"currency"`
	Description   string          `json:"description"`
	Features      []string        `json:"features"`
	Popular       bool            `json:"popular,omitempty"`
}

var catalogue = []Option{
	{
		ID:            "boost1",
		Name:          "24-Hour Basic Boost",
		BoostType:     "basic",
		Level:         1,
		DurationHours: 24,
		Price:         decimal.NewFromInt(5),
		Currency:      CurrencySoftPoints,
		Description:   "Boost your product visibility for 24 hours",
		Features:      []string{`Appears in "Boosted" section`, "Higher search ranking"},
	},
	{
		ID:            "boost2",
		Name:          "3-Day Featured Boost",
		BoostType:     "featured",
		Level:         2,
		DurationHours: 72,
		Price:         decimal.NewFromInt(15),
		Currency:      CurrencySoftPoints,
		Description:   "Feature your product for 3 days",
		Features:      []string{"Featured products section", "Category page highlight", "Email newsletter inclusion"},
		Popular:       true,
	},
	{
		ID:            "boost3",
		Name:          "7-Day Premium Boost",
		BoostType:     "premium",
		Level:         3,
		DurationHours: 168,
		Price:         decimal.NewFromInt(35),
		Currency:      CurrencySoftPoints,
		Description:   "Maximum visibility for a full week",
		Features:      []string{"Homepage banner", "Top search results", "Social media promotion", "Email campaigns"},
	},
	{
		ID:            "boost4",
		Name:          "Homepage Spotlight",
		BoostType:     "homepage",
		Level:         4,
		DurationHours: 24,
		Price:         decimal.NewFromInt(50),
		Currency:      CurrencyUSDT,
		Description:   "Premium homepage placement for 24 hours",
		Features:      []string{"Homepage hero section", "Maximum exposure", "Priority support"},
	},
}

// Options returns a copy of the catalogue in display order.
func Options() []Option {
	out := make([]Option, len(catalogue))
	copy(out, catalogue)
	return out
}

func Lookup(id string) (Option, bool) {
	for _, o := range catalogue {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}
