package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// transitions lists the statuses each status may move to. Completed and
// cancelled have no entry and are terminal.
var transitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusShipped, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered, StatusCancelled},
	StatusDelivered:  {StatusCompleted},
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransition reports whether an order in from may move to to.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

const (
	PaymentPending     = "pending"
	FulfillmentPending = "unfulfilled"

	ChangedByBuyer = "buyer"
)

type Address struct {
	FullName   string `json:"full_name"`
	Phone      string `json:"phone,omitempty"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country"`
}

func (a Address) IsZero() bool {
	return a.Line1 == "" && a.City == "" && a.Country == ""
}

// LineItem is the frozen copy of one cart line stored inside the order.
type LineItem struct {
	ProductID string          `json:"product_id"`
	VariantID string          `json:"variant_id,omitempty"`
	Name      string          `json:"name"`
	Image     string          `json:"image,omitempty"`
	SellerID  string          `json:"seller_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
	Status    Status          `json:"status"`
}

type Order struct {
	ID                string          `json:"id"`
	OrderNumber       string          `json:"order_number"`
	BuyerID           string          `json:"buyer_id"`
	SellerID          string          `json:"seller_id"`
	Items             []LineItem      `json:"items"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	ShippingCost      decimal.Decimal `json:"shipping_cost"`
	TaxAmount         decimal.Decimal `json:"tax_amount"`
	DiscountAmount    decimal.Decimal `json:"discount_amount"`
	DiscountCode      *string         `json:"discount_code"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	PlatformFee       decimal.Decimal `json:"platform_fee"`
	PaymentMethod     string          `json:"payment_method"`
	PaymentCurrency   string          `json:"payment_currency"`
	PaymentStatus     string          `json:"payment_status"`
	Status            Status          `json:"status"`
	FulfillmentStatus string          `json:"fulfillment_status"`
	ShippingAddress   Address         `json:"shipping_address"`
	BillingAddress    *Address        `json:"billing_address"`
	Notes             *string         `json:"notes"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	DeliveredAt       *time.Time      `json:"delivered_at"`
	CompletedAt       *time.Time      `json:"completed_at"`
}

// ProductIDs returns the distinct products referenced by the order.
func (o *Order) ProductIDs() []string {
	seen := make(map[string]bool, len(o.Items))
	ids := make([]string, 0, len(o.Items))
	for _, it := range o.Items {
		if !seen[it.ProductID] {
			seen[it.ProductID] = true
			ids = append(ids, it.ProductID)
		}
	}
	return ids
}

// StatusLog is one row of the append-only status audit trail. FromStatus is
// nil for the row written at creation.
type StatusLog struct {
	ID            string    `json:"id"`
	OrderID       string    `json:"order_id"`
	FromStatus    *Status   `json:"from_status"`
	ToStatus      Status    `json:"to_status"`
	Reason        *string   `json:"reason"`
	ChangedBy     string    `json:"changed_by"`
	ChangedByType string    `json:"changed_by_type"`
	CreatedAt     time.Time `json:"created_at"`
}

// CartLine is a cart item joined with the product data checkout needs. The
// unit price is the cart's frozen snapshot, never the live price.
type CartLine struct {
	ItemID    string
	ProductID string
	VariantID string
	Name      string
	Image     string
	SellerID  string
	Quantity  int
	UnitPrice decimal.Decimal
}

type CheckoutInput struct {
	ShippingAddress Address  `json:"shipping_address"`
	BillingAddress  *Address `json:"billing_address"`
	PaymentMethod   string   `json:"payment_method"`
	PaymentCurrency string   `json:"payment_currency"`
	PromoCode       *string  `json:"promo_code"`
	Notes           *string  `json:"notes"`
}

// StatusChange is one requested transition by the buyer.
type StatusChange struct {
	OrderID string
	ActorID string
	To      Status
	Reason  *string
	At      time.Time
}

type ListOptions struct {
	Status *Status
	Limit  int
	Offset int
}

type ListResult struct {
	Orders []Order `json:"orders"`
	Total  int     `json:"total"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}

type Detail struct {
	Order
	StatusHistory []StatusLog `json:"status_history"`
}
