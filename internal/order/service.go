package order

import (
	"context"
	"errors"
	"strings"

	"socialmart-be/internal/cache"
	"socialmart-be/internal/clock"
	"socialmart-be/internal/events"
	"socialmart-be/internal/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	DefaultLimit    = 20
	MaxLimit        = 100
	DefaultCurrency = "USD"
)

type Service interface {
	Checkout(ctx context.Context, buyerID string, in CheckoutInput) (*Order, error)
	UpdateStatus(ctx context.Context, buyerID, orderID string, to Status, notes *string) (*Order, error)
	List(ctx context.Context, buyerID string, opts ListOptions) (*ListResult, error)
	Get(ctx context.Context, userID, orderID string) (*Detail, error)
}

type service struct {
	repo      Repository
	discounts DiscountPolicy
	cache     cache.Store
	publisher events.Publisher
	clock     clock.Clock
}

func NewService(repo Repository, discounts DiscountPolicy, store cache.Store, pub events.Publisher, clk clock.Clock) Service {
	if discounts == nil {
		discounts = NoDiscount{}
	}
	if store == nil {
		store = cache.Nop{}
	}
	if pub == nil {
		pub = events.NopPublisher{}
	}
	return &service{repo: repo, discounts: discounts, cache: store, publisher: pub, clock: clk}
}

type orderEvent struct {
	OrderID     string          `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	BuyerID     string          `json:"buyer_id"`
	SellerID    string          `json:"seller_id"`
	Total       decimal.Decimal `json:"total_amount"`
	From        *Status         `json:"from_status,omitempty"`
	Status      Status          `json:"status"`
}

func (s *service) Checkout(ctx context.Context, buyerID string, in CheckoutInput) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Checkout"),
	)

	if in.ShippingAddress.IsZero() {
		return nil, ErrShippingAddressRequired
	}
	in.PaymentMethod = strings.TrimSpace(in.PaymentMethod)
	if in.PaymentMethod == "" {
		return nil, ErrPaymentMethodRequired
	}
	in.PaymentCurrency = strings.ToUpper(strings.TrimSpace(in.PaymentCurrency))
	if in.PaymentCurrency == "" {
		in.PaymentCurrency = DefaultCurrency
	}
	code := in.PromoCode
	if code != nil {
		trimmed := strings.TrimSpace(*code)
		code = &trimmed
		if trimmed == "" {
			code = nil
		}
	}

	now := s.clock.Now()
	o, err := s.repo.Checkout(ctx, buyerID, func(lines []CartLine) (*Order, error) {
		sellerID := lines[0].SellerID
		for _, l := range lines[1:] {
			if l.SellerID != sellerID {
				return nil, ErrMultiSellerCart
			}
		}

		discount := decimal.Zero
		if code != nil {
			d, err := s.discounts.Discount(ctx, *code, subtotalOf(lines))
			if err != nil {
				return nil, err
			}
			discount = d
		}
		totals := ComputeTotals(lines, discount)

		items := make([]LineItem, 0, len(lines))
		for _, l := range lines {
			items = append(items, LineItem{
				ProductID: l.ProductID,
				VariantID: l.VariantID,
				Name:      l.Name,
				Image:     l.Image,
				SellerID:  l.SellerID,
				Quantity:  l.Quantity,
				UnitPrice: l.UnitPrice,
				LineTotal: lineTotal(l),
				Status:    StatusPending,
			})
		}

		return &Order{
			OrderNumber:       NewOrderNumber(now),
			BuyerID:           buyerID,
			SellerID:          sellerID,
			Items:             items,
			Subtotal:          totals.Subtotal,
			ShippingCost:      totals.ShippingCost,
			TaxAmount:         totals.TaxAmount,
			DiscountAmount:    totals.DiscountAmount,
			DiscountCode:      code,
			TotalAmount:       totals.TotalAmount,
			PlatformFee:       totals.PlatformFee,
			PaymentMethod:     in.PaymentMethod,
			PaymentCurrency:   in.PaymentCurrency,
			PaymentStatus:     PaymentPending,
			Status:            StatusPending,
			FulfillmentStatus: FulfillmentPending,
			ShippingAddress:   in.ShippingAddress,
			BillingAddress:    in.BillingAddress,
			Notes:             in.Notes,
			CreatedAt:         now,
			UpdatedAt:         now,
		}, nil
	})
	if err != nil {
		if !isDomainError(err) {
			log.Error("checkout failed", zap.Error(err))
		}
		return nil, err
	}

	events.Emit(ctx, s.publisher, events.New(events.OrderCreated, now, orderEvent{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		BuyerID:     o.BuyerID,
		SellerID:    o.SellerID,
		Total:       o.TotalAmount,
		Status:      o.Status,
	}))
	return o, nil
}

func (s *service) UpdateStatus(ctx context.Context, buyerID, orderID string, to Status, notes *string) (*Order, error) {
	if !to.Valid() {
		return nil, ErrInvalidStatus
	}

	now := s.clock.Now()
	o, from, err := s.repo.UpdateStatus(ctx, StatusChange{
		OrderID: orderID,
		ActorID: buyerID,
		To:      to,
		Reason:  notes,
		At:      now,
	})
	if err != nil {
		if !isDomainError(err) {
			logger.FromCtx(ctx).Error("failed to update order status",
				zap.String("layer", "service"),
				zap.String("order_id", orderID),
				zap.Error(err),
			)
		}
		return nil, err
	}

	// Completion bumps total_sales, which cached products carry.
	if to == StatusCompleted {
		cache.Invalidate(ctx, s.cache, o.ProductIDs()...)
	}

	events.Emit(ctx, s.publisher, events.New(events.OrderStatusChanged, now, orderEvent{
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		BuyerID:     o.BuyerID,
		SellerID:    o.SellerID,
		Total:       o.TotalAmount,
		From:        &from,
		Status:      o.Status,
	}))
	return o, nil
}

func (s *service) List(ctx context.Context, buyerID string, opts ListOptions) (*ListResult, error) {
	if opts.Status != nil && !opts.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	if opts.Limit > MaxLimit {
		opts.Limit = MaxLimit
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}

	orders, total, err := s.repo.ListByBuyer(ctx, buyerID, opts)
	if err != nil {
		return nil, err
	}
	return &ListResult{Orders: orders, Total: total, Limit: opts.Limit, Offset: opts.Offset}, nil
}

// Get returns the order with its audit trail to its buyer or seller. Anyone
// else gets ErrOrderNotFound.
func (s *service) Get(ctx context.Context, userID, orderID string) (*Detail, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.BuyerID != userID && o.SellerID != userID {
		return nil, ErrOrderNotFound
	}

	history, err := s.repo.StatusHistory(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	return &Detail{Order: *o, StatusHistory: history}, nil
}

func isDomainError(err error) bool {
	for _, target := range []error{
		ErrCartNotFound, ErrEmptyCart, ErrMultiSellerCart,
		ErrOrderNotFound, ErrInvalidTransition,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
