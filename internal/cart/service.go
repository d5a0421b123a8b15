package cart

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"socialmart-be/internal/clock"
	"socialmart-be/internal/logger"
	"socialmart-be/internal/product"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Service defines the business logic for carts.
type Service interface {
	GetOrCreateCart(ctx context.Context, userID string) (*Cart, error)
	GetCart(ctx context.Context, userID string) (*View, error)
	AddItem(ctx context.Context, userID string, in AddItemInput) (item *Item, merged bool, err error)
	UpdateItem(ctx context.Context, userID, itemID string, in UpdateItemInput) (*Item, error)
	RemoveItem(ctx context.Context, userID, itemID string) error
}

type service struct {
	repo        Repository
	productRepo product.Repository
	clock       clock.Clock
}

func NewService(repo Repository, productRepo product.Repository, clk clock.Clock) Service {
	return &service{repo: repo, productRepo: productRepo, clock: clk}
}

func (s *service) GetOrCreateCart(ctx context.Context, userID string) (*Cart, error) {
	return s.repo.GetOrCreateCart(ctx, userID, s.clock.Now())
}

func (s *service) GetCart(ctx context.Context, userID string) (*View, error) {
	c, err := s.repo.GetOrCreateCart(ctx, userID, s.clock.Now())
	if err != nil {
		return nil, err
	}

	lines, err := s.repo.ListLines(ctx, c.ID)
	if err != nil {
		return nil, err
	}

	view := &View{Cart: *c, Items: lines, Subtotal: decimal.Zero}
	for _, l := range lines {
		view.ItemCount += l.Quantity
		view.Subtotal = view.Subtotal.Add(l.PriceSnapshot.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return view, nil
}

// AddItem adds quantity units of a product to the caller's cart. A zero
// quantity means one unit. The unit price is frozen on the first add of a
// (product, variant) pair; later adds only increase the quantity.
func (s *service) AddItem(ctx context.Context, userID string, in AddItemInput) (*Item, bool, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "AddItem"),
		zap.String("product_id", in.ProductID),
	)

	in.ProductID = strings.TrimSpace(in.ProductID)
	if in.ProductID == "" {
		return nil, false, ErrProductRequired
	}
	if _, err := uuid.Parse(in.ProductID); err != nil {
		return nil, false, ErrInvalidProduct
	}
	if in.Quantity == 0 {
		in.Quantity = 1
	}
	if in.Quantity < 1 {
		return nil, false, ErrInvalidQuantity
	}
	options, ok := normalizeOptions(in.CustomOptions)
	if !ok {
		return nil, false, ErrInvalidOptions
	}

	p, err := s.productRepo.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, false, err
	}
	if p.Status != product.StatusActive {
		return nil, false, product.ErrProductNotFound
	}
	if !p.InStock {
		return nil, false, ErrOutOfStock
	}

	now := s.clock.Now()
	c, err := s.repo.GetOrCreateCart(ctx, userID, now)
	if err != nil {
		return nil, false, err
	}

	item := &Item{
		CartID:        c.ID,
		ProductID:     p.ID,
		VariantID:     strings.TrimSpace(in.VariantID),
		Quantity:      in.Quantity,
		PriceSnapshot: p.UnitPrice(),
		CustomOptions: options,
		Notes:         in.Notes,
		AddedAt:       now,
		UpdatedAt:     now,
	}

	merged, err := s.repo.UpsertItem(ctx, item)
	if err != nil {
		return nil, false, err
	}

	log.Debug("item added to cart", zap.Bool("merged", merged), zap.Int("quantity", item.Quantity))
	return item, merged, nil
}

func (s *service) UpdateItem(ctx context.Context, userID, itemID string, in UpdateItemInput) (*Item, error) {
	if in.Quantity == nil && in.Notes == nil {
		return nil, ErrEmptyItemUpdate
	}
	if in.Quantity != nil && *in.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	return s.repo.UpdateItem(ctx, userID, itemID, in, s.clock.Now())
}

func (s *service) RemoveItem(ctx context.Context, userID, itemID string) error {
	return s.repo.RemoveItem(ctx, userID, itemID)
}

// normalizeOptions accepts an absent/null value or a JSON object.
func normalizeOptions(raw json.RawMessage) (json.RawMessage, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, true
	}
	if trimmed[0] != '{' || !json.Valid(trimmed) {
		return nil, false
	}
	return json.RawMessage(trimmed), true
}
