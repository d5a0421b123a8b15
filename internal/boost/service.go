package boost

import (
	"context"
	"errors"
	"time"

	"socialmart-be/internal/cache"
	"socialmart-be/internal/clock"
	"socialmart-be/internal/events"
	"socialmart-be/internal/logger"
	"socialmart-be/internal/product"

	"go.uber.org/zap"
)

type Service interface {
	Options() []Option
	Create(ctx context.Context, userID, productID, optionID string) (*Result, error)
	ListMine(ctx context.Context, userID string) ([]Boost, error)
}

type service struct {
	repo      Repository
	cache     cache.Store
	publisher events.Publisher
	clock     clock.Clock
}

func NewService(repo Repository, store cache.Store, pub events.Publisher, clk clock.Clock) Service {
	if store == nil {
		store = cache.Nop{}
	}
	if pub == nil {
		pub = events.NopPublisher{}
	}
	return &service{repo: repo, cache: store, publisher: pub, clock: clk}
}

func (s *service) Options() []Option {
	return Options()
}

type boostEvent struct {
	BoostID      string    `json:"boost_id"`
	ProductID    string    `json:"product_id"`
	UserID       string    `json:"user_id"`
	BoostType    string    `json:"boost_type"`
	BoostLevel   int       `json:"boost_level"`
	BoostedUntil time.Time `json:"boosted_until"`
}

func (s *service) Create(ctx context.Context, userID, productID, optionID string) (*Result, error) {
	opt, ok := Lookup(optionID)
	if !ok {
		return nil, ErrInvalidBoostOption
	}

	now := s.clock.Now()
	b := &Boost{
		ProductID: productID,
		UserID:    userID,
		BoostType: opt.BoostType,
		Duration:  opt.DurationHours,
		Cost:      opt.Price,
		Currency:  opt.Currency,
		StartDate: now,
		EndDate:   now.Add(time.Duration(opt.DurationHours) * time.Hour),
	}

	state, err := s.repo.Apply(ctx, b, opt.Level)
	if err != nil {
		if !errors.Is(err, product.ErrProductNotFound) {
			logger.FromCtx(ctx).Error("failed to apply boost",
				zap.String("layer", "service"),
				zap.String("product_id", productID),
				zap.Error(err),
			)
		}
		return nil, err
	}

	cache.Invalidate(ctx, s.cache, productID)
	events.Emit(ctx, s.publisher, events.New(events.BoostCreated, now, boostEvent{
		BoostID:      b.ID,
		ProductID:    b.ProductID,
		UserID:       b.UserID,
		BoostType:    b.BoostType,
		BoostLevel:   state.BoostLevel,
		BoostedUntil: state.BoostedUntil,
	}))
	return &Result{Boost: *b, Product: state}, nil
}

func (s *service) ListMine(ctx context.Context, userID string) ([]Boost, error) {
	return s.repo.ListByUser(ctx, userID)
}
