package review

import (
	"context"
	"errors"
	"strings"

	"socialmart-be/internal/cache"
	"socialmart-be/internal/clock"
	"socialmart-be/internal/events"
	"socialmart-be/internal/logger"
	"socialmart-be/internal/product"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

type Service interface {
	Create(ctx context.Context, reviewerID, productID string, in CreateInput) (*Created, error)
	List(ctx context.Context, productID string, opts ListOptions) (*ListResult, error)
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

type reviewEvent struct {
	ReviewID      string `json:"review_id"`
	ProductID     string `json:"product_id"`
	SellerID      string `json:"seller_id"`
	ReviewerID    string `json:"reviewer_id"`
	OverallRating int    `json:"overall_rating"`
	AverageRating string `json:"average_rating"`
	TotalReviews  int    `json:"total_reviews"`
}

func (s *service) Create(ctx context.Context, reviewerID, productID string, in CreateInput) (*Created, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Create"),
		zap.String("product_id", productID),
	)

	in.OrderID = strings.TrimSpace(in.OrderID)
	if in.OrderID == "" {
		return nil, ErrOrderRequired
	}
	if _, err := uuid.Parse(in.OrderID); err != nil {
		return nil, ErrInvalidOrder
	}
	if !validRating(in.OverallRating) {
		return nil, ErrInvalidRating
	}
	for _, r := range []*int{in.QualityRating, in.ValueRating, in.ShippingRating, in.ServiceRating} {
		if r != nil && !validRating(*r) {
			return nil, ErrInvalidRating
		}
	}

	now := s.clock.Now()
	rv := &Review{
		OrderID:          in.OrderID,
		ProductID:        productID,
		ReviewerID:       reviewerID,
		OverallRating:    in.OverallRating,
		QualityRating:    in.QualityRating,
		ValueRating:      in.ValueRating,
		ShippingRating:   in.ShippingRating,
		ServiceRating:    in.ServiceRating,
		Title:            strings.TrimSpace(in.Title),
		Comment:          strings.TrimSpace(in.Comment),
		Pros:             clean(in.Pros),
		Cons:             clean(in.Cons),
		Images:           clean(in.Images),
		ModerationStatus: ModerationApproved,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	agg, err := s.repo.Create(ctx, rv)
	if err != nil {
		if !errors.Is(err, ErrNotPurchased) && !errors.Is(err, ErrDuplicateReview) && !errors.Is(err, product.ErrProductNotFound) {
			log.Error("failed to create review", zap.Error(err))
		}
		return nil, err
	}

	cache.Invalidate(ctx, s.cache, productID)
	events.Emit(ctx, s.publisher, events.New(events.ReviewCreated, now, reviewEvent{
		ReviewID:      rv.ID,
		ProductID:     rv.ProductID,
		SellerID:      rv.SellerID,
		ReviewerID:    rv.ReviewerID,
		OverallRating: rv.OverallRating,
		AverageRating: agg.AverageRating.StringFixed(1),
		TotalReviews:  agg.TotalReviews,
	}))

	return &Created{Review: *rv, Product: agg}, nil
}

func (s *service) List(ctx context.Context, productID string, opts ListOptions) (*ListResult, error) {
	if opts.Sort == "" {
		opts.Sort = SortRecent
	}
	if _, ok := orderBy[opts.Sort]; !ok {
		return nil, ErrInvalidSort
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

	reviews, total, err := s.repo.List(ctx, productID, opts)
	if err != nil {
		return nil, err
	}
	return &ListResult{Reviews: reviews, Total: total, Limit: opts.Limit, Offset: opts.Offset}, nil
}

func validRating(r int) bool {
	return r >= 1 && r <= 5
}

// clean trims entries and drops blanks. The result is never nil.
func clean(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
