package product

import (
	"context"
	"errors"
	"strings"

	"socialmart-be/internal/cache"
	"socialmart-be/internal/clock"
	"socialmart-be/internal/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Service interface {
	List(ctx context.Context, opts ListOptions) (*Page, error)
	Search(ctx context.Context, in SearchInput) (*SearchResult, error)
	Get(ctx context.Context, id string, viewer View) (*Product, error)
	Create(ctx context.Context, sellerID string, in CreateInput) (*Product, error)
	Update(ctx context.Context, sellerID, id string, in UpdateInput) (*Product, error)
	Delete(ctx context.Context, sellerID, id string) error
	PriceHistory(ctx context.Context, id, period string) ([]PricePoint, error)
}

type service struct {
	repo  Repository
	cache cache.Store
	clock clock.Clock
}

func NewService(repo Repository, store cache.Store, clk clock.Clock) Service {
	if store == nil {
		store = cache.Nop{}
	}
	return &service{repo: repo, cache: store, clock: clk}
}

func (s *service) List(ctx context.Context, opts ListOptions) (*Page, error) {
	if opts.MinPrice != nil && opts.MaxPrice != nil && opts.MinPrice.GreaterThan(*opts.MaxPrice) {
		return nil, ErrInvalidPriceFilter
	}
	if !ValidSort(opts.Sort) {
		opts.Sort = SortRecent
	}
	opts.Page, opts.Limit = normalizePaging(opts.Page, opts.Limit)
	opts.Now = s.clock.Now()

	products, total, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, err
	}
	for i := range products {
		products[i].ApplyBoostWindow(opts.Now)
	}

	return &Page{
		Products: products,
		Pagination: Pagination{
			Page:       opts.Page,
			Limit:      opts.Limit,
			Total:      total,
			TotalPages: totalPages(total, opts.Limit),
		},
	}, nil
}

func (s *service) Search(ctx context.Context, in SearchInput) (*SearchResult, error) {
	sort := in.SortBy
	if sort == "" {
		sort = SortRelevance
	}

	page, err := s.List(ctx, ListOptions{
		Search:      in.Query,
		Category:    in.Filters.Category,
		ProductType: in.Filters.ProductType,
		MinPrice:    in.Filters.MinPrice,
		MaxPrice:    in.Filters.MaxPrice,
		MinRating:   in.Filters.Rating,
		InStock:     in.Filters.InStock,
		Sort:        sort,
		Page:        in.Page,
		Limit:       in.Limit,
	})
	if err != nil {
		return nil, err
	}

	return &SearchResult{
		Results:        page.Products,
		Pagination:     page.Pagination,
		SearchQuery:    in.Query,
		AppliedFilters: in.Filters,
	}, nil
}

// Get returns the product and, for authenticated viewers, records the view.
// A recorded view drops the cached entry so view_count stays current. A
// failed view record never fails the read.
func (s *service) Get(ctx context.Context, id string, viewer View) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Get"),
		zap.String("product_id", id),
	)

	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if viewer.UserID != "" {
		viewer.ProductID = id
		if viewer.Source == "" {
			viewer.Source = "direct"
		}
		if err := s.repo.RecordView(ctx, viewer, s.clock.Now()); err != nil {
			log.Warn("failed to record product view", zap.Error(err))
		} else {
			p.ViewCount++
			cache.Invalidate(ctx, s.cache, id)
		}
	}

	p.ApplyBoostWindow(s.clock.Now())
	return p, nil
}

// load reads through the cache. Cached entries hold stored boost fields; the
// window is applied by the caller.
func (s *service) load(ctx context.Context, id string) (*Product, error) {
	log := logger.FromCtx(ctx).With(zap.String("product_id", id))
	key := cache.ProductKey(id)

	var cached Product
	found, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		log.Warn("product cache read failed", zap.Error(err))
	}
	if found {
		return &cached, nil
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, p); err != nil {
		log.Warn("product cache write failed", zap.Error(err))
	}
	return p, nil
}

func (s *service) Create(ctx context.Context, sellerID string, in CreateInput) (*Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)

	if in.Name == "" {
		return nil, ErrNameRequired
	}
	if in.Category == "" {
		return nil, ErrCategoryRequired
	}
	if !in.Price.IsPositive() {
		return nil, ErrInvalidPrice
	}
	if err := validateDiscount(in.Price, in.DiscountPrice); err != nil {
		return nil, err
	}

	productType := in.ProductType
	if productType == "" {
		productType = DefaultProductType
	}
	inStock := true
	if in.InStock != nil {
		inStock = *in.InStock
	}

	now := s.clock.Now()
	p := &Product{
		SellerID:      sellerID,
		Name:          in.Name,
		Description:   in.Description,
		Price:         in.Price.Round(2),
		DiscountPrice: roundPtr(in.DiscountPrice),
		Category:      in.Category,
		Subcategory:   in.Subcategory,
		ProductType:   productType,
		InStock:       inStock,
		Images:        nonNil(in.Images),
		Tags:          nonNil(in.Tags),
		Status:        StatusActive,
		AverageRating: decimal.Zero,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) Update(ctx context.Context, sellerID, id string, in UpdateInput) (*Product, error) {
	if in.IsEmpty() {
		return nil, ErrEmptyUpdate
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		in.Name = &name
	}
	if in.Category != nil && strings.TrimSpace(*in.Category) == "" {
		return nil, ErrCategoryRequired
	}
	if in.Status != nil && !validStatus(*in.Status) {
		return nil, ErrInvalidStatus
	}
	if in.Price != nil && !in.Price.IsPositive() {
		return nil, ErrInvalidPrice
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.SellerID != sellerID {
		return nil, ErrProductNotFound
	}

	price := current.Price
	if in.Price != nil {
		price = *in.Price
	}
	discount := current.DiscountPrice
	if in.RemoveDiscount {
		discount = nil
	} else if in.DiscountPrice != nil {
		discount = in.DiscountPrice
	}
	if err := validateDiscount(price, discount); err != nil {
		return nil, err
	}

	p, err := s.repo.Update(ctx, sellerID, id, in, s.clock.Now())
	if err != nil {
		return nil, err
	}

	cache.Invalidate(ctx, s.cache, id)
	p.ApplyBoostWindow(s.clock.Now())
	return p, nil
}

func (s *service) Delete(ctx context.Context, sellerID, id string) error {
	if err := s.repo.Delete(ctx, sellerID, id); err != nil {
		if !errors.Is(err, ErrProductNotFound) && !errors.Is(err, ErrProductInUse) {
			logger.FromCtx(ctx).Error("failed to delete product",
				zap.String("layer", "service"),
				zap.String("product_id", id),
				zap.Error(err),
			)
		}
		return err
	}

	cache.Invalidate(ctx, s.cache, id)
	return nil
}

func validateDiscount(price decimal.Decimal, discount *decimal.Decimal) error {
	if discount == nil {
		return nil
	}
	if discount.IsNegative() || discount.GreaterThan(price) {
		return ErrInvalidDiscount
	}
	return nil
}

func validStatus(s string) bool {
	switch s {
	case StatusActive, StatusInactive, StatusDraft:
		return true
	}
	return false
}

func roundPtr(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	r := d.Round(2)
	return &r
}

// DefaultHistoryPeriod applies when the period is empty or unknown.
const DefaultHistoryPeriod = "6m"

var historyPeriods = map[string][3]int{
	"1m": {0, -1, 0},
	"3m": {0, -3, 0},
	"6m": {0, -6, 0},
	"1y": {-1, 0, 0},
}

// PriceHistory returns the price changes of a product within period
// (1m, 3m, 6m or 1y), oldest first.
func (s *service) PriceHistory(ctx context.Context, id, period string) ([]PricePoint, error) {
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}

	back, ok := historyPeriods[period]
	if !ok {
		back = historyPeriods[DefaultHistoryPeriod]
	}
	since := s.clock.Now().AddDate(back[0], back[1], back[2])
	return s.repo.PriceHistory(ctx, id, since)
}
