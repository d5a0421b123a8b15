package product

import (
	"context"
	"errors"
	"testing"
	"time"

	"socialmart-be/internal/cache"
	"socialmart-be/internal/clock"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) List(ctx context.Context, opts ListOptions) ([]Product, int, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]Product), args.Int(1), args.Error(2)
}

func (m *MockRepository) GetByID(ctx context.Context, id string) (*Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Product), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, p *Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockRepository) Update(ctx context.Context, sellerID, id string, in UpdateInput, now time.Time) (*Product, error) {
	args := m.Called(ctx, sellerID, id, in, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Product), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, sellerID, id string) error {
	args := m.Called(ctx, sellerID, id)
	return args.Error(0)
}

func (m *MockRepository) RecordView(ctx context.Context, v View, at time.Time) error {
	args := m.Called(ctx, v, at)
	return args.Error(0)
}

func (m *MockRepository) PriceHistory(ctx context.Context, productID string, since time.Time) ([]PricePoint, error) {
	args := m.Called(ctx, productID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]PricePoint), args.Error(1)
}

func newTestService() (*MockRepository, *cache.Memory, *clock.FakeClock, Service) {
	repo := new(MockRepository)
	store := cache.NewMemory()
	clk := clock.NewFake(fixedNow)
	return repo, store, clk, NewService(repo, store, clk)
}

func boosted(level int, until time.Time) *Product {
	return &Product{
		ID:           "p-1",
		SellerID:     "seller-1",
		Name:         "Mug",
		Price:        decimal.NewFromInt(10),
		BoostLevel:   level,
		BoostedUntil: &until,
		IsSponsored:  true,
	}
}

func TestService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("AnonymousDoesNotRecordView", func(t *testing.T) {
		repo, _, _, svc := newTestService()
		repo.On("GetByID", ctx, "p-1").Return(boosted(4, fixedNow.Add(time.Hour)), nil).Once()

		p, err := svc.Get(ctx, "p-1", View{})
		require.NoError(t, err)
		assert.Equal(t, 4, p.BoostLevel)
		assert.True(t, p.IsSponsored)
		repo.AssertNotCalled(t, "RecordView", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("AuthenticatedRecordsView", func(t *testing.T) {
		repo, store, _, svc := newTestService()
		repo.On("GetByID", ctx, "p-1").Return(boosted(1, fixedNow.Add(time.Hour)), nil).Once()
		repo.On("RecordView", ctx, View{ProductID: "p-1", UserID: "user-1", Source: "direct"}, fixedNow).Return(nil).Once()

		p, err := svc.Get(ctx, "p-1", View{UserID: "user-1"})
		require.NoError(t, err)
		assert.Equal(t, 1, p.ViewCount)
		assert.False(t, store.Has(cache.ProductKey("p-1")))
		repo.AssertExpectations(t)
	})

	t.Run("ViewFailureIsNotSurfaced", func(t *testing.T) {
		repo, store, _, svc := newTestService()
		repo.On("GetByID", ctx, "p-1").Return(boosted(1, fixedNow.Add(time.Hour)), nil).Once()
		repo.On("RecordView", ctx, mock.Anything, fixedNow).Return(errors.New("insert failed")).Once()

		p, err := svc.Get(ctx, "p-1", View{UserID: "user-1"})
		require.NoError(t, err)
		assert.Equal(t, "p-1", p.ID)
		assert.Zero(t, p.ViewCount)
		assert.True(t, store.Has(cache.ProductKey("p-1")))
	})

	t.Run("ExpiredBoostReadsAsUnsponsored", func(t *testing.T) {
		repo, _, _, svc := newTestService()
		repo.On("GetByID", ctx, "p-1").Return(boosted(4, fixedNow.Add(-time.Minute)), nil).Once()

		p, err := svc.Get(ctx, "p-1", View{})
		require.NoError(t, err)
		assert.Equal(t, 0, p.BoostLevel)
		assert.False(t, p.IsSponsored)
	})

	t.Run("ServedFromCacheAndExpiresLater", func(t *testing.T) {
		repo, store, clk, svc := newTestService()
		repo.On("GetByID", ctx, "p-1").Return(boosted(2, fixedNow.Add(time.Hour)), nil).Once()

		_, err := svc.Get(ctx, "p-1", View{})
		require.NoError(t, err)
		assert.True(t, store.Has(cache.ProductKey("p-1")))

		clk.Advance(2 * time.Hour)
		p, err := svc.Get(ctx, "p-1", View{})
		require.NoError(t, err)
		assert.Equal(t, 0, p.BoostLevel)
		repo.AssertNumberOfCalls(t, "GetByID", 1)
	})

	t.Run("NotFound", func(t *testing.T) {
		repo, _, _, svc := newTestService()
		repo.On("GetByID", ctx, "missing").Return(nil, ErrProductNotFound).Once()

		_, err := svc.Get(ctx, "missing", View{UserID: "user-1"})
		assert.ErrorIs(t, err, ErrProductNotFound)
	})
}

func TestService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("NormalisesAndDerivesBoost", func(t *testing.T) {
		repo, _, _, svc := newTestService()
		expected := ListOptions{Sort: SortRecent, Page: 1, Limit: DefaultLimit, Now: fixedNow}
		repo.On("List", ctx, expected).
			Return([]Product{*boosted(3, fixedNow.Add(-time.Hour))}, 41, nil).Once()

		page, err := svc.List(ctx, ListOptions{Sort: "bogus", Page: -4})
		require.NoError(t, err)
		assert.Equal(t, 3, page.Pagination.TotalPages)
		assert.Equal(t, 41, page.Pagination.Total)
		assert.False(t, page.Products[0].IsSponsored)
		repo.AssertExpectations(t)
	})

	t.Run("InvalidPriceRange", func(t *testing.T) {
		_, _, _, svc := newTestService()
		lo, hi := decimal.NewFromInt(50), decimal.NewFromInt(10)

		_, err := svc.List(ctx, ListOptions{MinPrice: &lo, MaxPrice: &hi})
		assert.ErrorIs(t, err, ErrInvalidPriceFilter)
	})
}

func TestService_Search(t *testing.T) {
	ctx := context.Background()
	repo, _, _, svc := newTestService()

	inStock := true
	repo.On("List", ctx, mock.MatchedBy(func(o ListOptions) bool {
		return o.Search == "mug" && o.Sort == SortRelevance && o.Category == "home" && *o.InStock
	})).Return([]Product{}, 0, nil).Once()

	res, err := svc.Search(ctx, SearchInput{Query: "mug", Filters: SearchFilters{Category: "home", InStock: &inStock}})
	require.NoError(t, err)
	assert.Equal(t, "mug", res.SearchQuery)
	assert.Equal(t, "home", res.AppliedFilters.Category)
	assert.Empty(t, res.Results)
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo, _, _, svc := newTestService()
		repo.On("Create", ctx, mock.MatchedBy(func(p *Product) bool {
			return p.SellerID == "seller-1" &&
				p.Status == StatusActive &&
				p.InStock &&
				p.ProductType == DefaultProductType &&
				p.TotalReviews == 0 && p.BoostLevel == 0 &&
				p.Images != nil && p.Tags != nil
		})).Return(nil).Once()

		p, err := svc.Create(ctx, "seller-1", CreateInput{
			Name:     "  Mug ",
			Price:    decimal.RequireFromString("10.499"),
			Category: "home",
		})
		require.NoError(t, err)
		assert.Equal(t, "Mug", p.Name)
		assert.Equal(t, "10.5", p.Price.String())
		repo.AssertExpectations(t)
	})

	cases := []struct {
		name string
		in   CreateInput
		err  error
	}{
		{"MissingName", CreateInput{Price: decimal.NewFromInt(1), Category: "c"}, ErrNameRequired},
		{"MissingCategory", CreateInput{Name: "n", Price: decimal.NewFromInt(1)}, ErrCategoryRequired},
		{"ZeroPrice", CreateInput{Name: "n", Category: "c"}, ErrInvalidPrice},
		{"DiscountAbovePrice", CreateInput{Name: "n", Category: "c", Price: decimal.NewFromInt(5), DiscountPrice: decimalPtr("6")}, ErrInvalidDiscount},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, _, svc := newTestService()
			_, err := svc.Create(ctx, "seller-1", tc.in)
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo, store, _, svc := newTestService()
		require.NoError(t, store.Set(ctx, cache.ProductKey("p-1"), boosted(0, fixedNow)))

		name := "Big Mug"
		in := UpdateInput{Name: &name}
		repo.On("GetByID", ctx, "p-1").Return(boosted(0, fixedNow), nil).Once()
		repo.On("Update", ctx, "seller-1", "p-1", in, fixedNow).Return(&Product{ID: "p-1", Name: name}, nil).Once()

		p, err := svc.Update(ctx, "seller-1", "p-1", in)
		require.NoError(t, err)
		assert.Equal(t, name, p.Name)
		assert.False(t, store.Has(cache.ProductKey("p-1")))
	})

	t.Run("NotOwner", func(t *testing.T) {
		repo, _, _, svc := newTestService()
		repo.On("GetByID", ctx, "p-1").Return(boosted(0, fixedNow), nil).Once()

		_, err := svc.Update(ctx, "intruder", "p-1", UpdateInput{InStock: new(bool)})
		assert.ErrorIs(t, err, ErrProductNotFound)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("DiscountAboveCurrentPrice", func(t *testing.T) {
		repo, _, _, svc := newTestService()
		repo.On("GetByID", ctx, "p-1").Return(boosted(0, fixedNow), nil).Once()

		_, err := svc.Update(ctx, "seller-1", "p-1", UpdateInput{DiscountPrice: decimalPtr("11")})
		assert.ErrorIs(t, err, ErrInvalidDiscount)
	})

	t.Run("Empty", func(t *testing.T) {
		_, _, _, svc := newTestService()
		_, err := svc.Update(ctx, "seller-1", "p-1", UpdateInput{})
		assert.ErrorIs(t, err, ErrEmptyUpdate)
	})

	t.Run("InvalidStatus", func(t *testing.T) {
		_, _, _, svc := newTestService()
		status := "deleted"
		_, err := svc.Update(ctx, "seller-1", "p-1", UpdateInput{Status: &status})
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("InvalidatesCache", func(t *testing.T) {
		repo, store, _, svc := newTestService()
		require.NoError(t, store.Set(ctx, cache.ProductKey("p-1"), boosted(0, fixedNow)))
		repo.On("Delete", ctx, "seller-1", "p-1").Return(nil).Once()

		require.NoError(t, svc.Delete(ctx, "seller-1", "p-1"))
		assert.False(t, store.Has(cache.ProductKey("p-1")))
	})

	t.Run("InUse", func(t *testing.T) {
		repo, _, _, svc := newTestService()
		repo.On("Delete", ctx, "seller-1", "p-1").Return(ErrProductInUse).Once()

		assert.ErrorIs(t, svc.Delete(ctx, "seller-1", "p-1"), ErrProductInUse)
	})
}

func TestEffectiveBoostLevel(t *testing.T) {
	future, past := fixedNow.Add(time.Hour), fixedNow.Add(-time.Hour)

	assert.Equal(t, 3, EffectiveBoostLevel(3, &future, fixedNow))
	assert.Equal(t, 0, EffectiveBoostLevel(3, &past, fixedNow))
	assert.Equal(t, 0, EffectiveBoostLevel(3, &fixedNow, fixedNow))
	assert.Equal(t, 0, EffectiveBoostLevel(3, nil, fixedNow))
	assert.Equal(t, 0, EffectiveBoostLevel(0, &future, fixedNow))
}

func TestUnitPrice(t *testing.T) {
	p := Product{Price: decimal.NewFromInt(10)}
	assert.True(t, p.UnitPrice().Equal(decimal.NewFromInt(10)))

	p.DiscountPrice = decimalPtr("8")
	assert.True(t, p.UnitPrice().Equal(decimal.NewFromInt(8)))
}

func decimalPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestService_PriceHistory(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		period string
		since  time.Time
	}{
		{"1m", fixedNow.AddDate(0, -1, 0)},
		{"3m", fixedNow.AddDate(0, -3, 0)},
		{"1y", fixedNow.AddDate(-1, 0, 0)},
		{"", fixedNow.AddDate(0, -6, 0)},
		{"10y", fixedNow.AddDate(0, -6, 0)},
	}
	for _, tc := range cases {
		t.Run("Period"+tc.period, func(t *testing.T) {
			repo, _, _, svc := newTestService()
			repo.On("GetByID", ctx, "p-1").Return(boosted(0, fixedNow), nil).Once()
			repo.On("PriceHistory", ctx, "p-1", tc.since).Return([]PricePoint{{ID: "ph-1"}}, nil).Once()

			points, err := svc.PriceHistory(ctx, "p-1", tc.period)
			require.NoError(t, err)
			assert.Len(t, points, 1)
			repo.AssertExpectations(t)
		})
	}

	t.Run("MissingProduct", func(t *testing.T) {
		repo, _, _, svc := newTestService()
		repo.On("GetByID", ctx, "missing").Return(nil, ErrProductNotFound).Once()

		_, err := svc.PriceHistory(ctx, "missing", "1m")
		assert.ErrorIs(t, err, ErrProductNotFound)
		repo.AssertNotCalled(t, "PriceHistory", mock.Anything, mock.Anything, mock.Anything)
	})
}
