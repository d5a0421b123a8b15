package category

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) ListActive(ctx context.Context) ([]Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Category), args.Error(1)
}

func (m *MockRepository) Children(ctx context.Context, parentID, filter string) ([]Category, error) {
	args := m.Called(ctx, parentID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Category), args.Error(1)
}

func ptr(s string) *string { return &s }

// --- Tests ---

func TestService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("NestsInOrder", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("ListActive", ctx).Return([]Category{
			{ID: "home", Name: "Home"},
			{ID: "kitchen", Name: "Kitchen", ParentID: ptr("home")},
			{ID: "fashion", Name: "Fashion"},
			{ID: "garden", Name: "Garden", ParentID: ptr("home")},
			{ID: "orphan", Name: "Orphan", ParentID: ptr("hidden")},
		}, nil)

		tree, err := NewService(repo).List(ctx)
		require.NoError(t, err)
		require.Len(t, tree, 2)
		assert.Equal(t, "home", tree[0].ID)
		assert.Equal(t, "fashion", tree[1].ID)
		require.Len(t, tree[0].Subcategories, 2)
		assert.Equal(t, "kitchen", tree[0].Subcategories[0].ID)
		assert.Equal(t, "garden", tree[0].Subcategories[1].ID)
		assert.Empty(t, tree[1].Subcategories)
	})

	t.Run("Empty", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("ListActive", ctx).Return([]Category{}, nil)

		tree, err := NewService(repo).List(ctx)
		require.NoError(t, err)
		assert.NotNil(t, tree)
		assert.Empty(t, tree)
	})

	t.Run("Error", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("ListActive", ctx).Return(nil, errors.New("db error"))

		_, err := NewService(repo).List(ctx)
		assert.Error(t, err)
	})
}

func TestService_Subcategories(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	repo.On("Children", ctx, "home", "kit").Return([]Category{{ID: "kitchen"}}, nil)
	repo.On("Children", ctx, "gone", "").Return(nil, ErrCategoryNotFound)

	svc := NewService(repo)

	subs, err := svc.Subcategories(ctx, "home", "  kit ")
	require.NoError(t, err)
	assert.Len(t, subs, 1)

	_, err = svc.Subcategories(ctx, "gone", "")
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}
