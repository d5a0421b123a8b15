package wishlist

import (
	"context"
	"strings"

	"socialmart-be/internal/clock"
	"socialmart-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	List(ctx context.Context, userID string) ([]Wishlist, error)
	Create(ctx context.Context, userID string, in CreateInput) (*Wishlist, error)
	Items(ctx context.Context, userID, wishlistID string) ([]Line, error)
	AddItem(ctx context.Context, userID, wishlistID string, in AddItemInput) (*Item, error)
	RemoveItem(ctx context.Context, userID, wishlistID, itemID string) error
}

type service struct {
	repo  Repository
	clock clock.Clock
}

func NewService(repo Repository, clk clock.Clock) Service {
	return &service{repo: repo, clock: clk}
}

func (s *service) List(ctx context.Context, userID string) ([]Wishlist, error) {
	return s.repo.List(ctx, userID)
}

func (s *service) Create(ctx context.Context, userID string, in CreateInput) (*Wishlist, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	w := &Wishlist{
		UserID:      userID,
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		IsPublic:    in.IsPublic,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.repo.Create(ctx, w); err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("wishlist created",
		zap.String("layer", "service"),
		zap.String("wishlist_id", w.ID),
		zap.String("user_id", userID),
	)
	return w, nil
}

func (s *service) Items(ctx context.Context, userID, wishlistID string) ([]Line, error) {
	return s.repo.Items(ctx, userID, wishlistID)
}

func (s *service) AddItem(ctx context.Context, userID, wishlistID string, in AddItemInput) (*Item, error) {
	productID := strings.TrimSpace(in.ProductID)
	if productID == "" {
		return nil, ErrProductRequired
	}
	if _, err := uuid.Parse(productID); err != nil {
		return nil, ErrInvalidProduct
	}

	priority := in.Priority
	if priority == "" {
		priority = PriorityMedium
	}
	if !priority.Valid() {
		return nil, ErrInvalidPriority
	}
	if in.TargetPrice != nil && in.TargetPrice.IsNegative() {
		return nil, ErrInvalidTargetPrice
	}

	item := &Item{
		WishlistID:      wishlistID,
		ProductID:       productID,
		Priority:        priority,
		TargetPrice:     in.TargetPrice,
		Notes:           strings.TrimSpace(in.Notes),
		NotifyOnSale:    flag(in.NotifyOnSale),
		NotifyOnRestock: flag(in.NotifyOnRestock),
		AddedAt:         s.clock.Now(),
	}
	if err := s.repo.AddItem(ctx, userID, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *service) RemoveItem(ctx context.Context, userID, wishlistID, itemID string) error {
	return s.repo.RemoveItem(ctx, userID, wishlistID, itemID, s.clock.Now())
}

// flag defaults an unset notify flag to true.
func flag(b *bool) bool {
	return b == nil || *b
}
