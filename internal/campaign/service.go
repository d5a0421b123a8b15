package campaign

import (
	"context"
	"errors"
	"strings"

	"socialmart-be/internal/clock"
	"socialmart-be/internal/events"
	"socialmart-be/internal/logger"
	"socialmart-be/internal/product"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	List(ctx context.Context) ([]Campaign, error)
	Join(ctx context.Context, sellerID, campaignID string, in JoinInput) (*Participation, error)
}

type service struct {
	repo      Repository
	publisher events.Publisher
	clock     clock.Clock
}

func NewService(repo Repository, pub events.Publisher, clk clock.Clock) Service {
	if pub == nil {
		pub = events.NopPublisher{}
	}
	return &service{repo: repo, publisher: pub, clock: clk}
}

type joinEvent struct {
	ParticipationID string `json:"participation_id"`
	CampaignID      string `json:"campaign_id"`
	ProductID       string `json:"product_id"`
	SellerID        string `json:"seller_id"`
}

func (s *service) List(ctx context.Context) ([]Campaign, error) {
	return s.repo.ListOpen(ctx, s.clock.Now())
}

func (s *service) Join(ctx context.Context, sellerID, campaignID string, in JoinInput) (*Participation, error) {
	in.ProductID = strings.TrimSpace(in.ProductID)
	switch {
	case in.ProductID == "":
		return nil, ErrProductRequired
	case uuid.Validate(in.ProductID) != nil:
		return nil, ErrInvalidProduct
	}

	now := s.clock.Now()
	p := &Participation{
		CampaignID:  campaignID,
		ProductID:   in.ProductID,
		RequestedBy: sellerID,
		Status:      ParticipationPending,
		CreatedAt:   now,
	}
	if err := s.repo.Join(ctx, p, now); err != nil {
		if !errors.Is(err, ErrCampaignNotFound) && !errors.Is(err, ErrAlreadyJoined) && !errors.Is(err, product.ErrProductNotFound) {
			logger.FromCtx(ctx).Error("campaign join failed",
				zap.String("layer", "service"),
				zap.String("campaign_id", campaignID),
				zap.Error(err),
			)
		}
		return nil, err
	}

	events.Emit(ctx, s.publisher, events.New(events.CampaignJoined, now, joinEvent{
		ParticipationID: p.ID,
		CampaignID:      p.CampaignID,
		ProductID:       p.ProductID,
		SellerID:        sellerID,
	}))
	return p, nil
}
