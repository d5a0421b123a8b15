package dispute

import (
	"context"
	"errors"
	"strings"

	"socialmart-be/internal/clock"
	"socialmart-be/internal/events"
	"socialmart-be/internal/logger"
	"socialmart-be/internal/order"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

type Service interface {
	Open(ctx context.Context, buyerID string, in OpenInput) (*Dispute, error)
	Update(ctx context.Context, userID, disputeID string, in UpdateInput) (*Dispute, error)
	List(ctx context.Context, userID string, opts ListOptions) (*ListResult, error)
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

type disputeEvent struct {
	DisputeID string `json:"dispute_id"`
	OrderID   string `json:"order_id"`
	BuyerID   string `json:"buyer_id"`
	SellerID  string `json:"seller_id"`
	Status    Status `json:"status"`
	ActorID   string `json:"actor_id"`
}

func (s *service) Open(ctx context.Context, buyerID string, in OpenInput) (*Dispute, error) {
	in.OrderID = strings.TrimSpace(in.OrderID)
	in.DisputeType = strings.TrimSpace(in.DisputeType)
	in.Reason = strings.TrimSpace(in.Reason)
	switch {
	case in.OrderID == "":
		return nil, ErrOrderRequired
	case uuid.Validate(in.OrderID) != nil:
		return nil, ErrInvalidOrder
	case in.DisputeType == "":
		return nil, ErrTypeRequired
	case in.Reason == "":
		return nil, ErrReasonRequired
	case in.RequestedAmount != nil && in.RequestedAmount.IsNegative():
		return nil, ErrInvalidAmount
	}

	now := s.clock.Now()
	d := &Dispute{
		OrderID:             in.OrderID,
		BuyerID:             buyerID,
		DisputeType:         in.DisputeType,
		Reason:              in.Reason,
		Description:         strings.TrimSpace(in.Description),
		EvidenceURLs:        cleanURLs(in.EvidenceURLs),
		RequestedResolution: strings.TrimSpace(in.RequestedResolution),
		RequestedAmount:     in.RequestedAmount,
		CreatedAt:           now,
	}
	if err := s.repo.Open(ctx, d); err != nil {
		if !errors.Is(err, order.ErrOrderNotFound) && !errors.Is(err, ErrDuplicateDispute) {
			logger.FromCtx(ctx).Error("failed to open dispute",
				zap.String("layer", "service"),
				zap.String("order_id", in.OrderID),
				zap.Error(err),
			)
		}
		return nil, err
	}

	events.Emit(ctx, s.publisher, events.New(events.DisputeOpened, now, disputeEvent{
		DisputeID: d.ID,
		OrderID:   d.OrderID,
		BuyerID:   d.BuyerID,
		SellerID:  d.SellerID,
		Status:    d.Status,
		ActorID:   buyerID,
	}))
	return d, nil
}

func (s *service) Update(ctx context.Context, userID, disputeID string, in UpdateInput) (*Dispute, error) {
	if in.Status != nil && !in.Status.Valid() {
		return nil, ErrInvalidStatus
	}

	now := s.clock.Now()
	ch := Change{DisputeID: disputeID, ActorID: userID, Status: in.Status, At: now}
	if in.Response != nil {
		if text := strings.TrimSpace(*in.Response); text != "" {
			ch.Message = &Message{
				From:         userID,
				Message:      text,
				Timestamp:    now,
				EvidenceURLs: cleanURLs(in.EvidenceURLs),
			}
		}
	}
	if ch.Status == nil && ch.Message == nil {
		return nil, ErrEmptyUpdate
	}

	d, err := s.repo.Update(ctx, ch)
	if err != nil {
		return nil, err
	}

	events.Emit(ctx, s.publisher, events.New(events.DisputeUpdated, now, disputeEvent{
		DisputeID: d.ID,
		OrderID:   d.OrderID,
		BuyerID:   d.BuyerID,
		SellerID:  d.SellerID,
		Status:    d.Status,
		ActorID:   userID,
	}))
	return d, nil
}

func (s *service) List(ctx context.Context, userID string, opts ListOptions) (*ListResult, error) {
	if opts.Status != nil && !opts.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	opts.Type = strings.TrimSpace(opts.Type)
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	if opts.Limit > MaxLimit {
		opts.Limit = MaxLimit
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}

	disputes, total, err := s.repo.List(ctx, userID, opts)
	if err != nil {
		return nil, err
	}
	return &ListResult{Disputes: disputes, Total: total, Limit: opts.Limit, Offset: opts.Offset}, nil
}

func cleanURLs(in []string) []string {
	out := make([]string, 0, len(in))
	for _, u := range in {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, u)
		}
	}
	return out
}
