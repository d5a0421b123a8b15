package dispute

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"socialmart-be/internal/db"
	"socialmart-be/internal/logger"
	"socialmart-be/internal/order"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const uniqueOrderConstraint = "disputes_order_id_key"

type Repository interface {
	// Open inserts a dispute for an order the buyer owns.
	Open(ctx context.Context, d *Dispute) error
	Update(ctx context.Context, ch Change) (*Dispute, error)
	List(ctx context.Context, userID string, opts ListOptions) ([]Dispute, int, error)
}

type repository struct {
	db    *sql.DB
	newID func() string
}

func NewRepository(conn *sql.DB, newID func() string) Repository {
	return &repository{db: conn, newID: newID}
}

const disputeColumns = `id, order_id, buyer_id, seller_id, dispute_type, reason, description,
	evidence_urls, requested_resolution, requested_amount, status, messages,
	buyer_last_response, seller_last_response, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanDispute(s scanner) (*Dispute, error) {
	var (
		d             Dispute
		evidence      pq.StringArray
		amount        decimal.NullDecimal
		messages      []byte
		buyer, seller sql.NullTime
	)
	err := s.Scan(
		&d.ID, &d.OrderID, &d.BuyerID, &d.SellerID, &d.DisputeType, &d.Reason, &d.Description,
		&evidence, &d.RequestedResolution, &amount, &d.Status, &messages,
		&buyer, &seller, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	d.EvidenceURLs = []string(evidence)
	if d.EvidenceURLs == nil {
		d.EvidenceURLs = []string{}
	}
	if amount.Valid {
		a := amount.Decimal
		d.RequestedAmount = &a
	}
	d.Messages = []Message{}
	if len(messages) > 0 {
		if err := json.Unmarshal(messages, &d.Messages); err != nil {
			return nil, fmt.Errorf("decode dispute messages: %w", err)
		}
	}
	if buyer.Valid {
		d.BuyerLastResponse = &buyer.Time
	}
	if seller.Valid {
		d.SellerLastResponse = &seller.Time
	}
	return &d, nil
}

func (r *repository) Open(ctx context.Context, d *Dispute) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Open"),
		zap.String("order_id", d.OrderID),
	)

	var amount decimal.NullDecimal
	if d.RequestedAmount != nil {
		amount = decimal.NullDecimal{Decimal: *d.RequestedAmount, Valid: true}
	}

	// The seller comes from the order; no row means the order is not the buyer's.
	created, err := scanDispute(r.db.QueryRowContext(ctx, `
		INSERT INTO disputes (
			id, order_id, buyer_id, seller_id, dispute_type, reason, description,
			evidence_urls, requested_resolution, requested_amount, status, messages,
			buyer_last_response, created_at, updated_at
		)
		SELECT $1::uuid, o.id, o.buyer_id, o.seller_id, $2, $3, $4, $5::text[], $6, $7::numeric, $8,
			'[]'::jsonb, $9::timestamptz, $9, $9
		FROM orders o
		WHERE o.id = $10 AND o.buyer_id = $11
		RETURNING `+disputeColumns,
		r.newID(), d.DisputeType, d.Reason, d.Description,
		pq.Array(d.EvidenceURLs), d.RequestedResolution, amount, StatusOpen,
		d.CreatedAt, d.OrderID, d.BuyerID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return order.ErrOrderNotFound
	}
	if db.IsUniqueViolation(err, uniqueOrderConstraint) {
		return ErrDuplicateDispute
	}
	if err != nil {
		log.Error("failed to insert dispute", zap.Error(err))
		return err
	}

	*d = *created
	log.Info("dispute opened", zap.String("dispute_id", d.ID))
	return nil
}

// Update applies a status change and/or a message from the buyer or seller.
// Anyone else gets ErrDisputeNotFound.
func (r *repository) Update(ctx context.Context, ch Change) (*Dispute, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Update"),
		zap.String("dispute_id", ch.DisputeID),
	)

	var updated *Dispute
	err := db.RunInTx(ctx, r.db, func(tx *sql.Tx) error {
		var (
			buyerID, sellerID string
			current           Status
		)
		err := tx.QueryRowContext(ctx,
			`SELECT buyer_id, seller_id, status FROM disputes WHERE id = $1 FOR UPDATE`, ch.DisputeID,
		).Scan(&buyerID, &sellerID, &current)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrDisputeNotFound
		}
		if err != nil {
			log.Error("failed to lock dispute", zap.Error(err))
			return err
		}
		if ch.ActorID != buyerID && ch.ActorID != sellerID {
			return ErrDisputeNotFound
		}

		args := []any{ch.At}
		sets := []string{"updated_at = $1"}

		if ch.Status != nil && *ch.Status != current {
			if !CanTransition(current, *ch.Status) {
				return ErrInvalidTransition
			}
			args = append(args, *ch.Status)
			sets = append(sets, fmt.Sprintf("status = $%d", len(args)))
		}

		if ch.Message != nil {
			msg, err := json.Marshal([]Message{*ch.Message})
			if err != nil {
				return err
			}
			args = append(args, string(msg))
			sets = append(sets, fmt.Sprintf("messages = messages || $%d::jsonb", len(args)))
			if ch.ActorID == buyerID {
				sets = append(sets, "buyer_last_response = $1")
			} else {
				sets = append(sets, "seller_last_response = $1")
			}
		}

		args = append(args, ch.DisputeID)
		query := fmt.Sprintf(`UPDATE disputes SET %s WHERE id = $%d RETURNING %s`,
			strings.Join(sets, ", "), len(args), disputeColumns)

		updated, err = scanDispute(tx.QueryRowContext(ctx, query, args...))
		if err != nil {
			log.Error("failed to update dispute", zap.Error(err))
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *repository) List(ctx context.Context, userID string, opts ListOptions) ([]Dispute, int, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "List"),
	)

	where := "WHERE (buyer_id = $1 OR seller_id = $1)"
	args := []any{userID}
	if opts.Status != nil {
		args = append(args, *opts.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if opts.Type != "" {
		args = append(args, opts.Type)
		where += fmt.Sprintf(" AND dispute_type = $%d", len(args))
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM disputes `+where, args...).Scan(&total); err != nil {
		log.Error("count query failed", zap.Error(err))
		return nil, 0, err
	}

	args = append(args, opts.Limit, opts.Offset)
	query := fmt.Sprintf(`SELECT %s FROM disputes %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		disputeColumns, where, len(args)-1, len(args))
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("list query failed", zap.Error(err))
		return nil, 0, err
	}
	defer rows.Close()

	disputes := make([]Dispute, 0)
	for rows.Next() {
		d, err := scanDispute(rows)
		if err != nil {
			log.Error("row scan failed", zap.Error(err))
			return nil, 0, err
		}
		disputes = append(disputes, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return disputes, total, nil
}
