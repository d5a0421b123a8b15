package campaign

import (
	"context"
	"database/sql"
	"time"

	"socialmart-be/internal/db"
	"socialmart-be/internal/logger"
	"socialmart-be/internal/product"

	"go.uber.org/zap"
)

const participationKey = "campaign_products_campaign_product_key"

type Repository interface {
	// ListOpen returns the public active campaigns running at now, newest first.
	ListOpen(ctx context.Context, now time.Time) ([]Campaign, error)
	// Join records a pending participation for a product the seller owns in
	// a campaign that is open at now.
	Join(ctx context.Context, p *Participation, now time.Time) error
}

type repository struct {
	db    *sql.DB
	newID func() string
}

func NewRepository(conn *sql.DB, newID func() string) Repository {
	return &repository{db: conn, newID: newID}
}

const openFilter = `is_public = TRUE AND status = 'active' AND start_date <= $1 AND end_date >= $1`

func (r *repository) ListOpen(ctx context.Context, now time.Time) ([]Campaign, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "ListOpen"),
	)

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, description, campaign_type, status, is_public, banner_url,
			start_date, end_date, created_at
		FROM campaigns
		WHERE `+openFilter+`
		ORDER BY created_at DESC, id DESC
	`, now)
	if err != nil {
		log.Error("query failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	campaigns := make([]Campaign, 0)
	for rows.Next() {
		var (
			c      Campaign
			banner sql.NullString
		)
		if err := rows.Scan(
			&c.ID, &c.Name, &c.Description, &c.CampaignType, &c.Status, &c.IsPublic, &banner,
			&c.StartDate, &c.EndDate, &c.CreatedAt,
		); err != nil {
			log.Error("row scan failed", zap.Error(err))
			return nil, err
		}
		if banner.Valid {
			c.BannerURL = &banner.String
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}

func (r *repository) Join(ctx context.Context, p *Participation, now time.Time) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Join"),
		zap.String("campaign_id", p.CampaignID),
		zap.String("product_id", p.ProductID),
	)

	return db.RunInTx(ctx, r.db, func(tx *sql.Tx) error {
		var open bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM campaigns WHERE id = $2 AND `+openFilter+`)`, now, p.CampaignID,
		).Scan(&open); err != nil {
			log.Error("campaign lookup failed", zap.Error(err))
			return err
		}
		if !open {
			return ErrCampaignNotFound
		}

		var owned bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM products WHERE id = $1 AND seller_id = $2)`, p.ProductID, p.RequestedBy,
		).Scan(&owned); err != nil {
			log.Error("product lookup failed", zap.Error(err))
			return err
		}
		if !owned {
			return product.ErrProductNotFound
		}

		p.ID = r.newID()
		_, err := tx.ExecContext(ctx, `
			INSERT INTO campaign_products (id, campaign_id, product_id, requested_by, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $6)`,
			p.ID, p.CampaignID, p.ProductID, p.RequestedBy, string(p.Status), p.CreatedAt,
		)
		if db.IsUniqueViolation(err, participationKey) {
			return ErrAlreadyJoined
		}
		if err != nil {
			log.Error("failed to insert participation", zap.Error(err))
			return err
		}
		p.UpdatedAt = p.CreatedAt
		return nil
	})
}
