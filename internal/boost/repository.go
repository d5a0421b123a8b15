package boost

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"socialmart-be/internal/db"
	"socialmart-be/internal/logger"
	"socialmart-be/internal/product"

	"go.uber.org/zap"
)

type Repository interface {
	// Apply records the purchase and merges it into the product's boost. Only
	// the product's seller may boost it.
	Apply(ctx context.Context, b *Boost, level int) (State, error)
	ListByUser(ctx context.Context, userID string) ([]Boost, error)
}

type repository struct {
	db    *sql.DB
	newID func() string
}

func NewRepository(conn *sql.DB, newID func() string) Repository {
	return &repository{db: conn, newID: newID}
}

func (r *repository) Apply(ctx context.Context, b *Boost, level int) (State, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Apply"),
		zap.String("product_id", b.ProductID),
		zap.String("boost_type", b.BoostType),
	)

	var state State
	err := db.RunInTx(ctx, r.db, func(tx *sql.Tx) error {
		var (
			sellerID string
			curLevel int
			curUntil sql.NullTime
		)
		err := tx.QueryRowContext(ctx,
			`SELECT seller_id, boost_level, boosted_until FROM products WHERE id = $1 FOR UPDATE`, b.ProductID,
		).Scan(&sellerID, &curLevel, &curUntil)
		if errors.Is(err, sql.ErrNoRows) {
			return product.ErrProductNotFound
		}
		if err != nil {
			log.Error("failed to lock product", zap.Error(err))
			return err
		}
		if sellerID != b.UserID {
			return product.ErrProductNotFound
		}

		var until *time.Time
		if curUntil.Valid {
			until = &curUntil.Time
		}
		state = Merge(curLevel, until, b.StartDate, level, b.EndDate)

		b.ID = r.newID()
		_, err = tx.ExecContext(ctx, `
			INSERT INTO product_boosts (
				id, product_id, user_id, boost_type, duration, cost, currency,
				start_date, end_date, impressions, clicks, conversions, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 0, 0, 0, $8)`,
			b.ID, b.ProductID, b.UserID, b.BoostType, b.Duration, b.Cost, b.Currency,
			b.StartDate, b.EndDate,
		)
		if err != nil {
			log.Error("failed to insert boost", zap.Error(err))
			return err
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE products
			SET boost_level = $1, boosted_until = $2, is_sponsored = TRUE, updated_at = $3
			WHERE id = $4`,
			state.BoostLevel, state.BoostedUntil, b.StartDate, b.ProductID,
		)
		if err != nil {
			log.Error("failed to update product boost", zap.Error(err))
		}
		return err
	})
	if err != nil {
		return State{}, err
	}

	b.CreatedAt = b.StartDate
	log.Info("boost applied",
		zap.String("boost_id", b.ID),
		zap.Int("boost_level", state.BoostLevel),
		zap.Time("boosted_until", state.BoostedUntil),
	)
	return state, nil
}

func (r *repository) ListByUser(ctx context.Context, userID string) ([]Boost, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, product_id, user_id, boost_type, duration, cost, currency,
			start_date, end_date, impressions, clicks, conversions, created_at
		FROM product_boosts
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`, userID)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to list boosts",
			zap.String("layer", "repository"),
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return nil, err
	}
	defer rows.Close()

	boosts := make([]Boost, 0)
	for rows.Next() {
		var b Boost
		if err := rows.Scan(
			&b.ID, &b.ProductID, &b.UserID, &b.BoostType, &b.Duration, &b.Cost, &b.Currency,
			&b.StartDate, &b.EndDate, &b.Impressions, &b.Clicks, &b.Conversions, &b.CreatedAt,
		); err != nil {
			return nil, err
		}
		boosts = append(boosts, b)
	}
	return boosts, rows.Err()
}
