package review

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"socialmart-be/internal/db"
	"socialmart-be/internal/logger"
	"socialmart-be/internal/product"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const uniqueReviewConstraint = "reviews_order_product_reviewer_key"

type Repository interface {
	// Create inserts the review and recomputes the product rating in one
	// transaction. The product row lock serialises recomputes per product.
	Create(ctx context.Context, r *Review) (Aggregate, error)
	List(ctx context.Context, productID string, opts ListOptions) ([]Review, int, error)
}

type repository struct {
	db    *sql.DB
	newID func() string
}

func NewRepository(conn *sql.DB, newID func() string) Repository {
	return &repository{db: conn, newID: newID}
}

const reviewColumns = `id, order_id, product_id, reviewer_id, seller_id,
	overall_rating, quality_rating, value_rating, shipping_rating, service_rating,
	title, comment, pros, cons, images, is_verified_purchase,
	helpful_votes, total_votes, moderation_status, created_at, updated_at`

var orderBy = map[SortBy]string{
	SortRecent:     "created_at DESC, id DESC",
	SortRatingHigh: "overall_rating DESC, created_at DESC",
	SortRatingLow:  "overall_rating ASC, created_at DESC",
	SortHelpful:    "helpful_votes DESC, created_at DESC",
}

// averageOf is the exact mean rounded half-up to one decimal.
func averageOf(sum int64, count int) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(sum).Div(decimal.NewFromInt(int64(count))).Round(1)
}

func (r *repository) Create(ctx context.Context, rv *Review) (Aggregate, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Create"),
		zap.String("product_id", rv.ProductID),
		zap.String("order_id", rv.OrderID),
	)
	start := time.Now()

	var agg Aggregate
	err := db.RunInTx(ctx, r.db, func(tx *sql.Tx) error {
		// 1. Lock the product
		err := tx.QueryRowContext(ctx,
			`SELECT seller_id FROM products WHERE id = $1 FOR UPDATE`, rv.ProductID,
		).Scan(&rv.SellerID)
		if errors.Is(err, sql.ErrNoRows) {
			return product.ErrProductNotFound
		}
		if err != nil {
			log.Error("failed to lock product", zap.Error(err))
			return err
		}

		// 2. Completed order of this reviewer containing the product
		ref, err := json.Marshal([]map[string]string{{"product_id": rv.ProductID}})
		if err != nil {
			return err
		}
		var purchased bool
		err = tx.QueryRowContext(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM orders
				WHERE id = $1 AND buyer_id = $2 AND status = 'completed' AND items @> $3::jsonb
			)`, rv.OrderID, rv.ReviewerID, string(ref),
		).Scan(&purchased)
		if err != nil {
			log.Error("failed to check purchase", zap.Error(err))
			return err
		}
		if !purchased {
			return ErrNotPurchased
		}

		// 3. Duplicate check; the unique constraint backs it up
		var exists bool
		err = tx.QueryRowContext(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM reviews
				WHERE order_id = $1 AND product_id = $2 AND reviewer_id = $3
			)`, rv.OrderID, rv.ProductID, rv.ReviewerID,
		).Scan(&exists)
		if err != nil {
			log.Error("failed to check duplicate review", zap.Error(err))
			return err
		}
		if exists {
			return ErrDuplicateReview
		}

		// 4. Insert
		rv.ID = r.newID()
		_, err = tx.ExecContext(ctx, `
			INSERT INTO reviews (
				id, order_id, product_id, reviewer_id, seller_id,
				overall_rating, quality_rating, value_rating, shipping_rating, service_rating,
				title, comment, pros, cons, images, is_verified_purchase,
				helpful_votes, total_votes, moderation_status, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, TRUE, 0, 0, $16, $17, $17)`,
			rv.ID, rv.OrderID, rv.ProductID, rv.ReviewerID, rv.SellerID,
			rv.OverallRating, rv.QualityRating, rv.ValueRating, rv.ShippingRating, rv.ServiceRating,
			rv.Title, rv.Comment, pq.Array(rv.Pros), pq.Array(rv.Cons), pq.Array(rv.Images),
			rv.ModerationStatus, rv.CreatedAt,
		)
		if db.IsUniqueViolation(err, uniqueReviewConstraint) {
			return ErrDuplicateReview
		}
		if err != nil {
			log.Error("failed to insert review", zap.Error(err))
			return err
		}

		// 5. Full recompute
		var sum int64
		err = tx.QueryRowContext(ctx,
			`SELECT COALESCE(SUM(overall_rating), 0), COUNT(*) FROM reviews WHERE product_id = $1`,
			rv.ProductID,
		).Scan(&sum, &agg.TotalReviews)
		if err != nil {
			log.Error("failed to aggregate ratings", zap.Error(err))
			return err
		}
		agg.AverageRating = averageOf(sum, agg.TotalReviews)

		_, err = tx.ExecContext(ctx,
			`UPDATE products SET average_rating = $1, total_reviews = $2, updated_at = $3 WHERE id = $4`,
			agg.AverageRating, agg.TotalReviews, rv.CreatedAt, rv.ProductID,
		)
		if err != nil {
			log.Error("failed to update product rating", zap.Error(err))
		}
		return err
	})
	if err != nil {
		return Aggregate{}, err
	}

	rv.IsVerifiedPurchase = true
	log.Info("review created",
		zap.String("review_id", rv.ID),
		zap.String("average_rating", agg.AverageRating.String()),
		zap.Int("total_reviews", agg.TotalReviews),
		zap.Duration("duration", time.Since(start)),
	)
	return agg, nil
}

func (r *repository) List(ctx context.Context, productID string, opts ListOptions) ([]Review, int, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "List"),
		zap.String("product_id", productID),
	)

	order, ok := orderBy[opts.Sort]
	if !ok {
		order = orderBy[SortRecent]
	}

	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reviews WHERE product_id = $1 AND moderation_status = $2`,
		productID, ModerationApproved,
	).Scan(&total)
	if err != nil {
		log.Error("count query failed", zap.Error(err))
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT %s FROM reviews
		WHERE product_id = $1 AND moderation_status = $2
		ORDER BY %s
		LIMIT $3 OFFSET $4`, reviewColumns, order)
	rows, err := r.db.QueryContext(ctx, query, productID, ModerationApproved, opts.Limit, opts.Offset)
	if err != nil {
		log.Error("list query failed", zap.Error(err))
		return nil, 0, err
	}
	defer rows.Close()

	reviews := make([]Review, 0)
	for rows.Next() {
		var (
			rv                                Review
			quality, value, shipping, service sql.NullInt32
			pros, cons, images                pq.StringArray
		)
		err := rows.Scan(
			&rv.ID, &rv.OrderID, &rv.ProductID, &rv.ReviewerID, &rv.SellerID,
			&rv.OverallRating, &quality, &value, &shipping, &service,
			&rv.Title, &rv.Comment, &pros, &cons, &images, &rv.IsVerifiedPurchase,
			&rv.HelpfulVotes, &rv.TotalVotes, &rv.ModerationStatus, &rv.CreatedAt, &rv.UpdatedAt,
		)
		if err != nil {
			log.Error("row scan failed", zap.Error(err))
			return nil, 0, err
		}
		rv.QualityRating = intPtr(quality)
		rv.ValueRating = intPtr(value)
		rv.ShippingRating = intPtr(shipping)
		rv.ServiceRating = intPtr(service)
		rv.Pros, rv.Cons, rv.Images = nonNil(pros), nonNil(cons), nonNil(images)
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

func intPtr(n sql.NullInt32) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int32)
	return &v
}

func nonNil(a pq.StringArray) []string {
	if a == nil {
		return []string{}
	}
	return []string(a)
}
