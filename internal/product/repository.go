package product

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"socialmart-be/internal/db"
	"socialmart-be/internal/logger"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Repository interface {
	List(ctx context.Context, opts ListOptions) ([]Product, int, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, sellerID, id string, in UpdateInput, now time.Time) (*Product, error)
	Delete(ctx context.Context, sellerID, id string) error
	RecordView(ctx context.Context, v View, at time.Time) error
	// PriceHistory returns the changes recorded since the given time, oldest first.
	PriceHistory(ctx context.Context, productID string, since time.Time) ([]PricePoint, error)
}

type repository struct {
	db    *sql.DB
	newID func() string
}

func NewRepository(conn *sql.DB, newID func() string) Repository {
	return &repository{db: conn, newID: newID}
}

func (r *repository) List(ctx context.Context, opts ListOptions) ([]Product, int, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "List"),
		zap.String("sort", string(opts.Sort)),
	)
	start := time.Now()

	countSQL, countArgs, listSQL, listArgs := buildList(opts)

	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		log.Error("count query failed", zap.Error(err))
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx, listSQL, listArgs...)
	if err != nil {
		log.Error("list query failed", zap.Error(err))
		return nil, 0, err
	}
	defer rows.Close()

	products := make([]Product, 0)
	for rows.Next() {
		p, err := ScanProduct(rows)
		if err != nil {
			log.Error("row scan failed", zap.Error(err))
			return nil, 0, err
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		log.Error("rows iteration failed", zap.Error(err))
		return nil, 0, err
	}

	log.Debug("query success",
		zap.Int("count", len(products)),
		zap.Int("total", total),
		zap.Duration("duration", time.Since(start)),
	)
	return products, total, nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "GetByID"),
		zap.String("product_id", id),
	)

	row := r.db.QueryRowContext(ctx, `SELECT `+Columns+` FROM products p WHERE p.id = $1`, id)
	p, err := ScanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		log.Error("failed to get product", zap.Error(err))
		return nil, err
	}
	return p, nil
}

func (r *repository) Create(ctx context.Context, p *Product) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Create"),
		zap.String("seller_id", p.SellerID),
	)

	if p.ID == "" {
		p.ID = r.newID()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (
			id, seller_id, name, description, price, discount_price,
			category, subcategory, product_type, in_stock, images, tags, status,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $14)
	`,
		p.ID, p.SellerID, p.Name, p.Description, p.Price, decimalOrNil(p.DiscountPrice),
		p.Category, p.Subcategory, p.ProductType, p.InStock,
		pq.Array(p.Images), pq.Array(p.Tags), p.Status, p.CreatedAt,
	)
	if err != nil {
		log.Error("failed to insert product", zap.Error(err))
		return err
	}

	log.Info("product created", zap.String("product_id", p.ID))
	return nil
}

func (r *repository) Update(ctx context.Context, sellerID, id string, in UpdateInput, now time.Time) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Update"),
		zap.String("product_id", id),
	)

	var (
		sets []string
		args []any
	)
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if in.Name != nil {
		set("name", *in.Name)
	}
	if in.Description != nil {
		set("description", *in.Description)
	}
	if in.Price != nil {
		set("price", *in.Price)
	}
	if in.RemoveDiscount {
		sets = append(sets, "discount_price = NULL")
	} else if in.DiscountPrice != nil {
		set("discount_price", *in.DiscountPrice)
	}
	if in.Category != nil {
		set("category", *in.Category)
	}
	if in.Subcategory != nil {
		set("subcategory", *in.Subcategory)
	}
	if in.ProductType != nil {
		set("product_type", *in.ProductType)
	}
	if in.InStock != nil {
		set("in_stock", *in.InStock)
	}
	if in.Images != nil {
		set("images", pq.Array(*in.Images))
	}
	if in.Tags != nil {
		set("tags", pq.Array(*in.Tags))
	}
	if in.Status != nil {
		set("status", *in.Status)
	}
	set("updated_at", now)

	args = append(args, id, sellerID)
	query := fmt.Sprintf(
		`UPDATE products AS p SET %s WHERE p.id = $%d AND p.seller_id = $%d RETURNING `+Columns,
		strings.Join(sets, ", "), len(args)-1, len(args),
	)

	if !in.TouchesPrice() {
		p, err := ScanProduct(r.db.QueryRowContext(ctx, query, args...))
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		if err != nil {
			log.Error("failed to update product", zap.Error(err))
			return nil, err
		}
		log.Info("product updated", zap.Int("fields", len(sets)-1))
		return p, nil
	}

	// Price edits lock the row so the recorded previous price is the one
	// that was replaced.
	var updated *Product
	err := db.RunInTx(ctx, r.db, func(tx *sql.Tx) error {
		var (
			oldPrice    decimal.Decimal
			oldDiscount decimal.NullDecimal
		)
		err := tx.QueryRowContext(ctx,
			`SELECT price, discount_price FROM products WHERE id = $1 AND seller_id = $2 FOR UPDATE`, id, sellerID,
		).Scan(&oldPrice, &oldDiscount)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrProductNotFound
		}
		if err != nil {
			log.Error("failed to lock product", zap.Error(err))
			return err
		}

		p, err := ScanProduct(tx.QueryRowContext(ctx, query, args...))
		if err != nil {
			log.Error("failed to update product", zap.Error(err))
			return err
		}
		updated = p

		if p.Price.Equal(oldPrice) && sameDiscount(p.DiscountPrice, oldDiscount) {
			return nil
		}
		var discount decimal.NullDecimal
		if p.DiscountPrice != nil {
			discount = decimal.NewNullDecimal(*p.DiscountPrice)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO product_price_history (
				id, product_id, price, discount_price, previous_price, previous_discount_price, changed_by, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			r.newID(), id, p.Price, discount, oldPrice, oldDiscount, sellerID, now,
		)
		if err != nil {
			log.Error("failed to record price change", zap.Error(err))
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Info("product updated", zap.Int("fields", len(sets)-1), zap.Bool("price_touched", true))
	return updated, nil
}

func sameDiscount(cur *decimal.Decimal, old decimal.NullDecimal) bool {
	if cur == nil || !old.Valid {
		return cur == nil && !old.Valid
	}
	return cur.Equal(old.Decimal)
}

func (r *repository) PriceHistory(ctx context.Context, productID string, since time.Time) ([]PricePoint, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "PriceHistory"),
		zap.String("product_id", productID),
	)

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, product_id, price, discount_price, previous_price, previous_discount_price, changed_by, created_at
		FROM product_price_history
		WHERE product_id = $1 AND created_at >= $2
		ORDER BY created_at ASC, id ASC
	`, productID, since)
	if err != nil {
		log.Error("query failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	points := make([]PricePoint, 0)
	for rows.Next() {
		var (
			pp                PricePoint
			discount, prevDsc decimal.NullDecimal
		)
		if err := rows.Scan(
			&pp.ID, &pp.ProductID, &pp.Price, &discount, &pp.PreviousPrice, &prevDsc, &pp.ChangedBy, &pp.CreatedAt,
		); err != nil {
			log.Error("row scan failed", zap.Error(err))
			return nil, err
		}
		if discount.Valid {
			d := discount.Decimal
			pp.DiscountPrice = &d
		}
		if prevDsc.Valid {
			d := prevDsc.Decimal
			pp.PreviousDiscountPrice = &d
		}
		points = append(points, pp)
	}
	return points, rows.Err()
}

var openOrderStatuses = []string{"completed", "cancelled"}

func (r *repository) Delete(ctx context.Context, sellerID, id string) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Delete"),
		zap.String("product_id", id),
	)

	return db.RunInTx(ctx, r.db, func(tx *sql.Tx) error {
		var owner string
		err := tx.QueryRowContext(ctx,
			`SELECT seller_id FROM products WHERE id = $1 FOR UPDATE`, id,
		).Scan(&owner)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrProductNotFound
		}
		if err != nil {
			log.Error("failed to lock product", zap.Error(err))
			return err
		}
		if owner != sellerID {
			return ErrProductNotFound
		}

		ref, err := json.Marshal([]map[string]string{{"product_id": id}})
		if err != nil {
			return err
		}

		var inUse bool
		err = tx.QueryRowContext(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM orders
				WHERE status <> ALL($1) AND items @> $2::jsonb
			)`, pq.Array(openOrderStatuses), string(ref),
		).Scan(&inUse)
		if err != nil {
			log.Error("failed to check open orders", zap.Error(err))
			return err
		}
		if inUse {
			return ErrProductInUse
		}

		// Wishlist lines cascade with the product; keep their counters in step.
		if _, err := tx.ExecContext(ctx, `
			UPDATE wishlists SET item_count = GREATEST(item_count - 1, 0)
			WHERE id IN (SELECT wishlist_id FROM wishlist_items WHERE product_id = $1)
		`, id); err != nil {
			log.Error("failed to adjust wishlist counts", zap.Error(err))
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id); err != nil {
			log.Error("failed to delete product", zap.Error(err))
			return err
		}

		log.Info("product deleted")
		return nil
	})
}

// RecordView stores the analytics row and bumps view_count atomically.
func (r *repository) RecordView(ctx context.Context, v View, at time.Time) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "RecordView"),
		zap.String("product_id", v.ProductID),
	)

	return db.RunInTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO product_analytics (
				id, product_id, user_id, event_type, source, ip_address, user_agent, device_type, created_at
			) VALUES ($1, $2, $3, 'view', $4, $5, $6, $7, $8)
		`, r.newID(), v.ProductID, v.UserID, v.Source, v.IPAddress, v.UserAgent, deviceType(v.UserAgent), at)
		if err != nil {
			log.Error("failed to insert analytics event", zap.Error(err))
			return err
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE products SET view_count = view_count + 1 WHERE id = $1`, v.ProductID,
		); err != nil {
			log.Error("failed to increment view count", zap.Error(err))
			return err
		}
		return nil
	})
}

func deviceType(userAgent string) string {
	if strings.Contains(userAgent, "Mobile") {
		return "mobile"
	}
	return "desktop"
}

func decimalOrNil(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}
