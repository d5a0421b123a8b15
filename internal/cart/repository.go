package cart

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"socialmart-be/internal/logger"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Repository interface {
	GetOrCreateCart(ctx context.Context, userID string, now time.Time) (*Cart, error)
	UpsertItem(ctx context.Context, item *Item) (merged bool, err error)
	UpdateItem(ctx context.Context, userID, itemID string, in UpdateItemInput, now time.Time) (*Item, error)
	RemoveItem(ctx context.Context, userID, itemID string) error
	ListLines(ctx context.Context, cartID string) ([]Line, error)
}

type repository struct {
	db    *sql.DB
	newID func() string
}

func NewRepository(db *sql.DB, newID func() string) Repository {
	return &repository{db: db, newID: newID}
}

const itemColumns = `ci.id, ci.cart_id, ci.product_id, ci.variant_id, ci.quantity,
	ci.price_snapshot, ci.custom_options, ci.notes, ci.added_at, ci.updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(s scanner, trailing ...any) (*Item, error) {
	var (
		it      Item
		options []byte
		notes   sql.NullString
	)
	dest := []any{
		&it.ID, &it.CartID, &it.ProductID, &it.VariantID, &it.Quantity,
		&it.PriceSnapshot, &options, &notes, &it.AddedAt, &it.UpdatedAt,
	}
	if err := s.Scan(append(dest, trailing...)...); err != nil {
		return nil, err
	}
	if len(options) > 0 {
		it.CustomOptions = options
	}
	if notes.Valid {
		it.Notes = &notes.String
	}
	return &it, nil
}

// GetOrCreateCart is a single idempotent upsert on the unique user_id.
func (r *repository) GetOrCreateCart(ctx context.Context, userID string, now time.Time) (*Cart, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "GetOrCreateCart"),
		zap.String("user_id", userID),
	)

	var c Cart
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO carts (id, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id, user_id, created_at, updated_at
	`, r.newID(), userID, now).Scan(&c.ID, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		log.Error("failed to upsert cart", zap.Error(err))
		return nil, err
	}
	return &c, nil
}

// UpsertItem inserts the line or, when (cart, product, variant) already
// exists, adds to its quantity in the same statement. The stored snapshot,
// options and notes of an existing line are kept.
func (r *repository) UpsertItem(ctx context.Context, item *Item) (bool, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "UpsertItem"),
		zap.String("cart_id", item.CartID),
		zap.String("product_id", item.ProductID),
	)
	start := time.Now()

	var options any
	if len(item.CustomOptions) > 0 {
		options = string(item.CustomOptions)
	}

	var inserted bool
	stored, err := scanItem(r.db.QueryRowContext(ctx, `
		INSERT INTO cart_items AS ci (
			id, cart_id, product_id, variant_id, quantity, price_snapshot,
			custom_options, notes, added_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		ON CONFLICT (cart_id, product_id, variant_id) DO UPDATE
		SET quantity = ci.quantity + EXCLUDED.quantity,
			updated_at = EXCLUDED.updated_at
		RETURNING `+itemColumns+`, (xmax = 0) AS inserted
	`,
		r.newID(), item.CartID, item.ProductID, item.VariantID, item.Quantity,
		item.PriceSnapshot, options, item.Notes, item.AddedAt,
	), &inserted)
	if err != nil {
		log.Error("failed to upsert cart item", zap.Error(err))
		return false, err
	}

	*item = *stored
	log.Info("cart item saved",
		zap.String("item_id", item.ID),
		zap.Int("quantity", item.Quantity),
		zap.Bool("merged", !inserted),
		zap.Duration("duration", time.Since(start)),
	)
	return !inserted, nil
}

// UpdateItem patches a line the user owns through the cart -> user chain.
func (r *repository) UpdateItem(ctx context.Context, userID, itemID string, in UpdateItemInput, now time.Time) (*Item, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "UpdateItem"),
		zap.String("item_id", itemID),
	)

	var (
		sets []string
		args []any
	)
	if in.Quantity != nil {
		args = append(args, *in.Quantity)
		sets = append(sets, fmt.Sprintf("quantity = $%d", len(args)))
	}
	if in.Notes != nil {
		args = append(args, *in.Notes)
		sets = append(sets, fmt.Sprintf("notes = $%d", len(args)))
	}
	args = append(args, now)
	sets = append(sets, fmt.Sprintf("updated_at = $%d", len(args)))

	args = append(args, itemID, userID)
	query := fmt.Sprintf(`
		UPDATE cart_items AS ci SET %s
		FROM carts c
		WHERE ci.id = $%d AND ci.cart_id = c.id AND c.user_id = $%d
		RETURNING `+itemColumns,
		strings.Join(sets, ", "), len(args)-1, len(args),
	)

	it, err := scanItem(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCartItemNotFound
	}
	if err != nil {
		log.Error("failed to update cart item", zap.Error(err))
		return nil, err
	}
	return it, nil
}

func (r *repository) RemoveItem(ctx context.Context, userID, itemID string) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "RemoveItem"),
		zap.String("item_id", itemID),
	)

	res, err := r.db.ExecContext(ctx, `
		DELETE FROM cart_items ci
		USING carts c
		WHERE ci.id = $1 AND ci.cart_id = c.id AND c.user_id = $2
	`, itemID, userID)
	if err != nil {
		log.Error("failed to delete cart item", zap.Error(err))
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCartItemNotFound
	}
	return nil
}

func (r *repository) ListLines(ctx context.Context, cartID string) ([]Line, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "ListLines"),
		zap.String("cart_id", cartID),
	)

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+itemColumns+`,
			p.id, p.seller_id, p.name, p.description, p.price, p.discount_price, p.images, p.in_stock
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.added_at ASC, ci.id ASC
	`, cartID)
	if err != nil {
		log.Error("query failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	lines := make([]Line, 0)
	for rows.Next() {
		var (
			p        ProductInfo
			discount decimal.NullDecimal
			images   pq.StringArray
		)
		it, err := scanItem(rows,
			&p.ID, &p.SellerID, &p.Name, &p.Description, &p.Price, &discount, &images, &p.InStock,
		)
		if err != nil {
			log.Error("row scan failed", zap.Error(err))
			return nil, err
		}
		if discount.Valid {
			d := discount.Decimal
			p.DiscountPrice = &d
		}
		p.Images = []string(images)
		if p.Images == nil {
			p.Images = []string{}
		}
		lines = append(lines, Line{Item: *it, Product: p})
	}
	if err := rows.Err(); err != nil {
		log.Error("rows iteration failed", zap.Error(err))
		return nil, err
	}
	return lines, nil
}
