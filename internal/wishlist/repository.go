package wishlist

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"socialmart-be/internal/db"
	"socialmart-be/internal/logger"
	"socialmart-be/internal/product"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const itemKey = "wishlist_items_wishlist_product_key"

type Repository interface {
	List(ctx context.Context, userID string) ([]Wishlist, error)
	Create(ctx context.Context, w *Wishlist) error
	// Items returns the lines of a wishlist owned by userID, newest first.
	Items(ctx context.Context, userID, wishlistID string) ([]Line, error)
	AddItem(ctx context.Context, userID string, item *Item) error
	RemoveItem(ctx context.Context, userID, wishlistID, itemID string, now time.Time) error
}

type repository struct {
	db    *sql.DB
	newID func() string
}

func NewRepository(conn *sql.DB, newID func() string) Repository {
	return &repository{db: conn, newID: newID}
}

func (r *repository) List(ctx context.Context, userID string) ([]Wishlist, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, name, description, is_public, item_count, created_at, updated_at
		FROM wishlists
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`, userID)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to list wishlists",
			zap.String("layer", "repository"),
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return nil, err
	}
	defer rows.Close()

	lists := make([]Wishlist, 0)
	for rows.Next() {
		var w Wishlist
		if err := rows.Scan(
			&w.ID, &w.UserID, &w.Name, &w.Description, &w.IsPublic, &w.ItemCount, &w.CreatedAt, &w.UpdatedAt,
		); err != nil {
			return nil, err
		}
		lists = append(lists, w)
	}
	return lists, rows.Err()
}

func (r *repository) Create(ctx context.Context, w *Wishlist) error {
	w.ID = r.newID()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO wishlists (id, user_id, name, description, is_public, item_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 0, $6, $6)
	`, w.ID, w.UserID, w.Name, w.Description, w.IsPublic, w.CreatedAt)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to insert wishlist",
			zap.String("layer", "repository"),
			zap.String("user_id", w.UserID),
			zap.Error(err),
		)
		return err
	}
	w.ItemCount = 0
	w.UpdatedAt = w.CreatedAt
	return nil
}

// rowQuerier is satisfied by both *sql.DB and *sql.Tx.
type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// owns returns ErrWishlistNotFound unless userID owns the wishlist. With lock
// set the wishlist row is held until the transaction ends.
func owns(ctx context.Context, q rowQuerier, userID, wishlistID string, lock bool) error {
	query := `SELECT EXISTS(SELECT 1 FROM wishlists WHERE id = $1 AND user_id = $2)`
	if lock {
		query = `SELECT TRUE FROM wishlists WHERE id = $1 AND user_id = $2 FOR UPDATE`
	}
	var ok bool
	err := q.QueryRowContext(ctx, query, wishlistID, userID).Scan(&ok)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !ok) {
		return ErrWishlistNotFound
	}
	return err
}

func (r *repository) Items(ctx context.Context, userID, wishlistID string) ([]Line, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Items"),
		zap.String("wishlist_id", wishlistID),
	)

	if err := owns(ctx, r.db, userID, wishlistID, false); err != nil {
		if !errors.Is(err, ErrWishlistNotFound) {
			log.Error("ownership check failed", zap.Error(err))
		}
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT wi.id, wi.wishlist_id, wi.product_id, wi.priority, wi.target_price, wi.notes,
			wi.notify_on_sale, wi.notify_on_restock, wi.added_at,
			p.id, p.name, p.description, p.price, p.discount_price, p.images, p.in_stock,
			p.average_rating, p.total_reviews
		FROM wishlist_items wi
		JOIN products p ON p.id = wi.product_id
		WHERE wi.wishlist_id = $1
		ORDER BY wi.added_at DESC, wi.id DESC
	`, wishlistID)
	if err != nil {
		log.Error("query failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	lines := make([]Line, 0)
	for rows.Next() {
		var (
			l        Line
			target   decimal.NullDecimal
			discount decimal.NullDecimal
			images   pq.StringArray
		)
		if err := rows.Scan(
			&l.ID, &l.WishlistID, &l.ProductID, &l.Priority, &target, &l.Notes,
			&l.NotifyOnSale, &l.NotifyOnRestock, &l.AddedAt,
			&l.Product.ID, &l.Product.Name, &l.Product.Description, &l.Product.Price, &discount, &images,
			&l.Product.InStock, &l.Product.AverageRating, &l.Product.TotalReviews,
		); err != nil {
			log.Error("row scan failed", zap.Error(err))
			return nil, err
		}
		l.TargetPrice = decimalPtr(target)
		l.Product.DiscountPrice = decimalPtr(discount)
		l.Product.Images = []string(images)
		if l.Product.Images == nil {
			l.Product.Images = []string{}
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		log.Error("rows iteration failed", zap.Error(err))
		return nil, err
	}
	return lines, nil
}

func decimalPtr(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}

// AddItem inserts the item and bumps the wishlist's item_count in one
// transaction. The wishlist row is locked so concurrent adds count correctly.
func (r *repository) AddItem(ctx context.Context, userID string, item *Item) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "AddItem"),
		zap.String("wishlist_id", item.WishlistID),
		zap.String("product_id", item.ProductID),
	)

	return db.RunInTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := owns(ctx, tx, userID, item.WishlistID, true); err != nil {
			if !errors.Is(err, ErrWishlistNotFound) {
				log.Error("failed to lock wishlist", zap.Error(err))
			}
			return err
		}

		var exists bool
		if err := tx.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)`, item.ProductID,
		).Scan(&exists); err != nil {
			log.Error("product lookup failed", zap.Error(err))
			return err
		}
		if !exists {
			return product.ErrProductNotFound
		}

		var target decimal.NullDecimal
		if item.TargetPrice != nil {
			target = decimal.NewNullDecimal(*item.TargetPrice)
		}

		item.ID = r.newID()
		_, err := tx.ExecContext(ctx, `
			INSERT INTO wishlist_items (
				id, wishlist_id, product_id, priority, target_price, notes,
				notify_on_sale, notify_on_restock, added_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			item.ID, item.WishlistID, item.ProductID, string(item.Priority), target, item.Notes,
			item.NotifyOnSale, item.NotifyOnRestock, item.AddedAt,
		)
		if db.IsUniqueViolation(err, itemKey) {
			return ErrAlreadyInWishlist
		}
		if err != nil {
			log.Error("failed to insert wishlist item", zap.Error(err))
			return err
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE wishlists SET item_count = item_count + 1, updated_at = $1 WHERE id = $2`,
			item.AddedAt, item.WishlistID,
		)
		if err != nil {
			log.Error("failed to bump item count", zap.Error(err))
		}
		return err
	})
}

func (r *repository) RemoveItem(ctx context.Context, userID, wishlistID, itemID string, now time.Time) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "RemoveItem"),
		zap.String("wishlist_id", wishlistID),
		zap.String("item_id", itemID),
	)

	return db.RunInTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			DELETE FROM wishlist_items wi
			USING wishlists w
			WHERE wi.id = $1 AND wi.wishlist_id = $2 AND w.id = wi.wishlist_id AND w.user_id = $3
		`, itemID, wishlistID, userID)
		if err != nil {
			log.Error("failed to delete wishlist item", zap.Error(err))
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrWishlistItemNotFound
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE wishlists SET item_count = GREATEST(item_count - 1, 0), updated_at = $1 WHERE id = $2`,
			now, wishlistID,
		)
		if err != nil {
			log.Error("failed to drop item count", zap.Error(err))
		}
		return err
	})
}
