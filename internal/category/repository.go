package category

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"socialmart-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	// ListActive returns every active category ordered by sort_order, name.
	ListActive(ctx context.Context) ([]Category, error)
	// Children returns the active subcategories of an active parent.
	Children(ctx context.Context, parentID, filter string) ([]Category, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const columns = `c.id, c.parent_id, c.name, c.slug, c.description, c.icon_url, c.sort_order, c.created_at`

func (r *repository) ListActive(ctx context.Context) ([]Category, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "ListActive"),
	)

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+columns+`
		FROM product_categories c
		WHERE c.is_active = TRUE
		ORDER BY c.sort_order ASC, c.name ASC
	`)
	if err != nil {
		log.Error("DB query failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	return scanAll(rows)
}

func (r *repository) Children(ctx context.Context, parentID, filter string) ([]Category, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Children"),
		zap.String("category_id", parentID),
	)

	var exists bool
	if err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM product_categories WHERE id = $1 AND is_active = TRUE)`, parentID,
	).Scan(&exists); err != nil {
		log.Error("parent lookup failed", zap.Error(err))
		return nil, err
	}
	if !exists {
		return nil, ErrCategoryNotFound
	}

	where := []string{"c.parent_id = $1", "c.is_active = TRUE"}
	args := []any{parentID}
	if filter != "" {
		args = append(args, "%"+filter+"%")
		where = append(where, fmt.Sprintf("c.name ILIKE $%d", len(args)))
	}

	query := "SELECT " + columns + " FROM product_categories c WHERE " +
		strings.Join(where, " AND ") + " ORDER BY c.sort_order ASC, c.name ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("DB query failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	return scanAll(rows)
}

func scanAll(rows *sql.Rows) ([]Category, error) {
	categories := make([]Category, 0)
	for rows.Next() {
		var (
			c      Category
			parent sql.NullString
			icon   sql.NullString
		)
		if err := rows.Scan(&c.ID, &parent, &c.Name, &c.Slug, &c.Description, &icon, &c.SortOrder, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		if parent.Valid {
			c.ParentID = &parent.String
		}
		if icon.Valid {
			c.IconURL = &icon.String
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}
