package product

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
	MaxPage      = 10000
)

// Columns is the select list understood by ScanProduct. Queries must alias
// the products table as p.
const Columns = `p.id, p.seller_id, p.name, p.description, p.price, p.discount_price,
	p.category, p.subcategory, p.product_type, p.in_stock, p.images, p.tags, p.status,
	p.average_rating, p.total_reviews, p.total_sales, p.view_count, p.click_count,
	p.boost_level, p.boosted_until, p.is_sponsored, p.created_at, p.updated_at`

type Scanner interface {
	Scan(dest ...any) error
}

// ScanProduct scans a row selected with Columns. Destinations in leading are
// scanned first, for queries that select extra columns ahead of the product.
func ScanProduct(s Scanner, leading ...any) (*Product, error) {
	var (
		p        Product
		discount decimal.NullDecimal
		until    sql.NullTime
		images   pq.StringArray
		tags     pq.StringArray
	)

	dest := append(leading,
		&p.ID, &p.SellerID, &p.Name, &p.Description, &p.Price, &discount,
		&p.Category, &p.Subcategory, &p.ProductType, &p.InStock, &images, &tags, &p.Status,
		&p.AverageRating, &p.TotalReviews, &p.TotalSales, &p.ViewCount, &p.ClickCount,
		&p.BoostLevel, &until, &p.IsSponsored, &p.CreatedAt, &p.UpdatedAt,
	)
	if err := s.Scan(dest...); err != nil {
		return nil, err
	}

	if discount.Valid {
		d := discount.Decimal
		p.DiscountPrice = &d
	}
	if until.Valid {
		t := until.Time
		p.BoostedUntil = &t
	}
	p.Images = nonNil(images)
	p.Tags = nonNil(tags)
	return &p, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// normalizePaging clamps page to [1, MaxPage] and limit to [1, MaxLimit].
func normalizePaging(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}

func totalPages(total, limit int) int {
	if limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

type listQuery struct {
	where  []string
	args   []any
	nowArg string
}

func (q *listQuery) arg(v any) string {
	q.args = append(q.args, v)
	return fmt.Sprintf("$%d", len(q.args))
}

// effectiveBoost renders the read-time boost level. The now argument is bound
// once and shared by every reference.
func (q *listQuery) effectiveBoost(now time.Time) string {
	if q.nowArg == "" {
		q.nowArg = q.arg(now)
	}
	return fmt.Sprintf("(CASE WHEN p.boost_level > 0 AND p.boosted_until > %s THEN p.boost_level ELSE 0 END)", q.nowArg)
}

func (q *listQuery) whereClause() string {
	if len(q.where) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(q.where, " AND ")
}

// buildList returns the count statement, the page statement and their
// arguments. The count arguments are a prefix of the page arguments.
func buildList(opts ListOptions) (string, []any, string, []any) {
	q := &listQuery{}

	if opts.Category != "" {
		q.where = append(q.where, "p.category = "+q.arg(opts.Category))
	}
	if opts.Subcategory != "" {
		q.where = append(q.where, "p.subcategory = "+q.arg(opts.Subcategory))
	}
	if opts.ProductType != "" {
		q.where = append(q.where, "p.product_type = "+q.arg(opts.ProductType))
	}
	if opts.SellerID != "" {
		q.where = append(q.where, "p.seller_id = "+q.arg(opts.SellerID))
	}
	if opts.MinPrice != nil {
		q.where = append(q.where, "p.price >= "+q.arg(*opts.MinPrice))
	}
	if opts.MaxPrice != nil {
		q.where = append(q.where, "p.price <= "+q.arg(*opts.MaxPrice))
	}
	if opts.MinRating != nil {
		q.where = append(q.where, "p.average_rating >= "+q.arg(*opts.MinRating))
	}
	if opts.InStock != nil {
		q.where = append(q.where, "p.in_stock = "+q.arg(*opts.InStock))
	}
	if len(opts.Tags) > 0 {
		q.where = append(q.where, "p.tags && "+q.arg(pq.Array(opts.Tags)))
	}
	if s := strings.TrimSpace(opts.Search); s != "" {
		ph := q.arg("%" + s + "%")
		q.where = append(q.where, fmt.Sprintf(
			"(p.name ILIKE %s OR p.description ILIKE %s OR array_to_string(p.tags, ' ') ILIKE %s)",
			ph, ph, ph,
		))
	}
	if opts.Sponsored != nil {
		op := "= 0"
		if *opts.Sponsored {
			op = "> 0"
		}
		q.where = append(q.where, q.effectiveBoost(opts.Now)+" "+op)
	}

	countSQL := "SELECT COUNT(*) FROM products p" + q.whereClause()
	countArgs := append([]any(nil), q.args...)

	var orderBy string
	switch opts.Sort {
	case SortPriceLow:
		orderBy = "p.price ASC, p.created_at DESC"
	case SortPriceHigh:
		orderBy = "p.price DESC, p.created_at DESC"
	case SortRating:
		orderBy = "p.average_rating DESC, p.total_reviews DESC"
	case SortPopular:
		orderBy = "p.total_sales DESC, p.created_at DESC"
	case SortBoosted:
		orderBy = q.effectiveBoost(opts.Now) + " DESC, p.created_at DESC"
	case SortRelevance:
		orderBy = q.effectiveBoost(opts.Now) + " DESC, p.total_sales DESC"
	default:
		orderBy = "p.created_at DESC"
	}

	page, limit := normalizePaging(opts.Page, opts.Limit)
	where := q.whereClause()
	limitPh := q.arg(limit)
	offsetPh := q.arg((page - 1) * limit)

	listSQL := "SELECT " + Columns + " FROM products p" + where +
		" ORDER BY " + orderBy +
		" LIMIT " + limitPh + " OFFSET " + offsetPh

	return countSQL, countArgs, listSQL, q.args
}

// ValidSort reports whether s names a supported ordering.
func ValidSort(s SortBy) bool {
	switch s {
	case SortRecent, SortPriceLow, SortPriceHigh, SortRating, SortPopular, SortBoosted, SortRelevance:
		return true
	}
	return false
}
