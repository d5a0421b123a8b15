package wishlist

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"socialmart-be/internal/product"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

const (
	lockSQL   = `SELECT TRUE FROM wishlists WHERE id = \$1 AND user_id = \$2 FOR UPDATE`
	existsSQL = `SELECT EXISTS\(SELECT 1 FROM products WHERE id = \$1\)`
)

func newTestRepo(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	return NewRepository(conn, func() string { return "new-id" }), mock, func() { conn.Close() }
}

func newItem() *Item {
	return &Item{
		WishlistID:      "w-1",
		ProductID:       "p-1",
		Priority:        PriorityHigh,
		Notes:           "birthday",
		NotifyOnSale:    true,
		NotifyOnRestock: false,
		AddedAt:         fixedNow,
	}
}

func TestRepository_List(t *testing.T) {
	repo, mock, done := newTestRepo(t)
	defer done()

	cols := []string{"id", "user_id", "name", "description", "is_public", "item_count", "created_at", "updated_at"}
	mock.ExpectQuery(`SELECT .* FROM wishlists WHERE user_id = \$1 ORDER BY created_at DESC`).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("w-2", "u-1", "Gifts", "", true, 3, fixedNow, fixedNow).
			AddRow("w-1", "u-1", "Later", "", false, 0, fixedNow, fixedNow))

	lists, err := repo.List(context.Background(), "u-1")
	require.NoError(t, err)
	require.Len(t, lists, 2)
	assert.Equal(t, 3, lists[0].ItemCount)
	assert.True(t, lists[0].IsPublic)
}

func TestRepository_Create(t *testing.T) {
	repo, mock, done := newTestRepo(t)
	defer done()

	mock.ExpectExec(`INSERT INTO wishlists`).
		WithArgs("new-id", "u-1", "Gifts", "for later", true, fixedNow).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := &Wishlist{UserID: "u-1", Name: "Gifts", Description: "for later", IsPublic: true, CreatedAt: fixedNow}
	require.NoError(t, repo.Create(context.Background(), w))
	assert.Equal(t, "new-id", w.ID)
	assert.Equal(t, fixedNow, w.UpdatedAt)
}

func TestRepository_Items(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo, mock, done := newTestRepo(t)
		defer done()

		mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM wishlists WHERE id = \$1 AND user_id = \$2\)`).
			WithArgs("w-1", "u-1").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		cols := []string{"id", "wishlist_id", "product_id", "priority", "target_price", "notes",
			"notify_on_sale", "notify_on_restock", "added_at",
			"p_id", "name", "description", "price", "discount_price", "images", "in_stock",
			"average_rating", "total_reviews"}
		mock.ExpectQuery(`FROM wishlist_items wi JOIN products p ON p.id = wi.product_id WHERE wi.wishlist_id = \$1`).
			WithArgs("w-1").
			WillReturnRows(sqlmock.NewRows(cols).
				AddRow("wi-1", "w-1", "p-1", "high", "9.50", "", true, true, fixedNow,
					"p-1", "Lamp", "desk lamp", "12.00", nil, "{a.jpg,b.jpg}", true, "4.5", 2))

		lines, err := repo.Items(ctx, "u-1", "w-1")
		require.NoError(t, err)
		require.Len(t, lines, 1)
		assert.Equal(t, PriorityHigh, lines[0].Priority)
		require.NotNil(t, lines[0].TargetPrice)
		assert.Equal(t, "9.5", lines[0].TargetPrice.String())
		assert.Nil(t, lines[0].Product.DiscountPrice)
		assert.Equal(t, []string{"a.jpg", "b.jpg"}, lines[0].Product.Images)
		assert.Equal(t, "4.5", lines[0].Product.AverageRating.String())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NotOwned", func(t *testing.T) {
		repo, mock, done := newTestRepo(t)
		defer done()

		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs("w-1", "u-2").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		_, err := repo.Items(ctx, "u-2", "w-1")
		assert.ErrorIs(t, err, ErrWishlistNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_AddItem(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo, mock, done := newTestRepo(t)
		defer done()

		item := newItem()
		target := decimal.RequireFromString("8.00")
		item.TargetPrice = &target

		mock.ExpectBegin()
		mock.ExpectQuery(lockSQL).WithArgs("w-1", "u-1").
			WillReturnRows(sqlmock.NewRows([]string{"bool"}).AddRow(true))
		mock.ExpectQuery(existsSQL).WithArgs("p-1").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectExec(`INSERT INTO wishlist_items`).
			WithArgs("new-id", "w-1", "p-1", "high", decimal.NewNullDecimal(target), "birthday", true, false, fixedNow).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE wishlists SET item_count = item_count \+ 1, updated_at = \$1 WHERE id = \$2`).
			WithArgs(fixedNow, "w-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.AddItem(ctx, "u-1", item))
		assert.Equal(t, "new-id", item.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("WishlistNotOwned", func(t *testing.T) {
		repo, mock, done := newTestRepo(t)
		defer done()

		mock.ExpectBegin()
		mock.ExpectQuery(lockSQL).WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		err := repo.AddItem(ctx, "u-2", newItem())
		assert.ErrorIs(t, err, ErrWishlistNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ProductMissing", func(t *testing.T) {
		repo, mock, done := newTestRepo(t)
		defer done()

		mock.ExpectBegin()
		mock.ExpectQuery(lockSQL).WillReturnRows(sqlmock.NewRows([]string{"bool"}).AddRow(true))
		mock.ExpectQuery(existsSQL).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectRollback()

		err := repo.AddItem(ctx, "u-1", newItem())
		assert.ErrorIs(t, err, product.ErrProductNotFound)
	})

	t.Run("Duplicate", func(t *testing.T) {
		repo, mock, done := newTestRepo(t)
		defer done()

		mock.ExpectBegin()
		mock.ExpectQuery(lockSQL).WillReturnRows(sqlmock.NewRows([]string{"bool"}).AddRow(true))
		mock.ExpectQuery(existsSQL).WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
		mock.ExpectExec(`INSERT INTO wishlist_items`).
			WillReturnError(&pq.Error{Code: "23505", Constraint: itemKey})
		mock.ExpectRollback()

		err := repo.AddItem(ctx, "u-1", newItem())
		assert.ErrorIs(t, err, ErrAlreadyInWishlist)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_RemoveItem(t *testing.T) {
	ctx := context.Background()
	deleteSQL := `DELETE FROM wishlist_items wi USING wishlists w WHERE wi.id = \$1 AND wi.wishlist_id = \$2`

	t.Run("Success", func(t *testing.T) {
		repo, mock, done := newTestRepo(t)
		defer done()

		mock.ExpectBegin()
		mock.ExpectExec(deleteSQL).WithArgs("wi-1", "w-1", "u-1").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE wishlists SET item_count = GREATEST\(item_count - 1, 0\)`).
			WithArgs(fixedNow, "w-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		assert.NoError(t, repo.RemoveItem(ctx, "u-1", "w-1", "wi-1", fixedNow))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NotOwned", func(t *testing.T) {
		repo, mock, done := newTestRepo(t)
		defer done()

		mock.ExpectBegin()
		mock.ExpectExec(deleteSQL).WithArgs("wi-1", "w-1", "u-2").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.RemoveItem(ctx, "u-2", "w-1", "wi-1", fixedNow)
		assert.ErrorIs(t, err, ErrWishlistItemNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DBError", func(t *testing.T) {
		repo, mock, done := newTestRepo(t)
		defer done()

		mock.ExpectBegin()
		mock.ExpectExec(deleteSQL).WillReturnError(errors.New("db down"))
		mock.ExpectRollback()

		assert.Error(t, repo.RemoveItem(ctx, "u-1", "w-1", "wi-1", fixedNow))
	})
}
