package cart

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	fixedNow        = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	itemColumnNames = []string{
		"id", "cart_id", "product_id", "variant_id", "quantity",
		"price_snapshot", "custom_options", "notes", "added_at", "updated_at",
	}
)

func newTestRepo(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	return NewRepository(conn, func() string { return "new-id" }), mock, func() { conn.Close() }
}

func TestRepository_GetOrCreateCart(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo, mock, done := newTestRepo(t)
		defer done()

		created := fixedNow.Add(-24 * time.Hour)
		mock.ExpectQuery(`INSERT INTO carts .* ON CONFLICT \(user_id\) DO UPDATE SET user_id = EXCLUDED\.user_id RETURNING id, user_id, created_at, updated_at`).
			WithArgs("new-id", "user-1", fixedNow).
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "created_at", "updated_at"}).
				AddRow("cart-1", "user-1", created, created))

		c, err := repo.GetOrCreateCart(ctx, "user-1", fixedNow)
		require.NoError(t, err)
		assert.Equal(t, "cart-1", c.ID)
		assert.Equal(t, created, c.CreatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DBError", func(t *testing.T) {
		repo, mock, done := newTestRepo(t)
		defer done()

		mock.ExpectQuery(`INSERT INTO carts`).WillReturnError(errors.New("db down"))
		_, err := repo.GetOrCreateCart(ctx, "user-1", fixedNow)
		assert.Error(t, err)
	})
}

func TestRepository_UpsertItem(t *testing.T) {
	ctx := context.Background()
	upsertSQL := `INSERT INTO cart_items AS ci .* ON CONFLICT \(cart_id, product_id, variant_id\) DO UPDATE ` +
		`SET quantity = ci\.quantity \+ EXCLUDED\.quantity, updated_at = EXCLUDED\.updated_at ` +
		`RETURNING .*, \(xmax = 0\) AS inserted`
	cols := append(append([]string{}, itemColumnNames...), "inserted")

	t.Run("Inserted", func(t *testing.T) {
		repo, mock, done := newTestRepo(t)
		defer done()

		item := &Item{
			CartID:        "cart-1",
			ProductID:     "p-1",
			Quantity:      2,
			PriceSnapshot: decimal.RequireFromString("10.00"),
			AddedAt:       fixedNow,
		}
		mock.ExpectQuery(upsertSQL).
			WithArgs("new-id", "cart-1", "p-1", "", 2, item.PriceSnapshot, nil, nil, fixedNow).
			WillReturnRows(sqlmock.NewRows(cols).
				AddRow("new-id", "cart-1", "p-1", "", 2, "10.00", nil, nil, fixedNow, fixedNow, true))

		merged, err := repo.UpsertItem(ctx, item)
		require.NoError(t, err)
		assert.False(t, merged)
		assert.Equal(t, "new-id", item.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("MergedKeepsFirstSnapshot", func(t *testing.T) {
		repo, mock, done := newTestRepo(t)
		defer done()

		notes := "gift wrap"
		item := &Item{
			CartID:        "cart-1",
			ProductID:     "p-1",
			Quantity:      3,
			PriceSnapshot: decimal.RequireFromString("7.00"),
			CustomOptions: []byte(`{"color":"red"}`),
			Notes:         &notes,
			AddedAt:       fixedNow,
		}
		mock.ExpectQuery(upsertSQL).
			WithArgs("new-id", "cart-1", "p-1", "", 3, item.PriceSnapshot, `{"color":"red"}`, &notes, fixedNow).
			WillReturnRows(sqlmock.NewRows(cols).
				AddRow("item-1", "cart-1", "p-1", "", 5, "10.00", []byte(`{}`), nil, fixedNow.Add(-time.Hour), fixedNow, false))

		merged, err := repo.UpsertItem(ctx, item)
		require.NoError(t, err)
		assert.True(t, merged)
		assert.Equal(t, "item-1", item.ID)
		assert.Equal(t, 5, item.Quantity)
		assert.True(t, decimal.RequireFromString("10").Equal(item.PriceSnapshot))
		assert.Nil(t, item.Notes)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DBError", func(t *testing.T) {
		repo, mock, done := newTestRepo(t)
		defer done()

		mock.ExpectQuery(`INSERT INTO cart_items`).WillReturnError(errors.New("fk violation"))
		_, err := repo.UpsertItem(ctx, &Item{CartID: "cart-1", ProductID: "p-1", Quantity: 1})
		assert.Error(t, err)
	})
}

func TestRepository_UpdateItem(t *testing.T) {
	ctx := context.Background()
	qty := 4
	notes := "leave at door"

	t.Run("Success", func(t *testing.T) {
		repo, mock, done := newTestRepo(t)
		defer done()

		mock.ExpectQuery(`UPDATE cart_items AS ci SET quantity = \$1, notes = \$2, updated_at = \$3 FROM carts c WHERE ci\.id = \$4 AND ci\.cart_id = c\.id AND c\.user_id = \$5 RETURNING`).
			WithArgs(4, notes, fixedNow, "item-1", "user-1").
			WillReturnRows(sqlmock.NewRows(itemColumnNames).
				AddRow("item-1", "cart-1", "p-1", "", 4, "10.00", nil, notes, fixedNow, fixedNow))

		it, err := repo.UpdateItem(ctx, "user-1", "item-1", UpdateItemInput{Quantity: &qty, Notes: &notes}, fixedNow)
		require.NoError(t, err)
		assert.Equal(t, 4, it.Quantity)
		require.NotNil(t, it.Notes)
		assert.Equal(t, notes, *it.Notes)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NotOwned", func(t *testing.T) {
		repo, mock, done := newTestRepo(t)
		defer done()

		mock.ExpectQuery(`UPDATE cart_items`).WillReturnError(sql.ErrNoRows)

		_, err := repo.UpdateItem(ctx, "intruder", "item-1", UpdateItemInput{Quantity: &qty}, fixedNow)
		assert.ErrorIs(t, err, ErrCartItemNotFound)
	})
}

func TestRepository_RemoveItem(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo, mock, done := newTestRepo(t)
		defer done()

		mock.ExpectExec(`DELETE FROM cart_items ci USING carts c WHERE ci\.id = \$1 AND ci\.cart_id = c\.id AND c\.user_id = \$2`).
			WithArgs("item-1", "user-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.RemoveItem(ctx, "user-1", "item-1"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NotOwned", func(t *testing.T) {
		repo, mock, done := newTestRepo(t)
		defer done()

		mock.ExpectExec(`DELETE FROM cart_items`).WillReturnResult(sqlmock.NewResult(0, 0))
		assert.ErrorIs(t, repo.RemoveItem(ctx, "intruder", "item-1"), ErrCartItemNotFound)
	})

	t.Run("DBError", func(t *testing.T) {
		repo, mock, done := newTestRepo(t)
		defer done()

		mock.ExpectExec(`DELETE FROM cart_items`).WillReturnError(errors.New("db down"))
		assert.Error(t, repo.RemoveItem(ctx, "user-1", "item-1"))
	})
}

func TestRepository_ListLines(t *testing.T) {
	ctx := context.Background()
	cols := append(append([]string{}, itemColumnNames...),
		"p_id", "seller_id", "name", "description", "price", "discount_price", "images", "in_stock")

	t.Run("Success", func(t *testing.T) {
		repo, mock, done := newTestRepo(t)
		defer done()

		mock.ExpectQuery(`SELECT .* FROM cart_items ci JOIN products p ON p\.id = ci\.product_id WHERE ci\.cart_id = \$1`).
			WithArgs("cart-1").
			WillReturnRows(sqlmock.NewRows(cols).
				AddRow("item-1", "cart-1", "p-1", "", 2, "10.00", nil, nil, fixedNow, fixedNow,
					"p-1", "seller-1", "Mug", "", "9.00", nil, "{a.jpg}", true))

		lines, err := repo.ListLines(ctx, "cart-1")
		require.NoError(t, err)
		require.Len(t, lines, 1)
		assert.Equal(t, "Mug", lines[0].Product.Name)
		assert.True(t, decimal.RequireFromString("10").Equal(lines[0].PriceSnapshot))
		assert.True(t, decimal.RequireFromString("9").Equal(lines[0].Product.Price))
		assert.Nil(t, lines[0].Product.DiscountPrice)
		assert.Equal(t, []string{"a.jpg"}, lines[0].Product.Images)
	})

	t.Run("QueryError", func(t *testing.T) {
		repo, mock, done := newTestRepo(t)
		defer done()

		mock.ExpectQuery(`SELECT .* FROM cart_items`).WillReturnError(errors.New("db down"))
		_, err := repo.ListLines(ctx, "cart-1")
		assert.Error(t, err)
	})
}
