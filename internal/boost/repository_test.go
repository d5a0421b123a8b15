package boost

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"socialmart-be/internal/product"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const lockSQL = `SELECT seller_id, boost_level, boosted_until FROM products WHERE id = \$1 FOR UPDATE`

func newTestRepo(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	return NewRepository(conn, func() string { return "boost-1" }), mock, func() { conn.Close() }
}

func featured() *Boost {
	return &Boost{
		ProductID: "p-1",
		UserID:    "seller-1",
		BoostType: "featured",
		Duration:  72,
		Cost:      decimal.NewFromInt(15),
		Currency:  CurrencySoftPoints,
		StartDate: fixedNow,
		EndDate:   fixedNow.Add(72 * time.Hour),
	}
}

func TestRepository_Apply(t *testing.T) {
	ctx := context.Background()

	t.Run("MergesWithActiveHomepage", func(t *testing.T) {
		repo, mock, done := newTestRepo(t)
		defer done()

		b := featured()
		mock.ExpectBegin()
		mock.ExpectQuery(lockSQL).WithArgs("p-1").
			WillReturnRows(sqlmock.NewRows([]string{"seller_id", "boost_level", "boosted_until"}).
				AddRow("seller-1", 4, fixedNow.Add(12*time.Hour)))
		mock.ExpectExec(`INSERT INTO product_boosts`).
			WithArgs("boost-1", "p-1", "seller-1", "featured", 72, decimal.NewFromInt(15), CurrencySoftPoints,
				fixedNow, b.EndDate).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE products SET boost_level = \$1, boosted_until = \$2, is_sponsored = TRUE, updated_at = \$3 WHERE id = \$4`).
			WithArgs(4, b.EndDate, fixedNow, "p-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		state, err := repo.Apply(ctx, b, 2)
		require.NoError(t, err)
		assert.Equal(t, 4, state.BoostLevel)
		assert.Equal(t, b.EndDate, state.BoostedUntil)
		assert.Equal(t, "boost-1", b.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NeverBoosted", func(t *testing.T) {
		repo, mock, done := newTestRepo(t)
		defer done()

		b := featured()
		mock.ExpectBegin()
		mock.ExpectQuery(lockSQL).
			WillReturnRows(sqlmock.NewRows([]string{"seller_id", "boost_level", "boosted_until"}).
				AddRow("seller-1", 0, nil))
		mock.ExpectExec(`INSERT INTO product_boosts`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE products SET boost_level`).
			WithArgs(2, b.EndDate, fixedNow, "p-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		state, err := repo.Apply(ctx, b, 2)
		require.NoError(t, err)
		assert.Equal(t, 2, state.BoostLevel)
	})

	t.Run("NotOwner", func(t *testing.T) {
		repo, mock, done := newTestRepo(t)
		defer done()

		mock.ExpectBegin()
		mock.ExpectQuery(lockSQL).
			WillReturnRows(sqlmock.NewRows([]string{"seller_id", "boost_level", "boosted_until"}).
				AddRow("someone-else", 0, nil))
		mock.ExpectRollback()

		_, err := repo.Apply(ctx, featured(), 2)
		assert.ErrorIs(t, err, product.ErrProductNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Missing", func(t *testing.T) {
		repo, mock, done := newTestRepo(t)
		defer done()

		mock.ExpectBegin()
		mock.ExpectQuery(lockSQL).WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		_, err := repo.Apply(ctx, featured(), 2)
		assert.ErrorIs(t, err, product.ErrProductNotFound)
	})

	t.Run("InsertErrorRollsBack", func(t *testing.T) {
		repo, mock, done := newTestRepo(t)
		defer done()

		mock.ExpectBegin()
		mock.ExpectQuery(lockSQL).
			WillReturnRows(sqlmock.NewRows([]string{"seller_id", "boost_level", "boosted_until"}).
				AddRow("seller-1", 0, nil))
		mock.ExpectExec(`INSERT INTO product_boosts`).WillReturnError(errors.New("db down"))
		mock.ExpectRollback()

		_, err := repo.Apply(ctx, featured(), 2)
		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_ListByUser(t *testing.T) {
	repo, mock, done := newTestRepo(t)
	defer done()

	cols := []string{"id", "product_id", "user_id", "boost_type", "duration", "cost", "currency",
		"start_date", "end_date", "impressions", "clicks", "conversions", "created_at"}
	mock.ExpectQuery(`SELECT .* FROM product_boosts WHERE user_id = \$1 ORDER BY created_at DESC`).
		WithArgs("seller-1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("boost-1", "p-1", "seller-1", "basic", 24, "5.00", CurrencySoftPoints,
				fixedNow, fixedNow.Add(24*time.Hour), 10, 2, 0, fixedNow))

	boosts, err := repo.ListByUser(context.Background(), "seller-1")
	require.NoError(t, err)
	require.Len(t, boosts, 1)
	assert.Equal(t, "5", boosts[0].Cost.String())
	assert.Equal(t, 10, boosts[0].Impressions)
}
