package repository_test

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/petalcart/petalcart/internal/models"
	repository "github.com/petalcart/petalcart/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupOrderRepoTest(t *testing.T) (repository.OrderRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err, "Failed to create sqlmock")

	t.Cleanup(func() {
		db.Close()
	})

	return repository.NewOrderRepo(db), mock
}

func TestCreateFromCart(t *testing.T) {
	repo, mock := setupOrderRepoTest(t)
	ctx := t.Context()
	userID := uuid.New()
	cartID := uuid.New()
	orderNo := "260901-3FA2BC"

	t.Run("Success - Snapshot, Total And Cart Closure In One Transaction", func(t *testing.T) {
		// Arrange
		now := time.Now()
		mock.ExpectBegin()
		mock.ExpectQuery(`FROM carts\s+WHERE user_id = \$1 AND status = 'open'\s+FOR UPDATE`).
			WithArgs(userID).
			WillReturnRows(cartRows(cartID, userID))
		mock.ExpectQuery(`FROM cart_items`).
			WithArgs(cartID).
			WillReturnRows(emptyItemRows().
				AddRow(uuid.New(), cartID, "Rose Bouquet", "rose.jpg", int64(10000), 2).
				AddRow(uuid.New(), cartID, "Lily", "", int64(5000), 1))
		mock.ExpectQuery(`INSERT INTO orders`).
			WithArgs(sqlmock.AnyArg(), orderNo, userID, int64(25000), models.OrderStatusPending).
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))
		mock.ExpectExec(`INSERT INTO order_items`).
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "Rose Bouquet", "rose.jpg", int64(10000), 2).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO order_items`).
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "Lily", "", int64(5000), 1).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE carts SET status = 'closed' WHERE id = \$1`).
			WithArgs(cartID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		// Act
		order, err := repo.CreateFromCart(ctx, userID, orderNo)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, orderNo, order.OrderNo)
		assert.Equal(t, int64(25000), order.TotalCents)
		assert.Equal(t, models.OrderStatusPending, order.Status)
		require.Len(t, order.Items, 2)
		assert.Equal(t, "Rose Bouquet", order.Items[0].Name)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - No Open Cart", func(t *testing.T) {
		// Arrange
		mock.ExpectBegin()
		mock.ExpectQuery(`FROM carts`).WithArgs(userID).WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		// Act
		order, err := repo.CreateFromCart(ctx, userID, orderNo)

		// Assert
		assert.Nil(t, order)
		assert.ErrorIs(t, err, repository.ErrEmptyCart)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Open Cart Without Lines", func(t *testing.T) {
		// Arrange
		mock.ExpectBegin()
		mock.ExpectQuery(`FROM carts`).WithArgs(userID).WillReturnRows(cartRows(cartID, userID))
		mock.ExpectQuery(`FROM cart_items`).WithArgs(cartID).WillReturnRows(emptyItemRows())
		mock.ExpectRollback()

		// Act
		order, err := repo.CreateFromCart(ctx, userID, orderNo)

		// Assert
		assert.Nil(t, order)
		assert.ErrorIs(t, err, repository.ErrEmptyCart)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetOrderByID(t *testing.T) {
	repo, mock := setupOrderRepoTest(t)
	ctx := t.Context()
	orderID := uuid.New()
	userID := uuid.New()

	t.Run("Success - Order With Lines", func(t *testing.T) {
		// Arrange
		mock.ExpectQuery(`SELECT id, order_no, user_id, total_cents, status, created_at\s+FROM orders\s+WHERE id = \$1`).
			WithArgs(orderID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "order_no", "user_id", "total_cents", "status", "created_at"}).
				AddRow(orderID, "260901-3FA2BC", userID, int64(25000), "pending", time.Now()))
		mock.ExpectQuery(`FROM order_items\s+WHERE order_id = ANY\(\$1\)`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "name", "image", "price_cents", "quantity"}).
				AddRow(uuid.New(), orderID, "Rose Bouquet", "", int64(10000), 2))

		// Act
		order, err := repo.GetOrderByID(ctx, orderID)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "260901-3FA2BC", order.OrderNo)
		require.Len(t, order.Items, 1)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Unknown Order", func(t *testing.T) {
		// Arrange
		mock.ExpectQuery(`FROM orders\s+WHERE id = \$1`).
			WithArgs(orderID).
			WillReturnError(sql.ErrNoRows)

		// Act
		order, err := repo.GetOrderByID(ctx, orderID)

		// Assert
		assert.Nil(t, order)
		assert.ErrorIs(t, err, sql.ErrNoRows)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestListAllOrders(t *testing.T) {
	repo, mock := setupOrderRepoTest(t)
	ctx := t.Context()
	orderID := uuid.New()
	userID := uuid.New()

	t.Run("Success - Joined With User Info", func(t *testing.T) {
		// Arrange
		mock.ExpectQuery(`FROM orders o\s+JOIN users u ON u\.id = o\.user_id`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "order_no", "user_id", "total_cents", "status", "created_at", "email", "name"}).
				AddRow(orderID, "260901-3FA2BC", userID, int64(25000), "paid", time.Now(), "user@example.com", "Ada"))
		mock.ExpectQuery(`FROM order_items\s+WHERE order_id = ANY\(\$1\)`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "name", "image", "price_cents", "quantity"}))

		// Act
		orders, err := repo.ListAllOrders(ctx)

		// Assert
		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Equal(t, "user@example.com", orders[0].UserEmail)
		assert.Equal(t, models.OrderStatusPaid, orders[0].Status)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUpdateOrderStatus(t *testing.T) {
	repo, mock := setupOrderRepoTest(t)
	ctx := t.Context()
	orderID := uuid.New()

	t.Run("Success", func(t *testing.T) {
		// Arrange
		mock.ExpectExec(`UPDATE orders SET status = \$1 WHERE id = \$2`).
			WithArgs(models.OrderStatusShipped, orderID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		// Act
		err := repo.UpdateStatus(ctx, orderID, models.OrderStatusShipped)

		// Assert
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Unknown Order Reports No Rows", func(t *testing.T) {
		// Arrange
		mock.ExpectExec(`UPDATE orders SET status = \$1 WHERE id = \$2`).
			WithArgs(models.OrderStatusPaid, orderID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		// Act
		err := repo.UpdateStatus(ctx, orderID, models.OrderStatusPaid)

		// Assert
		assert.ErrorIs(t, err, sql.ErrNoRows)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
