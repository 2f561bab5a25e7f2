package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/petalcart/petalcart/internal/models"
	"github.com/petalcart/petalcart/internal/utils"
)

// ErrEmptyCart is returned by CreateFromCart when the user has no open cart
// or the open cart has no lines. A cart already closed by a concurrent
// checkout lands here too, which is what prevents double orders.
var ErrEmptyCart = errors.New("open cart is empty or absent")

type OrderRepository interface {
	CreateFromCart(ctx context.Context, userID uuid.UUID, orderNo string) (*models.Order, error)
	GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	ListAllOrders(ctx context.Context) ([]models.AdminOrder, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) error
}

type orderRepository struct {
	DB *sql.DB
}

func NewOrderRepo(db *sql.DB) OrderRepository {
	return &orderRepository{DB: db}
}

// CreateFromCart performs the whole checkout as one transaction: lock the
// open cart, snapshot its lines into order_items, write the order with the
// summed total, and close the cart. Any failure rolls the whole thing back;
// no partial order is ever persisted.
func (r *orderRepository) CreateFromCart(ctx context.Context, userID uuid.UUID, orderNo string) (*models.Order, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	tx, err := r.DB.BeginTx(dbCtx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning checkout transaction: %w", err)
	}

	defer tx.Rollback()

	cart := &models.Cart{}

	err = tx.QueryRowContext(dbCtx, selectOpenCartForUpdate, userID).
		Scan(&cart.ID, &cart.UserID, &cart.Status, &cart.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrEmptyCart
		}

		return nil, fmt.Errorf("locking open cart: %w", err)
	}

	items, err := loadCartItemsTx(dbCtx, tx, cart.ID)
	if err != nil {
		return nil, err
	}

	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	cart.Items = items

	order := &models.Order{
		ID:         uuid.New(),
		OrderNo:    orderNo,
		UserID:     userID,
		TotalCents: cart.TotalCents(),
		Status:     models.OrderStatusPending,
	}

	insertOrder := `
		INSERT INTO orders (id, order_no, user_id, total_cents, status, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING created_at
	`

	err = tx.QueryRowContext(dbCtx, insertOrder, order.ID, order.OrderNo, order.UserID, order.TotalCents, order.Status).
		Scan(&order.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("inserting order: %w", err)
	}

	insertItem := `
		INSERT INTO order_items (id, order_id, name, image, price_cents, quantity)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	for _, item := range cart.Items {
		snapshot := models.OrderItem{
			ID:         uuid.New(),
			OrderID:    order.ID,
			Name:       item.Name,
			Image:      item.Image,
			PriceCents: item.PriceCents,
			Quantity:   item.Quantity,
		}

		if _, err := tx.ExecContext(dbCtx, insertItem, snapshot.ID, snapshot.OrderID, snapshot.Name, snapshot.Image, snapshot.PriceCents, snapshot.Quantity); err != nil {
			return nil, fmt.Errorf("inserting order item: %w", err)
		}

		order.Items = append(order.Items, snapshot)
	}

	closeCart := `
		UPDATE carts SET status = 'closed' WHERE id = $1
	`

	if _, err := tx.ExecContext(dbCtx, closeCart, cart.ID); err != nil {
		return nil, fmt.Errorf("closing cart: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing checkout: %w", err)
	}

	return order, nil
}

func (r *orderRepository) GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, order_no, user_id, total_cents, status, created_at
		FROM orders
		WHERE id = $1
	`

	order := &models.Order{}

	err := r.DB.QueryRowContext(dbCtx, query, id).
		Scan(&order.ID, &order.OrderNo, &order.UserID, &order.TotalCents, &order.Status, &order.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}

		return nil, fmt.Errorf("querying order: %w", err)
	}

	itemsByOrder, err := r.loadOrderItems(dbCtx, []uuid.UUID{order.ID})
	if err != nil {
		return nil, err
	}

	order.Items = itemsByOrder[order.ID]

	return order, nil
}

func (r *orderRepository) ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, order_no, user_id, total_cents, status, created_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.DB.QueryContext(dbCtx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order

	var ids []uuid.UUID

	for rows.Next() {
		var order models.Order

		if err := rows.Scan(&order.ID, &order.OrderNo, &order.UserID, &order.TotalCents, &order.Status, &order.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning order row: %w", err)
		}

		orders = append(orders, order)
		ids = append(ids, order.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	itemsByOrder, err := r.loadOrderItems(dbCtx, ids)
	if err != nil {
		return nil, err
	}

	for i := range orders {
		orders[i].Items = itemsByOrder[orders[i].ID]
	}

	return orders, nil
}

func (r *orderRepository) ListAllOrders(ctx context.Context) ([]models.AdminOrder, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT o.id, o.order_no, o.user_id, o.total_cents, o.status, o.created_at, u.email, u.name
		FROM orders o
		JOIN users u ON u.id = o.user_id
		ORDER BY o.created_at DESC
	`

	rows, err := r.DB.QueryContext(dbCtx, query)
	if err != nil {
		return nil, fmt.Errorf("listing all orders: %w", err)
	}
	defer rows.Close()

	var orders []models.AdminOrder

	var ids []uuid.UUID

	for rows.Next() {
		var order models.AdminOrder

		if err := rows.Scan(&order.ID, &order.OrderNo, &order.UserID, &order.TotalCents, &order.Status, &order.CreatedAt, &order.UserEmail, &order.UserName); err != nil {
			return nil, fmt.Errorf("scanning admin order row: %w", err)
		}

		orders = append(orders, order)
		ids = append(ids, order.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	itemsByOrder, err := r.loadOrderItems(dbCtx, ids)
	if err != nil {
		return nil, err
	}

	for i := range orders {
		orders[i].Items = itemsByOrder[orders[i].ID]
	}

	return orders, nil
}

// UpdateStatus sets the status verbatim; membership in the allowed set is
// the service's concern. Returns sql.ErrNoRows for an unknown order.
func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		UPDATE orders SET status = $1 WHERE id = $2
	`

	result, err := r.DB.ExecContext(dbCtx, query, status, id)
	if err != nil {
		return fmt.Errorf("updating order status: %w", err)
	}

	updated, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}

	if updated == 0 {
		return sql.ErrNoRows
	}

	return nil
}

func (r *orderRepository) loadOrderItems(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]models.OrderItem, error) {
	itemsByOrder := make(map[uuid.UUID][]models.OrderItem)

	if len(orderIDs) == 0 {
		return itemsByOrder, nil
	}

	ids := make([]string, len(orderIDs))
	for i, id := range orderIDs {
		ids[i] = id.String()
	}

	query := `
		SELECT id, order_id, name, COALESCE(image, ''), price_cents, quantity
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY id
	`

	rows, err := r.DB.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("loading order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.OrderItem

		if err := rows.Scan(&item.ID, &item.OrderID, &item.Name, &item.Image, &item.PriceCents, &item.Quantity); err != nil {
			return nil, fmt.Errorf("scanning order item: %w", err)
		}

		itemsByOrder[item.OrderID] = append(itemsByOrder[item.OrderID], item)
	}

	return itemsByOrder, rows.Err()
}
