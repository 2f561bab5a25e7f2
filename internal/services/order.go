package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	stderrors "errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/petalcart/petalcart/internal/errors"
	"github.com/petalcart/petalcart/internal/models"
	"github.com/petalcart/petalcart/internal/money"
	repository "github.com/petalcart/petalcart/internal/repositories"
)

type OrderService struct {
	repo     repository.OrderRepository
	notifier *NotificationService
}

func NewOrderService(repo repository.OrderRepository, notifier *NotificationService) *OrderService {
	return &OrderService{repo: repo, notifier: notifier}
}

// GenerateOrderNo builds the externally visible order number:
// YYMMDD-<6 uppercase hex chars>, e.g. 260901-3FA2BC.
func GenerateOrderNo() string {
	suffix := make([]byte, 3)
	rand.Read(suffix)

	return time.Now().Format("060102") + "-" + strings.ToUpper(hex.EncodeToString(suffix))
}

// Checkout turns the caller's open cart into an order. The repository runs
// the whole transition in one transaction; an empty or absent open cart is
// a recoverable precondition failure with no state change. The cart ends up
// closed and is never reopened; the next cart interaction starts a new one.
func (s *OrderService) Checkout(ctx context.Context, userID uuid.UUID, email string) (*models.CheckoutResponse, error) {
	order, err := s.repo.CreateFromCart(ctx, userID, GenerateOrderNo())
	if err != nil {
		if stderrors.Is(err, repository.ErrEmptyCart) {
			return nil, errors.EmptyCartError().WithError(err)
		}

		return nil, errors.DatabaseError("Failed to create order").WithError(err)
	}

	// best effort; a failed email never unwinds the order
	if s.notifier != nil {
		if err := s.notifier.SendOrderConfirmation(ctx, email, order); err != nil {
			slog.Warn("Order confirmation email failed",
				slog.String("order_no", order.OrderNo),
				slog.String("error", err.Error()))
		}
	}

	return &models.CheckoutResponse{
		OrderNo:    order.OrderNo,
		TotalCents: order.TotalCents,
		Total:      money.FormatNTD(order.TotalCents),
	}, nil
}

func (s *OrderService) ListMyOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	orders, err := s.repo.ListOrdersByUser(ctx, userID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list orders").WithError(err)
	}

	return orders, nil
}

// GetOrder returns the order to its owner or to an admin; anyone else gets
// not-found rather than a hint that the order exists.
func (s *OrderService) GetOrder(ctx context.Context, claims *models.Claims, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, errors.NotFoundError("Order not found").WithError(err)
	}

	if order.UserID != claims.UserID && !claims.IsAdmin() {
		return nil, errors.NotFoundError("Order not found")
	}

	return order, nil
}

func (s *OrderService) ListAllOrders(ctx context.Context) ([]models.AdminOrder, error) {
	orders, err := s.repo.ListAllOrders(ctx)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list orders").WithError(err)
	}

	return orders, nil
}

// UpdateStatus sets an order's status to any member of the allowed set.
// There is no enforced ordering between statuses; an invalid target is
// rejected and the order keeps its current status.
func (s *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) error {
	if !models.ValidOrderStatus(status) {
		return errors.BadRequestError("Invalid order status: " + string(status))
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return errors.NotFoundError("Order not found").WithError(err)
		}

		return errors.DatabaseError("Failed to update order status").WithError(err)
	}

	return nil
}
