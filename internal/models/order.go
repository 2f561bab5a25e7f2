package models

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCanceled  OrderStatus = "canceled"
)

// ValidOrderStatus reports membership in the allowed status set. Admin
// transitions are not ordered beyond this check; an invalid target leaves
// the order as it was.
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusShipped, OrderStatusCompleted, OrderStatusCanceled:
		return true
	default:
		return false
	}
}

// Order is created at checkout from the open cart. Items are a snapshot of
// the cart lines; only the status is mutable afterwards.
type Order struct {
	ID         uuid.UUID   `json:"id"`
	OrderNo    string      `json:"order_no"`
	UserID     uuid.UUID   `json:"user_id"`
	TotalCents int64       `json:"total_cents"`
	Status     OrderStatus `json:"status"`
	Items      []OrderItem `json:"items"`
	CreatedAt  time.Time   `json:"created_at"`
}

type OrderItem struct {
	ID         uuid.UUID `json:"id"`
	OrderID    uuid.UUID `json:"order_id"`
	Name       string    `json:"name"`
	Image      string    `json:"image,omitempty"`
	PriceCents int64     `json:"price_cents"`
	Quantity   int       `json:"quantity"`
}

type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status" validate:"required,oneof=pending paid shipped completed canceled"`
}

type CheckoutResponse struct {
	OrderNo    string `json:"order_no"`
	TotalCents int64  `json:"total_cents"`
	Total      string `json:"total"`
}

// AdminOrder pairs an order with its owning user for back-office listings.
type AdminOrder struct {
	Order
	UserEmail string `json:"user_email"`
	UserName  string `json:"user_name"`
}
