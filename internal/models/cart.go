package models

import (
	"time"

	"github.com/google/uuid"
)

type CartStatus string

const (
	CartStatusOpen   CartStatus = "open"
	CartStatusClosed CartStatus = "closed"
)

// Cart is the persisted per-user cart. At most one cart per user may be
// open at a time; checkout closes it and the next interaction creates a
// fresh one.
type Cart struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	Status    CartStatus `json:"status"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"created_at"`
}

type CartItem struct {
	ID         uuid.UUID `json:"id"`
	CartID     uuid.UUID `json:"cart_id"`
	Name       string    `json:"name"`
	Image      string    `json:"image,omitempty"`
	PriceCents int64     `json:"price_cents"`
	Quantity   int       `json:"quantity"`
}

// TotalCents sums qty × unit price over all lines.
func (c *Cart) TotalCents() int64 {
	var total int64

	for _, item := range c.Items {
		total += int64(item.Quantity) * item.PriceCents
	}

	return total
}

// GuestItem is a guest-session cart line. The price stays as the display
// text it was submitted with and is only parsed to cents when the line is
// merged into a persisted cart or totalled.
type GuestItem struct {
	Name     string `json:"name"`
	Price    string `json:"price"`
	Image    string `json:"image,omitempty"`
	Quantity int    `json:"qty"`
}

// GuestCart maps a slug derived from the item name to its line. It lives in
// the session store until merged at login or cleared.
type GuestCart map[string]GuestItem

type AddItemRequest struct {
	Name     string `json:"name"  validate:"required,max=120"`
	Price    string `json:"price" validate:"required,max=32"`
	Image    string `json:"image" validate:"omitempty,max=255"`
	Quantity int    `json:"qty"   validate:"omitempty,min=1"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"qty"`
}

// CartLineView is one rendered cart line; Price is display text.
type CartLineView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Image    string `json:"image,omitempty"`
	Price    string `json:"price"`
	Quantity int    `json:"qty"`
}

type CartView struct {
	Items      []CartLineView `json:"items"`
	TotalCents int64          `json:"total_cents"`
	Total      string         `json:"total"`
	Count      int            `json:"count"`
}
