// Package session holds the guest cart. The mapping is request-scoped
// state passed explicitly into cart operations and persisted through this
// interface; nothing reads it ambiently.
package session

import (
	"context"

	"github.com/petalcart/petalcart/internal/models"
)

type Store interface {
	GetGuestCart(ctx context.Context, sessionID string) (models.GuestCart, error)
	SaveGuestCart(ctx context.Context, sessionID string, cart models.GuestCart) error
	ClearGuestCart(ctx context.Context, sessionID string) error
}

const guestCartKeyPrefix = "guest_cart"

func guestCartKey(sessionID string) string {
	return guestCartKeyPrefix + ":" + sessionID
}
