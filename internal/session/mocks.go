package session

import (
	"context"

	"github.com/petalcart/petalcart/internal/models"
	"github.com/stretchr/testify/mock"
)

type MockStore struct {
	mock.Mock
}

func NewMockStore() *MockStore {
	return &MockStore{}
}

func (m *MockStore) GetGuestCart(ctx context.Context, sessionID string) (models.GuestCart, error) {
	args := m.Called(ctx, sessionID)

	if cart, ok := args.Get(0).(models.GuestCart); ok {
		return cart, args.Error(1)
	}

	return nil, args.Error(1)
}

func (m *MockStore) SaveGuestCart(ctx context.Context, sessionID string, cart models.GuestCart) error {
	args := m.Called(ctx, sessionID, cart)

	return args.Error(0)
}

func (m *MockStore) ClearGuestCart(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)

	return args.Error(0)
}
