package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/petalcart/petalcart/internal/models"
	"github.com/redis/go-redis/v9"
)

type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) Store {
	return &redisStore{client: client, ttl: ttl}
}

// GetGuestCart returns an empty mapping when the session has no cart yet;
// absence is not an error.
func (s *redisStore) GetGuestCart(ctx context.Context, sessionID string) (models.GuestCart, error) {
	data, err := s.client.Get(ctx, guestCartKey(sessionID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return models.GuestCart{}, nil
		}

		return nil, fmt.Errorf("failed to get guest cart for session %s: %w", sessionID, err)
	}

	var cart models.GuestCart

	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("failed to unmarshal guest cart for session %s: %w", sessionID, err)
	}

	return cart, nil
}

func (s *redisStore) SaveGuestCart(ctx context.Context, sessionID string, cart models.GuestCart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to marshal guest cart for session %s: %w", sessionID, err)
	}

	if err := s.client.Set(ctx, guestCartKey(sessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save guest cart for session %s: %w", sessionID, err)
	}

	return nil
}

func (s *redisStore) ClearGuestCart(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, guestCartKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to clear guest cart for session %s: %w", sessionID, err)
	}

	return nil
}
