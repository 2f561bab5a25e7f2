package session_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/petalcart/petalcart/internal/models"
	"github.com/petalcart/petalcart/internal/session"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const storeTTL = 168 * time.Hour

func setup(t *testing.T) (session.Store, redismock.ClientMock) {
	t.Helper()

	client, mock := redismock.NewClientMock()

	return session.NewRedisStore(client, storeTTL), mock
}

func TestGetGuestCart(t *testing.T) {
	ctx := t.Context()
	sessionID := uuid.NewString()
	key := "guest_cart:" + sessionID

	t.Run("Success - Existing Cart", func(t *testing.T) {
		// Arrange
		store, mock := setup(t)
		want := models.GuestCart{
			"rose-bouquet": {Name: "Rose Bouquet", Price: "NT$300", Quantity: 2},
		}
		data, err := json.Marshal(want)
		require.NoError(t, err)
		mock.ExpectGet(key).SetVal(string(data))

		// Act
		cart, err := store.GetGuestCart(ctx, sessionID)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, want, cart)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Success - Absent Session Yields Empty Cart", func(t *testing.T) {
		// Arrange
		store, mock := setup(t)
		mock.ExpectGet(key).SetErr(redis.Nil)

		// Act
		cart, err := store.GetGuestCart(ctx, sessionID)

		// Assert
		require.NoError(t, err)
		assert.Empty(t, cart)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Redis Error", func(t *testing.T) {
		// Arrange
		store, mock := setup(t)
		mock.ExpectGet(key).SetErr(errors.New("connection refused"))

		// Act
		cart, err := store.GetGuestCart(ctx, sessionID)

		// Assert
		assert.Error(t, err)
		assert.Nil(t, cart)
	})

	t.Run("Failure - Corrupt Payload", func(t *testing.T) {
		// Arrange
		store, mock := setup(t)
		mock.ExpectGet(key).SetVal("{not json")

		// Act
		cart, err := store.GetGuestCart(ctx, sessionID)

		// Assert
		assert.Error(t, err)
		assert.Nil(t, cart)
	})
}

func TestSaveGuestCart(t *testing.T) {
	ctx := t.Context()
	sessionID := uuid.NewString()
	key := "guest_cart:" + sessionID

	t.Run("Success - Stored With TTL", func(t *testing.T) {
		// Arrange
		store, mock := setup(t)
		cart := models.GuestCart{
			"lily": {Name: "Lily", Price: "150", Quantity: 1},
		}
		data, err := json.Marshal(cart)
		require.NoError(t, err)
		mock.ExpectSet(key, data, storeTTL).SetVal("OK")

		// Act
		err = store.SaveGuestCart(ctx, sessionID, cart)

		// Assert
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestClearGuestCart(t *testing.T) {
	ctx := t.Context()
	sessionID := uuid.NewString()
	key := "guest_cart:" + sessionID

	t.Run("Success", func(t *testing.T) {
		// Arrange
		store, mock := setup(t)
		mock.ExpectDel(key).SetVal(1)

		// Act
		err := store.ClearGuestCart(ctx, sessionID)

		// Assert
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Failure - Redis Error", func(t *testing.T) {
		// Arrange
		store, mock := setup(t)
		mock.ExpectDel(key).SetErr(errors.New("connection refused"))

		// Act
		err := store.ClearGuestCart(ctx, sessionID)

		// Assert
		assert.Error(t, err)
	})
}
