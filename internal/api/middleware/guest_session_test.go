package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/petalcart/petalcart/internal/api/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuestSession(t *testing.T) {
	t.Run("Success - First Contact Assigns Cookie", func(t *testing.T) {
		// Arrange
		var sessionID string

		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID = middleware.GuestSessionFromContext(r.Context())
		})
		req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
		recorder := httptest.NewRecorder()

		// Act
		middleware.GuestSession(next).ServeHTTP(recorder, req)

		// Assert
		require.NotEmpty(t, sessionID)
		_, err := uuid.Parse(sessionID)
		assert.NoError(t, err)

		cookies := recorder.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "guest_session", cookies[0].Name)
		assert.Equal(t, sessionID, cookies[0].Value)
		assert.True(t, cookies[0].HttpOnly)
	})

	t.Run("Success - Existing Cookie Reused", func(t *testing.T) {
		// Arrange
		existing := uuid.NewString()

		var sessionID string

		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID = middleware.GuestSessionFromContext(r.Context())
		})
		req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
		req.AddCookie(&http.Cookie{Name: "guest_session", Value: existing})
		recorder := httptest.NewRecorder()

		// Act
		middleware.GuestSession(next).ServeHTTP(recorder, req)

		// Assert
		assert.Equal(t, existing, sessionID)
		assert.Empty(t, recorder.Result().Cookies())
	})
}
