package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/petalcart/petalcart/internal/api/middleware"
	"github.com/petalcart/petalcart/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var signingKey = []byte("test-signing-key")

func signToken(t *testing.T, role string, expiresIn time.Duration) string {
	t.Helper()

	claims := &models.Claims{
		UserID: uuid.New(),
		Email:  "test@example.com",
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey)
	require.NoError(t, err)

	return token
}

func claimsCapturingHandler(captured **models.Claims, called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true

		if claims, ok := middleware.ClaimsFromContext(r.Context()); ok {
			*captured = claims
		}

		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate(t *testing.T) {
	authMiddleware := middleware.NewAuthMiddleware(signingKey)

	t.Run("Success - Valid Bearer Token", func(t *testing.T) {
		// Arrange
		var captured *models.Claims

		var called bool

		req := httptest.NewRequest(http.MethodGet, "/api/v1/users/profile", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, models.RoleCustomer, time.Hour))
		recorder := httptest.NewRecorder()

		// Act
		authMiddleware.Authenticate(claimsCapturingHandler(&captured, &called))(recorder, req)

		// Assert
		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.True(t, called)
		require.NotNil(t, captured)
		assert.Equal(t, "test@example.com", captured.Email)
	})

	t.Run("Failure - Missing Header", func(t *testing.T) {
		// Arrange
		var captured *models.Claims

		var called bool

		req := httptest.NewRequest(http.MethodGet, "/api/v1/users/profile", nil)
		recorder := httptest.NewRecorder()

		// Act
		authMiddleware.Authenticate(claimsCapturingHandler(&captured, &called))(recorder, req)

		// Assert
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.False(t, called)
	})

	t.Run("Failure - Wrong Scheme", func(t *testing.T) {
		// Arrange
		var captured *models.Claims

		var called bool

		req := httptest.NewRequest(http.MethodGet, "/api/v1/users/profile", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		recorder := httptest.NewRecorder()

		// Act
		authMiddleware.Authenticate(claimsCapturingHandler(&captured, &called))(recorder, req)

		// Assert
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.False(t, called)
	})

	t.Run("Failure - Expired Token", func(t *testing.T) {
		// Arrange
		var captured *models.Claims

		var called bool

		req := httptest.NewRequest(http.MethodGet, "/api/v1/users/profile", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, models.RoleCustomer, -time.Hour))
		recorder := httptest.NewRecorder()

		// Act
		authMiddleware.Authenticate(claimsCapturingHandler(&captured, &called))(recorder, req)

		// Assert
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.False(t, called)
	})

	t.Run("Failure - Token Signed With Another Key", func(t *testing.T) {
		// Arrange
		var captured *models.Claims

		var called bool

		otherToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &models.Claims{UserID: uuid.New()}).
			SignedString([]byte("some-other-key"))
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/users/profile", nil)
		req.Header.Set("Authorization", "Bearer "+otherToken)
		recorder := httptest.NewRecorder()

		// Act
		authMiddleware.Authenticate(claimsCapturingHandler(&captured, &called))(recorder, req)

		// Assert
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.False(t, called)
	})
}

func TestAuthenticateOptional(t *testing.T) {
	authMiddleware := middleware.NewAuthMiddleware(signingKey)

	t.Run("Success - Anonymous Request Passes Without Claims", func(t *testing.T) {
		// Arrange
		var captured *models.Claims

		var called bool

		req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
		recorder := httptest.NewRecorder()

		// Act
		authMiddleware.AuthenticateOptional(claimsCapturingHandler(&captured, &called))(recorder, req)

		// Assert
		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.True(t, called)
		assert.Nil(t, captured)
	})

	t.Run("Success - Valid Token Attaches Claims", func(t *testing.T) {
		// Arrange
		var captured *models.Claims

		var called bool

		req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, models.RoleCustomer, time.Hour))
		recorder := httptest.NewRecorder()

		// Act
		authMiddleware.AuthenticateOptional(claimsCapturingHandler(&captured, &called))(recorder, req)

		// Assert
		assert.Equal(t, http.StatusOK, recorder.Code)
		require.NotNil(t, captured)
	})

	t.Run("Failure - Garbage Token Still Rejected", func(t *testing.T) {
		// Arrange
		var captured *models.Claims

		var called bool

		req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		recorder := httptest.NewRecorder()

		// Act
		authMiddleware.AuthenticateOptional(claimsCapturingHandler(&captured, &called))(recorder, req)

		// Assert
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.False(t, called)
	})
}

func TestRequireAdmin(t *testing.T) {
	authMiddleware := middleware.NewAuthMiddleware(signingKey)

	t.Run("Success - Admin Role", func(t *testing.T) {
		// Arrange
		var captured *models.Claims

		var called bool

		req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/orders", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, models.RoleAdmin, time.Hour))
		recorder := httptest.NewRecorder()

		// Act
		authMiddleware.RequireAdmin(claimsCapturingHandler(&captured, &called))(recorder, req)

		// Assert
		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.True(t, called)
	})

	t.Run("Failure - Customer Role Forbidden", func(t *testing.T) {
		// Arrange
		var captured *models.Claims

		var called bool

		req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/orders", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, models.RoleCustomer, time.Hour))
		recorder := httptest.NewRecorder()

		// Act
		authMiddleware.RequireAdmin(claimsCapturingHandler(&captured, &called))(recorder, req)

		// Assert
		assert.Equal(t, http.StatusForbidden, recorder.Code)
		assert.False(t, called)
	})

	t.Run("Failure - Anonymous Unauthorized", func(t *testing.T) {
		// Arrange
		var captured *models.Claims

		var called bool

		req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/orders", nil)
		recorder := httptest.NewRecorder()

		// Act
		authMiddleware.RequireAdmin(claimsCapturingHandler(&captured, &called))(recorder, req)

		// Assert
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.False(t, called)
	})
}
