package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type guestSessionKey string

// GuestSessionKey holds the guest session id in the request context.
const GuestSessionKey = guestSessionKey("guest_session")

const guestCookieName = "guest_session"

// GuestSession assigns an opaque session id cookie on first contact so the
// guest cart has a stable key before the visitor ever logs in.
func GuestSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sessionID string

		if cookie, err := r.Cookie(guestCookieName); err == nil && cookie.Value != "" {
			sessionID = cookie.Value
		} else {
			sessionID = uuid.NewString()

			http.SetCookie(w, &http.Cookie{
				Name:     guestCookieName,
				Value:    sessionID,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := context.WithValue(r.Context(), GuestSessionKey, sessionID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GuestSessionFromContext(ctx context.Context) string {
	if sessionID, ok := ctx.Value(GuestSessionKey).(string); ok {
		return sessionID
	}

	return ""
}
