package auth

import (
	"context"
	"encoding/json"
	"net/http"

	"coinvision/internal/models"
)

// SessionCookie is the cookie carrying the session id.
const SessionCookie = "cv_session"

type contextKey string

const userContextKey contextKey = "auth.user"

// UserFromContext returns the authenticated user set by RequireSession.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userContextKey).(*models.User)
	return user, ok
}

// RequireSession is the single guard in front of every protected route:
// requests without a valid session get a 401 and never reach the handler.
func (s *Service) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookie)
		if err != nil {
			unauthorized(w)
			return
		}

		user, err := s.ValidateSession(cookie.Value)
		if err != nil {
			unauthorized(w)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": "authentication required"})
}
