package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/restoflow/restoflow/internal/domain"
)

type contextKey string

const userContextKey contextKey = "current_user"

// RequireAuth resolves the Bearer token into a user and stores it on the
// request context. Requests without a valid token stop at 401.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}

		user, err := h.auth.VerifyToken(r.Context(), token)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CurrentUser extracts the authenticated user placed by RequireAuth.
func CurrentUser(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(userContextKey).(*domain.User)
	return user, ok
}

// mustUser is the handler-side companion of RequireAuth. A missing user
// means the route was wired outside the auth group.
func mustUser(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	user, ok := CurrentUser(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
	}
	return user, ok
}
