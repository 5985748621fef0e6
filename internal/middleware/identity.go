package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/nadmax/yantodo/internal/httputil"
)

const UserIDHeader = "X-User-ID"

type contextKey struct{}

// RequireUser rejects requests without a caller id and stores the id in the
// request context. The header is expected to be set by an authenticating
// proxy in front of the service.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := strings.TrimSpace(r.Header.Get(UserIDHeader))
		if userID == "" {
			httputil.WriteJSONError(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, contextKey{}, userID)
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(contextKey{}).(string)
	return userID, ok && userID != ""
}
