package authapi

import (
	"context"
	"net/http"

	"github.com/anujp125/Drishya/cmd/internal/web"
)

type accountIDKey struct{}

// AccountID returns the authenticated account ID placed on the context by
// RequireAccount.
func AccountID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(accountIDKey{}).(string)
	return id, ok && id != ""
}

// WithAccount returns a context carrying the account ID the way the
// middlewares set it.
func WithAccount(ctx context.Context, accountID string) context.Context {
	return context.WithValue(ctx, accountIDKey{}, accountID)
}

// OptionalAccount injects the account ID when a valid access token is
// present and passes the request through untouched otherwise.
func (h *Handler) OptionalAccount(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := accessTokenFromRequest(r); token != "" {
			if accountID, err := h.sessions.Verify(token); err == nil {
				r = r.WithContext(WithAccount(r.Context(), accountID))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAccount verifies the access token (cookie or bearer header) and
// injects the account ID into the request context. Requests without a
// valid token get a 401 and never reach next.
func (h *Handler) RequireAccount(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := accessTokenFromRequest(r)
		if token == "" {
			web.WriteFailure(w, http.StatusUnauthorized, "missing access token")
			return
		}
		accountID, err := h.sessions.Verify(token)
		if err != nil {
			web.WriteFailure(w, http.StatusUnauthorized, "invalid or expired access token")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithAccount(r.Context(), accountID)))
	})
}
