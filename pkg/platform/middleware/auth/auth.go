// Package auth guards API routes with a bearer token.
package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/Liutianci99/grad-pilipala/pkg/requestcontext"
)

// UnauthorizedBody is written for every rejected request.
const UnauthorizedBody = `{"success":false,"message":"未登录或登录已过期"}`

// TokenValidator validates a bearer token and returns its principal.
type TokenValidator interface {
	ValidateToken(tokenString string) (*Principal, error)
}

// Principal is the identity carried by a valid token.
type Principal struct {
	UserID   string
	Username string
	Role     string
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json;charset=UTF-8")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(UnauthorizedBody))
}

// RequireAuth rejects requests without a valid bearer token. On success the
// principal is placed in the request context. Preflight requests pass.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestcontext.RequestID(ctx),
				)
				writeUnauthorized(w)
				return
			}
			principal, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				writeUnauthorized(w)
				return
			}
			ctx = requestcontext.WithPrincipal(ctx, principal.UserID, principal.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
