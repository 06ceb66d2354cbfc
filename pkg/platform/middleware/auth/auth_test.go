package auth

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Liutianci99/grad-pilipala/pkg/requestcontext"
)

type stubValidator struct{}

func (stubValidator) ValidateToken(token string) (*Principal, error) {
	if token != "good" {
		return nil, errors.New("invalid token")
	}
	return &Principal{UserID: "7", Username: "merchant1", Role: "merchant"}, nil
}

func TestRequireAuth(t *testing.T) {
	var gotUser, gotRole string
	handler := RequireAuth(stubValidator{}, slog.New(slog.NewTextHandler(io.Discard, nil)))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUser = requestcontext.UserID(r.Context())
			gotRole = requestcontext.Role(r.Context())
			w.WriteHeader(http.StatusNoContent)
		}),
	)

	tests := []struct {
		name   string
		method string
		header string
		status int
	}{
		{"missing header", http.MethodGet, "", http.StatusUnauthorized},
		{"wrong scheme", http.MethodGet, "Basic good", http.StatusUnauthorized},
		{"empty token", http.MethodGet, "Bearer ", http.StatusUnauthorized},
		{"invalid token", http.MethodGet, "Bearer bad", http.StatusUnauthorized},
		{"preflight passes", http.MethodOptions, "", http.StatusNoContent},
		{"valid token", http.MethodGet, "Bearer good", http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/orders/my", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.status, rr.Code)
			if tt.status == http.StatusUnauthorized {
				assert.JSONEq(t, UnauthorizedBody, rr.Body.String())
			}
		})
	}
	assert.Equal(t, "7", gotUser)
	assert.Equal(t, "merchant", gotRole)
}
