// Package request stamps every inbound request with an id and a fixed "now".
package request

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/Liutianci99/grad-pilipala/pkg/requestcontext"
)

// HeaderRequestID carries the caller's request id.
const HeaderRequestID = "X-Request-ID"

// Middleware keeps the caller's X-Request-ID, or assigns one, echoes it on
// the response and captures the request time.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)
		ctx := requestcontext.WithRequestID(r.Context(), id)
		ctx = requestcontext.WithTime(ctx, time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
