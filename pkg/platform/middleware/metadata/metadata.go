package metadata

import (
	"context"
	"net/http"
	"strings"

	"github.com/mssola/useragent"
)

type contextKeyClient struct{}

// Client describes the caller of a request.
type Client struct {
	IP        string
	UserAgent string
	// Browser is "name/version" as parsed from UserAgent, empty when unknown.
	Browser string
	OS      string
	Bot     bool
}

// ClientMetadata extracts the client IP and parsed User-Agent from the request
// and adds them to the context. Apply it early in the chain.
func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		client := ParseClient(ClientIPFromRequest(r), r.Header.Get("User-Agent"))
		next.ServeHTTP(w, r.WithContext(WithClient(r.Context(), client)))
	})
}

// ParseClient builds a Client from an IP and a raw User-Agent header.
func ParseClient(ip, userAgent string) Client {
	c := Client{IP: ip, UserAgent: userAgent}
	if userAgent == "" {
		return c
	}
	ua := useragent.New(userAgent)
	if name, version := ua.Browser(); name != "" {
		c.Browser = name
		if version != "" {
			c.Browser += "/" + version
		}
	}
	c.OS = ua.OS()
	c.Bot = ua.Bot()
	return c
}

// ClientFrom retrieves the client metadata from the context.
func ClientFrom(ctx context.Context) Client {
	if c, ok := ctx.Value(contextKeyClient{}).(Client); ok {
		return c
	}
	return Client{}
}

// WithClient injects client metadata into a context.
// Useful for handler tests that don't run the full middleware chain.
func WithClient(ctx context.Context, c Client) context.Context {
	return context.WithValue(ctx, contextKeyClient{}, c)
}

// ClientIPFromRequest extracts the real client IP from the request, handling proxies and load balancers.
func ClientIPFromRequest(r *http.Request) string {
	// X-Forwarded-For lists client, proxy1, proxy2...; the first is the client.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	if addr := r.RemoteAddr; addr != "" {
		// [::1]:port or 127.0.0.1:port
		if idx := strings.LastIndex(addr, ":"); idx != -1 {
			return addr[:idx]
		}
		return addr
	}
	return "unknown"
}
