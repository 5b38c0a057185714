package middlewares

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	"lms/internal/cache"

	"go.uber.org/zap"
)

// RateLimit caps requests per client IP using the shared cache. A zero limit
// or a nil cache disables the check.
func RateLimit(c cache.ICache, trustedProxies []string, requestsPerMinute int) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if c == nil || requestsPerMinute <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			clientIP := ResolveClientIP(r, trustedProxies)

			retryAfter, err := c.GetRateLimit(clientIP, requestsPerMinute)
			if err != nil {
				zap.L().Error("Rate limit check failed", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			if retryAfter > 0 {
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"errors":["RATE_LIMITED"]}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ResolveClientIP trusts X-Forwarded-For only when the direct peer is a
// configured proxy.
func ResolveClientIP(r *http.Request, trustedProxies []string) string {
	remoteIP, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		remoteIP = r.RemoteAddr
	}

	for _, proxy := range trustedProxies {
		if remoteIP == proxy {
			forwarded := r.Header.Get("X-Forwarded-For")
			if forwarded != "" {
				parts := strings.Split(forwarded, ",")
				return strings.TrimSpace(parts[0])
			}
		}
	}

	return remoteIP
}
