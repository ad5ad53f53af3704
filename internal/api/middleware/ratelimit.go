package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	rateLimitWindow      = 60 * time.Second
	rateLimitMaxRequests = 20
	rateLimitKeyPrefix   = "ratelimit:auth:"
)

// RateLimit caps requests per client IP using a fixed Redis window.
// Redis being down or nil fails open: authentication must keep working
// without the limiter.
func RateLimit(client *redis.Client) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if client == nil {
				next.ServeHTTP(w, r)
				return
			}

			key := rateLimitKeyPrefix + clientIP(r)
			ctx := r.Context()

			count, err := client.Incr(ctx, key).Result()
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			if count == 1 {
				client.Expire(ctx, key, rateLimitWindow)
			}

			if count > rateLimitMaxRequests {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", strconv.Itoa(int(rateLimitWindow.Seconds())))
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"error":"rate limit exceeded, try again later"}`))
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rateLimitMaxRequests))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(rateLimitMaxRequests-int(count)))

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if idx := strings.Index(fwd, ","); idx != -1 {
			return strings.TrimSpace(fwd[:idx])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
