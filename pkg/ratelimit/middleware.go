package ratelimit

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/taskriser/taskriser/pkg/api"
	"github.com/taskriser/taskriser/pkg/observability"
	"github.com/taskriser/taskriser/pkg/transport"
)

// KeyFunc derives the rate-limit key from a request. The default keys
// by client IP.
type KeyFunc func(r *http.Request) string

// ByClientIP keys requests by the client address.
func ByClientIP(r *http.Request) string {
	return transport.ClientIP(r)
}

// Check applies the limiter to one request, setting the conventional
// rate-limit headers on allowed and denied responses alike. On denial
// it writes the 429 with Retry-After and reports false; handlers that
// need their own ordering around the limiter call this directly.
func Check(w http.ResponseWriter, r *http.Request, limiter *Limiter, scope string, keyFn KeyFunc) bool {
	if keyFn == nil {
		keyFn = ByClientIP
	}
	key := keyFn(r)
	d := limiter.Allow(r.Context(), key)

	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))

	if !d.Allowed {
		retryAfter := d.RetryAfter()
		slog.Warn("rate limit exceeded", "scope", scope, "key", key, "retry_after", retryAfter)
		observability.RateLimitRejectedTotal.WithLabelValues(scope).Inc()

		apiErr := api.NewTooManyRequestsError(
			fmt.Sprintf("too many requests, try again in %d seconds", retryAfter))
		apiErr.RetryAfterSeconds = retryAfter
		transport.WriteAPIError(w, apiErr)
		return false
	}
	return true
}

// Middleware enforces the limiter on every request.
func Middleware(limiter *Limiter, scope string, keyFn KeyFunc) transport.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !Check(w, r, limiter, scope, keyFn) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
