package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/taskriser/taskriser/pkg/api"
	"github.com/taskriser/taskriser/pkg/observability"
	"github.com/taskriser/taskriser/pkg/transport"
)

// Middleware creates HTTP middleware from a resolver chain. Paths on
// the bypass list skip authentication entirely. On success the verified
// identity is attached to the request context.
//
// Credential failures map to 401 regardless of cause: "no credential"
// and "bad credential" share a status and differ only in message, so
// responses don't leak which check failed. 403 is reserved for
// authorization and CSRF failures.
func Middleware(chain *Chain, bypassEndpoints []string) func(http.Handler) http.Handler {
	bypass := make(map[string]bool, len(bypassEndpoints))
	for _, ep := range bypassEndpoints {
		bypass[ep] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if bypass[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			result := chain.Resolve(r.Context(), r)

			if result.Decision == No {
				cause := "invalid"
				msg := "invalid or expired token"
				if errors.Is(result.Err, ErrNoCredential) {
					cause = "missing"
					msg = "authentication token required"
				}
				slog.Warn("authentication failed",
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
					"error", result.Err,
				)
				observability.AuthRejectedTotal.WithLabelValues(cause).Inc()
				transport.WriteAPIError(w, api.NewUnauthorizedError(msg))
				return
			}

			if result.Decision != Yes || result.Identity == nil {
				transport.WriteAPIError(w, api.NewUnauthorizedError("authentication token required"))
				return
			}

			if result.Identity.UserID == 0 {
				slog.Error("resolver returned identity with zero user id")
				transport.WriteAPIError(w, api.NewServerError("internal authentication error"))
				return
			}

			slog.Debug("authentication succeeded",
				"user_id", result.Identity.UserID,
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
			)

			ctx := SetIdentity(r.Context(), result.Identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
