// Package csrf implements double-submit-cookie CSRF protection.
//
// Every response carries a fresh token in an HttpOnly, SameSite=Strict
// cookie. Mutating requests must echo the current cookie value back in
// the X-CSRF-Token header or the csrfToken body field; the comparison
// is constant-time. Read-only methods and an explicit allow-list of
// endpoints (login, register, token fetch) skip validation but still
// receive a fresh token.
package csrf

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/taskriser/taskriser/pkg/api"
	"github.com/taskriser/taskriser/pkg/observability"
	"github.com/taskriser/taskriser/pkg/transport"
)

// CookieName is the cookie carrying the anti-forgery token.
const CookieName = "csrfToken"

// HeaderName is the request header clients echo the token in.
const HeaderName = "X-CSRF-Token"

// cookieMaxAge is the token cookie lifetime in seconds.
const cookieMaxAge = 3600

// exemptMethods are read-only methods that never mutate state.
var exemptMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodHead:    true,
	http.MethodOptions: true,
}

// DefaultExemptPaths lists the mutating endpoints reachable before a
// client holds a token.
var DefaultExemptPaths = []string{
	"/api/auth/login",
	"/api/auth/register",
	"/api/csrf/token",
}

// Guard validates and rotates CSRF tokens.
type Guard struct {
	exemptPaths map[string]bool
}

// NewGuard creates a guard with the given exempt paths.
func NewGuard(exemptPaths []string) *Guard {
	exempt := make(map[string]bool, len(exemptPaths))
	for _, p := range exemptPaths {
		exempt[p] = true
	}
	return &Guard{exemptPaths: exempt}
}

// GenerateToken returns a fresh random token, 32 bytes hex-encoded.
func GenerateToken() string {
	b := make([]byte, 32)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// SetToken issues a fresh token, sets it as the CSRF cookie, and
// returns it so handlers can include it in response bodies.
func SetToken(w http.ResponseWriter) string {
	tok := GenerateToken()
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    tok,
		Path:     "/",
		MaxAge:   cookieMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	return tok
}

// tokenKey is the context key for the token set on the response, so
// handlers can echo it in a body without minting a second cookie.
type tokenKey struct{}

// TokenFromContext returns the CSRF token the middleware set on the
// current response, or "".
func TokenFromContext(ctx context.Context) string {
	tok, _ := ctx.Value(tokenKey{}).(string)
	return tok
}

// Middleware enforces the guard on every request. Allowed requests
// always proceed with a newly rotated token already set on the response
// and available via TokenFromContext.
func (g *Guard) Middleware() transport.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if exemptMethods[r.Method] || g.exemptPaths[r.URL.Path] {
				tok := SetToken(w)
				next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), tokenKey{}, tok)))
				return
			}

			if !g.validate(r) {
				slog.Warn("CSRF validation failed",
					"method", r.Method,
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
				)
				observability.CSRFRejectedTotal.Inc()
				transport.WriteAPIError(w, api.NewForbiddenError("CSRF token missing or invalid"))
				return
			}

			// Rotate after successful validation.
			tok := SetToken(w)
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), tokenKey{}, tok)))
		})
	}
}

// validate compares the client-supplied token with the cookie value.
// A request with no cookie or no supplied token fails closed.
func (g *Guard) validate(r *http.Request) bool {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return false
	}

	supplied := r.Header.Get(HeaderName)
	if supplied == "" {
		supplied = tokenFromBody(r)
	}
	if supplied == "" {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(supplied)) == 1
}

// tokenFromBody pulls the csrfToken field out of a JSON body, restoring
// the body for the downstream handler.
func tokenFromBody(r *http.Request) string {
	if r.Body == nil {
		return ""
	}
	body, err := io.ReadAll(r.Body)
	r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil || len(body) == 0 {
		return ""
	}

	var fields struct {
		Token string `json:"csrfToken"`
	}
	if json.Unmarshal(body, &fields) != nil {
		return ""
	}
	return fields.Token
}
