// Package session provides cookie-backed sessions as the first-class
// credential source. Session IDs are opaque random strings held in an
// in-memory store; the cookie carries the ID plus an HMAC tag so that
// store lookups only happen for cookies we minted.
package session

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/taskriser/taskriser/pkg/auth"
)

// CookieName is the session cookie set at login.
const CookieName = "taskriser_session"

// DefaultTTL is the session lifetime.
const DefaultTTL = 24 * time.Hour

// Manager creates, resolves, and destroys sessions.
type Manager struct {
	store  *Store
	secret []byte
	ttl    time.Duration
}

// NewManager creates a session manager signing cookies with secret.
// A zero TTL falls back to DefaultTTL.
func NewManager(secret string, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{store: NewStore(), secret: []byte(secret), ttl: ttl}
}

// Create starts a session for the identity and sets the session cookie.
func (m *Manager) Create(w http.ResponseWriter, id auth.Identity) string {
	sid := newSessionID()
	m.store.Save(sid, Data{Identity: id, ExpiresAt: time.Now().Add(m.ttl)})

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    sid + "." + m.sign(sid),
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sid
}

// Destroy removes the session named by the request cookie, if any, and
// expires the cookie.
func (m *Manager) Destroy(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(CookieName); err == nil {
		if sid, ok := m.verify(c.Value); ok {
			m.store.Delete(sid)
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Resolve implements auth.Resolver. It abstains when no session cookie
// is present so the chain can fall through to the bearer resolver.
func (m *Manager) Resolve(_ context.Context, r *http.Request) auth.Result {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return auth.Result{Decision: auth.Abstain}
	}

	sid, ok := m.verify(c.Value)
	if !ok {
		return auth.Result{Decision: auth.Abstain}
	}

	data, ok := m.store.Get(sid)
	if !ok || time.Now().After(data.ExpiresAt) {
		// A stale cookie is not a presented bearer credential; let the
		// chain try the Authorization header before rejecting.
		return auth.Result{Decision: auth.Abstain}
	}

	id := data.Identity
	return auth.Result{Decision: auth.Yes, Identity: &id}
}

// sign returns the hex HMAC-SHA256 tag for a session ID.
func (m *Manager) sign(sid string) string {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(sid))
	return hex.EncodeToString(mac.Sum(nil))
}

// verify splits a cookie value into ID and tag and checks the tag.
func (m *Manager) verify(value string) (string, bool) {
	sid, tag, ok := strings.Cut(value, ".")
	if !ok || sid == "" {
		return "", false
	}
	if !hmac.Equal([]byte(tag), []byte(m.sign(sid))) {
		return "", false
	}
	return sid, true
}

// newSessionID returns 32 random bytes hex-encoded.
func newSessionID() string {
	b := make([]byte, 32)
	rand.Read(b)
	return hex.EncodeToString(b)
}
