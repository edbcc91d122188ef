package gateway

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/taskriser/taskriser/pkg/api"
	"github.com/taskriser/taskriser/pkg/auth/token"
	"github.com/taskriser/taskriser/pkg/transport"
)

// internalTasksPath is the core service route backing /api/my-tasks.
const internalTasksPath = "/internal/tasks"

// handleMyTasks is the gateway's verified route. The gateway checks the
// bearer token itself, then calls the core service with a fresh signed
// assertion instead of the user's token. The upstream trusts only the
// assertion; the X-User-Id header rides along for log correlation.
func (g *Gateway) handleMyTasks(w http.ResponseWriter, r *http.Request) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") || strings.TrimPrefix(header, "Bearer ") == "" {
		transport.WriteAPIError(w, api.NewUnauthorizedError("authentication token required"))
		return
	}

	claims, err := g.verifier.Verify(strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		msg := "invalid or expired token"
		if errors.Is(err, token.ErrExpired) {
			msg = "token expired"
		}
		g.logger.Warn("my-tasks token rejected", "remote_addr", r.RemoteAddr, "error", err)
		transport.WriteAPIError(w, api.NewUnauthorizedError(msg))
		return
	}

	assertion, err := g.internal.IssueWithTTL(claims.UserID, claims.Username, "", AssertionTTL)
	if err != nil {
		g.logger.Error("minting gateway assertion", "error", err)
		transport.WriteAPIError(w, api.NewServerError("proxy error"))
		return
	}

	headers := http.Header{}
	headers.Set("X-Gateway-Assertion", assertion)
	headers.Set("X-User-Id", strconv.FormatInt(claims.UserID, 10))

	// The user's token stops here.
	r.Header.Del("Authorization")
	g.forward(w, r, "/api/my-tasks", g.tasks, internalTasksPath, headers)
}
