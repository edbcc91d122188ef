package server

import (
	"net/http"

	"github.com/taskriser/taskriser/pkg/api"
	"github.com/taskriser/taskriser/pkg/transport"
)

// AssertionHeader carries the gateway's short-lived signed identity for
// internal calls. The bare X-User-Id header set alongside it is a
// convenience for log correlation and is never trusted.
const AssertionHeader = "X-Gateway-Assertion"

// handleInternalTasks serves the gateway's verified task listing. The
// route sits outside the public protection stack and accepts only a
// valid gateway assertion signed with the shared internal key.
func (s *Server) handleInternalTasks(w http.ResponseWriter, r *http.Request) {
	if s.internal == nil {
		s.logger.Error("internal route called without an internal key configured")
		transport.WriteAPIError(w, api.NewServerError("internal route not configured"))
		return
	}

	assertion := r.Header.Get(AssertionHeader)
	if assertion == "" {
		transport.WriteAPIError(w, api.NewUnauthorizedError("gateway assertion required"))
		return
	}

	claims, err := s.internal.Verify(assertion)
	if err != nil {
		s.logger.Warn("invalid gateway assertion", "remote_addr", r.RemoteAddr, "error", err)
		transport.WriteAPIError(w, api.NewUnauthorizedError("invalid gateway assertion"))
		return
	}

	tasks, err := s.store.ListTasksByUser(r.Context(), claims.UserID)
	if err != nil {
		s.logger.Error("listing tasks for gateway", "user_id", claims.UserID, "error", err)
		transport.WriteAPIError(w, api.NewServerError("could not list tasks"))
		return
	}
	transport.WriteJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}
