package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/taskriser/taskriser/pkg/api"
	"github.com/taskriser/taskriser/pkg/auth"
	"github.com/taskriser/taskriser/pkg/leveling"
	"github.com/taskriser/taskriser/pkg/storage"
	"github.com/taskriser/taskriser/pkg/transport"
)

// rankingSize is how many hunters the public ranking shows.
const rankingSize = 10

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())
	user, err := s.store.GetUserByID(r.Context(), identity.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			transport.WriteAPIError(w, api.NewNotFoundError("user not found"))
			return
		}
		s.logger.Error("loading user", "user_id", identity.UserID, "error", err)
		transport.WriteAPIError(w, api.NewServerError("could not load profile"))
		return
	}
	transport.WriteJSON(w, http.StatusOK, map[string]any{"user": viewOf(user)})
}

type profileRequest struct {
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())

	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		transport.WriteAPIError(w, api.NewInvalidRequestError("", "invalid JSON body"))
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" && req.Avatar == "" {
		transport.WriteAPIError(w, api.NewInvalidRequestError("", "nothing to update"))
		return
	}

	user, err := s.store.UpdateProfile(r.Context(), identity.UserID, req.Username, req.Avatar)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrConflict):
			transport.WriteAPIError(w, api.NewConflictError("username already taken"))
		case errors.Is(err, storage.ErrNotFound):
			transport.WriteAPIError(w, api.NewNotFoundError("user not found"))
		default:
			s.logger.Error("updating profile", "user_id", identity.UserID, "error", err)
			transport.WriteAPIError(w, api.NewServerError("could not update profile"))
		}
		return
	}
	transport.WriteJSON(w, http.StatusOK, map[string]any{"user": viewOf(user)})
}

type expRequest struct {
	Exp int64 `json:"exp"`
}

type expResponse struct {
	User      userView `json:"user"`
	LeveledUp bool     `json:"leveledUp"`
}

// handleAddExp applies a manual EXP adjustment. Negative deltas are
// allowed; the store clamps the total at zero.
func (s *Server) handleAddExp(w http.ResponseWriter, r *http.Request) {
	identity := auth.IdentityFromContext(r.Context())

	var req expRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		transport.WriteAPIError(w, api.NewInvalidRequestError("", "invalid JSON body"))
		return
	}
	if req.Exp == 0 {
		transport.WriteAPIError(w, api.NewInvalidRequestError("exp", "exp must be non-zero"))
		return
	}

	before, err := s.store.GetUserByID(r.Context(), identity.UserID)
	if err != nil {
		s.logger.Error("loading user", "user_id", identity.UserID, "error", err)
		transport.WriteAPIError(w, api.NewServerError("could not adjust exp"))
		return
	}

	user, err := s.store.AddExp(r.Context(), identity.UserID, req.Exp)
	if err != nil {
		s.logger.Error("adjusting exp", "user_id", identity.UserID, "error", err)
		transport.WriteAPIError(w, api.NewServerError("could not adjust exp"))
		return
	}

	transport.WriteJSON(w, http.StatusOK, expResponse{
		User:      viewOf(user),
		LeveledUp: leveling.Level(user.TotalExp) > leveling.Level(before.TotalExp),
	})
}

// handleRanking is public: it returns the top hunters by EXP with no
// emails and no credential required.
func (s *Server) handleRanking(w http.ResponseWriter, r *http.Request) {
	top, err := s.store.TopByExp(r.Context(), rankingSize)
	if err != nil {
		s.logger.Error("loading ranking", "error", err)
		transport.WriteAPIError(w, api.NewServerError("could not load ranking"))
		return
	}

	entries := make([]rankingEntry, len(top))
	for i, u := range top {
		level := leveling.Level(u.TotalExp)
		entries[i] = rankingEntry{PublicUser: u, Level: level, Rank: leveling.Rank(level)}
	}
	transport.WriteJSON(w, http.StatusOK, map[string]any{"ranking": entries})
}
