package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/taskriser/taskriser/pkg/api"
	"github.com/taskriser/taskriser/pkg/auth"
	"github.com/taskriser/taskriser/pkg/auth/password"
	"github.com/taskriser/taskriser/pkg/csrf"
	"github.com/taskriser/taskriser/pkg/observability"
	"github.com/taskriser/taskriser/pkg/ratelimit"
	"github.com/taskriser/taskriser/pkg/storage"
	"github.com/taskriser/taskriser/pkg/transport"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		transport.WriteAPIError(w, api.NewInvalidRequestError("", "invalid JSON body"))
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Username == "" {
		transport.WriteAPIError(w, api.NewInvalidRequestError("username", "username is required"))
		return
	}
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		transport.WriteAPIError(w, api.NewInvalidRequestError("email", "a valid email is required"))
		return
	}

	if ok, rules := password.Validate(req.Password); !ok {
		transport.WriteAPIError(w, api.NewInvalidRequestError("password", strings.Join(rules, "; ")))
		return
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		s.logger.Error("hashing password", "error", err)
		transport.WriteAPIError(w, api.NewServerError("registration failed"))
		return
	}

	user, err := s.store.CreateUser(r.Context(), &api.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			transport.WriteAPIError(w, api.NewConflictError("username or email already taken"))
			return
		}
		s.logger.Error("creating user", "error", err)
		transport.WriteAPIError(w, api.NewServerError("registration failed"))
		return
	}

	s.logger.Info("hunter registered", "user_id", user.ID, "username", user.Username)
	transport.WriteJSON(w, http.StatusCreated, map[string]any{"user": viewOf(user)})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token               string   `json:"token"`
	User                userView `json:"user"`
	WeakPasswordWarning string   `json:"weakPasswordWarning,omitempty"`
}

// handleLogin checks the lockout state before the password so locked
// accounts never reach bcrypt. All credential failures share one 401
// message; nothing in the response distinguishes an unknown email from
// a wrong password.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		transport.WriteAPIError(w, api.NewInvalidRequestError("", "invalid JSON body"))
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		transport.WriteAPIError(w, api.NewInvalidRequestError("", "email and password are required"))
		return
	}

	if locked, remaining := s.lockout.Locked(req.Email); locked {
		mins := int(remaining.Minutes()) + 1
		s.logger.Warn("login attempt on locked account", "email", req.Email, "remaining_minutes", mins)
		apiErr := api.NewTooManyRequestsError(
			fmt.Sprintf("account temporarily locked, try again in %d minutes", mins))
		apiErr.RemainingMinutes = mins
		transport.WriteAPIError(w, apiErr)
		return
	}

	// The per-IP login limiter runs after the lockout check so its 429
	// never shadows the lockout's remaining-minutes answer.
	if !ratelimit.Check(w, r, s.login, "login", nil) {
		return
	}

	user, err := s.store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Error("looking up user", "error", err)
			transport.WriteAPIError(w, api.NewServerError("login failed"))
			return
		}
		// Unknown accounts accumulate failures too, so probing an email
		// behaves exactly like guessing a password.
		s.failLogin(w, req.Email)
		return
	}

	if !password.Verify(req.Password, user.PasswordHash) {
		s.failLogin(w, req.Email)
		return
	}

	s.lockout.Success(req.Email)

	tok, err := s.issuer.Issue(user.ID, user.Username, user.Email)
	if err != nil {
		s.logger.Error("issuing token", "error", err)
		transport.WriteAPIError(w, api.NewServerError("login failed"))
		return
	}

	s.sessions.Create(w, auth.Identity{UserID: user.ID, Username: user.Username, Email: user.Email})

	resp := loginResponse{Token: tok, User: viewOf(user)}
	if password.Score(req.Password) < 50 {
		resp.WeakPasswordWarning = "your password is weak, consider changing it"
	}

	s.logger.Info("hunter logged in", "user_id", user.ID, "username", user.Username)
	transport.WriteJSON(w, http.StatusOK, resp)
}

// failLogin records a failed attempt and writes the generic rejection.
func (s *Server) failLogin(w http.ResponseWriter, email string) {
	s.lockout.Failure(email)
	observability.LoginFailuresTotal.Inc()
	s.logger.Warn("login failed", "email", email)
	transport.WriteAPIError(w, api.NewUnauthorizedError("invalid credentials"))
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.Destroy(w, r)
	w.WriteHeader(http.StatusNoContent)
}

// handleCSRFToken returns the token the CSRF middleware set on this
// response, so clients can bootstrap header-based submission.
func (s *Server) handleCSRFToken(w http.ResponseWriter, r *http.Request) {
	tok := csrf.TokenFromContext(r.Context())
	if tok == "" {
		tok = csrf.SetToken(w)
	}
	transport.WriteJSON(w, http.StatusOK, map[string]string{"csrfToken": tok})
}
