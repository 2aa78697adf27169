package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"tabungan/internal/core"
	"tabungan/internal/i18n"
	applog "tabungan/internal/log"
	"tabungan/internal/services"
)

type userIDKey struct{}

func userIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey{}).(string)
	return id, ok && id != ""
}

// requireAuth accepts "Authorization: Bearer <jwt>" and puts the user id in
// the context and on the request logger.
func (s *Server) requireAuth(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			s.writeError(w, r, errUnauthenticated, i18n.ErrUnauthorized)
			return
		}
		userID, err := s.svc.Auth.VerifyToken(strings.TrimSpace(token))
		if err != nil {
			applog.FromContext(r.Context()).DebugContext(r.Context(), "token rejected", applog.FieldError, err.Error())
			s.writeError(w, r, err, i18n.ErrUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey{}, userID)
		ctx = applog.IntoContext(ctx, applog.FromContext(ctx).With(applog.FieldUserID, userID))
		next(w, r.WithContext(ctx))
	})
}

type sessionResponse struct {
	Token  string          `json:"token"`
	User   core.User       `json:"user"`
	Ledger services.Ledger `json:"ledger"`
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var in services.SignUpInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err, i18n.ErrSignupFailed)
		return
	}
	u, err := s.svc.Auth.SignUp(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err, i18n.ErrSignupFailed)
		return
	}
	token, err := s.svc.Auth.GenerateJWT(u.ID)
	if err != nil {
		s.writeError(w, r, err, i18n.ErrSignupFailed)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{
		Token:  token,
		User:   u,
		Ledger: services.Ledger{Entries: []core.MoneyEntry{}, Goals: []core.Goal{}},
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// handleLogin issues a token and loads the user's ledger, which sets the
// milestone baseline silently.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err, i18n.ErrLoginFailed)
		return
	}
	u, token, err := s.svc.Auth.Login(r.Context(), in.Username, in.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			applog.FromContext(r.Context()).InfoContext(r.Context(), "login failed", applog.FieldClientIP, extractClientIP(r))
		}
		s.writeError(w, r, err, i18n.ErrLoginFailed)
		return
	}
	ledger, err := s.svc.Ledger.Load(r.Context(), u.ID)
	if err != nil {
		s.writeError(w, r, err, i18n.ErrServer)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Token: token, User: u, Ledger: ledger})
}

// handleLogout ends the milestone session. Tokens are stateless, so the
// client is expected to discard its token.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFrom(r.Context())
	s.svc.Ledger.EndSession(userID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFrom(r.Context())
	u, err := s.svc.Auth.Profile(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err, i18n.ErrServer)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFrom(r.Context())
	var in services.ProfileInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err, i18n.ErrProfileSaveFailed)
		return
	}
	u, err := s.svc.Auth.UpdateProfile(r.Context(), userID, in)
	if err != nil {
		s.writeError(w, r, err, i18n.ErrProfileSaveFailed)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// handleListUsers is restricted to the configured admin usernames.
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFrom(r.Context())
	me, err := s.svc.Auth.Profile(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err, i18n.ErrServer)
		return
	}
	if !s.admins[strings.ToLower(me.Username)] {
		s.writeError(w, r, errForbidden, i18n.ErrUnauthorized)
		return
	}
	users, err := s.svc.Auth.Users(r.Context())
	if err != nil {
		s.writeError(w, r, err, i18n.ErrServer)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}
