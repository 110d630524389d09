package httpapi

import (
	"errors"
	"net/http"

	"greetly.org/internal/audit"
	"greetly.org/internal/auth"
	"greetly.org/internal/obs"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username  string   `json:"username"`
	Password  string   `json:"password"`
	CompanyID string   `json:"company_id"`
	Roles     []string `json:"roles"`
}

type profileResponse struct {
	Username  string `json:"username"`
	CompanyID string `json:"company_id"`
	IsAdmin   bool   `json:"is_admin"`
}

func (a *API) handleAuth(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		a.login(w, r)
	case http.MethodGet:
		a.me(w, r)
	case http.MethodDelete:
		a.logout(w, r)
	default:
		methodNotAllowed(w, r, http.MethodPost, http.MethodGet, http.MethodDelete)
	}
}

// login verifies credentials and establishes the session cookie. Unknown
// usernames and wrong passwords produce the same response.
func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	principal, err := a.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		audit.LogEvent(r.Context(), "auth.login_failed", map[string]any{"username": req.Username})
		writeError(w, r, http.StatusUnauthorized, "authentication failed")
		return
	}

	tok, err := a.auth.IssueToken(principal)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	http.SetCookie(w, sessionCookie(tok))
	obs.SessionIssued("login")

	ctx := auth.ContextWithPrincipal(r.Context(), principal)
	audit.LogEvent(ctx, "auth.login", nil)

	user, err := a.auth.User(ctx, principal.UserID)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, r, http.StatusOK, profileResponse{
		Username:  user.Value.Username,
		CompanyID: user.Value.CompanyID,
		IsAdmin:   user.Value.IsAdmin(),
	})
}

// me reports the profile behind the current session token without applying
// the renewal policy, so probing the session never moves its expiry.
func (a *API) me(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	principal, err := a.auth.ParseToken(cookie.Value)
	if err != nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	user, err := a.auth.User(r.Context(), principal.UserID)
	if err != nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, r, http.StatusOK, profileResponse{
		Username:  user.Value.Username,
		CompanyID: user.Value.CompanyID,
		IsAdmin:   user.Value.IsAdmin(),
	})
}

func (a *API) logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, clearSessionCookie())
	obs.SessionIssued("clear")
	audit.LogEvent(r.Context(), "auth.logout", nil)
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleAuthUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := a.auth.Register(r.Context(), req.Username, req.Password, req.CompanyID, req.Roles)
	switch {
	case errors.Is(err, auth.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, "username, password and company_id are required")
		return
	case errors.Is(err, auth.ErrAlreadyExists):
		writeError(w, r, http.StatusConflict, "username already taken")
		return
	case err != nil:
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	audit.LogEvent(r.Context(), "auth.register", map[string]any{
		"new_user_id": id,
		"username":    req.Username,
		"company_id":  req.CompanyID,
	})
	writeJSON(w, r, http.StatusCreated, map[string]int64{"id": id})
}
