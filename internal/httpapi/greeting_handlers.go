package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"greetly.org/internal/audit"
	"greetly.org/internal/auth"
	"greetly.org/internal/greeting"
)

type createGreetingRequest struct {
	Message string `json:"message"`
}

func (a *API) handleGreetings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listGreetings(w, r)
	case http.MethodPost:
		a.createGreeting(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

// listGreetings is readable without a session.
func (a *API) listGreetings(w http.ResponseWriter, r *http.Request) {
	entities, err := a.greetings.List(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, r, http.StatusOK, a.assembler.ToDTOs(r.Context(), entities))
}

func (a *API) createGreeting(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusForbidden, "authentication required")
		return
	}

	var req createGreetingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		writeError(w, r, http.StatusBadRequest, "message is required")
		return
	}

	id, err := a.greetings.Create(r.Context(), greeting.Greeting{
		AuthorID: principal.UserID,
		Message:  message,
	})
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	audit.LogEvent(r.Context(), "greeting.create", map[string]any{"greeting_id": id})
	w.Header().Set("Location", fmt.Sprintf("/v1/greetings/%d", id))
	writeJSON(w, r, http.StatusCreated, map[string]int64{"id": id})
}

func (a *API) handleGreetingByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w, r, http.MethodDelete)
		return
	}

	raw := strings.TrimPrefix(r.URL.Path, "/v1/greetings/")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, r, http.StatusNotFound, "greeting not found")
		return
	}

	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusForbidden, "authentication required")
		return
	}

	// Denied and missing collapse to the same response so callers cannot
	// probe for greetings outside their company.
	g, err := a.greetings.Get(r.Context(), id)
	if errors.Is(err, greeting.ErrNotFound) {
		writeError(w, r, http.StatusNotFound, "greeting not found")
		return
	}
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	if !a.authz.CanDelete(r.Context(), principal, g.Value.AuthorID) {
		writeError(w, r, http.StatusNotFound, "greeting not found")
		return
	}

	if err := a.greetings.Delete(r.Context(), id); err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	audit.LogEvent(r.Context(), "greeting.delete", map[string]any{"greeting_id": id})
	w.WriteHeader(http.StatusNoContent)
}
