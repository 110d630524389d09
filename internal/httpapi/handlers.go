// Package httpapi exposes the service over HTTP. Handlers translate
// between wire JSON and the domain packages; all session cookie writes
// happen here and nowhere else.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"greetly.org/internal/auth"
	"greetly.org/internal/greeting"
	"greetly.org/internal/obs"
)

const maxBodyBytes = 1 << 20

// API holds handler dependencies and the route table.
type API struct {
	mux *http.ServeMux

	auth      *auth.Service
	users     auth.UserStore
	greetings greeting.Repository
	authz     *greeting.Authorizer
	assembler *greeting.Assembler

	readyProbe func() error
	version    string

	rateBurst  int
	ratePerSec int
}

// Option configures the API.
type Option func(*API)

// WithReadyProbe sets the readiness check invoked by /readyz.
func WithReadyProbe(probe func() error) Option {
	return func(a *API) {
		if probe != nil {
			a.readyProbe = probe
		}
	}
}

// WithVersion sets the build version reported by /v1/info.
func WithVersion(v string) Option {
	return func(a *API) { a.version = v }
}

// WithRateLimit overrides the default per-client rate limit.
func WithRateLimit(perSec, burst int) Option {
	return func(a *API) {
		if perSec > 0 {
			a.ratePerSec = perSec
		}
		if burst > 0 {
			a.rateBurst = burst
		}
	}
}

// New wires the route table.
func New(authSvc *auth.Service, users auth.UserStore, greetings greeting.Repository, opts ...Option) *API {
	a := &API{
		mux:        http.NewServeMux(),
		auth:       authSvc,
		users:      users,
		greetings:  greetings,
		authz:      greeting.NewAuthorizer(users),
		assembler:  greeting.NewAssembler(users),
		readyProbe: func() error { return nil },
		version:    "dev",
		rateBurst:  20,
		ratePerSec: 10,
	}
	for _, opt := range opts {
		opt(a)
	}

	a.mux.HandleFunc("/healthz", a.handleHealthz)
	a.mux.HandleFunc("/readyz", a.handleReadyz)
	a.mux.HandleFunc("/v1/info", a.handleInfo)
	a.mux.Handle("/metrics", obs.Handler())

	a.mux.HandleFunc("/v1/auth", a.handleAuth)
	a.mux.HandleFunc("/v1/auth/users", a.handleAuthUsers)

	a.mux.Handle("/v1/greetings", a.withSession(http.HandlerFunc(a.handleGreetings)))
	a.mux.Handle("/v1/greetings/", a.withSession(http.HandlerFunc(a.handleGreetingByID)))

	return a
}

// Handler returns the full middleware chain around the route table.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = MaxBodyBytes(maxBodyBytes)(h)
	h = a.rateLimit(h)
	h = SecurityHeaders(h)
	h = LoggingJSON(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

func (a *API) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if err := a.readyProbe(); err != nil {
		obs.SetReady(false)
		writeError(w, r, http.StatusServiceUnavailable, "not ready")
		return
	}
	obs.SetReady(true)
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ready"})
}

func (a *API) handleInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{
		"service": "greetly",
		"version": a.version,
	})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		obs.LogRequest(map[string]any{
			"level":      "error",
			"msg":        "response encode failed",
			"request_id": RequestIDFromContext(r.Context()),
			"error":      err.Error(),
		})
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, r, status, map[string]string{
		"error":      message,
		"request_id": RequestIDFromContext(r.Context()),
	})
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}
