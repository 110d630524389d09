package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"greetly.org/internal/store"
)

const (
	defaultTokenTTL   = 30 * time.Minute
	defaultRenewAfter = 5 * time.Minute
)

// Service implements login, registration and session resumption on top of
// a user store and the token codec. Sessions are stateless: every request
// reconstructs its principal from the cookie token, so the service keeps
// no cross-request mutable state.
type Service struct {
	users  UserStore
	tokens *Tokens

	now        func() time.Time
	ttl        time.Duration
	renewAfter time.Duration
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service) error

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) error {
		if fn != nil {
			s.now = fn
		}
		return nil
	}
}

// WithTokenTTL configures the lifetime granted to freshly issued tokens.
func WithTokenTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) error {
		if ttl <= 0 {
			return errors.New("auth: token ttl must be greater than zero")
		}
		s.ttl = ttl
		return nil
	}
}

// WithRenewAfter configures the age beyond which a valid token is
// refreshed from current user data.
func WithRenewAfter(d time.Duration) ServiceOption {
	return func(s *Service) error {
		if d <= 0 {
			return errors.New("auth: renewal threshold must be greater than zero")
		}
		s.renewAfter = d
		return nil
	}
}

// NewService constructs the service. The renewal threshold must stay
// strictly below the token TTL or an active session could expire before it
// is ever renewed.
func NewService(users UserStore, signingKey []byte, opts ...ServiceOption) (*Service, error) {
	s := &Service{
		users:      users,
		now:        time.Now,
		ttl:        defaultTokenTTL,
		renewAfter: defaultRenewAfter,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	if s.renewAfter >= s.ttl {
		return nil, errors.New("auth: renewal threshold must be below token ttl")
	}
	tokens, err := NewTokens(signingKey, s.now)
	if err != nil {
		return nil, err
	}
	s.tokens = tokens
	return s, nil
}

// PrincipalFromUser builds a fresh principal for a stored user. Login and
// renewal both go through here so they produce structurally identical
// principals carrying the authority set as currently stored. Timestamps
// are truncated to whole seconds to match the token encoding resolution.
func (s *Service) PrincipalFromUser(user store.Entity[AuthUser]) Principal {
	now := s.now().UTC().Truncate(time.Second)
	return Principal{
		UserID:      user.ID,
		CompanyID:   user.Value.CompanyID,
		Authorities: user.Value.Authorities.clone(),
		IssuedAt:    now,
		ExpiresAt:   now.Add(s.ttl),
	}
}

// IssuedToken is a signed session token together with the cookie lifetime
// derived from its expiry.
type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
	MaxAge    int
}

// IssueToken signs the principal into a session token.
func (s *Service) IssueToken(p Principal) (IssuedToken, error) {
	value, err := s.tokens.Issue(p)
	if err != nil {
		return IssuedToken{}, err
	}
	maxAge := int(p.ExpiresAt.Sub(s.now()).Seconds())
	if maxAge < 0 {
		maxAge = 0
	}
	return IssuedToken{Value: value, ExpiresAt: p.ExpiresAt, MaxAge: maxAge}, nil
}

// ParseToken verifies a raw session token without applying the renewal
// policy.
func (s *Service) ParseToken(raw string) (Principal, error) {
	return s.tokens.Parse(raw)
}

// Session is the outcome of resuming a request's session token: the
// principal to install (if any), an optional replacement token to set on
// the response, and whether the cookie must be cleared instead. Keeping
// the decision here leaves the actual cookie write to the HTTP boundary.
type Session struct {
	Principal     Principal
	Authenticated bool
	Refresh       *IssuedToken
	Clear         bool
}

// Resume applies the per-request session decision tree. A token that fails
// validation degrades to an anonymous session, never an error. A valid
// token older than the renewal threshold is replaced by a brand-new token
// minted from the user's current stored record; if that user is gone the
// session is treated as logged out and the cookie cleared. A fresh token
// is re-issued with the same issuance basis and a pushed-out expiry, so an
// active session slides forward while an idle one still expires.
func (s *Service) Resume(ctx context.Context, raw string) Session {
	principal, err := s.tokens.Parse(raw)
	if err != nil {
		return Session{}
	}

	if s.now().Sub(principal.IssuedAt) > s.renewAfter {
		user, err := s.users.GetByID(ctx, principal.UserID)
		if err != nil {
			// Deleted since issuance: a dangling session reads as logged out.
			return Session{Clear: true}
		}
		fresh, err := s.IssueToken(s.PrincipalFromUser(user))
		if err != nil {
			return Session{Principal: principal, Authenticated: true}
		}
		return Session{Principal: principal, Authenticated: true, Refresh: &fresh}
	}

	slid, err := s.IssueToken(principal.WithExpiresAt(s.now().UTC().Truncate(time.Second).Add(s.ttl)))
	if err != nil {
		return Session{Principal: principal, Authenticated: true}
	}
	return Session{Principal: principal, Authenticated: true, Refresh: &slid}
}

// Login verifies credentials and mints a principal. Unknown usernames and
// wrong passwords collapse to the same failure so callers cannot enumerate
// accounts.
func (s *Service) Login(ctx context.Context, username, password string) (Principal, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return Principal{}, ErrBadCredentials
	}
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return Principal{}, ErrBadCredentials
	}
	if err := VerifyPassword(user.Value.PasswordHash, password); err != nil {
		return Principal{}, ErrBadCredentials
	}
	return s.PrincipalFromUser(user), nil
}

// Register creates an account and returns its new identity. Requested
// roles are filtered to the permitted authorities and USER is always
// granted. Username uniqueness is the store's concern; its rejection
// surfaces as ErrAlreadyExists.
func (s *Service) Register(ctx context.Context, username, password, companyID string, roles []string) (int64, error) {
	username = strings.TrimSpace(username)
	companyID = strings.TrimSpace(companyID)
	if username == "" || password == "" || companyID == "" {
		return 0, ErrInvalidInput
	}
	hash, err := HashPassword(password)
	if err != nil {
		return 0, err
	}
	return s.users.Save(ctx, NewAuthUser(username, hash, companyID, roles))
}

// User returns the stored record behind a principal, used for profile
// projections.
func (s *Service) User(ctx context.Context, id int64) (store.Entity[AuthUser], error) {
	return s.users.GetByID(ctx, id)
}
