package auth

import (
	"context"
	"strings"
	"time"

	"greetly.org/internal/store"
)

// AuthUser is a stored account. Every user belongs to exactly one company
// and holds a set of authorities drawn from the permitted enumeration.
type AuthUser struct {
	Username     string
	PasswordHash string
	CompanyID    string
	Authorities  Authorities
}

// NewAuthUser constructs an account, filtering requested roles against the
// permitted authorities and discarding anything unrecognized. Every user
// holds USER even when it was not requested.
func NewAuthUser(username, passwordHash, companyID string, roles []string) AuthUser {
	granted := NewAuthorities(AuthorityUser)
	for _, r := range roles {
		a := Authority(strings.ToUpper(strings.TrimSpace(r)))
		if permitted(a) {
			granted[a] = struct{}{}
		}
	}
	return AuthUser{
		Username:     username,
		PasswordHash: passwordHash,
		CompanyID:    companyID,
		Authorities:  granted,
	}
}

// IsAdmin reports whether the account holds the ADMIN authority.
func (u AuthUser) IsAdmin() bool {
	return u.Authorities.Has(AuthorityAdmin)
}

// Principal is the authenticated identity reconstructed from a session
// token for the duration of one request. It is never persisted and never
// mutated: renewal supersedes it with a new Principal carrying a fresh
// issuedAt/expiresAt.
type Principal struct {
	UserID      int64
	CompanyID   string
	Authorities Authorities
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

// IsAdmin reports whether the principal holds the ADMIN authority.
func (p Principal) IsAdmin() bool {
	return p.Authorities.Has(AuthorityAdmin)
}

// WithExpiresAt returns a copy keeping the same issuance basis with a
// recomputed expiry.
func (p Principal) WithExpiresAt(t time.Time) Principal {
	p.ExpiresAt = t
	return p
}

// UserStore describes persistence required by the authentication core.
// Implementations serialize concurrent access internally; callers treat
// every operation as atomic.
type UserStore interface {
	GetByID(ctx context.Context, id int64) (store.Entity[AuthUser], error)
	GetByUsername(ctx context.Context, username string) (store.Entity[AuthUser], error)
	Save(ctx context.Context, user AuthUser) (int64, error)
}
