package greeting

import (
	"context"

	"greetly.org/internal/auth"
)

// Authorizer decides whether a principal may mutate a greeting.
type Authorizer struct {
	users auth.UserStore
}

func NewAuthorizer(users auth.UserStore) *Authorizer {
	return &Authorizer{users: users}
}

// CanDelete reports whether the principal may delete a greeting owned by
// authorID. The owner is looked up at decision time so the company
// boundary always reflects the owner's current company, and an orphaned
// greeting can never be mutated. The company check comes before any role
// or ownership consideration: an admin never reaches across companies.
func (a *Authorizer) CanDelete(ctx context.Context, principal auth.Principal, authorID int64) bool {
	owner, err := a.users.GetByID(ctx, authorID)
	if err != nil {
		return false
	}
	if owner.Value.CompanyID != principal.CompanyID {
		return false
	}
	return principal.IsAdmin() || principal.UserID == authorID
}
