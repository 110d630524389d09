package greeting

import (
	"context"

	"greetly.org/internal/auth"
	"greetly.org/internal/store"
)

// DTO is the API projection of a greeting, with the author resolved to
// its current username and company.
type DTO struct {
	ID      int64  `json:"id"`
	Author  string `json:"author"`
	Company string `json:"company"`
	Message string `json:"message"`
}

// Assembler shapes greetings for API responses.
type Assembler struct {
	users auth.UserStore
}

func NewAssembler(users auth.UserStore) *Assembler {
	return &Assembler{users: users}
}

// ToDTO resolves the greeting's author. Greetings whose author no longer
// exists are reported absent and skipped from listings.
func (a *Assembler) ToDTO(ctx context.Context, e store.Entity[Greeting]) (DTO, bool) {
	author, err := a.users.GetByID(ctx, e.Value.AuthorID)
	if err != nil {
		return DTO{}, false
	}
	return DTO{
		ID:      e.ID,
		Author:  author.Value.Username,
		Company: author.Value.CompanyID,
		Message: e.Value.Message,
	}, true
}

// ToDTOs maps a listing, dropping entries with dangling authors.
func (a *Assembler) ToDTOs(ctx context.Context, entities []store.Entity[Greeting]) []DTO {
	out := make([]DTO, 0, len(entities))
	for _, e := range entities {
		if dto, ok := a.ToDTO(ctx, e); ok {
			out = append(out, dto)
		}
	}
	return out
}
