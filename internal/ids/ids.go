package ids

import "github.com/oklog/ulid/v2"

// New returns a lexicographically sortable identifier used to correlate
// requests across logs and audit entries.
func New() string {
	return ulid.Make().String()
}
