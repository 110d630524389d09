package auth

import (
	"sort"
	"strings"
)

// Authority is a role granting permissions. The set of authorities is
// closed: free-form input is filtered against it when a user is created,
// never inside the codec.
type Authority string

const (
	AuthorityAdmin Authority = "ADMIN"
	AuthorityUser  Authority = "USER"
)

func permitted(a Authority) bool {
	switch a {
	case AuthorityAdmin, AuthorityUser:
		return true
	}
	return false
}

// Authorities is an unordered set of authorities.
type Authorities map[Authority]struct{}

// NewAuthorities builds a set from the given authorities.
func NewAuthorities(list ...Authority) Authorities {
	set := make(Authorities, len(list))
	for _, a := range list {
		set[a] = struct{}{}
	}
	return set
}

// Has reports whether the set contains the authority.
func (s Authorities) Has(a Authority) bool {
	_, ok := s[a]
	return ok
}

func (s Authorities) clone() Authorities {
	out := make(Authorities, len(s))
	for a := range s {
		out[a] = struct{}{}
	}
	return out
}

// EncodeAuthorities renders a set as a single space-joined string suitable
// for embedding in a signed claim. Output is sorted so equal sets always
// encode identically.
func EncodeAuthorities(set Authorities) string {
	names := make([]string, 0, len(set))
	for a := range set {
		names = append(names, string(a))
	}
	sort.Strings(names)
	return strings.Join(names, " ")
}

// DecodeAuthorities splits a whitespace-joined authority string. Empty
// input yields an empty set. Tokens are not validated against the
// permitted set here.
func DecodeAuthorities(raw string) Authorities {
	fields := strings.Fields(raw)
	set := make(Authorities, len(fields))
	for _, f := range fields {
		set[Authority(f)] = struct{}{}
	}
	return set
}
