package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "greetly"

// ErrInvalidToken indicates the token failed validation. Callers treat it
// as "no session", never as a hard error.
var ErrInvalidToken = errors.New("invalid token")

type sessionClaims struct {
	CompanyID   string `json:"cid"`
	Authorities string `json:"authorities"`
	jwt.RegisteredClaims
}

// Tokens signs and verifies session tokens using HS256. The signing key is
// read-only process-wide state established once at startup, so a Tokens
// value is safe for concurrent use.
type Tokens struct {
	key []byte
	now func() time.Time
}

// NewTokens creates the codec. A missing key is a configuration error and
// fatal at startup, not per-request.
func NewTokens(key []byte, now func() time.Time) (*Tokens, error) {
	if len(key) == 0 {
		return nil, errors.New("auth: signing key is required")
	}
	if now == nil {
		now = time.Now
	}
	return &Tokens{key: key, now: now}, nil
}

// Issue signs the principal's claims into a compact session token.
// Timestamps are carried at whole-second resolution, the resolution the
// principal factory issues them at, so issue followed by parse
// reconstructs them exactly.
func (t *Tokens) Issue(p Principal) (string, error) {
	claims := sessionClaims{
		CompanyID:   p.CompanyID,
		Authorities: EncodeAuthorities(p.Authorities),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatInt(p.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(p.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(p.ExpiresAt),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies the signature and required claims and reconstructs the
// principal. Every failure collapses to ErrInvalidToken: a malformed,
// forged or expired cookie must never produce a usable principal. Expiry
// is evaluated against the injected clock.
func (t *Tokens) Parse(raw string) (Principal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Principal{}, ErrInvalidToken
	}
	parsed, err := jwt.ParseWithClaims(raw, &sessionClaims{}, func(tok *jwt.Token) (any, error) {
		if tok.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return t.key, nil
	}, jwt.WithTimeFunc(t.now), jwt.WithIssuer(issuer), jwt.WithExpirationRequired())
	if err != nil {
		return Principal{}, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid {
		return Principal{}, ErrInvalidToken
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return Principal{}, ErrInvalidToken
	}
	if strings.TrimSpace(claims.CompanyID) == "" {
		return Principal{}, ErrInvalidToken
	}
	if claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return Principal{}, ErrInvalidToken
	}
	if !claims.ExpiresAt.Time.After(claims.IssuedAt.Time) {
		return Principal{}, ErrInvalidToken
	}
	return Principal{
		UserID:      userID,
		CompanyID:   claims.CompanyID,
		Authorities: DecodeAuthorities(claims.Authorities),
		IssuedAt:    claims.IssuedAt.Time,
		ExpiresAt:   claims.ExpiresAt.Time,
	}, nil
}
