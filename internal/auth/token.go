// Package auth provides credential primitives: signed session tokens and
// password hashing. The token codec is a pure function of token + secret +
// clock; it holds no per-request state.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultSessionTTL is how long a session token stays valid after issue.
const DefaultSessionTTL = 30 * 24 * time.Hour

// ErrInvalidToken is returned by Verify for any token that cannot be
// accepted: bad signature, malformed structure, wrong algorithm or past
// expiry. Callers must treat it as terminal and respond 401.
var ErrInvalidToken = errors.New("invalid token")

// Codec issues and verifies HS256 session tokens.  The clock is injectable
// so expiry behaviour can be tested without sleeping.
type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewCodec builds a Codec signing with secret. A non-positive ttl falls back
// to DefaultSessionTTL.
func NewCodec(secret string, ttl time.Duration) *Codec {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Codec{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithClock returns a copy of the codec using the given clock. Intended for
// tests that need to move time forward.
func (c *Codec) WithClock(now func() time.Time) *Codec {
	cp := *c
	cp.now = now
	return &cp
}

// Issue builds and signs a token for the subject. The JWT includes standard
// claims: subject (sub), expiration (exp) and issued at (iat), with
// exp = iat + TTL.
func (c *Codec) Issue(subjectID string) (string, error) {
	iat := c.now().UTC()
	claims := jwt.MapClaims{
		"sub": subjectID,
		"iat": iat.Unix(),
		"exp": iat.Add(c.ttl).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(c.secret)
}

// Verify parses and validates a token and returns the subject it was issued
// for. Every failure mode collapses into ErrInvalidToken; no partial or
// lenient verification.
func (c *Codec) Verify(token string) (string, error) {
	tok, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		// Reject tokens signed with anything but HMAC.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return c.secret, nil
	}, jwt.WithTimeFunc(c.now))
	if err != nil || !tok.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", ErrInvalidToken
	}
	return sub, nil
}
