package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers every verification failure: malformed, tampered,
// or expired tokens. The caller is deliberately not told which check failed.
var ErrInvalidToken = errors.New("invalid token")

// ErrNoToken means the request carried no bearer token at all. The auth
// gate maps it to the same response as ErrInvalidToken.
var ErrNoToken = errors.New("missing token")

// Config holds the process-wide signing material for Tokens. The secret is
// loaded once at startup and injected here; rotating it invalidates every
// previously issued token.
type Config struct {
	Secret []byte
	TTL    time.Duration
}

// claims is the single-attribute identity assertion: the subject's account
// id plus the registered expiry.
type claims struct {
	UserID string `json:"_id"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies HS256-signed identity tokens.
type Tokens struct {
	cfg Config
	now func() time.Time
}

// NewTokens constructs a token service from an immutable Config.
func NewTokens(cfg Config) *Tokens {
	return &Tokens{cfg: cfg, now: time.Now}
}

// Issue signs a token for subjectID, valid for the configured TTL.
func (t *Tokens) Issue(subjectID string) (string, error) {
	now := t.now()
	c := &claims{
		UserID: subjectID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(t.cfg.TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return tok.SignedString(t.cfg.Secret)
}

// Verify checks the signature and expiry of token and returns the subject
// id it carries. Every failure mode collapses to ErrInvalidToken.
func (t *Tokens) Verify(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &claims{}, func(*jwt.Token) (interface{}, error) {
		return t.cfg.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now))
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}
	c, ok := parsed.Claims.(*claims)
	if !ok || c.UserID == "" {
		return "", ErrInvalidToken
	}
	return c.UserID, nil
}
