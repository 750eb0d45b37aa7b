// Package auth issues and verifies the bearer tokens that guard the admin API.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ScopeAdmin grants access to registrations, pitches and stored files.
const ScopeAdmin = "registrations:admin"

// Config holds signing parameters.
type Config struct {
	Secret string
	Issuer string
}

// Claims is the normalized payload of a verified token.
type Claims struct {
	Subject   string
	Scopes    map[string]struct{}
	ExpiresAt time.Time
}

var (
	// ErrMissingToken is returned when no bearer token is presented.
	ErrMissingToken = errors.New("missing bearer token")
	// ErrInvalidToken wraps parse and validation failures.
	ErrInvalidToken = errors.New("invalid bearer token")
	// ErrForbidden is returned when a valid token lacks the required scope.
	ErrForbidden = errors.New("insufficient scope")
	// ErrNoSecret is returned when signing or verifying without a secret.
	ErrNoSecret = errors.New("admin jwt secret is not configured")
)

// Issue signs an HS256 token for subject valid for ttl from now.
func Issue(cfg Config, subject string, ttl time.Duration, now time.Time, scopes ...string) (string, error) {
	if cfg.Secret == "" {
		return "", ErrNoSecret
	}
	if subject == "" {
		return "", fmt.Errorf("%w: empty subject", ErrInvalidToken)
	}
	claims := jwt.MapClaims{
		"sub":    subject,
		"iss":    cfg.Issuer,
		"iat":    now.Unix(),
		"exp":    now.Add(ttl).Unix(),
		"scopes": strings.Join(scopes, " "),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
}

// Parse validates a token and returns its claims.
func Parse(token string, cfg Config) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}
	if cfg.Secret == "" {
		return nil, ErrNoSecret
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(cfg.Secret), nil
	},
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	subject, _ := claims["sub"].(string)
	if subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, fmt.Errorf("%w: missing expiry", ErrInvalidToken)
	}

	return &Claims{
		Subject:   subject,
		Scopes:    normalizeScopes(claims["scopes"]),
		ExpiresAt: exp.Time,
	}, nil
}

func normalizeScopes(value any) map[string]struct{} {
	out := make(map[string]struct{})
	switch v := value.(type) {
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out[s] = struct{}{}
			}
		}
	case string:
		for _, s := range strings.Fields(v) {
			out[s] = struct{}{}
		}
	}
	return out
}

// HasScope reports whether the claims include scope.
func (c *Claims) HasScope(scope string) bool {
	if c == nil {
		return false
	}
	_, ok := c.Scopes[scope]
	return ok
}
