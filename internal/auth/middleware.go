package auth

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const claimsKey contextKey = "admin-claims"

// WithClaims stores claims on the context.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// FromContext retrieves claims stored by WithClaims.
func FromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*Claims)
	return claims, ok
}

// FailFunc writes the response for a rejected request.
type FailFunc func(w http.ResponseWriter, r *http.Request, err error)

// Middleware validates bearer tokens and enforces a scope.
type Middleware struct {
	Config Config
	Scope  string
	Fail   FailFunc
}

// NewMiddleware requires scope on every wrapped request. A nil fail writes a
// plain text 401 or 403.
func NewMiddleware(cfg Config, scope string, fail FailFunc) Middleware {
	return Middleware{Config: cfg, Scope: scope, Fail: fail}
}

// Wrap wraps next with authentication.
func (m Middleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := m.parseRequest(r)
		if err == nil && m.Scope != "" && !claims.HasScope(m.Scope) {
			err = ErrForbidden
		}
		if err != nil {
			m.fail(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

func (m Middleware) fail(w http.ResponseWriter, r *http.Request, err error) {
	if m.Fail != nil {
		m.Fail(w, r, err)
		return
	}
	status := http.StatusUnauthorized
	if err == ErrForbidden {
		status = http.StatusForbidden
	}
	http.Error(w, err.Error(), status)
}

func (m Middleware) parseRequest(r *http.Request) (*Claims, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, ErrMissingToken
	}
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return nil, ErrInvalidToken
	}
	return Parse(header[len("Bearer "):], m.Config)
}
