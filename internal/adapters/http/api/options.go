package api

import (
	"github.com/okian/convention/internal/auth"
	"github.com/okian/convention/pkg/logger"
)

const defaultMaxUpload = 64 << 20

// Option configures a Server.
type Option func(*Server)

// WithAuth sets how admin tokens are verified.
func WithAuth(cfg auth.Config) Option {
	return func(s *Server) { s.authCfg = cfg }
}

// WithMaxUploadBytes caps multipart request bodies.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUpload = n
		}
	}
}

// WithSessionCookie names the visitor session cookie.
func WithSessionCookie(name string) Option {
	return func(s *Server) {
		if name != "" {
			s.sessionCookie = name
		}
	}
}

// WithLogger sets the handler logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}
