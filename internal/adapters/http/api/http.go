// Package api serves the JSON API used by the site's scripts and by admins.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	service "github.com/okian/convention/internal/app"
	"github.com/okian/convention/internal/adapters/storage"
	"github.com/okian/convention/internal/auth"
	"github.com/okian/convention/internal/domain/content"
	"github.com/okian/convention/internal/domain/countdown"
	"github.com/okian/convention/internal/domain/model"
	"github.com/okian/convention/internal/domain/validation"
	"github.com/okian/convention/pkg/logger"
)

// Dependencies required by public handlers.
type Dependencies interface {
	Register(ctx context.Context, form model.RegistrationForm, receipt *model.Upload) (model.Registration, error)
	VerifyDelegate(ctx context.Context, uid string) (model.Delegate, error)
	SubmitPitch(ctx context.Context, sub model.PitchSubmission) (model.Pitch, error)
	TrackVisit(ctx context.Context, session string) (bool, int64, error)
	VisitorCount(ctx context.Context) (int64, error)
	Countdown() countdown.Remaining
	Schedule() []content.Day
}

// AdminDependencies are the operations behind the admin token.
type AdminDependencies interface {
	ListRegistrations(ctx context.Context, status string) ([]model.Registration, error)
	ConfirmPayment(ctx context.Context, id string) (model.Registration, error)
	RejectPayment(ctx context.Context, id string) (model.Registration, error)
	ListPitches(ctx context.Context) ([]model.Pitch, error)
	OpenFile(ctx context.Context, bucket, key string) (io.ReadCloser, storage.Object, error)
}

// Server wires HTTP routes for the JSON API.
type Server struct {
	deps  Dependencies
	admin AdminDependencies
	stats StatsProvider

	authCfg       auth.Config
	maxUpload     int64
	sessionCookie string
	log           logger.Logger
}

// NewServer creates a new API server.
func NewServer(deps Dependencies, admin AdminDependencies, stats StatsProvider, opts ...Option) *Server {
	s := &Server{
		deps:          deps,
		admin:         admin,
		stats:         stats,
		maxUpload:     defaultMaxUpload,
		sessionCookie: DefaultSessionCookie,
		log:           logger.Get().Named("api"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all API routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("GET /healthz", MetricsMiddleware(HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.handleStats, "stats"))

	mux.HandleFunc("POST /api/registrations", MetricsMiddleware(s.handleRegister, "registrations"))
	mux.HandleFunc("POST /api/pitches/verify", MetricsMiddleware(s.handleVerify, "pitches_verify"))
	mux.HandleFunc("POST /api/pitches", MetricsMiddleware(s.handleSubmitPitch, "pitches"))
	mux.HandleFunc("GET /api/visitors", MetricsMiddleware(s.handleVisitors, "visitors"))
	mux.HandleFunc("POST /api/visits", MetricsMiddleware(s.handleVisit, "visits"))
	mux.HandleFunc("GET /api/countdown", MetricsMiddleware(s.handleCountdown, "countdown"))
	mux.HandleFunc("GET /api/schedule", MetricsMiddleware(s.handleSchedule, "schedule"))

	guard := auth.NewMiddleware(s.authCfg, auth.ScopeAdmin, s.authFailed)
	admin := func(h http.HandlerFunc, endpoint string) http.HandlerFunc {
		return MetricsMiddleware(guard.Wrap(h).ServeHTTP, endpoint)
	}
	mux.HandleFunc("GET /api/admin/registrations", admin(s.handleListRegistrations, "admin_registrations"))
	mux.HandleFunc("POST /api/admin/registrations/{id}/confirm", admin(s.handleConfirm, "admin_confirm"))
	mux.HandleFunc("POST /api/admin/registrations/{id}/reject", admin(s.handleReject, "admin_reject"))
	mux.HandleFunc("GET /api/admin/pitches", admin(s.handleListPitches, "admin_pitches"))
	mux.HandleFunc("GET /api/admin/files/{bucket}/{path...}", admin(s.handleFile, "admin_files"))
}

type errorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	resp := errorResponse{Code: code, Message: http.StatusText(status)}
	if err != nil {
		resp.Message = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeServiceError maps a service error to a status and the visitor-facing
// message.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, code := classify(err)
	resp := errorResponse{Code: code, Message: service.Message(err)}
	if resp.Message == service.MsgUnexpected && status < http.StatusInternalServerError {
		resp.Message = err.Error()
	}
	if ve, ok := validation.AsError(err); ok {
		resp.Fields = ve.Fields
	}
	if status >= http.StatusInternalServerError {
		s.log.Error(r.Context(), "request failed", logger.String("op", op), logger.Error(err))
	}
	writeJSON(w, status, resp)
}

func classify(err error) (int, string) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge), errors.Is(err, ErrTooLarge):
		return http.StatusRequestEntityTooLarge, "too_large"
	case errors.Is(err, validation.ErrInvalid):
		return http.StatusBadRequest, "validation_failed"
	case errors.Is(err, ErrBadRequest), errors.Is(err, service.ErrInvalidStatus), errors.Is(err, storage.ErrInvalidKey):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, service.ErrDuplicateRegistration):
		return http.StatusConflict, "duplicate_registration"
	case errors.Is(err, service.ErrPitchExists):
		return http.StatusConflict, "pitch_exists"
	case errors.Is(err, service.ErrUnknownUID):
		return http.StatusNotFound, "unknown_uid"
	case errors.Is(err, service.ErrRegistrationNotFound), errors.Is(err, storage.ErrNotFound), errors.Is(err, ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrUpload):
		return http.StatusBadGateway, "upload_failed"
	case errors.Is(err, service.ErrSave), errors.Is(err, service.ErrLookup):
		return http.StatusBadGateway, "store_failed"
	}
	return http.StatusInternalServerError, "internal_error"
}

func (s *Server) authFailed(w http.ResponseWriter, _ *http.Request, err error) {
	if errors.Is(err, auth.ErrForbidden) {
		writeError(w, http.StatusForbidden, "forbidden", err)
		return
	}
	writeError(w, http.StatusUnauthorized, "unauthorized", err)
}
