// Package site renders the server-side landing page, registration form and
// pitch wizard.
package site

import (
	"bytes"
	"context"
	"errors"
	"net/http"

	"github.com/okian/convention/internal/adapters/http/api"
	service "github.com/okian/convention/internal/app"
	"github.com/okian/convention/internal/domain/content"
	"github.com/okian/convention/internal/domain/countdown"
	"github.com/okian/convention/internal/domain/model"
	"github.com/okian/convention/internal/domain/pitchflow"
	"github.com/okian/convention/internal/domain/validation"
	"github.com/okian/convention/pkg/logger"
)

// Dependencies are the service operations the pages call.
type Dependencies interface {
	api.Dependencies
	Site() content.Site
}

// Handler serves the HTML pages.
type Handler struct {
	deps          Dependencies
	maxUpload     int64
	sessionCookie string
	log           logger.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithMaxUploadBytes caps form bodies.
func WithMaxUploadBytes(n int64) Option {
	return func(h *Handler) {
		if n > 0 {
			h.maxUpload = n
		}
	}
}

// WithSessionCookie names the visitor session cookie.
func WithSessionCookie(name string) Option {
	return func(h *Handler) {
		if name != "" {
			h.sessionCookie = name
		}
	}
}

// WithLogger overrides the handler logger.
func WithLogger(l logger.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.log = l
		}
	}
}

// NewHandler creates the page handler.
func NewHandler(deps Dependencies, opts ...Option) *Handler {
	h := &Handler{
		deps:          deps,
		maxUpload:     64 << 20,
		sessionCookie: api.DefaultSessionCookie,
		log:           logger.Get().Named("site"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register attaches the page routes to mux.
func (h *Handler) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(FS())))
	mux.HandleFunc("GET /{$}", api.MetricsMiddleware(h.handleIndex, "site_index"))
	mux.HandleFunc("POST /register", api.MetricsMiddleware(h.handleRegister, "site_register"))
	mux.HandleFunc("GET /pitch", api.MetricsMiddleware(h.handlePitch, "site_pitch"))
	mux.HandleFunc("POST /pitch/submit", api.MetricsMiddleware(h.handlePitchSubmit, "site_pitch_submit"))
	mux.HandleFunc("POST /pitch/{step}", api.MetricsMiddleware(h.handlePitchStep, "site_pitch_step"))
}

// option is one <select> entry.
type option struct {
	Value    string
	Selected bool
}

type page struct {
	Site        content.Site
	Countdown   []countdown.Unit
	Started     bool
	Visitors    int64
	HasVisitors bool

	Form        model.RegistrationForm
	FormError   string
	FieldErrors validation.FieldErrors
	Genders     []option
	Zones       []option
	Skills      []option
	Sizes       []option

	Registration model.Registration
	Pitch        pitchflow.State
	Placeholder  string
}

func (h *Handler) newPage(visitors int64, visitorsOK bool) page {
	remaining := h.deps.Countdown()
	return page{
		Site:        h.deps.Site(),
		Countdown:   remaining.Units(),
		Started:     remaining.Started,
		Visitors:    visitors,
		HasVisitors: visitorsOK,
		Placeholder: content.SchedulePlaceholder,
	}
}

// footerCount reads the counter; failures hide the number.
func (h *Handler) footerCount(r *http.Request) (int64, bool) {
	n, err := h.deps.VisitorCount(r.Context())
	if err != nil {
		h.log.Warn(r.Context(), "visitor count unavailable", logger.Error(err))
		return 0, false
	}
	return n, true
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	session := api.Session(w, r, h.sessionCookie)
	_, n, err := h.deps.TrackVisit(r.Context(), session)
	if err != nil {
		h.log.Warn(r.Context(), "visit not tracked", logger.Error(err))
	}
	p := h.newPage(n, err == nil)
	p.withFormOptions(model.RegistrationForm{})
	h.render(w, r, http.StatusOK, "index.html", p)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	cleanup, err := api.ParseMultipart(w, r, h.maxUpload)
	defer cleanup()
	form := api.RegistrationForm(r)

	var reg model.Registration
	if err == nil {
		var receipt *model.Upload
		receipt, err = api.FormUpload(r, "receipt")
		if err == nil {
			defer api.CloseUpload(receipt)
			reg, err = h.deps.Register(r.Context(), form, receipt)
		}
	}

	n, ok := h.footerCount(r)
	p := h.newPage(n, ok)
	if err != nil {
		p.withFormOptions(validation.TrimForm(form))
		p.FormError = formMessage(err)
		if ve, isVE := validation.AsError(err); isVE {
			p.FieldErrors = ve.Fields
		}
		h.render(w, r, statusFor(err), "index.html", p)
		return
	}
	p.Registration = reg
	h.render(w, r, http.StatusCreated, "registered.html", p)
}

func (h *Handler) handlePitch(w http.ResponseWriter, r *http.Request) {
	n, ok := h.footerCount(r)
	p := h.newPage(n, ok)
	p.Pitch = pitchflow.State{Step: pitchflow.StepVerify}
	h.render(w, r, http.StatusOK, "pitch.html", p)
}

// handlePitchStep completes one wizard screen. The UID is verified again on
// every transition.
func (h *Handler) handlePitchStep(w http.ResponseWriter, r *http.Request) {
	from, ok := pitchflow.Parse(r.PathValue("step"))
	if !ok || from == pitchflow.StepSuccess {
		from = pitchflow.StepVerify
	}
	uid := validation.SanitizeUID(r.FormValue("uid"))

	var state pitchflow.State
	d, err := h.deps.VerifyDelegate(r.Context(), uid)
	switch {
	case err == nil:
		state = pitchflow.Advance(from, d.UID, d.FullName, true, "")
	case from == pitchflow.StepVerify:
		state = pitchflow.Stay(from, uid, "", service.Message(err))
	default:
		state = pitchflow.Advance(from, uid, "", false, service.Message(err))
	}

	n, countOK := h.footerCount(r)
	p := h.newPage(n, countOK)
	p.Pitch = state
	status := http.StatusOK
	if state.Error != "" {
		status = statusFor(err)
	}
	h.render(w, r, status, "pitch.html", p)
}

func (h *Handler) handlePitchSubmit(w http.ResponseWriter, r *http.Request) {
	cleanup, err := api.ParseMultipart(w, r, h.maxUpload)
	defer cleanup()
	uid := validation.SanitizeUID(r.FormValue("uid"))
	name := r.FormValue("name")

	if err == nil {
		var video, doc *model.Upload
		if video, err = api.FormUpload(r, "video"); err == nil {
			defer api.CloseUpload(video)
			if doc, err = api.FormUpload(r, "document"); err == nil {
				defer api.CloseUpload(doc)
				_, err = h.deps.SubmitPitch(r.Context(), model.PitchSubmission{
					UID:      uid,
					Agreed:   r.FormValue("agree") != "",
					Video:    video,
					Document: doc,
				})
			}
		}
	}

	var state pitchflow.State
	switch {
	case err == nil:
		state = pitchflow.Advance(pitchflow.StepSubmit, uid, name, true, "")
	case errors.Is(err, service.ErrUnknownUID), errors.Is(err, service.ErrPitchExists), isUIDError(err):
		state = pitchflow.Advance(pitchflow.StepSubmit, uid, "", false, service.Message(err))
	default:
		state = pitchflow.Stay(pitchflow.StepSubmit, uid, name, formMessage(err))
	}

	n, ok := h.footerCount(r)
	p := h.newPage(n, ok)
	p.Pitch = state
	status := http.StatusOK
	if err != nil {
		status = statusFor(err)
	}
	h.render(w, r, status, "pitch.html", p)
}

func isUIDError(err error) bool {
	ve, ok := validation.AsError(err)
	return ok && ve.Message == validation.MsgInvalidUID
}

// formMessage prefers the service message and falls back to a generic one
// for request parsing errors.
func formMessage(err error) string {
	if errors.Is(err, api.ErrTooLarge) {
		return "The uploaded files are too large."
	}
	return service.Message(err)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, api.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, validation.ErrInvalid), errors.Is(err, api.ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrDuplicateRegistration), errors.Is(err, service.ErrPitchExists):
		return http.StatusConflict
	case errors.Is(err, service.ErrUnknownUID):
		return http.StatusNotFound
	case errors.Is(err, service.ErrUpload), errors.Is(err, service.ErrSave), errors.Is(err, service.ErrLookup):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func (p *page) withFormOptions(f model.RegistrationForm) {
	p.Form = f
	p.Genders = options(model.Genders, f.Gender)
	p.Zones = options(model.Zones, f.Zone)
	p.Skills = options(model.Skills, f.Skill)
	p.Sizes = options(model.TShirtSizes, f.TShirtSize)
}

func options[T ~string](values []T, selected string) []option {
	out := make([]option, len(values))
	for i, v := range values {
		out[i] = option{Value: string(v), Selected: string(v) == selected}
	}
	return out
}

// render buffers the page so a template error never sends a half page.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name string, p page) {
	var buf bytes.Buffer
	if err := pages[name].ExecuteTemplate(&buf, "layout", p); err != nil {
		h.log.Error(r.Context(), "render failed", logger.String("page", name), logger.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
