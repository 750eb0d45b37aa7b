package api

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/google/uuid"

	"github.com/okian/convention/internal/domain/model"
)

// DefaultSessionCookie names the visitor session cookie.
const DefaultSessionCookie = "conv_session"

// multipartMemory is how much of a form is buffered before spilling to disk.
const multipartMemory = 8 << 20

// ParseMultipart limits the body to maxBytes and parses it. Callers must
// call the returned cleanup.
func ParseMultipart(w http.ResponseWriter, r *http.Request, maxBytes int64) (func(), error) {
	const op = "api.parse_multipart"
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return func() {}, WrapKind(op, ErrTooLarge, err)
		}
		return func() {}, WrapKind(op, ErrBadRequest, err)
	}
	return func() { _ = r.MultipartForm.RemoveAll() }, nil
}

// FormUpload returns the file posted as field, or nil when none was sent.
// The upload's body stays valid until the multipart cleanup runs.
func FormUpload(r *http.Request, field string) (*model.Upload, error) {
	if r.MultipartForm == nil || len(r.MultipartForm.File[field]) == 0 {
		return nil, nil
	}
	fh := r.MultipartForm.File[field][0]
	if fh.Filename == "" {
		return nil, nil
	}
	f, err := fh.Open()
	if err != nil {
		return nil, WrapKind("api.form_upload", ErrBadRequest, err)
	}
	return uploadFrom(fh, f), nil
}

func uploadFrom(fh *multipart.FileHeader, f multipart.File) *model.Upload {
	return &model.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	}
}

// CloseUpload closes an upload opened by FormUpload.
func CloseUpload(u *model.Upload) {
	if u == nil {
		return
	}
	if c, ok := u.Body.(interface{ Close() error }); ok {
		_ = c.Close()
	}
}

// RegistrationForm reads registration fields from a parsed form.
func RegistrationForm(r *http.Request) model.RegistrationForm {
	return model.RegistrationForm{
		FullName:       r.FormValue("fullName"),
		Gender:         r.FormValue("gender"),
		Email:          r.FormValue("email"),
		Phone:          r.FormValue("phone"),
		Department:     r.FormValue("department"),
		Institution:    r.FormValue("institution"),
		Zone:           r.FormValue("zone"),
		Skill:          r.FormValue("skill"),
		TShirtSize:     r.FormValue("tshirtSize"),
		HealthConcerns: r.FormValue("healthConcerns"),
	}
}

// Session returns the visitor session id from cookie name, issuing a new
// browser-session cookie when absent.
func Session(w http.ResponseWriter, r *http.Request, name string) string {
	if c, err := r.Cookie(name); err == nil && c.Value != "" {
		return c.Value
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}
