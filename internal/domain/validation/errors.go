package validation

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("validation failed")

// Summary messages shown above a rejected form.
const (
	MsgRegistrationIncomplete = "Please fill in all required fields and upload the payment receipt."
	MsgInvalidUID             = "Please enter a valid 6-digit UID."
	MsgPitchFilesMissing      = "Please select both a video and a document."
	MsgVideoFormat            = "Invalid video format. Please upload MP4, MOV, or AVI."
	MsgDocumentFormat         = "Invalid document format. Please upload PDF, DOCX, or PPTX."
	MsgAgreementRequired      = "Please confirm that you have read and agree to the pitch guidelines."
)

// VideoTooLarge is the message for a video over maxBytes.
func VideoTooLarge(maxBytes int64) string {
	return fmt.Sprintf("Video file is too large. Max size is %s.", SizeLabel(maxBytes))
}

// SizeLabel renders a byte limit in whole megabytes, or with one decimal
// when the limit is not a round number of megabytes.
func SizeLabel(maxBytes int64) string {
	if maxBytes%(1<<20) == 0 {
		return fmt.Sprintf("%dMB", maxBytes>>20)
	}
	return fmt.Sprintf("%.1fMB", float64(maxBytes)/(1<<20))
}

// FieldErrors maps a form field name to its message.
type FieldErrors map[string]string

// Error carries a summary message and per-field details.
type Error struct {
	Message string
	Fields  FieldErrors
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return e.Message + " (" + strings.Join(keys, ", ") + ")"
}

// Unwrap lets errors.Is match ErrInvalid.
func (e *Error) Unwrap() error { return ErrInvalid }

func newError(msg string, fields FieldErrors) *Error {
	return &Error{Message: msg, Fields: fields}
}

// AsError extracts the validation details from err.
func AsError(err error) (*Error, bool) {
	var ve *Error
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
