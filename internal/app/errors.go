package service

import (
	"errors"

	"github.com/okian/convention/internal/domain/validation"
)

// Messages shown to a visitor for rejected submissions.
const (
	MsgDuplicateRegistration = "Duplicate registration detected for this name and institution."
	MsgUnknownUID            = "Invalid UID. Please check your registration email."
	MsgPitchExists           = "This UID has already submitted a pitch. Only one entry allowed."
	MsgUnexpected            = "Something went wrong. Please try again."
)

// Step prefixes for remote call failures.
const (
	stepReceiptUpload    = "Receipt upload failed"
	stepRegistrationSave = "Registration save failed"
	stepVideoUpload      = "Video Upload Failed"
	stepDocumentUpload   = "Document Upload Failed"
	stepPitchSave        = "Submission Error"
	stepPaymentSave      = "Payment update failed"
)

var (
	ErrDuplicateRegistration = errors.New("duplicate registration")
	ErrUnknownUID            = errors.New("unknown uid")
	ErrPitchExists           = errors.New("pitch already submitted")
	ErrRegistrationNotFound  = errors.New("registration not found")
	ErrInvalidStatus         = errors.New("unknown payment status")
	ErrUIDExhausted          = errors.New("could not allocate a unique uid")

	// ErrUpload marks a blob storage failure.
	ErrUpload = errors.New("upload failed")
	// ErrSave marks a database write failure.
	ErrSave = errors.New("save failed")
	// ErrLookup marks a database read failure.
	ErrLookup = errors.New("lookup failed")
)

// StepError is a failed remote call. Its message is the step prefix
// followed by the backend message.
type StepError struct {
	Step string
	Kind error
	Err  error
}

func (e *StepError) Error() string {
	if e.Step == "" {
		return e.Err.Error()
	}
	return e.Step + ": " + e.Err.Error()
}

func (e *StepError) Unwrap() []error { return []error{e.Kind, e.Err} }

func stepErr(step string, kind, err error) error {
	return &StepError{Step: step, Kind: kind, Err: err}
}

// Message returns the text to show a visitor for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if ve, ok := validation.AsError(err); ok {
		return ve.Message
	}
	var se *StepError
	switch {
	case errors.Is(err, ErrDuplicateRegistration):
		return MsgDuplicateRegistration
	case errors.Is(err, ErrUnknownUID):
		return MsgUnknownUID
	case errors.Is(err, ErrPitchExists):
		return MsgPitchExists
	case errors.As(err, &se):
		return se.Error()
	}
	return MsgUnexpected
}
