package model

import "time"

// Notification kinds.
const (
	NotifyRegistrationSubmitted = "registration.submitted"
	NotifyRegistrationVerified  = "registration.verified"
	NotifyRegistrationRejected  = "registration.rejected"
	NotifyPitchSubmitted        = "pitch.submitted"
)

// Notification is an asynchronous message about a submission.
type Notification struct {
	ID        string            `json:"id"`
	Kind      string            `json:"kind"`
	Subject   string            `json:"subject"` // registration or pitch id
	Email     string            `json:"email,omitempty"`
	Data      map[string]string `json:"data,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}
