package model

import "time"

// Pitch is a stored business pitch submission.
type Pitch struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	UID         string    `json:"uid"`
	VideoURL    string    `json:"video_url"`
	DocumentURL string    `json:"document_url"`
}

// Delegate is the verified identity behind a UID.
type Delegate struct {
	RegistrationID string `json:"registration_id"`
	FullName       string `json:"full_name"`
	Email          string `json:"email"`
	UID            string `json:"uid"`
}

// DelegateFrom projects a registration onto its delegate identity.
func DelegateFrom(r Registration) Delegate {
	return Delegate{
		RegistrationID: r.ID,
		FullName:       r.FullName,
		Email:          r.Email,
		UID:            r.TransactionID,
	}
}

// PitchSubmission is the wizard's final input.
type PitchSubmission struct {
	UID      string
	Agreed   bool
	Video    *Upload
	Document *Upload
}
