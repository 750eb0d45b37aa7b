// Package model contains domain models passed between layers.
package model

import (
	"io"
	"time"
)

// Gender is a delegate's declared gender.
type Gender string

// Known genders.
const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
)

// Zone is the delegate's home zone.
type Zone string

// Known zones.
const (
	ZoneEnugu   Zone = "Enugu"
	ZoneImo     Zone = "Imo"
	ZoneEbonyi  Zone = "Ebonyi"
	ZoneAnambra Zone = "Anambra"
)

// Skill is a skill acquisition track.
type Skill string

// Known skill tracks.
const (
	SkillGraphicDesign      Skill = "Graphic Design"
	SkillBaking             Skill = "Baking & Small Chops Making"
	SkillDigitalMarketing   Skill = "Digital Marketing"
	SkillInteriorDecoration Skill = "Interior Decoration & Event Styling"
	SkillPhotography        Skill = "Photography, Videography & Drone Piloting"
	SkillPerfumeMaking      Skill = "Perfume Making"
	SkillFirstAid           Skill = "Professional First Aid Training"
)

// TShirtSize is a convention t-shirt size.
type TShirtSize string

// Known sizes.
const (
	SizeS    TShirtSize = "S"
	SizeM    TShirtSize = "M"
	SizeL    TShirtSize = "L"
	SizeXL   TShirtSize = "XL"
	SizeXXL  TShirtSize = "XXL"
	SizeXXXL TShirtSize = "XXXL"
)

// PaymentStatus tracks manual receipt verification.
type PaymentStatus string

// Payment states.
const (
	PaymentPending  PaymentStatus = "pending_verification"
	PaymentVerified PaymentStatus = "verified"
	PaymentRejected PaymentStatus = "rejected"
)

// ManualUploadTransaction marks a registration whose UID has not been issued.
const ManualUploadTransaction = "MANUAL_UPLOAD"

// Genders lists genders in display order.
var Genders = []Gender{GenderMale, GenderFemale}

// Zones lists zones in display order.
var Zones = []Zone{ZoneEnugu, ZoneImo, ZoneEbonyi, ZoneAnambra}

// Skills lists skill tracks in display order.
var Skills = []Skill{
	SkillGraphicDesign,
	SkillBaking,
	SkillDigitalMarketing,
	SkillInteriorDecoration,
	SkillPhotography,
	SkillPerfumeMaking,
	SkillFirstAid,
}

// TShirtSizes lists sizes in display order.
var TShirtSizes = []TShirtSize{SizeS, SizeM, SizeL, SizeXL, SizeXXL, SizeXXXL}

// Registration is a stored delegate registration.
type Registration struct {
	ID             string        `json:"id"`
	CreatedAt      time.Time     `json:"created_at"`
	FullName       string        `json:"full_name"`
	Gender         Gender        `json:"gender"`
	Email          string        `json:"email"`
	Phone          string        `json:"phone"`
	Department     string        `json:"department"`
	Institution    string        `json:"institution"`
	Zone           Zone          `json:"zone"`
	SkillChoice    Skill         `json:"skill_choice"`
	TShirtSize     TShirtSize    `json:"tshirt_size"`
	HealthConcerns string        `json:"health_concerns,omitempty"`
	TotalAmount    int64         `json:"total_amount"`
	PaymentStatus  PaymentStatus `json:"payment_status"`
	ReceiptURL     string        `json:"receipt_url"`
	TransactionID  string        `json:"transaction_id"`
	// DuplicateKey is the normalized (full name, institution) pair.
	DuplicateKey string `json:"-"`
}

// HasUID reports whether a delegate UID has been issued.
func (r Registration) HasUID() bool {
	return r.TransactionID != "" && r.TransactionID != ManualUploadTransaction
}

// RegistrationForm is the raw form input before validation.
type RegistrationForm struct {
	FullName       string `json:"fullName"`
	Gender         string `json:"gender"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Department     string `json:"department"`
	Institution    string `json:"institution"`
	Zone           string `json:"zone"`
	Skill          string `json:"skill"`
	TShirtSize     string `json:"tshirtSize"`
	HealthConcerns string `json:"healthConcerns"`
}

// Upload is a file received from a form.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}
