// Package validation holds the form rules for registrations and pitches.
package validation

import (
	"regexp"
	"strings"

	"github.com/okian/convention/internal/domain/model"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ReceiptExtensions are the accepted payment receipt formats.
var ReceiptExtensions = []string{"pdf", "png", "jpg", "jpeg"}

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// TrimForm returns a copy of f with surrounding whitespace removed.
func TrimForm(f model.RegistrationForm) model.RegistrationForm {
	return model.RegistrationForm{
		FullName:       strings.TrimSpace(f.FullName),
		Gender:         strings.TrimSpace(f.Gender),
		Email:          strings.TrimSpace(f.Email),
		Phone:          strings.TrimSpace(f.Phone),
		Department:     strings.TrimSpace(f.Department),
		Institution:    strings.TrimSpace(f.Institution),
		Zone:           strings.TrimSpace(f.Zone),
		Skill:          strings.TrimSpace(f.Skill),
		TShirtSize:     strings.TrimSpace(f.TShirtSize),
		HealthConcerns: strings.TrimSpace(f.HealthConcerns),
	}
}

// Registration checks a trimmed form and its receipt. maxReceipt <= 0
// disables the size check.
func Registration(f model.RegistrationForm, receipt *model.Upload, maxReceipt int64) error {
	fields := FieldErrors{}

	required := map[string]string{
		"fullName":    f.FullName,
		"email":       f.Email,
		"phone":       f.Phone,
		"department":  f.Department,
		"institution": f.Institution,
		"zone":        f.Zone,
		"skill":       f.Skill,
		"gender":      f.Gender,
		"tshirtSize":  f.TShirtSize,
	}
	for name, v := range required {
		if v == "" {
			fields[name] = "This field is required."
		}
	}

	if f.Email != "" && !ValidEmail(f.Email) {
		fields["email"] = "Please enter a valid email address."
	}
	if f.Gender != "" && !oneOf(model.Gender(f.Gender), model.Genders) {
		fields["gender"] = "Please select a gender."
	}
	if f.Zone != "" && !oneOf(model.Zone(f.Zone), model.Zones) {
		fields["zone"] = "Please select a zone."
	}
	if f.Skill != "" && !oneOf(model.Skill(f.Skill), model.Skills) {
		fields["skill"] = "Please select a skill track."
	}
	if f.TShirtSize != "" && !oneOf(model.TShirtSize(f.TShirtSize), model.TShirtSizes) {
		fields["tshirtSize"] = "Please select a t-shirt size."
	}

	switch {
	case receipt == nil || receipt.Filename == "":
		fields["receipt"] = "Please upload the payment receipt."
	case !hasExtension(receipt.Filename, ReceiptExtensions):
		fields["receipt"] = "Receipt must be a PDF, PNG or JPG file."
	case maxReceipt > 0 && receipt.Size > maxReceipt:
		fields["receipt"] = "Receipt file is too large."
	}

	if len(fields) > 0 {
		return newError(MsgRegistrationIncomplete, fields)
	}
	return nil
}

func oneOf[T comparable](v T, set []T) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
