package validation

import "strings"

// UIDLength is the number of digits in a delegate UID.
const UIDLength = 6

// SanitizeUID keeps the first six digits of s, like the form's input mask.
func SanitizeUID(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		if b.Len() == UIDLength {
			break
		}
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidUID reports whether s is exactly six ASCII digits.
func ValidUID(s string) bool {
	if len(s) != UIDLength {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// UID sanitizes s and returns it, or a validation error.
func UID(s string) (string, error) {
	uid := SanitizeUID(s)
	if !ValidUID(uid) {
		return "", newError(MsgInvalidUID, FieldErrors{"uid": MsgInvalidUID})
	}
	return uid, nil
}
