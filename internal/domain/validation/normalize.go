package validation

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// foldText applies NFKC, full case folding and whitespace collapsing.
func foldText(s string) string {
	s = norm.NFKC.String(s)
	s = cases.Fold().String(s)
	return strings.Join(strings.Fields(s), " ")
}

// DuplicateKey identifies a registration by name and institution.
// "Ada  OBI" at "UNN" and "ada obi" at "unn" share a key.
func DuplicateKey(fullName, institution string) string {
	return foldText(fullName) + "\x1f" + foldText(institution)
}
