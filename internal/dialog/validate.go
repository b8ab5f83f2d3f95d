package dialog

import "regexp"

// emailPattern requires a non-empty local part, a non-empty domain label and a
// dot-separated final label, with no embedded whitespace.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsValidEmail reports whether s looks like a deliverable email address.
func IsValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}
