package util

import "regexp"

var e164Pattern = regexp.MustCompile(`^\+\d{10,15}$`)

// ValidE164 reports whether s is an E.164-like sender: "+" followed by 10-15 digits.
func ValidE164(s string) bool {
	return e164Pattern.MatchString(s)
}
