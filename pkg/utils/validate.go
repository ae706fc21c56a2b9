package utils

import (
	"regexp"
	"strings"
)

var (
	emailRe   = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	profileRe = regexp.MustCompile(`(?i)codeforces\.com/profile/([^/\s]+)`)
)

// IsValidEmail reports whether the address looks deliverable.
func IsValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

// ExtractHandle trims a Codeforces handle and, when a full profile URL was
// pasted instead of a bare handle, pulls the handle out of it.
func ExtractHandle(raw string) string {
	handle := strings.TrimSpace(raw)
	if m := profileRe.FindStringSubmatch(handle); m != nil {
		handle = m[1]
	}
	return handle
}
