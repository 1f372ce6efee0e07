package auth

import (
	"regexp"
	"strings"
	"time"
)

var (
	nameRe  = regexp.MustCompile(`^[a-zA-Z ]+$`)
	emailRe = regexp.MustCompile(`^[\w.+-]+@[\w-]+\.[\w.-]+$`)
)

// validateSignup checks field semantics in a fixed order and reports the
// first failure, matching the field-by-field contract of the signup API.
func validateSignup(name, email, password, dateOfBirth string) error {
	if name == "" || !nameRe.MatchString(name) {
		return &ValidationError{Field: "name", Message: "only letters and spaces are allowed"}
	}
	if !emailRe.MatchString(email) {
		return &ValidationError{Field: "email", Message: "invalid email entered"}
	}
	if _, err := time.Parse("2006-01-02", dateOfBirth); err != nil {
		return &ValidationError{Field: "dateOfBirth", Message: "invalid date of birth entered"}
	}
	if len(password) < 8 {
		return &ValidationError{Field: "password", Message: "password must be at least 8 characters"}
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
