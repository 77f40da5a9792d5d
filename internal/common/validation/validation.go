package validation

import (
	"errors"
	"regexp"
	"strings"
)

// Field rules enforced at the request boundary, before any service logic.

var (
	emailRegex = regexp.MustCompile(`^[A-Za-z0-9]{1,50}@(gmail|yahoo)\.com$`)
	titleRegex = regexp.MustCompile(`^[A-Za-z]{3,30}$`)
)

const passwordSpecials = "!@#$%^&*"

func Email(email string) error {
	if !emailRegex.MatchString(email) {
		return errors.New("invalid email, please provide a valid email")
	}
	return nil
}

// Password requires 6-15 characters with at least one uppercase letter, one
// lowercase letter, one digit and one special character.
func Password(password string) error {
	if len(password) < 6 || len(password) > 15 {
		return errors.New("password must be between 6 and 15 characters")
	}
	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, c := range password {
		switch {
		case c >= 'A' && c <= 'Z':
			hasUpper = true
		case c >= 'a' && c <= 'z':
			hasLower = true
		case c >= '0' && c <= '9':
			hasDigit = true
		case strings.ContainsRune(passwordSpecials, c):
			hasSpecial = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit || !hasSpecial {
		return errors.New("password must contain an uppercase letter, a lowercase letter, a number and a special character")
	}
	return nil
}

func Name(name string) error {
	if name == "" || len(name) > 30 {
		return errors.New("name must be between 1 and 30 characters")
	}
	return nil
}

func Title(title string) error {
	if !titleRegex.MatchString(title) {
		return errors.New("title must contain at least 3 letters and less than 30 letters")
	}
	return nil
}

func Description(description string) error {
	if len(description) < 3 || len(description) > 200 {
		return errors.New("description must be between 3 and 200 characters")
	}
	return nil
}
