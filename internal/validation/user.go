// Package validation holds boundary checks for request payloads.
package validation

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode"
)

const (
	MinPasswordLength = 8
	MaxPasswordLength = 72 // bcrypt ignores anything past 72 bytes
	MinUsernameLength = 3
	MaxUsernameLength = 50
	MaxEmailLength    = 254
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// ValidatePassword requires a length within bcrypt's range and at least one
// letter and one digit.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLength)
	}
	if len(password) > MaxPasswordLength {
		return fmt.Errorf("password must not exceed %d bytes", MaxPasswordLength)
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return fmt.Errorf("password must contain at least one letter and one digit")
	}
	return nil
}

func ValidateUsername(username string) error {
	if len(username) < MinUsernameLength {
		return fmt.Errorf("username must be at least %d characters long", MinUsernameLength)
	}
	if len(username) > MaxUsernameLength {
		return fmt.Errorf("username must not exceed %d characters", MaxUsernameLength)
	}
	if !usernamePattern.MatchString(username) {
		return fmt.Errorf("username can only contain letters, numbers, dots, underscores, and hyphens")
	}
	first, last := username[0], username[len(username)-1]
	if strings.ContainsRune("_.-", rune(first)) || strings.ContainsRune("_.-", rune(last)) {
		return fmt.Errorf("username must start and end with a letter or number")
	}
	return nil
}

// ValidateEmail accepts a bare address with a dotted domain.
func ValidateEmail(email string) error {
	if len(email) > MaxEmailLength {
		return fmt.Errorf("email must not exceed %d characters", MaxEmailLength)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("invalid email format")
	}
	at := strings.LastIndexByte(email, '@')
	domain := email[at+1:]
	if !strings.Contains(domain, ".") || strings.HasSuffix(domain, ".") || strings.HasPrefix(domain, ".") {
		return fmt.Errorf("invalid email format")
	}
	return nil
}
