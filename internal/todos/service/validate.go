package service

import (
	"net/mail"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/AD0791/graphql-todos-backend/internal/todos/domain"
)

const (
	MinPasswordLength = 8
	MaxPasswordLength = 128
	MaxFullNameLength = 100
	MaxEmailLength    = 255
)

// ValidatePassword enforces the password strength rules: at least eight
// characters with an upper-case letter, a lower-case letter and a digit.
func ValidatePassword(pw string) error {
	n := utf8.RuneCountInString(pw)
	if n < MinPasswordLength {
		return invalid("password must be at least %d characters long", MinPasswordLength)
	}
	if n > MaxPasswordLength {
		return invalid("password must be at most %d characters long", MaxPasswordLength)
	}

	var upper, lower, digit bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	switch {
	case !upper:
		return invalid("password must contain at least one uppercase letter")
	case !lower:
		return invalid("password must contain at least one lowercase letter")
	case !digit:
		return invalid("password must contain at least one digit")
	}
	return nil
}

// normalizeEmail trims and syntax-checks an address. Case is preserved.
func normalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" || len(email) > MaxEmailLength {
		return "", invalid("email is required and at most %d characters", MaxEmailLength)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", invalid("email %q is not a valid address", email)
	}
	return email, nil
}

func normalizeFullName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > MaxFullNameLength {
		return "", invalid("full name is required and at most %d characters", MaxFullNameLength)
	}
	return name, nil
}

func normalizeTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" || utf8.RuneCountInString(title) > domain.MaxTitleLength {
		return "", invalid("title must be 1 to %d characters", domain.MaxTitleLength)
	}
	return title, nil
}

// normalizeReason drops blank reasons and bounds the rest.
func normalizeReason(reason *string) (*string, error) {
	if reason == nil {
		return nil, nil
	}
	r := strings.TrimSpace(*reason)
	if r == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(r) > domain.MaxReasonLength {
		return nil, invalid("reason must be at most %d characters", domain.MaxReasonLength)
	}
	return &r, nil
}
