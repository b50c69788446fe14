package validation

import (
	"errors"
	"net/mail"
	"strings"
)

var (
	ErrEmailRequired = errors.New("email address is required")
	ErrEmailTooLong  = errors.New("email address is too long (max 254 characters)")
	ErrEmailInvalid  = errors.New("invalid email address format")
)

// ValidateEmail accepts a bare address (no display name) whose domain has at least one dot
func ValidateEmail(email string) error {
	if email == "" {
		return ErrEmailRequired
	}
	// RFC 5321 path limit
	if len(email) > 254 {
		return ErrEmailTooLong
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Name != "" || addr.Address != email {
		return ErrEmailInvalid
	}

	at := strings.LastIndex(email, "@")
	local, domain := email[:at], email[at+1:]
	if len(local) > 64 || !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return ErrEmailInvalid
	}
	return nil
}
