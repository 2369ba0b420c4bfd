// Package validation provides input validation for the site's forms.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Field bounds, counted in characters.
const (
	EmailMinLength    = 6
	EmailMaxLength    = 64
	PasswordMinLength = 6
	PasswordMaxLength = 128
	UsernameMaxLength = 64
	NameMaxLength     = 128
	MessageMaxLength  = 500
	TitleMaxLength    = 256
	ContentMaxLength  = 100000
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail checks email length and basic format.
func ValidateEmail(email string) error {
	if err := lengthBetween("email", email, EmailMinLength, EmailMaxLength); err != nil {
		return err
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidateLogin checks the login form.
func ValidateLogin(email, password string) error {
	if err := ValidateEmail(email); err != nil {
		return err
	}
	return lengthBetween("password", password, PasswordMinLength, PasswordMaxLength)
}

// ValidateUsername checks that a username is present and fits the column.
func ValidateUsername(username string) error {
	if strings.TrimSpace(username) == "" {
		return fmt.Errorf("username is required")
	}
	return lengthBetween("username", username, 1, UsernameMaxLength)
}

// ValidateContact checks the contact form.
func ValidateContact(email, name, message string) error {
	if err := ValidateEmail(email); err != nil {
		return err
	}
	if err := required("name", name, NameMaxLength); err != nil {
		return err
	}
	return required("message", message, MessageMaxLength)
}

// ValidatePost checks the blog post form.
func ValidatePost(title, content string) error {
	if err := required("title", title, TitleMaxLength); err != nil {
		return err
	}
	return required("content", content, ContentMaxLength)
}

func required(field, value string, maxLen int) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", field)
	}
	return lengthBetween(field, value, 1, maxLen)
}

func lengthBetween(field, value string, minLen, maxLen int) error {
	n := utf8.RuneCountInString(value)
	if n < minLen {
		return fmt.Errorf("%s must be at least %d characters long", field, minLen)
	}
	if n > maxLen {
		return fmt.Errorf("%s must not exceed %d characters", field, maxLen)
	}
	return nil
}
