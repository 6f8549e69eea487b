package postit

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

const (
	MinUsernameLength = 3
	MaxUsernameLength = 32
	MinPasswordLength = 8
	MaxPasswordLength = 64
	MaxContentLength  = 2000
)

func validationErrorf(format string, args ...any) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// ValidationError reports a rejected user input. Handlers map it to a 422.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

// ValidateUsername checks the sign-in username shape.
func ValidateUsername(username string) error {
	if utf8.RuneCountInString(username) < MinUsernameLength {
		return validationErrorf("username must be at least %d characters long", MinUsernameLength)
	}
	if utf8.RuneCountInString(username) > MaxUsernameLength {
		return validationErrorf("username must be at most %d characters long", MaxUsernameLength)
	}
	for _, r := range username {
		if unicode.IsSpace(r) {
			return validationErrorf("username must not contain spaces")
		}
		if unicode.IsControl(r) {
			return validationErrorf("username contains control character")
		}
	}
	return nil
}

// ValidatePassword checks the sign-in password shape. Strength policy
// beyond length is left to the client.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return validationErrorf("password must be at least %d characters long", MinPasswordLength)
	}
	if len(password) > MaxPasswordLength {
		return validationErrorf("password must be at most %d characters long", MaxPasswordLength)
	}
	return nil
}

// ValidateContent checks post body text.
func ValidateContent(content string) error {
	if content == "" {
		return validationErrorf("post content must not be empty")
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return validationErrorf("post content exceeds maximum length of %d", MaxContentLength)
	}
	if !utf8.ValidString(content) {
		return validationErrorf("post content contains invalid UTF-8")
	}
	return nil
}

// ValidateAttachment checks an attachment reference.
func ValidateAttachment(a Attachment) error {
	if a.Type != "image" && a.Type != "text" {
		return validationErrorf("attachment type must be image or text")
	}
	if a.URL == "" {
		return validationErrorf("attachment url must not be empty")
	}
	if a.ID == "" {
		return validationErrorf("attachment id must not be empty")
	}
	return nil
}
