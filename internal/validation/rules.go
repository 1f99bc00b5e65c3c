// Package validation provides custom validation rules for the application.
package validation

import (
	"encoding/base64"
	"regexp"

	validation "github.com/jellydator/validation"

	apperrors "github.com/mrlynn/securehealth-sub006/internal/errors"
)

var (
	// keyNameRegex matches stable key/field identifiers: lowercase snake_case.
	keyNameRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput.
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// KeyName validates stable identifiers used for DEK names and field names.
// Identifiers must be lowercase snake_case starting with a letter.
var KeyName = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_key_name", "key name must be a string")
	}
	if s == "" {
		return validation.NewError("validation_key_name", "key name must not be empty")
	}
	if !keyNameRegex.MatchString(s) {
		return validation.NewError(
			"validation_key_name",
			"key name must be lowercase snake_case starting with a letter",
		)
	}
	return nil
})

// Base64Key validates a base64-encoded key of the given byte length.
type Base64Key struct {
	Length int
}

// Validate checks that the value is standard base64 and decodes to exactly Length bytes.
func (b Base64Key) Validate(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_base64_key", "key must be a string")
	}
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return validation.NewError("validation_base64_key", "key must be valid base64")
	}
	if len(raw) != b.Length {
		return validation.NewError("validation_base64_key", "key has wrong decoded length")
	}
	return nil
}
