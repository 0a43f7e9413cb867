// Package validation provides custom validation rules for the application.
package validation

import (
	"encoding/base64"
	"strings"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	cryptoDomain "github.com/devkral/secretgraph/internal/crypto/domain"
	apperrors "github.com/devkral/secretgraph/internal/errors"
	graphDomain "github.com/devkral/secretgraph/internal/graph/domain"
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// Tag validates a "name=value" tag or a bare flag. Lengths count bytes.
var Tag = validation.NewStringRuleWithError(
	func(s string) bool {
		return len(s) <= graphDomain.MaxTagLength && !strings.HasPrefix(s, "=")
	},
	validation.NewError("validation_tag", "must be a flag or name=value and at most 8000 bytes"),
)

// Extra validates the free text of a reference.
var Extra = validation.NewStringRuleWithError(
	func(s string) bool {
		return len(s) <= graphDomain.MaxExtraLength
	},
	validation.NewError("validation_extra", "must be at most 8000 bytes"),
)

// Nonce validates a base64 encoded AES-GCM nonce.
var Nonce = validation.NewStringRuleWithError(
	func(s string) bool {
		raw, err := base64.StdEncoding.DecodeString(s)
		return err == nil && len(raw) == cryptoDomain.NonceSize
	},
	validation.NewError("validation_nonce", "must be a base64 encoded 13 byte nonce"),
)

// FlexID validates a raw flexid or a relay global id of kind.
func FlexID(kind graphDomain.EntityKind) validation.Rule {
	return validation.NewStringRuleWithError(
		func(s string) bool {
			id, err := graphDomain.ParseFlexID(s, kind)
			return err == nil && id != uuid.Nil
		},
		validation.NewError("validation_flexid", "must be an id or global id of a "+string(kind)),
	)
}
