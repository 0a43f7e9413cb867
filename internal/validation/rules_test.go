package validation

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	graphDomain "github.com/devkral/secretgraph/internal/graph/domain"
)

func TestTag(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		shouldErr bool
	}{
		{name: "name value", input: "name=hello", shouldErr: false},
		{name: "flag", input: "immutable", shouldErr: false},
		{name: "empty value", input: "name=", shouldErr: false},
		{name: "missing name", input: "=value", shouldErr: true},
		{name: "at limit", input: strings.Repeat("a", 8000), shouldErr: false},
		{name: "too long", input: strings.Repeat("a", 8001), shouldErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Tag.Validate(tt.input)
			if tt.shouldErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestExtra(t *testing.T) {
	assert.NoError(t, Extra.Validate(strings.Repeat("x", 8000)))
	assert.Error(t, Extra.Validate(strings.Repeat("x", 8001)))
}

func TestNonce(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		shouldErr bool
	}{
		{name: "13 bytes", input: base64.StdEncoding.EncodeToString(make([]byte, 13)), shouldErr: false},
		{name: "12 bytes", input: base64.StdEncoding.EncodeToString(make([]byte, 12)), shouldErr: true},
		{name: "not base64", input: "!!!", shouldErr: true},
		{name: "empty is left to Required", input: "", shouldErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Nonce.Validate(tt.input)
			if tt.shouldErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFlexID(t *testing.T) {
	id := uuid.New()
	rule := FlexID(graphDomain.KindContent)

	assert.NoError(t, rule.Validate(id.String()))
	assert.NoError(t, rule.Validate(graphDomain.EncodeGlobalID("Content", id.String())))
	assert.Error(t, rule.Validate(graphDomain.EncodeGlobalID("Cluster", id.String())))
	assert.Error(t, rule.Validate(uuid.Nil.String()))
	assert.Error(t, rule.Validate("not-an-id"))
}

func TestNoWhitespace(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		shouldErr bool
	}{
		{
			name:      "no whitespace",
			input:     "validstring",
			shouldErr: false,
		},
		{
			name:      "leading whitespace",
			input:     " validstring",
			shouldErr: true,
		},
		{
			name:      "trailing whitespace",
			input:     "validstring ",
			shouldErr: true,
		},
		{
			name:      "both leading and trailing",
			input:     " validstring ",
			shouldErr: true,
		},
		{
			name:      "internal spaces allowed",
			input:     "valid string",
			shouldErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NoWhitespace.Validate(tt.input)
			if tt.shouldErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNotBlank(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		shouldErr bool
	}{
		{
			name:      "valid string",
			input:     "validstring",
			shouldErr: false,
		},
		{
			name:      "only spaces",
			input:     "   ",
			shouldErr: true,
		},
		{
			name:      "only tabs",
			input:     "\t\t",
			shouldErr: true,
		},
		{
			name:      "only newlines",
			input:     "\n\n",
			shouldErr: true,
		},
		{
			name:      "mixed whitespace",
			input:     " \t\n ",
			shouldErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NotBlank.Validate(tt.input)
			if tt.shouldErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWrapValidationError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "nil error returns nil",
			err:      nil,
			expected: false,
		},
		{
			name:     "wraps validation error",
			err:      assert.AnError,
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := WrapValidationError(tt.err)
			if tt.expected {
				assert.Error(t, result)
				assert.Contains(t, result.Error(), "invalid input")
			} else {
				assert.NoError(t, result)
			}
		})
	}
}
