package validation

import (
	"testing"

	validation "github.com/jellydator/validation"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/allisson/delta/internal/errors"
)

func TestIdentifier(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		shouldErr bool
	}{
		{name: "uuid", input: "0190a3b2-6c1e-7e3c-9a44-3c1c8f0f4b21", shouldErr: false},
		{name: "short id", input: "i1", shouldErr: false},
		{name: "underscores and dots", input: "requestor_id.v2", shouldErr: false},
		{name: "path separator", input: "a/b", shouldErr: true},
		{name: "leading dot", input: ".hidden", shouldErr: true},
		{name: "parent directory", input: "..", shouldErr: true},
		{name: "whitespace", input: "i 1", shouldErr: true},
		{name: "query characters", input: "i1?x=1", shouldErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.Validate(tt.input, IDRules...)
			if tt.shouldErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCheckID(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, CheckID("requestor_id", "i1"))
	})

	t.Run("empty", func(t *testing.T) {
		err := CheckID("requestor_id", "")
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		assert.Contains(t, err.Error(), "requestor_id")
	})

	t.Run("too long", func(t *testing.T) {
		long := make([]byte, MaxIdentifierLength+1)
		for i := range long {
			long[i] = 'a'
		}
		assert.ErrorIs(t, CheckID("secret_id", string(long)), apperrors.ErrInvalidInput)
	})
}

func TestCheckIDs(t *testing.T) {
	assert.NoError(t, CheckIDs("requestor_id", "i1", "secret_id", "s1"))

	err := CheckIDs("requestor_id", "i1", "secret_id", "bad id")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Contains(t, err.Error(), "secret_id")
	assert.NotContains(t, err.Error(), "requestor_id")
}

func TestOptionalIDRules(t *testing.T) {
	valid := "i2"
	empty := ""
	malformed := "i/2"

	assert.NoError(t, validation.Validate((*string)(nil), OptionalIDRules...))
	assert.NoError(t, validation.Validate(&valid, OptionalIDRules...))
	assert.Error(t, validation.Validate(&empty, OptionalIDRules...))
	assert.Error(t, validation.Validate(&malformed, OptionalIDRules...))
}

func TestCheckMetadata(t *testing.T) {
	tests := []struct {
		name      string
		metadata  map[string]string
		required  bool
		shouldErr bool
	}{
		{name: "required and present", metadata: map[string]string{"name": "Bob"}, required: true},
		{name: "required and nil", metadata: nil, required: true, shouldErr: true},
		{name: "required and empty", metadata: map[string]string{}, required: true, shouldErr: true},
		{name: "optional and nil", metadata: nil, required: false},
		{name: "blank key", metadata: map[string]string{" ": "x"}, shouldErr: true},
		{name: "padded key", metadata: map[string]string{"name ": "x"}, shouldErr: true},
		{name: "empty value allowed", metadata: map[string]string{"name": ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckMetadata("metadata", tt.metadata, tt.required)
			if tt.shouldErr {
				assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPositive(t *testing.T) {
	zero, one, negative := 0, 1, -3

	assert.NoError(t, validation.Validate((*int)(nil), Positive))
	assert.NoError(t, validation.Validate(&one, Positive))
	assert.Error(t, validation.Validate(&zero, Positive))
	assert.Error(t, validation.Validate(&negative, Positive))
}

func TestCheckOptionalIDs(t *testing.T) {
	valid := "s1"
	malformed := "s 1"

	assert.NoError(t, CheckOptionalIDs(map[string]*string{"secret_id": nil, "rsa_key_owner_id": &valid}))

	err := CheckOptionalIDs(map[string]*string{"secret_id": &malformed, "rsa_key_owner_id": &valid})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Contains(t, err.Error(), "secret_id")
}

func TestCheckPage(t *testing.T) {
	zero, two := 0, 2

	assert.NoError(t, CheckPage(nil, nil))
	assert.NoError(t, CheckPage(&two, &two))

	err := CheckPage(&two, &zero)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Contains(t, err.Error(), "page_size")
}

func TestCheckPublicKey(t *testing.T) {
	assert.NoError(t, CheckPublicKey("public_signing_key", "aGVsbG8="))
	assert.NoError(t, CheckPublicKey("public_signing_key", "sk1"))
	assert.ErrorIs(t, CheckPublicKey("public_signing_key", ""), apperrors.ErrInvalidInput)
	assert.ErrorIs(t, CheckPublicKey("public_signing_key", "   "), apperrors.ErrInvalidInput)
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
