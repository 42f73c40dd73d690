package middleware

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterValidators(t *testing.T) {
	RegisterValidators()

	v, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)

	tests := []struct {
		phone string
		valid bool
	}{
		{"+10000000000", true},
		{"+123456789012345", true},
		{"+123456789", false},        // too short
		{"+1234567890123456", false}, // too long
		{"10000000000", false},       // missing plus
		{"+1000000000a", false},
		{"", false},
	}

	for _, tt := range tests {
		err := v.Var(tt.phone, "e164phone")
		if tt.valid {
			assert.NoError(t, err, "phone %q should validate", tt.phone)
		} else {
			assert.Error(t, err, "phone %q should fail", tt.phone)
		}
	}
}
