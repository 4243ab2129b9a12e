package random

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOtp(t *testing.T) {
	pattern := regexp.MustCompile(`^\d{6}$`)
	for range 50 {
		code, err := NewOtp()
		require.NoError(t, err)
		assert.True(t, pattern.MatchString(code), "otp should be six digits, got %q", code)
		assert.NotEqual(t, byte('0'), code[0], "otp should not start with zero")
	}
}

func TestNewResetToken(t *testing.T) {
	pattern := regexp.MustCompile(`^[0-9a-f]{64}$`)

	first, err := NewResetToken()
	require.NoError(t, err)
	second, err := NewResetToken()
	require.NoError(t, err)

	assert.True(t, pattern.MatchString(first), "token should be 64 hex chars, got %q", first)
	assert.NotEqual(t, first, second)
}
