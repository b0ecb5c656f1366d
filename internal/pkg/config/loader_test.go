package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// ============================================================================
// Test Group 1: LoadEnvString
// ============================================================================

func TestLoadEnvString_WithValue(t *testing.T) {
	t.Setenv("TEST_STRING", "custom_value")

	result := LoadEnvString("TEST_STRING", "default_value")

	assert.Equal(t, "custom_value", result)
}

func TestLoadEnvString_WithoutValue(t *testing.T) {
	result := LoadEnvString("TEST_STRING", "default_value")

	assert.Equal(t, "default_value", result)
}

func TestLoadEnvString_EmptyString(t *testing.T) {
	t.Setenv("TEST_STRING", "")

	result := LoadEnvString("TEST_STRING", "default_value")

	// Empty string should use default
	assert.Equal(t, "default_value", result)
}

// ============================================================================
// Test Group 2: LoadEnvWithFallback
// ============================================================================

func TestLoadEnvWithFallback_WithValidValue(t *testing.T) {
	t.Setenv("TEST_CRON", "30 5 * * *")

	result := LoadEnvWithFallback("TEST_CRON", "0 */6 * * *", ValidateCronSchedule)

	assert.Equal(t, "30 5 * * *", result.Value)
	assert.Empty(t, result.Warnings)
	assert.False(t, result.FallbackApplied)
}

func TestLoadEnvWithFallback_WithoutValue(t *testing.T) {
	result := LoadEnvWithFallback("TEST_CRON", "0 */6 * * *", ValidateCronSchedule)

	assert.Equal(t, "0 */6 * * *", result.Value)
	assert.Empty(t, result.Warnings)
	assert.False(t, result.FallbackApplied)
}

func TestLoadEnvWithFallback_NoValidator(t *testing.T) {
	t.Setenv("TEST_STRING", "any_value")

	result := LoadEnvWithFallback("TEST_STRING", "default", nil)

	// Without a validator any value is accepted
	assert.Equal(t, "any_value", result.Value)
	assert.False(t, result.FallbackApplied)
}

func TestLoadEnvWithFallback_InvalidValue(t *testing.T) {
	t.Setenv("TEST_CRON", "invalid format")

	result := LoadEnvWithFallback("TEST_CRON", "0 */6 * * *", ValidateCronSchedule)

	assert.Equal(t, "0 */6 * * *", result.Value)
	assert.True(t, result.FallbackApplied)
	assert.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "Invalid TEST_CRON='invalid format'")
	assert.Contains(t, result.Warnings[0], "falling back to default '0 */6 * * *'")
}

// ============================================================================
// Test Group 3: LoadEnvDuration
// ============================================================================

func TestLoadEnvDuration_WithValidValue(t *testing.T) {
	t.Setenv("TEST_TIMEOUT", "5m")

	result := LoadEnvDuration("TEST_TIMEOUT", 10*time.Minute, ValidatePositiveDuration)

	assert.Equal(t, 5*time.Minute, result.Value)
	assert.Empty(t, result.Warnings)
	assert.False(t, result.FallbackApplied)
}

func TestLoadEnvDuration_WithoutValue(t *testing.T) {
	result := LoadEnvDuration("TEST_TIMEOUT", 10*time.Minute, ValidatePositiveDuration)

	assert.Equal(t, 10*time.Minute, result.Value)
	assert.False(t, result.FallbackApplied)
}

func TestLoadEnvDuration_ParseError(t *testing.T) {
	t.Setenv("TEST_TIMEOUT", "not a duration")

	result := LoadEnvDuration("TEST_TIMEOUT", 10*time.Minute, ValidatePositiveDuration)

	assert.Equal(t, 10*time.Minute, result.Value)
	assert.True(t, result.FallbackApplied)
	assert.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "TEST_TIMEOUT")
}

func TestLoadEnvDuration_ValidationFailure(t *testing.T) {
	t.Setenv("TEST_TIMEOUT", "-5m")

	result := LoadEnvDuration("TEST_TIMEOUT", 10*time.Minute, ValidatePositiveDuration)

	// Parses fine but fails validation
	assert.Equal(t, 10*time.Minute, result.Value)
	assert.True(t, result.FallbackApplied)
}

func TestLoadEnvDuration_RangeValidator(t *testing.T) {
	t.Setenv("TEST_TIMEOUT", "10h")

	result := LoadEnvDuration("TEST_TIMEOUT", 10*time.Minute, func(d time.Duration) error {
		return ValidateDuration(d, 30*time.Second, 1*time.Hour)
	})

	assert.Equal(t, 10*time.Minute, result.Value)
	assert.True(t, result.FallbackApplied)
	assert.Contains(t, result.Warnings[0], "exceeds maximum")
}

// ============================================================================
// Test Group 4: LoadEnvInt
// ============================================================================

func TestLoadEnvInt_WithValidValue(t *testing.T) {
	t.Setenv("TEST_INT", "42")

	result := LoadEnvInt("TEST_INT", 10, nil)

	assert.Equal(t, 42, result.Value)
	assert.False(t, result.FallbackApplied)
}

func TestLoadEnvInt_WithoutValue(t *testing.T) {
	result := LoadEnvInt("TEST_INT", 10, nil)

	assert.Equal(t, 10, result.Value)
	assert.False(t, result.FallbackApplied)
}

func TestLoadEnvInt_ParseError(t *testing.T) {
	t.Setenv("TEST_INT", "abc")

	result := LoadEnvInt("TEST_INT", 10, nil)

	assert.Equal(t, 10, result.Value)
	assert.True(t, result.FallbackApplied)
	assert.Contains(t, result.Warnings[0], "invalid integer format")
}

func TestLoadEnvInt_ValidationFailure(t *testing.T) {
	t.Setenv("TEST_INT", "500")

	result := LoadEnvInt("TEST_INT", 10, func(v int) error {
		return ValidateIntRange(v, 1, 100)
	})

	assert.Equal(t, 10, result.Value)
	assert.True(t, result.FallbackApplied)
	assert.Contains(t, result.Warnings[0], "exceeds maximum")
}

// ============================================================================
// Test Group 5: LoadEnvBool
// ============================================================================

func TestLoadEnvBool_TrueValues(t *testing.T) {
	for _, v := range []string{"1", "t", "T", "true", "TRUE", "True"} {
		t.Run(v, func(t *testing.T) {
			t.Setenv("TEST_BOOL", v)

			result := LoadEnvBool("TEST_BOOL", false)

			assert.Equal(t, true, result.Value)
			assert.False(t, result.FallbackApplied)
		})
	}
}

func TestLoadEnvBool_FalseValues(t *testing.T) {
	for _, v := range []string{"0", "f", "F", "false", "FALSE", "False"} {
		t.Run(v, func(t *testing.T) {
			t.Setenv("TEST_BOOL", v)

			result := LoadEnvBool("TEST_BOOL", true)

			assert.Equal(t, false, result.Value)
			assert.False(t, result.FallbackApplied)
		})
	}
}

func TestLoadEnvBool_InvalidValue(t *testing.T) {
	t.Setenv("TEST_BOOL", "yes")

	result := LoadEnvBool("TEST_BOOL", true)

	assert.Equal(t, true, result.Value)
	assert.True(t, result.FallbackApplied)
	assert.Contains(t, result.Warnings[0], "invalid boolean format")
}

func TestLoadEnvBool_WithoutValue(t *testing.T) {
	result := LoadEnvBool("TEST_BOOL", true)

	assert.Equal(t, true, result.Value)
	assert.False(t, result.FallbackApplied)
}
