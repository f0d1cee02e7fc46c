package validator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendory/bizcore/pkg/validator"
)

func TestRequiredString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value string
		valid bool
	}{
		{"order status", "paid", true},
		{"empty", "", false},
		{"whitespace only", "   \t\n", false},
		{"single character", "a", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := validator.Apply(validator.RequiredString("status", tt.value))
			if tt.valid {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			verrs := validator.ExtractValidationErrors(err)
			require.NotNil(t, verrs)
			assert.True(t, verrs.Has("status"))
		})
	}
}

func TestMinLenString(t *testing.T) {
	t.Parallel()

	assert.NoError(t, validator.Apply(validator.MinLenString("prefix", "INV", 3)))
	assert.NoError(t, validator.Apply(validator.MinLenString("prefix", "2025-01", 3)))

	err := validator.Apply(validator.MinLenString("prefix", "IN", 3))
	require.Error(t, err)
	assert.Contains(t, validator.ExtractValidationErrors(err).Get("prefix")[0], "at least 3")
}

func TestMaxLenString(t *testing.T) {
	t.Parallel()

	assert.NoError(t, validator.Apply(validator.MaxLenString("prefix", "2025-01", 16)))

	err := validator.Apply(validator.MaxLenString("prefix", "a-very-long-numbering-prefix", 16))
	require.Error(t, err)
	assert.True(t, validator.ExtractValidationErrors(err).Has("prefix"))
}

func TestLenString(t *testing.T) {
	t.Parallel()

	assert.NoError(t, validator.Apply(validator.LenString("currency", "USD", 3)))

	err := validator.Apply(validator.LenString("currency", "US", 3))
	require.Error(t, err)
	assert.Contains(t, validator.ExtractValidationErrors(err).Get("currency")[0], "exactly 3")
}
