package validator_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendory/bizcore/pkg/validator"
)

func TestApply(t *testing.T) {
	t.Parallel()

	t.Run("all rules pass", func(t *testing.T) {
		t.Parallel()

		err := validator.Apply(
			validator.RequiredString("customer_id", "a0eebc99-9c0b-4ef8-bb6d-6bb9bd380a11"),
			validator.RequiredString("total", "150.00"),
		)
		assert.NoError(t, err)
	})

	t.Run("collects every failure", func(t *testing.T) {
		t.Parallel()

		err := validator.Apply(
			validator.RequiredString("customer_id", ""),
			validator.RequiredString("total", ""),
			validator.InListString("status", "bogus", orderStatuses),
		)
		require.Error(t, err)

		verrs := validator.ExtractValidationErrors(err)
		require.Len(t, verrs, 3)
		assert.ElementsMatch(t, []string{"customer_id", "total", "status"}, verrs.Fields())
	})

	t.Run("no rules yields nil", func(t *testing.T) {
		t.Parallel()

		assert.NoError(t, validator.Apply())
	})
}

func TestValidationErrors(t *testing.T) {
	t.Parallel()

	var verrs validator.ValidationErrors
	verrs.Add(validator.ValidationError{Field: "total", Message: "must be non-negative"})
	verrs.Add(validator.ValidationError{Field: "total", Message: "must be a decimal"})
	verrs.Add(validator.ValidationError{Field: "status", Message: "unknown status"})

	t.Run("Has and Get", func(t *testing.T) {
		t.Parallel()

		assert.True(t, verrs.Has("total"))
		assert.False(t, verrs.Has("prefix"))
		assert.Equal(t, []string{"must be non-negative", "must be a decimal"}, verrs.Get("total"))
		assert.Nil(t, verrs.Get("prefix"))
	})

	t.Run("GetErrors keeps metadata", func(t *testing.T) {
		t.Parallel()

		errs := verrs.GetErrors("status")
		require.Len(t, errs, 1)
		assert.Equal(t, "unknown status", errs[0].Message)
	})

	t.Run("Fields deduplicates in order", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, []string{"total", "status"}, verrs.Fields())
	})

	t.Run("Error lists each failure", func(t *testing.T) {
		t.Parallel()

		msg := verrs.Error()
		assert.Contains(t, msg, "validation failed")
		assert.Contains(t, msg, "total: must be non-negative")
		assert.Contains(t, msg, "status: unknown status")
	})

	t.Run("empty collection", func(t *testing.T) {
		t.Parallel()

		var empty validator.ValidationErrors
		assert.True(t, empty.IsEmpty())
		assert.Equal(t, "validation failed", empty.Error())
	})
}

func TestExtractValidationErrors(t *testing.T) {
	t.Parallel()

	t.Run("nil error", func(t *testing.T) {
		t.Parallel()

		assert.Nil(t, validator.ExtractValidationErrors(nil))
		assert.False(t, validator.IsValidationError(nil))
	})

	t.Run("plain error", func(t *testing.T) {
		t.Parallel()

		assert.Nil(t, validator.ExtractValidationErrors(errors.New("storage unavailable")))
		assert.False(t, validator.IsValidationError(errors.New("storage unavailable")))
	})

	t.Run("wrapped validation errors survive", func(t *testing.T) {
		t.Parallel()

		inner := validator.Apply(validator.RequiredString("customer_id", ""))
		require.Error(t, inner)

		wrapped := fmt.Errorf("create order: %w", inner)
		assert.True(t, validator.IsValidationError(wrapped))

		verrs := validator.ExtractValidationErrors(wrapped)
		require.NotNil(t, verrs)
		assert.True(t, verrs.Has("customer_id"))
	})
}
