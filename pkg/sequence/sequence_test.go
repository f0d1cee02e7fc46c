package sequence_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendory/bizcore/pkg/sequence"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestAllocator_Next(t *testing.T) {
	t.Parallel()

	tenantID := uuid.New()

	t.Run("continues from seeded counter", func(t *testing.T) {
		t.Parallel()

		alloc := sequence.NewAllocator(sequence.NewMemoryStore())
		require.NoError(t, alloc.Seed(context.Background(), tenantID, "2025-01", 3))

		num, err := alloc.Next(context.Background(), tenantID, "2025-01")
		require.NoError(t, err)
		assert.Equal(t, "2025-01-0004", num)
	})

	t.Run("zero padding", func(t *testing.T) {
		t.Parallel()

		alloc := sequence.NewAllocator(sequence.NewMemoryStore())

		num, err := alloc.Next(context.Background(), tenantID, "INV")
		require.NoError(t, err)
		assert.Equal(t, "INV-0001", num)
	})

	t.Run("suffix widens past 9999", func(t *testing.T) {
		t.Parallel()

		alloc := sequence.NewAllocator(sequence.NewMemoryStore())
		require.NoError(t, alloc.Seed(context.Background(), tenantID, "INV", 9999))

		num, err := alloc.Next(context.Background(), tenantID, "INV")
		require.NoError(t, err)
		assert.Equal(t, "INV-10000", num)
	})

	t.Run("default year-month prefix", func(t *testing.T) {
		t.Parallel()

		alloc := sequence.NewAllocator(
			sequence.NewMemoryStore(),
			sequence.WithClock(fixedClock(time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC))),
		)

		num, err := alloc.Next(context.Background(), tenantID, "")
		require.NoError(t, err)
		assert.Equal(t, "2025-01-0001", num)
	})

	t.Run("prefixes are independent", func(t *testing.T) {
		t.Parallel()

		alloc := sequence.NewAllocator(sequence.NewMemoryStore())

		first, err := alloc.Next(context.Background(), tenantID, "2025-01")
		require.NoError(t, err)
		second, err := alloc.Next(context.Background(), tenantID, "2025-02")
		require.NoError(t, err)

		assert.Equal(t, "2025-01-0001", first)
		assert.Equal(t, "2025-02-0001", second)
	})

	t.Run("tenants are independent", func(t *testing.T) {
		t.Parallel()

		alloc := sequence.NewAllocator(sequence.NewMemoryStore())

		_, err := alloc.Next(context.Background(), uuid.New(), "INV")
		require.NoError(t, err)

		num, err := alloc.Next(context.Background(), uuid.New(), "INV")
		require.NoError(t, err)
		assert.Equal(t, "INV-0001", num)
	})

	t.Run("invalid prefix characters", func(t *testing.T) {
		t.Parallel()

		alloc := sequence.NewAllocator(sequence.NewMemoryStore())

		_, err := alloc.Next(context.Background(), tenantID, "inv oice")
		assert.ErrorIs(t, err, sequence.ErrInvalidPrefix)
	})

	t.Run("overlong prefix", func(t *testing.T) {
		t.Parallel()

		alloc := sequence.NewAllocator(sequence.NewMemoryStore())

		long := make([]byte, 40)
		for i := range long {
			long[i] = 'a'
		}

		_, err := alloc.Next(context.Background(), tenantID, string(long))
		assert.ErrorIs(t, err, sequence.ErrInvalidPrefix)
	})
}

func TestAllocator_Peek(t *testing.T) {
	t.Parallel()

	tenantID := uuid.New()
	alloc := sequence.NewAllocator(sequence.NewMemoryStore())

	peeked, err := alloc.Peek(context.Background(), tenantID, "INV")
	require.NoError(t, err)
	assert.Equal(t, "INV-0001", peeked)

	// Peek does not consume the number
	num, err := alloc.Next(context.Background(), tenantID, "INV")
	require.NoError(t, err)
	assert.Equal(t, "INV-0001", num)
}

func TestAllocator_Seed(t *testing.T) {
	t.Parallel()

	tenantID := uuid.New()
	alloc := sequence.NewAllocator(sequence.NewMemoryStore())

	require.NoError(t, alloc.Seed(context.Background(), tenantID, "INV", 100))

	t.Run("cannot move backwards", func(t *testing.T) {
		err := alloc.Seed(context.Background(), tenantID, "INV", 50)
		assert.ErrorIs(t, err, sequence.ErrInvalidCounterState)
	})

	t.Run("negative value rejected", func(t *testing.T) {
		err := alloc.Seed(context.Background(), tenantID, "OTHER", -1)
		assert.ErrorIs(t, err, sequence.ErrInvalidCounterState)
	})
}

func TestFormat(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "2025-01-0001", sequence.Format("2025-01", 1))
	assert.Equal(t, "2025-01-0042", sequence.Format("2025-01", 42))
	assert.Equal(t, "2025-01-9999", sequence.Format("2025-01", 9999))
	assert.Equal(t, "2025-01-123456", sequence.Format("2025-01", 123456))
}
