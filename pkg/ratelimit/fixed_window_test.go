package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendory/bizcore/pkg/ratelimit"
)

func newTestLimiter(t *testing.T, limit int, window time.Duration) *ratelimit.FixedWindow {
	t.Helper()

	store := ratelimit.NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })

	fw, err := ratelimit.NewFixedWindow(store, limit, window)
	require.NoError(t, err)
	return fw
}

func TestNewFixedWindow_Validation(t *testing.T) {
	t.Parallel()

	store := ratelimit.NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })

	t.Run("nil store", func(t *testing.T) {
		t.Parallel()

		_, err := ratelimit.NewFixedWindow(nil, 10, time.Minute)
		assert.ErrorIs(t, err, ratelimit.ErrStoreRequired)
	})

	t.Run("non-positive limit", func(t *testing.T) {
		t.Parallel()

		_, err := ratelimit.NewFixedWindow(store, 0, time.Minute)
		assert.ErrorIs(t, err, ratelimit.ErrInvalidLimit)
	})

	t.Run("non-positive window", func(t *testing.T) {
		t.Parallel()

		_, err := ratelimit.NewFixedWindow(store, 10, 0)
		assert.ErrorIs(t, err, ratelimit.ErrInvalidWindow)
	})
}

func TestFixedWindow_Allow(t *testing.T) {
	t.Parallel()

	t.Run("allows exactly limit requests then denies", func(t *testing.T) {
		t.Parallel()

		fw := newTestLimiter(t, 3, time.Minute)
		ctx := context.Background()

		for i := 1; i <= 3; i++ {
			result, err := fw.Allow(ctx, "client-1")
			require.NoError(t, err)
			assert.True(t, result.Allowed, "request %d should be allowed", i)
			assert.Equal(t, 3, result.Limit)
			assert.Equal(t, 3-i, result.Remaining)
		}

		result, err := fw.Allow(ctx, "client-1")
		require.NoError(t, err)
		assert.False(t, result.Allowed)
		assert.Equal(t, 0, result.Remaining)
		assert.Greater(t, result.RetryAfter(), time.Duration(0))
	})

	t.Run("counter resets after window expires", func(t *testing.T) {
		t.Parallel()

		fw := newTestLimiter(t, 2, 50*time.Millisecond)
		ctx := context.Background()

		for i := 0; i < 2; i++ {
			_, err := fw.Allow(ctx, "client-2")
			require.NoError(t, err)
		}

		result, err := fw.Allow(ctx, "client-2")
		require.NoError(t, err)
		require.False(t, result.Allowed)

		time.Sleep(60 * time.Millisecond)

		result, err = fw.Allow(ctx, "client-2")
		require.NoError(t, err)
		assert.True(t, result.Allowed)
		assert.Equal(t, 1, result.Remaining)
	})

	t.Run("keys are independent", func(t *testing.T) {
		t.Parallel()

		fw := newTestLimiter(t, 1, time.Minute)
		ctx := context.Background()

		result, err := fw.Allow(ctx, "tenant-a")
		require.NoError(t, err)
		require.True(t, result.Allowed)

		result, err = fw.Allow(ctx, "tenant-a")
		require.NoError(t, err)
		assert.False(t, result.Allowed)

		result, err = fw.Allow(ctx, "tenant-b")
		require.NoError(t, err)
		assert.True(t, result.Allowed)
	})

	t.Run("empty key rejected", func(t *testing.T) {
		t.Parallel()

		fw := newTestLimiter(t, 1, time.Minute)

		_, err := fw.Allow(context.Background(), "")
		assert.ErrorIs(t, err, ratelimit.ErrKeyRequired)
	})
}

func TestFixedWindow_AllowN(t *testing.T) {
	t.Parallel()

	t.Run("consumes multiple slots at once", func(t *testing.T) {
		t.Parallel()

		fw := newTestLimiter(t, 10, time.Minute)
		ctx := context.Background()

		result, err := fw.AllowN(ctx, "batch", 7)
		require.NoError(t, err)
		assert.True(t, result.Allowed)
		assert.Equal(t, 3, result.Remaining)

		result, err = fw.AllowN(ctx, "batch", 4)
		require.NoError(t, err)
		assert.False(t, result.Allowed)
	})

	t.Run("non-positive n treated as one", func(t *testing.T) {
		t.Parallel()

		fw := newTestLimiter(t, 5, time.Minute)

		result, err := fw.AllowN(context.Background(), "norm", 0)
		require.NoError(t, err)
		assert.True(t, result.Allowed)
		assert.Equal(t, 4, result.Remaining)
	})
}

func TestFixedWindow_Status(t *testing.T) {
	t.Parallel()

	t.Run("does not consume a slot", func(t *testing.T) {
		t.Parallel()

		fw := newTestLimiter(t, 2, time.Minute)
		ctx := context.Background()

		for i := 0; i < 5; i++ {
			result, err := fw.Status(ctx, "observer")
			require.NoError(t, err)
			assert.True(t, result.Allowed)
			assert.Equal(t, 2, result.Remaining)
		}
	})

	t.Run("reflects consumed slots", func(t *testing.T) {
		t.Parallel()

		fw := newTestLimiter(t, 2, time.Minute)
		ctx := context.Background()

		_, err := fw.Allow(ctx, "watched")
		require.NoError(t, err)

		result, err := fw.Status(ctx, "watched")
		require.NoError(t, err)
		assert.True(t, result.Allowed)
		assert.Equal(t, 1, result.Remaining)

		_, err = fw.Allow(ctx, "watched")
		require.NoError(t, err)

		result, err = fw.Status(ctx, "watched")
		require.NoError(t, err)
		assert.False(t, result.Allowed)
		assert.Equal(t, 0, result.Remaining)
	})
}

func TestFixedWindow_Reset(t *testing.T) {
	t.Parallel()

	fw := newTestLimiter(t, 1, time.Minute)
	ctx := context.Background()

	result, err := fw.Allow(ctx, "resettable")
	require.NoError(t, err)
	require.True(t, result.Allowed)

	result, err = fw.Allow(ctx, "resettable")
	require.NoError(t, err)
	require.False(t, result.Allowed)

	require.NoError(t, fw.Reset(ctx, "resettable"))

	result, err = fw.Allow(ctx, "resettable")
	require.NoError(t, err)
	assert.True(t, result.Allowed)
}
