package sequence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// maxPrefixLength bounds stored prefix keys; generated year-month prefixes
// are 7 characters, custom ones come from tenant settings.
const maxPrefixLength = 32

// Store persists per-(tenant, prefix) counters. Increment must be atomic:
// no two concurrent calls for the same pair may return the same value.
type Store interface {
	// Increment advances the counter for the pair by one and returns the
	// new value. A missing counter starts at zero, so the first call
	// returns 1.
	Increment(ctx context.Context, tenantID uuid.UUID, prefix string) (int64, error)

	// Current returns the last issued value for the pair, zero when the
	// counter does not exist yet.
	Current(ctx context.Context, tenantID uuid.UUID, prefix string) (int64, error)

	// Seed initializes the counter to the given value, used when migrating
	// tenants with existing documents. Returns ErrInvalidCounterState when
	// the counter already holds a higher value: counters never move
	// backwards.
	Seed(ctx context.Context, tenantID uuid.UUID, prefix string, value int64) error
}

// Allocator turns store counters into formatted document numbers.
type Allocator struct {
	store Store
	now   func() time.Time
}

// AllocatorOption configures an Allocator.
type AllocatorOption func(*Allocator)

// WithClock overrides the time source used for default prefixes.
func WithClock(now func() time.Time) AllocatorOption {
	return func(a *Allocator) {
		if now != nil {
			a.now = now
		}
	}
}

// NewAllocator creates an Allocator backed by the given store. Panics if
// store is nil: an allocator without durable counters cannot keep its
// uniqueness guarantee.
func NewAllocator(store Store, opts ...AllocatorOption) *Allocator {
	if store == nil {
		panic("sequence: store is required")
	}

	a := &Allocator{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Next allocates and formats the next document number for the tenant. An
// empty prefix falls back to the current year-month.
func (a *Allocator) Next(ctx context.Context, tenantID uuid.UUID, prefix string) (string, error) {
	prefix, err := a.normalizePrefix(prefix)
	if err != nil {
		return "", err
	}

	n, err := a.store.Increment(ctx, tenantID, prefix)
	if err != nil {
		return "", errors.Join(ErrFailedToAllocate, err)
	}
	if n <= 0 {
		return "", fmt.Errorf("%w: counter for %q returned %d", ErrInvalidCounterState, prefix, n)
	}

	return Format(prefix, n), nil
}

// Peek returns the number the next call to Next would produce, without
// advancing the counter. Purely informational: a concurrent Next can claim
// the previewed value.
func (a *Allocator) Peek(ctx context.Context, tenantID uuid.UUID, prefix string) (string, error) {
	prefix, err := a.normalizePrefix(prefix)
	if err != nil {
		return "", err
	}

	n, err := a.store.Current(ctx, tenantID, prefix)
	if err != nil {
		return "", errors.Join(ErrFailedToAllocate, err)
	}
	if n < 0 {
		return "", fmt.Errorf("%w: counter for %q returned %d", ErrInvalidCounterState, prefix, n)
	}

	return Format(prefix, n+1), nil
}

// Seed initializes the counter so the next allocation returns value+1.
func (a *Allocator) Seed(ctx context.Context, tenantID uuid.UUID, prefix string, value int64) error {
	prefix, err := a.normalizePrefix(prefix)
	if err != nil {
		return err
	}
	if value < 0 {
		return fmt.Errorf("%w: seed value %d", ErrInvalidCounterState, value)
	}

	return a.store.Seed(ctx, tenantID, prefix, value)
}

// Format renders a counter value as a document number with 4-digit
// zero-padding. Values beyond 9999 widen naturally.
func Format(prefix string, n int64) string {
	return fmt.Sprintf("%s-%04d", prefix, n)
}

// normalizePrefix applies the year-month default and validates the result.
func (a *Allocator) normalizePrefix(prefix string) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = a.now().UTC().Format("2006-01")
	}

	if len(prefix) > maxPrefixLength {
		return "", fmt.Errorf("%w: %q exceeds %d characters", ErrInvalidPrefix, prefix, maxPrefixLength)
	}
	for _, r := range prefix {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return "", fmt.Errorf("%w: %q contains invalid character %q", ErrInvalidPrefix, prefix, r)
		}
	}

	return prefix, nil
}
