package inmemory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockerAcquireOnceUntilExpiry(t *testing.T) {
	locker := NewLocker()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	locker.now = func() time.Time { return now }
	ctx := context.Background()

	ok, err := locker.Acquire(ctx, "nudge:u1:2026-01-01", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = locker.Acquire(ctx, "nudge:u1:2026-01-01", time.Hour)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = locker.Acquire(ctx, "nudge:u2:2026-01-01", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)

	now = now.Add(time.Hour)
	ok, err = locker.Acquire(ctx, "nudge:u1:2026-01-01", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)
}
