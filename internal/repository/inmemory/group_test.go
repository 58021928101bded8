package inmemory

import (
	"testing"
	"time"

	groupdomain "colors-app-go/internal/domain/group"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupCacheExpires(t *testing.T) {
	cache := NewInMemoryGroupCache()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	cache.SetByUserID("user-1", []groupdomain.Group{{ID: "g-1", Name: "Besties"}}, time.Minute)

	groups, ok := cache.GetByUserID("user-1")
	require.True(t, ok)
	require.Len(t, groups, 1)
	assert.Equal(t, "Besties", groups[0].Name)

	now = now.Add(2 * time.Minute)
	_, ok = cache.GetByUserID("user-1")
	assert.False(t, ok)
}

func TestGroupCacheReturnsCopies(t *testing.T) {
	cache := NewInMemoryGroupCache()
	cache.SetByUserID("user-1", []groupdomain.Group{{ID: "g-1", Name: "Besties"}}, time.Minute)

	groups, _ := cache.GetByUserID("user-1")
	groups[0].Name = "mutated"

	again, ok := cache.GetByUserID("user-1")
	require.True(t, ok)
	assert.Equal(t, "Besties", again[0].Name)
}

func TestGroupCacheDeleteAndZeroTTL(t *testing.T) {
	cache := NewInMemoryGroupCache()
	cache.SetByUserID("user-1", nil, time.Minute)
	cache.SetByUserID("user-2", nil, time.Minute)

	groups, ok := cache.GetByUserID("user-1")
	require.True(t, ok)
	assert.Empty(t, groups)

	cache.DeleteByUserID("user-1", "user-2")
	_, ok = cache.GetByUserID("user-2")
	assert.False(t, ok)

	cache.SetByUserID("user-3", []groupdomain.Group{{ID: "g"}}, 0)
	_, ok = cache.GetByUserID("user-3")
	assert.False(t, ok)
}
