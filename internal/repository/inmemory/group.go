package inmemory

import (
	"sync"
	"time"

	groupdomain "colors-app-go/internal/domain/group"
)

type InMemoryGroupCache struct {
	mu    sync.RWMutex
	items map[string]groupsItem
	now   func() time.Time
}

type groupsItem struct {
	value     []groupdomain.Group
	expiresAt time.Time
}

func NewInMemoryGroupCache() *InMemoryGroupCache {
	return &InMemoryGroupCache{
		items: make(map[string]groupsItem),
		now:   time.Now,
	}
}

func (c *InMemoryGroupCache) GetByUserID(userID string) ([]groupdomain.Group, bool) {
	now := c.now()

	c.mu.RLock()
	item, ok := c.items[userID]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if !item.expiresAt.After(now) {
		c.mu.Lock()
		item, ok = c.items[userID]
		if ok && !item.expiresAt.After(now) {
			delete(c.items, userID)
		}
		c.mu.Unlock()
		return nil, false
	}

	return cloneGroups(item.value), true
}

func (c *InMemoryGroupCache) SetByUserID(userID string, groups []groupdomain.Group, ttl time.Duration) {
	if ttl <= 0 {
		c.DeleteByUserID(userID)
		return
	}

	c.mu.Lock()
	c.items[userID] = groupsItem{
		value:     cloneGroups(groups),
		expiresAt: c.now().Add(ttl),
	}
	c.mu.Unlock()
}

func (c *InMemoryGroupCache) DeleteByUserID(userIDs ...string) {
	c.mu.Lock()
	for _, userID := range userIDs {
		delete(c.items, userID)
	}
	c.mu.Unlock()
}

func (c *InMemoryGroupCache) Clear() {
	c.mu.Lock()
	c.items = make(map[string]groupsItem)
	c.mu.Unlock()
}

func cloneGroups(groups []groupdomain.Group) []groupdomain.Group {
	if groups == nil {
		return []groupdomain.Group{}
	}
	cloned := make([]groupdomain.Group, len(groups))
	copy(cloned, groups)
	return cloned
}
