package group

import "time"

// Cache holds each user's group list. Entries are dropped on any membership
// or group change touching that user.
type Cache interface {
	GetByUserID(userID string) ([]Group, bool)
	SetByUserID(userID string, groups []Group, ttl time.Duration)
	DeleteByUserID(userIDs ...string)
	Clear()
}

type noopCache struct{}

func (noopCache) GetByUserID(string) ([]Group, bool) {
	return nil, false
}

func (noopCache) SetByUserID(string, []Group, time.Duration) {}

func (noopCache) DeleteByUserID(...string) {}

func (noopCache) Clear() {}
