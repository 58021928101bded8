package feeling

import (
	"context"
	"time"
)

type Repository interface {
	CreateFeeling(ctx context.Context, feeling *Feeling) error
	GetFeeling(ctx context.Context, feelingID string) (*Feeling, error)
	UpdateFeeling(ctx context.Context, feelingID string, update Update) error
	ExistsForDay(ctx context.Context, groupID, userID string, day time.Time) (bool, error)
	ExistsForUserDay(ctx context.Context, userID string, day time.Time) (bool, error)
	ListByGroupDay(ctx context.Context, groupID string, day time.Time) ([]Feeling, error)
	ListHistory(ctx context.Context, groupID, userID string, limit int) ([]Feeling, error)
	LatestByMember(ctx context.Context, groupID string) ([]Feeling, error)
}

// Membership answers the row-level question "may this user see this group".
type Membership interface {
	RequireMember(ctx context.Context, groupID, userID string) error
}

// Locations resolves a user's timezone so "today" is their local calendar day.
type Locations interface {
	Location(ctx context.Context, userID string) (*time.Location, error)
}
