package user

import "context"

type Repository interface {
	UpsertIdentity(ctx context.Context, profile *Profile) error
	GetProfile(ctx context.Context, userID string) (*Profile, error)
	GetProfiles(ctx context.Context, userIDs []string) (map[string]Profile, error)
	UpdateProfile(ctx context.Context, userID string, input UpdateInput) error
}
