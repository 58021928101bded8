package common

import (
	"context"

	userdomain "colors-app-go/internal/domain/user"
	"colors-app-go/internal/storage/s3"
	"colors-app-go/pkg/logger"
)

type Profiles interface {
	GetProfile(ctx context.Context, userID string) (*userdomain.Profile, error)
	UpdateProfile(ctx context.Context, userID string, input userdomain.UpdateInput) (*userdomain.Profile, error)
}

type Avatars interface {
	PresignUpload(ctx context.Context, userID, contentType string) (*s3.Upload, error)
	PresignRead(ctx context.Context, key string) (string, error)
	OwnsKey(userID, key string) bool
}

// Pinger is a dependency the health check pings.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handlers struct {
	Profiles Profiles
	Avatars  Avatars
	checks   map[string]Pinger
	log      logger.Logger
}

// New builds the shared handlers. avatars may be nil when object storage is
// not configured.
func New(profiles Profiles, avatars Avatars, checks map[string]Pinger, log logger.Logger) *Handlers {
	return &Handlers{
		Profiles: profiles,
		Avatars:  avatars,
		checks:   checks,
		log:      log,
	}
}
