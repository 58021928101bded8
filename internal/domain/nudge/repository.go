package nudge

import (
	"context"
	"time"

	"colors-app-go/internal/push/expo"
)

type Repository interface {
	// UpsertDevice inserts the device or moves an existing token to its new owner.
	UpsertDevice(ctx context.Context, device *Device) error
	DeleteDevice(ctx context.Context, userID, token string) error
	DeleteDevicesByToken(ctx context.Context, tokens []string) (int64, error)
	ListDevices(ctx context.Context, userID string) ([]Device, error)

	GetSettings(ctx context.Context, userID string) (*Settings, error)
	SaveSettings(ctx context.Context, settings *Settings) error
	// EnsureSettings creates default settings unless the user already has a row.
	EnsureSettings(ctx context.Context, settings *Settings) error
	ListEnabledSettings(ctx context.Context) ([]Settings, error)
	ListDue(ctx context.Context, now time.Time) ([]Settings, error)
	SetSchedule(ctx context.Context, userID string, day time.Time, next *time.Time) error
	MarkSent(ctx context.Context, userID string, day time.Time) error
}

// FeelingChecker gates dispatch: users who already logged today are not nudged.
type FeelingChecker interface {
	HasLoggedOn(ctx context.Context, userID string, day time.Time) (bool, error)
}

type Pusher interface {
	Send(ctx context.Context, messages []expo.Message) ([]expo.Ticket, error)
}

// Locker guarantees a user gets at most one nudge per day across instances.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// Observer receives run outcomes for metrics.
type Observer interface {
	NudgeOutcome(run, outcome string, n int)
}

type noopObserver struct{}

func (noopObserver) NudgeOutcome(string, string, int) {}
