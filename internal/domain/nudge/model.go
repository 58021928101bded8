package nudge

import "time"

const (
	PlatformIOS     = "ios"
	PlatformAndroid = "android"

	DefaultTimezone = "UTC"
)

type Device struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	UserID    string    `gorm:"type:uuid;not null;index"`
	Token     string    `gorm:"not null;uniqueIndex"`
	Platform  string    `gorm:"type:varchar(16);not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// Settings is a user's nudge preferences and today's schedule. ScheduledDay
// and LastSentDay are local calendar days stored as UTC-midnight dates.
// LastSentDay is also set when a nudge was skipped because the user had
// already logged a feeling.
type Settings struct {
	UserID       string     `gorm:"type:uuid;primaryKey"`
	Enabled      bool       `gorm:"not null"`
	Timezone     string     `gorm:"not null"`
	QuietStart   *string    `gorm:"type:varchar(5)"`
	QuietEnd     *string    `gorm:"type:varchar(5)"`
	NextNudgeAt  *time.Time
	ScheduledDay *time.Time `gorm:"type:date"`
	LastSentDay  *time.Time `gorm:"type:date"`
	CreatedAt    time.Time  `gorm:"autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime"`
}

func (Settings) TableName() string {
	return "notification_settings"
}

func DefaultSettings(userID string) Settings {
	return Settings{
		UserID:   userID,
		Enabled:  true,
		Timezone: DefaultTimezone,
	}
}

type SettingsUpdate struct {
	Enabled    *bool
	Timezone   *string
	QuietStart *string
	QuietEnd   *string
}

// Summary reports one assignment or dispatch run.
type Summary struct {
	Considered int `json:"considered"`
	Assigned   int `json:"assigned,omitempty"`
	Sent       int `json:"sent,omitempty"`
	Skipped    int `json:"skipped"`
	Failed     int `json:"failed"`
}
