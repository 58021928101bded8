package nudge

import (
	"context"
	"errors"
	"time"

	nudgedomain "colors-app-go/internal/domain/nudge"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const dateLayout = "2006-01-02"

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) UpsertDevice(ctx context.Context, device *nudgedomain.Device) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "token"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"user_id":    device.UserID,
				"platform":   device.Platform,
				"updated_at": time.Now().UTC(),
			}),
		}).
		Create(device).Error
}

func (r *PostgresRepository) DeleteDevice(ctx context.Context, userID, token string) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND token = ?", userID, token).
		Delete(&nudgedomain.Device{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return nudgedomain.ErrDeviceNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteDevicesByToken(ctx context.Context, tokens []string) (int64, error) {
	if len(tokens) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Where("token IN ?", tokens).Delete(&nudgedomain.Device{})
	return result.RowsAffected, result.Error
}

func (r *PostgresRepository) ListDevices(ctx context.Context, userID string) ([]nudgedomain.Device, error) {
	var devices []nudgedomain.Device
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&devices).Error; err != nil {
		return nil, err
	}
	return devices, nil
}

func (r *PostgresRepository) GetSettings(ctx context.Context, userID string) (*nudgedomain.Settings, error) {
	var settings nudgedomain.Settings
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&settings).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nudgedomain.ErrSettingsNotFound
		}
		return nil, err
	}
	return &settings, nil
}

func (r *PostgresRepository) SaveSettings(ctx context.Context, settings *nudgedomain.Settings) error {
	updates := map[string]interface{}{
		"enabled":       settings.Enabled,
		"timezone":      settings.Timezone,
		"quiet_start":   settings.QuietStart,
		"quiet_end":     settings.QuietEnd,
		"next_nudge_at": settings.NextNudgeAt,
		"scheduled_day": formatDay(settings.ScheduledDay),
		"updated_at":    time.Now().UTC(),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(updates),
		}).
		Create(settings).Error
}

func (r *PostgresRepository) EnsureSettings(ctx context.Context, settings *nudgedomain.Settings) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(settings).Error
}

func (r *PostgresRepository) ListEnabledSettings(ctx context.Context) ([]nudgedomain.Settings, error) {
	var settings []nudgedomain.Settings
	if err := r.db.WithContext(ctx).
		Where("enabled = ?", true).
		Order("user_id ASC").
		Find(&settings).Error; err != nil {
		return nil, err
	}
	return settings, nil
}

func (r *PostgresRepository) ListDue(ctx context.Context, now time.Time) ([]nudgedomain.Settings, error) {
	var settings []nudgedomain.Settings
	if err := r.db.WithContext(ctx).
		Where("enabled = ? AND next_nudge_at IS NOT NULL AND next_nudge_at <= ?", true, now).
		Where("last_sent_day IS NULL OR last_sent_day < scheduled_day").
		Order("next_nudge_at ASC").
		Find(&settings).Error; err != nil {
		return nil, err
	}
	return settings, nil
}

func (r *PostgresRepository) SetSchedule(ctx context.Context, userID string, day time.Time, next *time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&nudgedomain.Settings{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"scheduled_day": day.Format(dateLayout),
			"next_nudge_at": next,
			"updated_at":    time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return nudgedomain.ErrSettingsNotFound
	}
	return nil
}

func (r *PostgresRepository) MarkSent(ctx context.Context, userID string, day time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&nudgedomain.Settings{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"last_sent_day": day.Format(dateLayout),
			"updated_at":    time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return nudgedomain.ErrSettingsNotFound
	}
	return nil
}

func formatDay(day *time.Time) interface{} {
	if day == nil {
		return nil
	}
	return day.Format(dateLayout)
}
