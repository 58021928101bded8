package user

import (
	"context"
	"errors"
	"time"

	domain "colors-app-go/internal/domain/user"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) UpsertIdentity(ctx context.Context, profile *domain.Profile) error {
	updates := map[string]interface{}{
		"updated_at": time.Now().UTC(),
	}
	if profile.Phone != nil {
		updates["phone"] = profile.Phone
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(updates),
		}).
		Create(profile).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.ErrPhoneTaken
	}
	return err
}

func (r *PostgresRepository) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	var profile domain.Profile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *PostgresRepository) GetProfiles(ctx context.Context, userIDs []string) (map[string]domain.Profile, error) {
	var profiles []domain.Profile
	if err := r.db.WithContext(ctx).Where("user_id IN ?", userIDs).Find(&profiles).Error; err != nil {
		return nil, err
	}

	result := make(map[string]domain.Profile, len(profiles))
	for _, profile := range profiles {
		result[profile.UserID] = profile
	}
	return result, nil
}

func (r *PostgresRepository) UpdateProfile(ctx context.Context, userID string, input domain.UpdateInput) error {
	updates := map[string]interface{}{
		"updated_at": time.Now().UTC(),
	}
	if input.DisplayName != nil {
		updates["display_name"] = *input.DisplayName
	}
	if input.AvatarKey != nil {
		if *input.AvatarKey == "" {
			updates["avatar_key"] = nil
		} else {
			updates["avatar_key"] = *input.AvatarKey
		}
	}

	result := r.db.WithContext(ctx).Model(&domain.Profile{}).Where("user_id = ?", userID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}
