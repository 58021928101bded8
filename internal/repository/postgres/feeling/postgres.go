package feeling

import (
	"context"
	"errors"
	"time"

	feelingdomain "colors-app-go/internal/domain/feeling"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CreateFeeling(ctx context.Context, feeling *feelingdomain.Feeling) error {
	err := r.db.WithContext(ctx).Create(feeling).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return feelingdomain.ErrAlreadyLoggedToday
	}
	return err
}

func (r *PostgresRepository) GetFeeling(ctx context.Context, feelingID string) (*feelingdomain.Feeling, error) {
	var feeling feelingdomain.Feeling
	if err := r.db.WithContext(ctx).Where("id = ?", feelingID).First(&feeling).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, feelingdomain.ErrFeelingNotFound
		}
		return nil, err
	}
	return &feeling, nil
}

func (r *PostgresRepository) UpdateFeeling(ctx context.Context, feelingID string, update feelingdomain.Update) error {
	updates := map[string]interface{}{
		"updated_at": time.Now().UTC(),
	}
	if update.Color != nil {
		updates["color"] = string(*update.Color)
	}
	if update.Word != nil {
		updates["word"] = *update.Word
	}
	if update.SetReason {
		if update.Reason == nil {
			updates["reason"] = nil
		} else {
			updates["reason"] = *update.Reason
		}
	}

	result := r.db.WithContext(ctx).Model(&feelingdomain.Feeling{}).Where("id = ?", feelingID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return feelingdomain.ErrFeelingNotFound
	}
	return nil
}

func (r *PostgresRepository) ExistsForDay(ctx context.Context, groupID, userID string, day time.Time) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&feelingdomain.Feeling{}).
		Where("group_id = ? AND user_id = ? AND day = ?", groupID, userID, day.Format(dateLayout)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresRepository) ExistsForUserDay(ctx context.Context, userID string, day time.Time) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&feelingdomain.Feeling{}).
		Where("user_id = ? AND day = ?", userID, day.Format(dateLayout)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresRepository) ListByGroupDay(ctx context.Context, groupID string, day time.Time) ([]feelingdomain.Feeling, error) {
	var feelings []feelingdomain.Feeling
	if err := r.db.WithContext(ctx).
		Where("group_id = ? AND day = ?", groupID, day.Format(dateLayout)).
		Order("created_at asc").
		Find(&feelings).Error; err != nil {
		return nil, err
	}
	return feelings, nil
}

func (r *PostgresRepository) ListHistory(ctx context.Context, groupID, userID string, limit int) ([]feelingdomain.Feeling, error) {
	var feelings []feelingdomain.Feeling
	if err := r.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Order("day desc").
		Limit(limit).
		Find(&feelings).Error; err != nil {
		return nil, err
	}
	return feelings, nil
}

func (r *PostgresRepository) LatestByMember(ctx context.Context, groupID string) ([]feelingdomain.Feeling, error) {
	var feelings []feelingdomain.Feeling
	if err := r.db.WithContext(ctx).
		Raw(`SELECT DISTINCT ON (user_id) *
			FROM feelings
			WHERE group_id = ?
			ORDER BY user_id, day DESC, created_at DESC`, groupID).
		Scan(&feelings).Error; err != nil {
		return nil, err
	}
	return feelings, nil
}
