package user

import "time"

type Profile struct {
	UserID      string    `gorm:"type:uuid;primaryKey"`
	Phone       *string   `gorm:"type:text;uniqueIndex"`
	DisplayName string    `gorm:"type:text;not null;default:''"`
	AvatarKey   *string   `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (Profile) TableName() string {
	return "user_profiles"
}

type UpdateInput struct {
	DisplayName *string
	AvatarKey   *string
}
