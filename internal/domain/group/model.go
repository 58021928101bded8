package group

import "time"

const (
	RoleOwner  = "owner"
	RoleMember = "member"

	// MaxMembers is the ring size: one slice per member.
	MaxMembers = 6

	DefaultEmoji = "🎨"
)

const (
	InviteStatusPending  = "pending"
	InviteStatusAccepted = "accepted"
)

type Group struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"not null"`
	Emoji     string    `gorm:"not null"`
	OwnerID   string    `gorm:"type:uuid;not null;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

type GroupMember struct {
	GroupID  string    `gorm:"type:uuid;primaryKey"`
	UserID   string    `gorm:"type:uuid;primaryKey;index"`
	Role     string    `gorm:"type:varchar(16);not null"`
	JoinedAt time.Time `gorm:"autoCreateTime"`
}

type MemberProfile struct {
	UserID      string
	Role        string
	JoinedAt    time.Time
	DisplayName string
	Phone       *string
	AvatarKey   *string
}

type GroupUpdate struct {
	Name  *string
	Emoji *string
}

type Invite struct {
	ID         string     `gorm:"type:uuid;primaryKey"`
	Code       string     `gorm:"size:6;not null;uniqueIndex"`
	GroupID    string     `gorm:"type:uuid;not null;index"`
	InviterID  string     `gorm:"type:uuid;not null"`
	Phone      *string    `gorm:"type:text"`
	Status     string     `gorm:"type:varchar(16);not null"`
	AcceptedBy *string    `gorm:"type:uuid"`
	AcceptedAt *time.Time
	ExpiresAt  time.Time `gorm:"not null"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

// InvitePreview is what an invitee sees before accepting.
type InvitePreview struct {
	Invite      Invite
	GroupName   string
	GroupEmoji  string
	InviterName string
	MemberCount int64
}
