package group

import (
	"context"
	"errors"
	"time"

	groupdomain "colors-app-go/internal/domain/group"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(groupdomain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

// LockGroup takes a row lock on the group so membership checks and inserts
// inside the same transaction see a stable member count.
func (r *PostgresRepository) LockGroup(ctx context.Context, groupID string) (*groupdomain.Group, error) {
	var group groupdomain.Group
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", groupID).
		First(&group).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, groupdomain.ErrGroupNotFound
	}
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *PostgresRepository) GetGroup(ctx context.Context, groupID string) (*groupdomain.Group, error) {
	var group groupdomain.Group
	err := r.db.WithContext(ctx).Where("id = ?", groupID).First(&group).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, groupdomain.ErrGroupNotFound
	}
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *PostgresRepository) ListGroupsByUser(ctx context.Context, userID string) ([]groupdomain.Group, error) {
	var groups []groupdomain.Group
	if err := r.db.WithContext(ctx).
		Table("groups").
		Select("groups.*").
		Joins("join group_members on group_members.group_id = groups.id").
		Where("group_members.user_id = ?", userID).
		Order("group_members.joined_at asc").
		Scan(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *PostgresRepository) GetMember(ctx context.Context, groupID, userID string) (*groupdomain.GroupMember, error) {
	var member groupdomain.GroupMember
	if err := r.db.WithContext(ctx).Where("group_id = ? AND user_id = ?", groupID, userID).First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, groupdomain.ErrMemberNotFound
		}
		return nil, err
	}
	return &member, nil
}

func (r *PostgresRepository) ListMembers(ctx context.Context, groupID string) ([]groupdomain.GroupMember, error) {
	var members []groupdomain.GroupMember
	if err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("joined_at asc").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

func (r *PostgresRepository) ListMembersWithProfiles(ctx context.Context, groupID string) ([]groupdomain.MemberProfile, error) {
	type memberRow struct {
		UserID      string    `gorm:"column:user_id"`
		Role        string    `gorm:"column:role"`
		JoinedAt    time.Time `gorm:"column:joined_at"`
		DisplayName *string   `gorm:"column:display_name"`
		Phone       *string   `gorm:"column:phone"`
		AvatarKey   *string   `gorm:"column:avatar_key"`
	}

	var rows []memberRow
	if err := r.db.WithContext(ctx).
		Table("group_members").
		Select("group_members.user_id, group_members.role, group_members.joined_at, user_profiles.display_name, user_profiles.phone, user_profiles.avatar_key").
		Joins("left join user_profiles on user_profiles.user_id = group_members.user_id").
		Where("group_members.group_id = ?", groupID).
		Order("group_members.joined_at asc").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	members := make([]groupdomain.MemberProfile, 0, len(rows))
	for _, row := range rows {
		member := groupdomain.MemberProfile{
			UserID:    row.UserID,
			Role:      row.Role,
			JoinedAt:  row.JoinedAt,
			Phone:     row.Phone,
			AvatarKey: row.AvatarKey,
		}
		if row.DisplayName != nil {
			member.DisplayName = *row.DisplayName
		}
		members = append(members, member)
	}
	return members, nil
}

func (r *PostgresRepository) CreateGroup(ctx context.Context, group *groupdomain.Group) error {
	return r.db.WithContext(ctx).Create(group).Error
}

func (r *PostgresRepository) AddMember(ctx context.Context, member *groupdomain.GroupMember) error {
	err := r.db.WithContext(ctx).Create(member).Error
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return groupdomain.ErrAlreadyMember
	case errors.Is(err, gorm.ErrCheckConstraintViolated):
		// raised by the group_members_cap trigger
		return groupdomain.ErrGroupFull
	}
	return err
}

func (r *PostgresRepository) UpdateGroup(ctx context.Context, groupID string, update groupdomain.GroupUpdate) error {
	updates := map[string]interface{}{}
	if update.Name != nil {
		updates["name"] = *update.Name
	}
	if update.Emoji != nil {
		updates["emoji"] = *update.Emoji
	}
	return r.db.WithContext(ctx).Model(&groupdomain.Group{}).Where("id = ?", groupID).Updates(updates).Error
}

func (r *PostgresRepository) UpdateGroupOwner(ctx context.Context, groupID, ownerID string) error {
	return r.db.WithContext(ctx).Model(&groupdomain.Group{}).Where("id = ?", groupID).Update("owner_id", ownerID).Error
}

func (r *PostgresRepository) UpdateMemberRole(ctx context.Context, groupID, userID, role string) error {
	return r.db.WithContext(ctx).Model(&groupdomain.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Update("role", role).Error
}

func (r *PostgresRepository) DeleteGroup(ctx context.Context, groupID string) error {
	return r.db.WithContext(ctx).Delete(&groupdomain.Group{}, "id = ?", groupID).Error
}

func (r *PostgresRepository) DeleteMember(ctx context.Context, groupID, userID string) error {
	return r.db.WithContext(ctx).Delete(&groupdomain.GroupMember{}, "group_id = ? AND user_id = ?", groupID, userID).Error
}

func (r *PostgresRepository) CountMembers(ctx context.Context, groupID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&groupdomain.GroupMember{}).Where("group_id = ?", groupID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PostgresRepository) CreateInvite(ctx context.Context, invite *groupdomain.Invite) error {
	return r.db.WithContext(ctx).Create(invite).Error
}

func (r *PostgresRepository) GetInviteByCode(ctx context.Context, code string) (*groupdomain.Invite, error) {
	var invite groupdomain.Invite
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&invite).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, groupdomain.ErrInviteNotFound
		}
		return nil, err
	}
	return &invite, nil
}

func (r *PostgresRepository) ListPendingInvites(ctx context.Context, groupID string, now time.Time) ([]groupdomain.Invite, error) {
	var invites []groupdomain.Invite
	if err := r.db.WithContext(ctx).
		Where("group_id = ? AND status = ? AND expires_at > ?", groupID, groupdomain.InviteStatusPending, now).
		Order("created_at desc").
		Find(&invites).Error; err != nil {
		return nil, err
	}
	return invites, nil
}

// MarkInviteAccepted only flips pending rows, so a code raced by two
// accepters is consumed once.
func (r *PostgresRepository) MarkInviteAccepted(ctx context.Context, inviteID, userID string, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&groupdomain.Invite{}).
		Where("id = ? AND status = ?", inviteID, groupdomain.InviteStatusPending).
		Updates(map[string]interface{}{
			"status":      groupdomain.InviteStatusAccepted,
			"accepted_by": userID,
			"accepted_at": at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return groupdomain.ErrInviteUsed
	}
	return nil
}

func (r *PostgresRepository) IsCodeTaken(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&groupdomain.Invite{}).Where("code = ?", code).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
