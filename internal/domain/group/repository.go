package group

import (
	"context"
	"time"
)

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	LockGroup(ctx context.Context, groupID string) (*Group, error)
	GetGroup(ctx context.Context, groupID string) (*Group, error)
	ListGroupsByUser(ctx context.Context, userID string) ([]Group, error)
	GetMember(ctx context.Context, groupID, userID string) (*GroupMember, error)
	ListMembers(ctx context.Context, groupID string) ([]GroupMember, error)
	ListMembersWithProfiles(ctx context.Context, groupID string) ([]MemberProfile, error)
	CreateGroup(ctx context.Context, group *Group) error
	AddMember(ctx context.Context, member *GroupMember) error
	UpdateGroup(ctx context.Context, groupID string, update GroupUpdate) error
	UpdateGroupOwner(ctx context.Context, groupID, ownerID string) error
	UpdateMemberRole(ctx context.Context, groupID, userID, role string) error
	DeleteGroup(ctx context.Context, groupID string) error
	DeleteMember(ctx context.Context, groupID, userID string) error
	CountMembers(ctx context.Context, groupID string) (int64, error)

	CreateInvite(ctx context.Context, invite *Invite) error
	GetInviteByCode(ctx context.Context, code string) (*Invite, error)
	ListPendingInvites(ctx context.Context, groupID string, now time.Time) ([]Invite, error)
	MarkInviteAccepted(ctx context.Context, inviteID, userID string, at time.Time) error
	IsCodeTaken(ctx context.Context, code string) (bool, error)
}
