package groups

import (
	"context"
	"time"

	feelingdomain "colors-app-go/internal/domain/feeling"
	groupdomain "colors-app-go/internal/domain/group"
	"colors-app-go/internal/domain/support"
	"colors-app-go/pkg/logger"
)

type GroupService interface {
	CreateGroup(ctx context.Context, userID, name, emoji string) (*groupdomain.Group, error)
	ListGroups(ctx context.Context, userID string) ([]groupdomain.Group, error)
	GetGroup(ctx context.Context, userID, groupID string) (*groupdomain.Group, error)
	UpdateGroup(ctx context.Context, userID, groupID string, update groupdomain.GroupUpdate) (*groupdomain.Group, error)
	DeleteGroup(ctx context.Context, userID, groupID string) error
	LeaveGroup(ctx context.Context, userID, groupID string) error
	RemoveMember(ctx context.Context, actorID, groupID, memberID string) error
	ListMembers(ctx context.Context, userID, groupID string) ([]groupdomain.MemberProfile, error)

	CreateInvite(ctx context.Context, userID, groupID string, phone *string) (*groupdomain.Invite, error)
	ListPendingInvites(ctx context.Context, userID, groupID string) ([]groupdomain.Invite, error)
	PreviewInvite(ctx context.Context, code string) (*groupdomain.InvitePreview, error)
	AcceptInvite(ctx context.Context, userID, code string) (*groupdomain.Group, error)
}

// Moods feeds the ring with each member's latest feeling.
type Moods interface {
	LatestByMember(ctx context.Context, userID, groupID string) (map[string]feelingdomain.Feeling, error)
	Today(ctx context.Context, userID string) (time.Time, error)
}

type SupportService interface {
	Compose(ctx context.Context, senderID, groupID, recipientID string) (*support.Draft, error)
	Catalog() support.Catalog
}

type SupportCounter interface {
	SupportDrafted()
}

type Handlers struct {
	Groups  GroupService
	Moods   Moods
	Support SupportService
	counter SupportCounter
	log     logger.Logger
}

func New(groups GroupService, moods Moods, supportService SupportService, counter SupportCounter, log logger.Logger) *Handlers {
	return &Handlers{
		Groups:  groups,
		Moods:   moods,
		Support: supportService,
		counter: counter,
		log:     log,
	}
}
