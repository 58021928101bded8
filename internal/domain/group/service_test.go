package group

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGroupRepo struct {
	groups  map[string]*Group
	members map[string]map[string]*GroupMember
	invites map[string]*Invite
	tick    time.Time
}

func newFakeGroupRepo() *fakeGroupRepo {
	return &fakeGroupRepo{
		groups:  make(map[string]*Group),
		members: make(map[string]map[string]*GroupMember),
		invites: make(map[string]*Invite),
		tick:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (r *fakeGroupRepo) seedGroup(id, ownerID string, memberIDs ...string) {
	r.groups[id] = &Group{ID: id, Name: "Group " + id, Emoji: DefaultEmoji, OwnerID: ownerID}
	r.members[id] = make(map[string]*GroupMember)
	r.addMember(id, ownerID, RoleOwner)
	for _, memberID := range memberIDs {
		r.addMember(id, memberID, RoleMember)
	}
}

func (r *fakeGroupRepo) addMember(groupID, userID, role string) {
	r.tick = r.tick.Add(time.Minute)
	r.members[groupID][userID] = &GroupMember{GroupID: groupID, UserID: userID, Role: role, JoinedAt: r.tick}
}

func (r *fakeGroupRepo) Transaction(ctx context.Context, fn func(Repository) error) error {
	return fn(r)
}

func (r *fakeGroupRepo) LockGroup(ctx context.Context, groupID string) (*Group, error) {
	return r.GetGroup(ctx, groupID)
}

func (r *fakeGroupRepo) GetGroup(ctx context.Context, groupID string) (*Group, error) {
	group, ok := r.groups[groupID]
	if !ok {
		return nil, ErrGroupNotFound
	}
	copied := *group
	return &copied, nil
}

func (r *fakeGroupRepo) ListGroupsByUser(ctx context.Context, userID string) ([]Group, error) {
	result := make([]Group, 0)
	for groupID, members := range r.members {
		if _, ok := members[userID]; ok {
			result = append(result, *r.groups[groupID])
		}
	}
	return result, nil
}

func (r *fakeGroupRepo) GetMember(ctx context.Context, groupID, userID string) (*GroupMember, error) {
	member, ok := r.members[groupID][userID]
	if !ok {
		return nil, ErrMemberNotFound
	}
	return member, nil
}

func (r *fakeGroupRepo) ListMembers(ctx context.Context, groupID string) ([]GroupMember, error) {
	result := make([]GroupMember, 0)
	for _, member := range r.members[groupID] {
		result = append(result, *member)
	}
	return result, nil
}

func (r *fakeGroupRepo) ListMembersWithProfiles(ctx context.Context, groupID string) ([]MemberProfile, error) {
	result := make([]MemberProfile, 0)
	for _, member := range r.members[groupID] {
		result = append(result, MemberProfile{
			UserID:      member.UserID,
			Role:        member.Role,
			JoinedAt:    member.JoinedAt,
			DisplayName: "name-" + member.UserID,
		})
	}
	return result, nil
}

func (r *fakeGroupRepo) CreateGroup(ctx context.Context, group *Group) error {
	copied := *group
	r.groups[group.ID] = &copied
	r.members[group.ID] = make(map[string]*GroupMember)
	return nil
}

func (r *fakeGroupRepo) AddMember(ctx context.Context, member *GroupMember) error {
	if _, ok := r.members[member.GroupID][member.UserID]; ok {
		return ErrAlreadyMember
	}
	r.addMember(member.GroupID, member.UserID, member.Role)
	return nil
}

func (r *fakeGroupRepo) UpdateGroup(ctx context.Context, groupID string, update GroupUpdate) error {
	group := r.groups[groupID]
	if update.Name != nil {
		group.Name = *update.Name
	}
	if update.Emoji != nil {
		group.Emoji = *update.Emoji
	}
	return nil
}

func (r *fakeGroupRepo) UpdateGroupOwner(ctx context.Context, groupID, ownerID string) error {
	r.groups[groupID].OwnerID = ownerID
	return nil
}

func (r *fakeGroupRepo) UpdateMemberRole(ctx context.Context, groupID, userID, role string) error {
	r.members[groupID][userID].Role = role
	return nil
}

func (r *fakeGroupRepo) DeleteGroup(ctx context.Context, groupID string) error {
	delete(r.groups, groupID)
	delete(r.members, groupID)
	return nil
}

func (r *fakeGroupRepo) DeleteMember(ctx context.Context, groupID, userID string) error {
	delete(r.members[groupID], userID)
	return nil
}

func (r *fakeGroupRepo) CountMembers(ctx context.Context, groupID string) (int64, error) {
	return int64(len(r.members[groupID])), nil
}

func (r *fakeGroupRepo) CreateInvite(ctx context.Context, invite *Invite) error {
	copied := *invite
	r.invites[invite.Code] = &copied
	return nil
}

func (r *fakeGroupRepo) GetInviteByCode(ctx context.Context, code string) (*Invite, error) {
	invite, ok := r.invites[code]
	if !ok {
		return nil, ErrInviteNotFound
	}
	copied := *invite
	return &copied, nil
}

func (r *fakeGroupRepo) ListPendingInvites(ctx context.Context, groupID string, now time.Time) ([]Invite, error) {
	result := make([]Invite, 0)
	for _, invite := range r.invites {
		if invite.GroupID == groupID && invite.Status == InviteStatusPending && invite.ExpiresAt.After(now) {
			result = append(result, *invite)
		}
	}
	return result, nil
}

func (r *fakeGroupRepo) MarkInviteAccepted(ctx context.Context, inviteID, userID string, at time.Time) error {
	for _, invite := range r.invites {
		if invite.ID == inviteID {
			invite.Status = InviteStatusAccepted
			invite.AcceptedBy = &userID
			invite.AcceptedAt = &at
			return nil
		}
	}
	return ErrInviteNotFound
}

func (r *fakeGroupRepo) IsCodeTaken(ctx context.Context, code string) (bool, error) {
	_, ok := r.invites[code]
	return ok, nil
}

type recordingCache struct {
	noopCache
	deleted []string
}

func (c *recordingCache) DeleteByUserID(userIDs ...string) {
	c.deleted = append(c.deleted, userIDs...)
}

func TestCreateGroupMakesCreatorOwner(t *testing.T) {
	repo := newFakeGroupRepo()
	svc := NewService(repo)

	group, err := svc.CreateGroup(context.Background(), "user-1", "  Besties  ", "")
	require.NoError(t, err)
	assert.Equal(t, "Besties", group.Name)
	assert.Equal(t, DefaultEmoji, group.Emoji)
	assert.Equal(t, "user-1", group.OwnerID)

	member, err := repo.GetMember(context.Background(), group.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, RoleOwner, member.Role)
}

func TestCreateGroupValidation(t *testing.T) {
	svc := NewService(newFakeGroupRepo())

	_, err := svc.CreateGroup(context.Background(), "user-1", "   ", "")
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "name", validation.Field)

	_, err = svc.CreateGroup(context.Background(), "user-1", "Crew", "not an emoji")
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "emoji", validation.Field)
}

func TestGetGroupHidesFromOutsiders(t *testing.T) {
	repo := newFakeGroupRepo()
	repo.seedGroup("g-1", "owner", "user-1")
	svc := NewService(repo)

	_, err := svc.GetGroup(context.Background(), "stranger", "g-1")
	assert.ErrorIs(t, err, ErrGroupNotFound)

	group, err := svc.GetGroup(context.Background(), "user-1", "g-1")
	require.NoError(t, err)
	assert.Equal(t, "g-1", group.ID)
}

func TestUpdateGroupOwnerOnly(t *testing.T) {
	repo := newFakeGroupRepo()
	repo.seedGroup("g-1", "owner", "user-1")
	cache := &recordingCache{}
	svc := NewService(repo, WithCache(cache, time.Minute))

	name := "Renamed"
	_, err := svc.UpdateGroup(context.Background(), "user-1", "g-1", GroupUpdate{Name: &name})
	assert.ErrorIs(t, err, ErrNotOwner)

	emoji := "🌈"
	group, err := svc.UpdateGroup(context.Background(), "owner", "g-1", GroupUpdate{Name: &name, Emoji: &emoji})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", group.Name)
	assert.Equal(t, "🌈", repo.groups["g-1"].Emoji)
	assert.ElementsMatch(t, []string{"owner", "user-1"}, cache.deleted)
}

func TestLeaveGroupOwnerTransfersToEarliestMember(t *testing.T) {
	repo := newFakeGroupRepo()
	repo.seedGroup("g-1", "owner", "user-2", "user-3")
	svc := NewService(repo)

	require.NoError(t, svc.LeaveGroup(context.Background(), "owner", "g-1"))

	require.NotNil(t, repo.groups["g-1"])
	assert.Equal(t, "user-2", repo.groups["g-1"].OwnerID)
	assert.Equal(t, RoleOwner, repo.members["g-1"]["user-2"].Role)
	assert.Equal(t, RoleMember, repo.members["g-1"]["user-3"].Role)
	_, stillThere := repo.members["g-1"]["owner"]
	assert.False(t, stillThere)
}

func TestLeaveGroupSoleOwnerDeletesGroup(t *testing.T) {
	repo := newFakeGroupRepo()
	repo.seedGroup("g-1", "owner")
	svc := NewService(repo)

	require.NoError(t, svc.LeaveGroup(context.Background(), "owner", "g-1"))
	_, ok := repo.groups["g-1"]
	assert.False(t, ok)
}

func TestLeaveGroupNotMember(t *testing.T) {
	repo := newFakeGroupRepo()
	repo.seedGroup("g-1", "owner")
	svc := NewService(repo)

	err := svc.LeaveGroup(context.Background(), "stranger", "g-1")
	assert.ErrorIs(t, err, ErrGroupNotFound)
}

func TestRemoveMemberRules(t *testing.T) {
	repo := newFakeGroupRepo()
	repo.seedGroup("g-1", "owner", "user-1", "user-2")
	svc := NewService(repo)

	assert.ErrorIs(t, svc.RemoveMember(context.Background(), "user-1", "g-1", "user-2"), ErrNotOwner)
	assert.ErrorIs(t, svc.RemoveMember(context.Background(), "owner", "g-1", "owner"), ErrCannotRemoveOwner)
	assert.ErrorIs(t, svc.RemoveMember(context.Background(), "owner", "g-1", "nobody"), ErrMemberNotFound)
	assert.ErrorIs(t, svc.RemoveMember(context.Background(), "stranger", "g-1", "user-1"), ErrGroupNotFound)

	require.NoError(t, svc.RemoveMember(context.Background(), "owner", "g-1", "user-1"))
	_, ok := repo.members["g-1"]["user-1"]
	assert.False(t, ok)
}

func TestDeleteGroupOwnerOnly(t *testing.T) {
	repo := newFakeGroupRepo()
	repo.seedGroup("g-1", "owner", "user-1")
	svc := NewService(repo)

	assert.ErrorIs(t, svc.DeleteGroup(context.Background(), "user-1", "g-1"), ErrNotOwner)
	require.NoError(t, svc.DeleteGroup(context.Background(), "owner", "g-1"))
	assert.Empty(t, repo.groups)
}

func TestCreateAndAcceptInvite(t *testing.T) {
	repo := newFakeGroupRepo()
	repo.seedGroup("g-1", "owner")
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	svc := NewService(repo, WithClock(func() time.Time { return now }))

	invite, err := svc.CreateInvite(context.Background(), "owner", "g-1", nil)
	require.NoError(t, err)
	assert.Len(t, invite.Code, 6)
	assert.Equal(t, InviteStatusPending, invite.Status)
	assert.Equal(t, now.Add(7*24*time.Hour), invite.ExpiresAt)

	preview, err := svc.PreviewInvite(context.Background(), invite.Code)
	require.NoError(t, err)
	assert.Equal(t, "name-owner", preview.InviterName)
	assert.EqualValues(t, 1, preview.MemberCount)

	group, err := svc.AcceptInvite(context.Background(), "user-2", " "+invite.Code+" ")
	require.NoError(t, err)
	assert.Equal(t, "g-1", group.ID)

	member, err := repo.GetMember(context.Background(), "g-1", "user-2")
	require.NoError(t, err)
	assert.Equal(t, RoleMember, member.Role)

	stored := repo.invites[invite.Code]
	assert.Equal(t, InviteStatusAccepted, stored.Status)
	require.NotNil(t, stored.AcceptedBy)
	assert.Equal(t, "user-2", *stored.AcceptedBy)

	_, err = svc.AcceptInvite(context.Background(), "user-3", invite.Code)
	assert.ErrorIs(t, err, ErrInviteUsed)
}

func TestAcceptInviteRejectsExpiredAndMembers(t *testing.T) {
	repo := newFakeGroupRepo()
	repo.seedGroup("g-1", "owner", "user-1")
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	svc := NewService(repo, WithClock(func() time.Time { return now }))

	invite, err := svc.CreateInvite(context.Background(), "owner", "g-1", nil)
	require.NoError(t, err)

	_, err = svc.AcceptInvite(context.Background(), "user-1", invite.Code)
	assert.ErrorIs(t, err, ErrAlreadyMember)

	now = now.Add(8 * 24 * time.Hour)
	_, err = svc.AcceptInvite(context.Background(), "user-2", invite.Code)
	assert.ErrorIs(t, err, ErrInviteExpired)

	_, err = svc.AcceptInvite(context.Background(), "user-2", "nope00")
	assert.ErrorIs(t, err, ErrInviteNotFound)
}

func TestGroupCapIsSix(t *testing.T) {
	repo := newFakeGroupRepo()
	repo.seedGroup("g-1", "owner", "u1", "u2", "u3", "u4")
	svc := NewService(repo)

	invite, err := svc.CreateInvite(context.Background(), "owner", "g-1", nil)
	require.NoError(t, err)
	second, err := svc.CreateInvite(context.Background(), "u1", "g-1", nil)
	require.NoError(t, err)

	_, err = svc.AcceptInvite(context.Background(), "u5", invite.Code)
	require.NoError(t, err)
	count, _ := repo.CountMembers(context.Background(), "g-1")
	assert.EqualValues(t, MaxMembers, count)

	_, err = svc.AcceptInvite(context.Background(), "u6", second.Code)
	assert.ErrorIs(t, err, ErrGroupFull)

	_, err = svc.CreateInvite(context.Background(), "owner", "g-1", nil)
	assert.ErrorIs(t, err, ErrGroupFull)
}

func TestListGroupsUsesCache(t *testing.T) {
	repo := newFakeGroupRepo()
	repo.seedGroup("g-1", "owner")
	svc := NewService(repo)

	groups, err := svc.ListGroups(context.Background(), "owner")
	require.NoError(t, err)
	assert.Len(t, groups, 1)
}

func TestShareMessage(t *testing.T) {
	msg := ShareMessage(&Group{Name: "Besties", Emoji: "🌈"}, &Invite{Code: "ABC234"})
	assert.Equal(t, "Join my Colors group 🌈 Besties: colors://invite/ABC234", msg)
}

func TestGenerateCodeAlphabet(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := generateCode(inviteCodeLength)
		require.NoError(t, err)
		assert.Len(t, code, inviteCodeLength)
		assert.NotContains(t, code, "0", fmt.Sprintf("code %s", code))
		assert.NotContains(t, code, "O")
		assert.NotContains(t, code, "1")
		assert.NotContains(t, code, "I")
	}
}
