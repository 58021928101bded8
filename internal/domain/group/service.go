package group

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	inviteCodeLength   = 6
	inviteCodeAttempts = 10
	inviteTTL          = 7 * 24 * time.Hour

	maxNameLength  = 40
	maxEmojiLength = 8
)

type Service struct {
	repo     Repository
	cache    Cache
	cacheTTL time.Duration
	now      func() time.Time
}

type Option func(*Service)

func WithCache(cache Cache, ttl time.Duration) Option {
	return func(s *Service) {
		if cache != nil {
			s.cache = cache
			s.cacheTTL = ttl
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:  repo,
		cache: noopCache{},
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) CreateGroup(ctx context.Context, userID, name, emoji string) (*Group, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}
	emoji, err = normalizeEmoji(emoji)
	if err != nil {
		return nil, err
	}

	group := Group{
		ID:      uuid.NewString(),
		Name:    name,
		Emoji:   emoji,
		OwnerID: userID,
	}

	err = s.repo.Transaction(ctx, func(tx Repository) error {
		if err := tx.CreateGroup(ctx, &group); err != nil {
			return err
		}
		return tx.AddMember(ctx, &GroupMember{
			GroupID: group.ID,
			UserID:  userID,
			Role:    RoleOwner,
		})
	})
	if err != nil {
		return nil, err
	}

	s.cache.DeleteByUserID(userID)
	return &group, nil
}

func (s *Service) ListGroups(ctx context.Context, userID string) ([]Group, error) {
	if cached, ok := s.cache.GetByUserID(userID); ok {
		return cached, nil
	}

	groups, err := s.repo.ListGroupsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.cache.SetByUserID(userID, groups, s.cacheTTL)
	return groups, nil
}

// GetGroup returns the group only to its members; outsiders get
// ErrGroupNotFound so group ids cannot be discovered.
func (s *Service) GetGroup(ctx context.Context, userID, groupID string) (*Group, error) {
	if err := s.RequireMember(ctx, groupID, userID); err != nil {
		return nil, err
	}
	return s.repo.GetGroup(ctx, groupID)
}

func (s *Service) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	_, err := s.repo.GetMember(ctx, groupID, userID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrMemberNotFound) {
		return false, nil
	}
	return false, err
}

func (s *Service) RequireMember(ctx context.Context, groupID, userID string) error {
	ok, err := s.IsMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrGroupNotFound
	}
	return nil
}

func (s *Service) UpdateGroup(ctx context.Context, userID, groupID string, update GroupUpdate) (*Group, error) {
	if update.Name != nil {
		name, err := normalizeName(*update.Name)
		if err != nil {
			return nil, err
		}
		update.Name = &name
	}
	if update.Emoji != nil {
		emoji, err := normalizeEmoji(*update.Emoji)
		if err != nil {
			return nil, err
		}
		update.Emoji = &emoji
	}

	group, err := s.requireOwner(ctx, userID, groupID)
	if err != nil {
		return nil, err
	}

	if update.Name == nil && update.Emoji == nil {
		return group, nil
	}
	if err := s.repo.UpdateGroup(ctx, groupID, update); err != nil {
		return nil, err
	}

	if update.Name != nil {
		group.Name = *update.Name
	}
	if update.Emoji != nil {
		group.Emoji = *update.Emoji
	}
	s.invalidateMembers(ctx, groupID)
	return group, nil
}

func (s *Service) DeleteGroup(ctx context.Context, userID, groupID string) error {
	if _, err := s.requireOwner(ctx, userID, groupID); err != nil {
		return err
	}

	members, err := s.repo.ListMembers(ctx, groupID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteGroup(ctx, groupID); err != nil {
		return err
	}
	s.cache.DeleteByUserID(memberIDs(members)...)
	return nil
}

// LeaveGroup removes the caller. An owner leaving hands ownership to the
// earliest-joined remaining member; a sole owner takes the group down.
func (s *Service) LeaveGroup(ctx context.Context, userID, groupID string) error {
	var affected []string
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		if _, err := tx.LockGroup(ctx, groupID); err != nil {
			return err
		}
		member, err := tx.GetMember(ctx, groupID, userID)
		if err != nil {
			if errors.Is(err, ErrMemberNotFound) {
				return ErrGroupNotFound
			}
			return err
		}

		members, err := tx.ListMembers(ctx, groupID)
		if err != nil {
			return err
		}
		affected = memberIDs(members)

		if member.Role != RoleOwner {
			return tx.DeleteMember(ctx, groupID, userID)
		}

		var successor *GroupMember
		for i := range members {
			if members[i].UserID == userID {
				continue
			}
			if successor == nil || members[i].JoinedAt.Before(successor.JoinedAt) {
				successor = &members[i]
			}
		}

		if successor == nil {
			return tx.DeleteGroup(ctx, groupID)
		}

		if err := tx.UpdateMemberRole(ctx, groupID, successor.UserID, RoleOwner); err != nil {
			return err
		}
		if err := tx.UpdateGroupOwner(ctx, groupID, successor.UserID); err != nil {
			return err
		}
		return tx.DeleteMember(ctx, groupID, userID)
	})
	if err != nil {
		return err
	}

	s.cache.DeleteByUserID(affected...)
	return nil
}

func (s *Service) RemoveMember(ctx context.Context, actorID, groupID, memberID string) error {
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		group, err := tx.LockGroup(ctx, groupID)
		if err != nil {
			return err
		}
		if _, err := tx.GetMember(ctx, groupID, actorID); err != nil {
			if errors.Is(err, ErrMemberNotFound) {
				return ErrGroupNotFound
			}
			return err
		}
		if group.OwnerID != actorID {
			return ErrNotOwner
		}
		if memberID == group.OwnerID {
			return ErrCannotRemoveOwner
		}
		if _, err := tx.GetMember(ctx, groupID, memberID); err != nil {
			return err
		}
		return tx.DeleteMember(ctx, groupID, memberID)
	})
	if err != nil {
		return err
	}

	s.invalidateMembers(ctx, groupID)
	s.cache.DeleteByUserID(memberID)
	return nil
}

func (s *Service) ListMembers(ctx context.Context, userID, groupID string) ([]MemberProfile, error) {
	if err := s.RequireMember(ctx, groupID, userID); err != nil {
		return nil, err
	}
	return s.repo.ListMembersWithProfiles(ctx, groupID)
}

// CreateInvite issues a single-use code for the group. Any member may invite
// while the group has a free slot.
func (s *Service) CreateInvite(ctx context.Context, userID, groupID string, phone *string) (*Invite, error) {
	if err := s.RequireMember(ctx, groupID, userID); err != nil {
		return nil, err
	}

	count, err := s.repo.CountMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if count >= MaxMembers {
		return nil, ErrGroupFull
	}

	code, err := generateUniqueCode(ctx, s.repo)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	invite := Invite{
		ID:        uuid.NewString(),
		Code:      code,
		GroupID:   groupID,
		InviterID: userID,
		Phone:     phone,
		Status:    InviteStatusPending,
		ExpiresAt: now.Add(inviteTTL),
		CreatedAt: now,
	}
	if err := s.repo.CreateInvite(ctx, &invite); err != nil {
		return nil, err
	}
	return &invite, nil
}

func (s *Service) ListPendingInvites(ctx context.Context, userID, groupID string) ([]Invite, error) {
	if err := s.RequireMember(ctx, groupID, userID); err != nil {
		return nil, err
	}
	return s.repo.ListPendingInvites(ctx, groupID, s.now().UTC())
}

func (s *Service) PreviewInvite(ctx context.Context, code string) (*InvitePreview, error) {
	invite, err := s.repo.GetInviteByCode(ctx, normalizeCode(code))
	if err != nil {
		return nil, err
	}
	if err := s.checkInviteUsable(invite); err != nil {
		return nil, err
	}

	group, err := s.repo.GetGroup(ctx, invite.GroupID)
	if err != nil {
		return nil, err
	}
	members, err := s.repo.ListMembersWithProfiles(ctx, invite.GroupID)
	if err != nil {
		return nil, err
	}

	preview := InvitePreview{
		Invite:      *invite,
		GroupName:   group.Name,
		GroupEmoji:  group.Emoji,
		MemberCount: int64(len(members)),
	}
	for _, member := range members {
		if member.UserID == invite.InviterID {
			preview.InviterName = member.DisplayName
		}
	}
	return &preview, nil
}

// AcceptInvite joins the caller to the invite's group and consumes the code.
func (s *Service) AcceptInvite(ctx context.Context, userID, code string) (*Group, error) {
	code = normalizeCode(code)
	if code == "" {
		return nil, &ValidationError{Field: "code", Message: "is required"}
	}

	var result Group
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		invite, err := tx.GetInviteByCode(ctx, code)
		if err != nil {
			return err
		}
		if err := s.checkInviteUsable(invite); err != nil {
			return err
		}

		group, err := tx.LockGroup(ctx, invite.GroupID)
		if err != nil {
			return err
		}

		if _, err := tx.GetMember(ctx, group.ID, userID); err == nil {
			return ErrAlreadyMember
		} else if !errors.Is(err, ErrMemberNotFound) {
			return err
		}

		count, err := tx.CountMembers(ctx, group.ID)
		if err != nil {
			return err
		}
		if count >= MaxMembers {
			return ErrGroupFull
		}

		if err := tx.AddMember(ctx, &GroupMember{GroupID: group.ID, UserID: userID, Role: RoleMember}); err != nil {
			return err
		}
		if err := tx.MarkInviteAccepted(ctx, invite.ID, userID, s.now().UTC()); err != nil {
			return err
		}

		result = *group
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateMembers(ctx, result.ID)
	return &result, nil
}

// ShareMessage is the text the inviter pastes into a message to a friend.
func ShareMessage(group *Group, invite *Invite) string {
	return fmt.Sprintf("Join my Colors group %s %s: colors://invite/%s", group.Emoji, group.Name, invite.Code)
}

func (s *Service) checkInviteUsable(invite *Invite) error {
	if invite.Status != InviteStatusPending {
		return ErrInviteUsed
	}
	if !s.now().Before(invite.ExpiresAt) {
		return ErrInviteExpired
	}
	return nil
}

func (s *Service) requireOwner(ctx context.Context, userID, groupID string) (*Group, error) {
	if err := s.RequireMember(ctx, groupID, userID); err != nil {
		return nil, err
	}
	group, err := s.repo.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.OwnerID != userID {
		return nil, ErrNotOwner
	}
	return group, nil
}

func (s *Service) invalidateMembers(ctx context.Context, groupID string) {
	members, err := s.repo.ListMembers(ctx, groupID)
	if err != nil {
		s.cache.Clear()
		return
	}
	s.cache.DeleteByUserID(memberIDs(members)...)
}

func memberIDs(members []GroupMember) []string {
	ids := make([]string, 0, len(members))
	for _, member := range members {
		ids = append(ids, member.UserID)
	}
	return ids
}

func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", &ValidationError{Field: "name", Message: "is required"}
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return "", &ValidationError{Field: "name", Message: fmt.Sprintf("must be at most %d characters", maxNameLength)}
	}
	return name, nil
}

func normalizeEmoji(emoji string) (string, error) {
	emoji = strings.TrimSpace(emoji)
	if emoji == "" {
		return DefaultEmoji, nil
	}
	if utf8.RuneCountInString(emoji) > maxEmojiLength || strings.ContainsAny(emoji, " \t\n") {
		return "", &ValidationError{Field: "emoji", Message: "must be a single emoji"}
	}
	return emoji, nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func generateUniqueCode(ctx context.Context, repo Repository) (string, error) {
	for i := 0; i < inviteCodeAttempts; i++ {
		code, err := generateCode(inviteCodeLength)
		if err != nil {
			return "", err
		}
		taken, err := repo.IsCodeTaken(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", ErrCodeGenerationFailed
}

func generateCode(length int) (string, error) {
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	max := big.NewInt(int64(len(alphabet)))

	var builder strings.Builder
	builder.Grow(length)

	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		builder.WriteByte(alphabet[n.Int64()])
	}

	return builder.String(), nil
}
