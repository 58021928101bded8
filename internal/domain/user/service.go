package user

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"
)

const maxDisplayNameLength = 40

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// UpsertFromAuth records the authenticated identity. Supabase phone auth
// reports numbers without the leading "+", so both forms are accepted.
func (s *Service) UpsertFromAuth(ctx context.Context, userID, phone string) error {
	if userID == "" {
		return fmt.Errorf("user id is required")
	}

	profile := Profile{UserID: userID}
	if phone = strings.TrimSpace(phone); phone != "" {
		if !strings.HasPrefix(phone, "+") && !strings.HasPrefix(phone, "00") {
			phone = "+" + phone
		}
		normalized, err := NormalizePhone(phone)
		if err != nil {
			return err
		}
		profile.Phone = &normalized
	}

	return s.repo.UpsertIdentity(ctx, &profile)
}

func (s *Service) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	return s.repo.GetProfile(ctx, userID)
}

func (s *Service) GetProfiles(ctx context.Context, userIDs []string) (map[string]Profile, error) {
	if len(userIDs) == 0 {
		return map[string]Profile{}, nil
	}
	return s.repo.GetProfiles(ctx, userIDs)
}

func (s *Service) UpdateProfile(ctx context.Context, userID string, input UpdateInput) (*Profile, error) {
	if input.DisplayName != nil {
		name := strings.TrimSpace(*input.DisplayName)
		if name == "" {
			return nil, &ValidationError{Field: "display_name", Message: "is required"}
		}
		if utf8.RuneCountInString(name) > maxDisplayNameLength {
			return nil, &ValidationError{Field: "display_name", Message: fmt.Sprintf("must be at most %d characters", maxDisplayNameLength)}
		}
		input.DisplayName = &name
	}
	if input.AvatarKey != nil {
		key := strings.TrimSpace(*input.AvatarKey)
		input.AvatarKey = &key
	}

	if input.DisplayName == nil && input.AvatarKey == nil {
		return s.repo.GetProfile(ctx, userID)
	}

	if err := s.repo.UpdateProfile(ctx, userID, input); err != nil {
		return nil, err
	}
	return s.repo.GetProfile(ctx, userID)
}
