package feeling

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"

	"colors-app-go/internal/domain/group"
)

const (
	maxWordLength   = 24
	maxReasonLength = 280

	defaultHistoryLimit = 30
	maxHistoryLimit     = 100
)

type Service struct {
	repo      Repository
	members   Membership
	locations Locations
	now       func() time.Time
}

func NewService(repo Repository, members Membership, locations Locations) *Service {
	return &Service{
		repo:      repo,
		members:   members,
		locations: locations,
		now:       time.Now,
	}
}

// SetClock replaces the time source; tests use it to walk across the edit window.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Today returns the user's current local calendar day as a UTC-midnight date.
func (s *Service) Today(ctx context.Context, userID string) (time.Time, error) {
	loc := time.UTC
	if s.locations != nil {
		resolved, err := s.locations.Location(ctx, userID)
		if err != nil {
			return time.Time{}, err
		}
		if resolved != nil {
			loc = resolved
		}
	}
	return DayOf(s.now(), loc), nil
}

// DayOf truncates t to its calendar day in loc, expressed as midnight UTC so it
// compares equal to DATE values read back from the database.
func DayOf(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *Service) Log(ctx context.Context, input LogInput) (*Feeling, error) {
	color, word, reason, err := validate(input.Color, input.Word, input.Reason)
	if err != nil {
		return nil, err
	}

	if err := s.members.RequireMember(ctx, input.GroupID, input.UserID); err != nil {
		return nil, err
	}

	day, err := s.Today(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsForDay(ctx, input.GroupID, input.UserID, day)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyLoggedToday
	}

	now := s.now().UTC()
	feeling := Feeling{
		ID:        uuid.NewString(),
		GroupID:   input.GroupID,
		UserID:    input.UserID,
		Day:       day,
		Color:     color,
		Word:      word,
		Reason:    reason,
		CreatedAt: now,
		UpdatedAt: now,
	}
	// A concurrent insert for the same day still fails on the unique
	// constraint; the repository maps that to ErrAlreadyLoggedToday.
	if err := s.repo.CreateFeeling(ctx, &feeling); err != nil {
		return nil, err
	}
	return &feeling, nil
}

// LogToGroups shares one feeling with several groups. Each group succeeds or
// fails on its own; validation errors fail the whole call up front.
func (s *Service) LogToGroups(ctx context.Context, userID string, groupIDs []string, color, word, reason string) ([]GroupResult, error) {
	if _, _, _, err := validate(color, word, reason); err != nil {
		return nil, err
	}
	if len(groupIDs) == 0 {
		return nil, &ValidationError{Field: "group_ids", Message: "at least one group is required"}
	}

	seen := make(map[string]struct{}, len(groupIDs))
	results := make([]GroupResult, 0, len(groupIDs))
	for _, groupID := range groupIDs {
		groupID = strings.TrimSpace(groupID)
		if groupID == "" {
			continue
		}
		if _, ok := seen[groupID]; ok {
			continue
		}
		seen[groupID] = struct{}{}

		feeling, err := s.Log(ctx, LogInput{UserID: userID, GroupID: groupID, Color: color, Word: word, Reason: reason})
		results = append(results, GroupResult{GroupID: groupID, Feeling: feeling, Err: err})
	}
	if len(results) == 0 {
		return nil, &ValidationError{Field: "group_ids", Message: "at least one group is required"}
	}
	return results, nil
}

func (s *Service) Update(ctx context.Context, input UpdateInput) (*Feeling, error) {
	if uuid.Validate(input.FeelingID) != nil {
		return nil, ErrFeelingNotFound
	}
	feeling, err := s.repo.GetFeeling(ctx, input.FeelingID)
	if err != nil {
		return nil, err
	}
	// Outsiders see the same not-found as for a missing feeling.
	if err := s.members.RequireMember(ctx, feeling.GroupID, input.UserID); err != nil {
		if errors.Is(err, group.ErrGroupNotFound) {
			return nil, ErrFeelingNotFound
		}
		return nil, err
	}
	if feeling.UserID != input.UserID {
		return nil, ErrNotAuthor
	}
	if s.now().After(feeling.EditableUntil()) {
		return nil, ErrEditWindowClosed
	}

	var update Update
	if input.Color != nil {
		color, err := parseColor(*input.Color)
		if err != nil {
			return nil, err
		}
		update.Color = &color
		feeling.Color = color
	}
	if input.Word != nil {
		word, err := normalizeWord(*input.Word)
		if err != nil {
			return nil, err
		}
		update.Word = &word
		feeling.Word = word
	}
	if input.Reason != nil {
		reason, err := normalizeReason(*input.Reason)
		if err != nil {
			return nil, err
		}
		update.Reason = reason
		update.SetReason = true
		feeling.Reason = reason
	}

	if update.Color == nil && update.Word == nil && !update.SetReason {
		return feeling, nil
	}

	if err := s.repo.UpdateFeeling(ctx, feeling.ID, update); err != nil {
		return nil, err
	}
	feeling.UpdatedAt = s.now().UTC()
	return feeling, nil
}

// ListToday returns the group's feelings for the viewer's local day.
func (s *Service) ListToday(ctx context.Context, userID, groupID string) ([]Feeling, error) {
	if err := s.members.RequireMember(ctx, groupID, userID); err != nil {
		return nil, err
	}
	day, err := s.Today(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByGroupDay(ctx, groupID, day)
}

func (s *Service) History(ctx context.Context, viewerID, groupID, memberID string, limit int) ([]Feeling, error) {
	if err := s.members.RequireMember(ctx, groupID, viewerID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	return s.repo.ListHistory(ctx, groupID, memberID, limit)
}

// LatestByMember maps each member to their most recent feeling in the group.
func (s *Service) LatestByMember(ctx context.Context, userID, groupID string) (map[string]Feeling, error) {
	if err := s.members.RequireMember(ctx, groupID, userID); err != nil {
		return nil, err
	}
	feelings, err := s.repo.LatestByMember(ctx, groupID)
	if err != nil {
		return nil, err
	}
	result := make(map[string]Feeling, len(feelings))
	for _, feeling := range feelings {
		result[feeling.UserID] = feeling
	}
	return result, nil
}

// HasLoggedOn reports whether the user logged a feeling in any group on day.
func (s *Service) HasLoggedOn(ctx context.Context, userID string, day time.Time) (bool, error) {
	return s.repo.ExistsForUserDay(ctx, userID, day)
}

func validate(color, word, reason string) (Color, string, *string, error) {
	parsedColor, err := parseColor(color)
	if err != nil {
		return "", "", nil, err
	}
	normalizedWord, err := normalizeWord(word)
	if err != nil {
		return "", "", nil, err
	}
	normalizedReason, err := normalizeReason(reason)
	if err != nil {
		return "", "", nil, err
	}
	return parsedColor, normalizedWord, normalizedReason, nil
}

func parseColor(value string) (Color, error) {
	color := Color(strings.ToLower(strings.TrimSpace(value)))
	if color == "grey" {
		color = ColorGray
	}
	if !color.Valid() {
		return "", &ValidationError{Field: "color", Message: fmt.Sprintf("unknown color %q", value)}
	}
	return color, nil
}

func normalizeWord(value string) (string, error) {
	word := strings.ToLower(strings.TrimSpace(value))
	if word == "" {
		return "", &ValidationError{Field: "word", Message: "is required"}
	}
	if utf8.RuneCountInString(word) > maxWordLength {
		return "", &ValidationError{Field: "word", Message: fmt.Sprintf("must be at most %d characters", maxWordLength)}
	}
	for _, r := range word {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '\'' {
			continue
		}
		return "", &ValidationError{Field: "word", Message: "must be a single word"}
	}
	return word, nil
}

func normalizeReason(value string) (*string, error) {
	reason := strings.TrimSpace(value)
	if reason == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(reason) > maxReasonLength {
		return nil, &ValidationError{Field: "reason", Message: fmt.Sprintf("must be at most %d characters", maxReasonLength)}
	}
	return &reason, nil
}

// IsValidation reports whether err is an input validation failure.
func IsValidation(err error) bool {
	var validation *ValidationError
	return errors.As(err, &validation)
}
