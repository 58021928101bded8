package feeling

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"colors-app-go/internal/domain/group"
)

var errNotMember = group.ErrGroupNotFound

type fakeFeelingRepo struct {
	feelings map[string]*Feeling
}

func newFakeFeelingRepo() *fakeFeelingRepo {
	return &fakeFeelingRepo{feelings: make(map[string]*Feeling)}
}

func (r *fakeFeelingRepo) CreateFeeling(ctx context.Context, feeling *Feeling) error {
	for _, existing := range r.feelings {
		if existing.GroupID == feeling.GroupID && existing.UserID == feeling.UserID && existing.Day.Equal(feeling.Day) {
			return ErrAlreadyLoggedToday
		}
	}
	copied := *feeling
	r.feelings[feeling.ID] = &copied
	return nil
}

func (r *fakeFeelingRepo) GetFeeling(ctx context.Context, feelingID string) (*Feeling, error) {
	feeling, ok := r.feelings[feelingID]
	if !ok {
		return nil, ErrFeelingNotFound
	}
	copied := *feeling
	return &copied, nil
}

func (r *fakeFeelingRepo) UpdateFeeling(ctx context.Context, feelingID string, update Update) error {
	feeling, ok := r.feelings[feelingID]
	if !ok {
		return ErrFeelingNotFound
	}
	if update.Color != nil {
		feeling.Color = *update.Color
	}
	if update.Word != nil {
		feeling.Word = *update.Word
	}
	if update.SetReason {
		feeling.Reason = update.Reason
	}
	return nil
}

func (r *fakeFeelingRepo) ExistsForDay(ctx context.Context, groupID, userID string, day time.Time) (bool, error) {
	for _, feeling := range r.feelings {
		if feeling.GroupID == groupID && feeling.UserID == userID && feeling.Day.Equal(day) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeFeelingRepo) ExistsForUserDay(ctx context.Context, userID string, day time.Time) (bool, error) {
	for _, feeling := range r.feelings {
		if feeling.UserID == userID && feeling.Day.Equal(day) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeFeelingRepo) ListByGroupDay(ctx context.Context, groupID string, day time.Time) ([]Feeling, error) {
	result := make([]Feeling, 0)
	for _, feeling := range r.feelings {
		if feeling.GroupID == groupID && feeling.Day.Equal(day) {
			result = append(result, *feeling)
		}
	}
	return result, nil
}

func (r *fakeFeelingRepo) ListHistory(ctx context.Context, groupID, userID string, limit int) ([]Feeling, error) {
	result := make([]Feeling, 0)
	for _, feeling := range r.feelings {
		if feeling.GroupID == groupID && feeling.UserID == userID && len(result) < limit {
			result = append(result, *feeling)
		}
	}
	return result, nil
}

func (r *fakeFeelingRepo) LatestByMember(ctx context.Context, groupID string) ([]Feeling, error) {
	latest := make(map[string]Feeling)
	for _, feeling := range r.feelings {
		if feeling.GroupID != groupID {
			continue
		}
		current, ok := latest[feeling.UserID]
		if !ok || feeling.Day.After(current.Day) {
			latest[feeling.UserID] = *feeling
		}
	}
	result := make([]Feeling, 0, len(latest))
	for _, feeling := range latest {
		result = append(result, feeling)
	}
	return result, nil
}

type fakeMembership map[string]map[string]bool

func (m fakeMembership) RequireMember(ctx context.Context, groupID, userID string) error {
	if m[groupID][userID] {
		return nil
	}
	return errNotMember
}

type fakeLocations map[string]*time.Location

func (l fakeLocations) Location(ctx context.Context, userID string) (*time.Location, error) {
	if loc, ok := l[userID]; ok {
		return loc, nil
	}
	return time.UTC, nil
}

func newTestService(now *time.Time) (*Service, *fakeFeelingRepo) {
	repo := newFakeFeelingRepo()
	members := fakeMembership{
		"g-1": {"user-1": true, "user-2": true},
		"g-2": {"user-1": true},
	}
	tokyo, _ := time.LoadLocation("Asia/Tokyo")
	svc := NewService(repo, members, fakeLocations{"user-2": tokyo})
	svc.SetClock(func() time.Time { return *now })
	return svc, repo
}

func TestLogFeeling(t *testing.T) {
	now := time.Date(2026, 4, 2, 18, 30, 0, 0, time.UTC)
	svc, _ := newTestService(&now)

	feeling, err := svc.Log(context.Background(), LogInput{
		UserID:  "user-1",
		GroupID: "g-1",
		Color:   " Blue ",
		Word:    " Calm ",
		Reason:  "  long walk  ",
	})
	require.NoError(t, err)
	assert.Equal(t, ColorBlue, feeling.Color)
	assert.Equal(t, "calm", feeling.Word)
	require.NotNil(t, feeling.Reason)
	assert.Equal(t, "long walk", *feeling.Reason)
	assert.Equal(t, time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC), feeling.Day)
	assert.Equal(t, now.Add(10*time.Minute), feeling.EditableUntil())
}

func TestLogFeelingOncePerDay(t *testing.T) {
	now := time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC)
	svc, _ := newTestService(&now)

	_, err := svc.Log(context.Background(), LogInput{UserID: "user-1", GroupID: "g-1", Color: "red", Word: "angry"})
	require.NoError(t, err)

	now = now.Add(6 * time.Hour)
	_, err = svc.Log(context.Background(), LogInput{UserID: "user-1", GroupID: "g-1", Color: "green", Word: "better"})
	assert.ErrorIs(t, err, ErrAlreadyLoggedToday)

	_, err = svc.Log(context.Background(), LogInput{UserID: "user-1", GroupID: "g-2", Color: "green", Word: "better"})
	assert.NoError(t, err)

	now = now.Add(12 * time.Hour)
	_, err = svc.Log(context.Background(), LogInput{UserID: "user-1", GroupID: "g-1", Color: "green", Word: "rested"})
	assert.NoError(t, err)
}

func TestLogFeelingUsesLocalDay(t *testing.T) {
	// 20:00 UTC on April 2 is already April 3 in Tokyo.
	now := time.Date(2026, 4, 2, 20, 0, 0, 0, time.UTC)
	svc, _ := newTestService(&now)

	feeling, err := svc.Log(context.Background(), LogInput{UserID: "user-2", GroupID: "g-1", Color: "yellow", Word: "sunny"})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 4, 3, 0, 0, 0, 0, time.UTC), feeling.Day)
}

func TestLogFeelingValidation(t *testing.T) {
	now := time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC)
	svc, _ := newTestService(&now)

	cases := []struct {
		name  string
		input LogInput
		field string
	}{
		{"unknown color", LogInput{Color: "teal", Word: "ok"}, "color"},
		{"missing word", LogInput{Color: "red", Word: " "}, "word"},
		{"two words", LogInput{Color: "red", Word: "so tired"}, "word"},
		{"long word", LogInput{Color: "red", Word: "supercalifragilisticexpialidocious"}, "word"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tc.input.UserID = "user-1"
			tc.input.GroupID = "g-1"
			_, err := svc.Log(context.Background(), tc.input)
			var validation *ValidationError
			require.ErrorAs(t, err, &validation)
			assert.Equal(t, tc.field, validation.Field)
			assert.True(t, IsValidation(err))
		})
	}
}

func TestLogFeelingRequiresMembership(t *testing.T) {
	now := time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC)
	svc, _ := newTestService(&now)

	_, err := svc.Log(context.Background(), LogInput{UserID: "user-2", GroupID: "g-2", Color: "red", Word: "meh"})
	assert.ErrorIs(t, err, errNotMember)
}

func TestUpdateWithinEditWindow(t *testing.T) {
	now := time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC)
	svc, repo := newTestService(&now)

	feeling, err := svc.Log(context.Background(), LogInput{UserID: "user-1", GroupID: "g-1", Color: "red", Word: "grumpy", Reason: "traffic"})
	require.NoError(t, err)

	now = now.Add(9 * time.Minute)
	color := "orange"
	empty := ""
	updated, err := svc.Update(context.Background(), UpdateInput{UserID: "user-1", FeelingID: feeling.ID, Color: &color, Reason: &empty})
	require.NoError(t, err)
	assert.Equal(t, ColorOrange, updated.Color)
	assert.Nil(t, updated.Reason)
	assert.Equal(t, ColorOrange, repo.feelings[feeling.ID].Color)
	assert.Nil(t, repo.feelings[feeling.ID].Reason)

	now = now.Add(2 * time.Minute)
	word := "fine"
	_, err = svc.Update(context.Background(), UpdateInput{UserID: "user-1", FeelingID: feeling.ID, Word: &word})
	assert.ErrorIs(t, err, ErrEditWindowClosed)
}

func TestUpdateOnlyByAuthor(t *testing.T) {
	now := time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC)
	svc, _ := newTestService(&now)

	feeling, err := svc.Log(context.Background(), LogInput{UserID: "user-1", GroupID: "g-1", Color: "red", Word: "grumpy"})
	require.NoError(t, err)

	word := "hijacked"
	_, err = svc.Update(context.Background(), UpdateInput{UserID: "user-2", FeelingID: feeling.ID, Word: &word})
	assert.ErrorIs(t, err, ErrNotAuthor)

	_, err = svc.Update(context.Background(), UpdateInput{UserID: "stranger", FeelingID: feeling.ID, Word: &word})
	assert.ErrorIs(t, err, ErrFeelingNotFound)
}

func TestLogToGroupsReportsPerGroup(t *testing.T) {
	now := time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC)
	svc, _ := newTestService(&now)

	_, err := svc.Log(context.Background(), LogInput{UserID: "user-1", GroupID: "g-2", Color: "red", Word: "meh"})
	require.NoError(t, err)

	results, err := svc.LogToGroups(context.Background(), "user-1", []string{"g-1", "g-2", "g-1", "g-3"}, "blue", "calm", "")
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "g-1", results[0].GroupID)
	assert.NoError(t, results[0].Err)
	assert.NotNil(t, results[0].Feeling)
	assert.ErrorIs(t, results[1].Err, ErrAlreadyLoggedToday)
	assert.ErrorIs(t, results[2].Err, errNotMember)

	_, err = svc.LogToGroups(context.Background(), "user-1", nil, "blue", "calm", "")
	assert.True(t, IsValidation(err))
}

func TestLogToGroupsRejectsOnlyBlankIDs(t *testing.T) {
	now := time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC)
	svc, repo := newTestService(&now)

	results, err := svc.LogToGroups(context.Background(), "user-1", []string{"", "  ", " "}, "blue", "calm", "")
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "group_ids", validation.Field)
	assert.Nil(t, results)
	assert.Empty(t, repo.feelings)
}

type brokenMembership struct {
	err error
}

func (m brokenMembership) RequireMember(ctx context.Context, groupID, userID string) error {
	return m.err
}

func TestUpdateMembershipFailures(t *testing.T) {
	now := time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC)
	svc, repo := newTestService(&now)
	feeling, err := svc.Log(context.Background(), LogInput{UserID: "user-1", GroupID: "g-1", Color: "red", Word: "grumpy"})
	require.NoError(t, err)

	word := "better"
	dbErr := errors.New("connection reset")
	broken := NewService(repo, brokenMembership{err: dbErr}, nil)
	broken.SetClock(func() time.Time { return now })
	_, err = broken.Update(context.Background(), UpdateInput{UserID: "user-1", FeelingID: feeling.ID, Word: &word})
	assert.ErrorIs(t, err, dbErr)
	assert.NotErrorIs(t, err, ErrFeelingNotFound)

	outsider := NewService(repo, brokenMembership{err: group.ErrGroupNotFound}, nil)
	outsider.SetClock(func() time.Time { return now })
	_, err = outsider.Update(context.Background(), UpdateInput{UserID: "user-1", FeelingID: feeling.ID, Word: &word})
	assert.ErrorIs(t, err, ErrFeelingNotFound)
}

func TestUpdateMalformedFeelingID(t *testing.T) {
	now := time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC)
	svc, _ := newTestService(&now)

	word := "better"
	for _, id := range []string{"", "f-1", "not-a-uuid", "1234"} {
		_, err := svc.Update(context.Background(), UpdateInput{UserID: "user-1", FeelingID: id, Word: &word})
		assert.ErrorIs(t, err, ErrFeelingNotFound, id)
	}
}

func TestLatestByMemberAndHasLogged(t *testing.T) {
	now := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	svc, _ := newTestService(&now)

	_, err := svc.Log(context.Background(), LogInput{UserID: "user-1", GroupID: "g-1", Color: "red", Word: "tired"})
	require.NoError(t, err)
	now = now.Add(24 * time.Hour)
	_, err = svc.Log(context.Background(), LogInput{UserID: "user-1", GroupID: "g-1", Color: "green", Word: "rested"})
	require.NoError(t, err)

	latest, err := svc.LatestByMember(context.Background(), "user-2", "g-1")
	require.NoError(t, err)
	require.Contains(t, latest, "user-1")
	assert.Equal(t, ColorGreen, latest["user-1"].Color)

	logged, err := svc.HasLoggedOn(context.Background(), "user-1", time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, logged)

	logged, err = svc.HasLoggedOn(context.Background(), "user-2", time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.False(t, logged)

	today, err := svc.ListToday(context.Background(), "user-1", "g-1")
	require.NoError(t, err)
	require.Len(t, today, 1)
	assert.Equal(t, "rested", today[0].Word)
}

func TestColorsPalette(t *testing.T) {
	for _, color := range Colors() {
		assert.True(t, color.Valid())
		assert.NotEmpty(t, color.Hex())
	}
	parsed, err := parseColor("GREY")
	require.NoError(t, err)
	assert.Equal(t, ColorGray, parsed)
}
