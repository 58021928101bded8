package nudge

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"colors-app-go/internal/push/expo"
	"colors-app-go/pkg/logger"
)

const (
	RunAssign   = "assign"
	RunDispatch = "dispatch"

	OutcomeAssigned      = "assigned"
	OutcomeNoSlot        = "no_slot"
	OutcomeSent          = "sent"
	OutcomeSkippedLogged = "skipped_logged"
	OutcomeNoDevices     = "no_devices"
	OutcomeLocked        = "locked"
	OutcomeNotDue        = "not_due"
	OutcomeFailed        = "failed"

	defaultLockTTL = 26 * time.Hour
)

var DefaultWindow = Window{Start: 10 * 60, End: 20 * 60}

var defaultMessages = []string{
	"How are you feeling today? Pick your color 🎨",
	"Your friends want to know your color today.",
	"Take ten seconds: what color are you right now?",
	"One word for today. What is it?",
}

// Chooser picks an index in [0, n). *rand.Rand from math/rand/v2 satisfies it.
type Chooser interface {
	IntN(n int) int
}

type Service struct {
	repo     Repository
	feelings FeelingChecker
	pusher   Pusher
	locker   Locker
	log      logger.Logger
	observer Observer

	window   Window
	lockTTL  time.Duration
	messages []string
	now      func() time.Time

	mu      sync.Mutex
	chooser Chooser
}

type Option func(*Service)

func WithWindow(window Window) Option {
	return func(s *Service) {
		if window.Start != window.End {
			s.window = window
		}
	}
}

func WithLockTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.lockTTL = ttl
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func WithChooser(chooser Chooser) Option {
	return func(s *Service) {
		if chooser != nil {
			s.chooser = chooser
		}
	}
}

func WithObserver(observer Observer) Option {
	return func(s *Service) {
		if observer != nil {
			s.observer = observer
		}
	}
}

func WithMessages(messages []string) Option {
	return func(s *Service) {
		if len(messages) > 0 {
			s.messages = messages
		}
	}
}

func NewService(repo Repository, feelings FeelingChecker, pusher Pusher, locker Locker, log logger.Logger, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		feelings: feelings,
		pusher:   pusher,
		locker:   locker,
		log:      log,
		observer: noopObserver{},
		window:   DefaultWindow,
		lockTTL:  defaultLockTTL,
		messages: defaultMessages,
		now:      time.Now,
		chooser:  rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterDevice stores a push token for the user and makes sure the user has
// notification settings. timezone seeds new settings; it is ignored when the
// user already has a row.
func (s *Service) RegisterDevice(ctx context.Context, userID, token, platform, timezone string) (*Device, error) {
	token = strings.TrimSpace(token)
	if !expo.IsExpoToken(token) {
		return nil, &ValidationError{Field: "token", Message: "must be an Expo push token"}
	}
	platform = strings.ToLower(strings.TrimSpace(platform))
	if platform != PlatformIOS && platform != PlatformAndroid {
		return nil, &ValidationError{Field: "platform", Message: "must be ios or android"}
	}

	settings := DefaultSettings(userID)
	if tz := strings.TrimSpace(timezone); tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			return nil, &ValidationError{Field: "timezone", Message: "unknown timezone"}
		}
		settings.Timezone = tz
	}

	now := s.now().UTC()
	device := Device{
		ID:        uuid.NewString(),
		UserID:    userID,
		Token:     token,
		Platform:  platform,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.UpsertDevice(ctx, &device); err != nil {
		return nil, err
	}
	if err := s.repo.EnsureSettings(ctx, &settings); err != nil {
		return nil, err
	}
	return &device, nil
}

func (s *Service) UnregisterDevice(ctx context.Context, userID, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return &ValidationError{Field: "token", Message: "is required"}
	}
	return s.repo.DeleteDevice(ctx, userID, token)
}

func (s *Service) ListDevices(ctx context.Context, userID string) ([]Device, error) {
	return s.repo.ListDevices(ctx, userID)
}

// GetSettings returns the user's settings, or defaults if none are stored.
func (s *Service) GetSettings(ctx context.Context, userID string) (*Settings, error) {
	settings, err := s.repo.GetSettings(ctx, userID)
	if errors.Is(err, ErrSettingsNotFound) {
		defaults := DefaultSettings(userID)
		return &defaults, nil
	}
	if err != nil {
		return nil, err
	}
	return settings, nil
}

// UpdateSettings applies the changes and clears today's schedule so the next
// assignment run picks a time under the new rules. An empty quiet value clears
// quiet hours; both ends must be given together.
func (s *Service) UpdateSettings(ctx context.Context, userID string, update SettingsUpdate) (*Settings, error) {
	settings, err := s.GetSettings(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.Enabled != nil {
		settings.Enabled = *update.Enabled
	}
	if update.Timezone != nil {
		tz := strings.TrimSpace(*update.Timezone)
		if _, err := time.LoadLocation(tz); err != nil || tz == "" {
			return nil, &ValidationError{Field: "timezone", Message: "unknown timezone"}
		}
		settings.Timezone = tz
	}
	if update.QuietStart != nil || update.QuietEnd != nil {
		start, end, err := normalizeQuiet(update.QuietStart, update.QuietEnd)
		if err != nil {
			return nil, err
		}
		settings.QuietStart = start
		settings.QuietEnd = end
	}

	settings.ScheduledDay = nil
	settings.NextNudgeAt = nil
	settings.UpdatedAt = s.now().UTC()
	if err := s.repo.SaveSettings(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// Location resolves the user's timezone, falling back to UTC.
func (s *Service) Location(ctx context.Context, userID string) (*time.Location, error) {
	settings, err := s.repo.GetSettings(ctx, userID)
	if errors.Is(err, ErrSettingsNotFound) {
		return time.UTC, nil
	}
	if err != nil {
		return nil, err
	}
	return loadLocation(settings.Timezone), nil
}

// AssignDaily gives every enabled user without a schedule for their local
// today a random nudge time inside the window, outside quiet hours and not in
// the past. Users with no minute left get no nudge today.
func (s *Service) AssignDaily(ctx context.Context) (Summary, error) {
	var summary Summary
	noSlot := 0
	now := s.now()

	all, err := s.repo.ListEnabledSettings(ctx)
	if err != nil {
		return summary, err
	}

	for _, settings := range all {
		summary.Considered++
		loc := loadLocation(settings.Timezone)
		today := LocalDay(now, loc)
		if sameDay(settings.ScheduledDay, today) {
			summary.Skipped++
			continue
		}

		local := now.In(loc)
		notBefore := local.Hour()*60 + local.Minute() + 1

		var next *time.Time
		if minute, ok := s.pick(quietWindow(settings), notBefore); ok {
			at := At(today, loc, minute)
			next = &at
		}

		if err := s.repo.SetSchedule(ctx, settings.UserID, today, next); err != nil {
			s.log.InternalError("nudges.assign: save schedule failed", err, "user_id", settings.UserID)
			summary.Failed++
			continue
		}
		if next == nil {
			summary.Skipped++
			noSlot++
			s.log.Debug("nudges.assign: no slot left today", "user_id", settings.UserID)
			continue
		}
		summary.Assigned++
	}

	s.observe(RunAssign, OutcomeAssigned, summary.Assigned)
	s.observe(RunAssign, OutcomeNoSlot, noSlot)
	s.observe(RunAssign, OutcomeFailed, summary.Failed)
	s.log.Info("nudges.assign: done", "considered", summary.Considered, "assigned", summary.Assigned, "skipped", summary.Skipped, "failed", summary.Failed)
	return summary, nil
}

// DispatchDue sends the nudges whose time has come. Users who already logged
// a feeling today are skipped. Every handled user is marked for the day,
// including on delivery failure.
func (s *Service) DispatchDue(ctx context.Context) (Summary, error) {
	var summary Summary
	now := s.now()

	due, err := s.repo.ListDue(ctx, now.UTC())
	if err != nil {
		return summary, err
	}

	outcomes := make(map[string]int)
	for _, settings := range due {
		summary.Considered++
		outcome := s.dispatchOne(ctx, settings, now)
		outcomes[outcome]++
		switch outcome {
		case OutcomeSent:
			summary.Sent++
		case OutcomeFailed:
			summary.Failed++
		default:
			summary.Skipped++
		}
	}

	for outcome, n := range outcomes {
		s.observe(RunDispatch, outcome, n)
	}
	s.log.Info("nudges.dispatch: done", "considered", summary.Considered, "sent", summary.Sent, "skipped", summary.Skipped, "failed", summary.Failed)
	return summary, nil
}

func (s *Service) dispatchOne(ctx context.Context, settings Settings, now time.Time) string {
	userID := settings.UserID
	loc := loadLocation(settings.Timezone)
	today := LocalDay(now, loc)

	// A schedule from an earlier day is stale; the next assignment run replaces it.
	if !sameDay(settings.ScheduledDay, today) || sameDay(settings.LastSentDay, today) {
		return OutcomeNotDue
	}

	logged, err := s.feelings.HasLoggedOn(ctx, userID, today)
	if err != nil {
		s.log.InternalError("nudges.dispatch: check feelings failed", err, "user_id", userID)
		return OutcomeFailed
	}
	if logged {
		s.markSent(ctx, userID, today)
		return OutcomeSkippedLogged
	}

	devices, err := s.repo.ListDevices(ctx, userID)
	if err != nil {
		s.log.InternalError("nudges.dispatch: list devices failed", err, "user_id", userID)
		return OutcomeFailed
	}
	if len(devices) == 0 {
		s.markSent(ctx, userID, today)
		return OutcomeNoDevices
	}

	// The lock is taken only once the push is about to go out, so a failed
	// lookup above leaves the user due for the next run.
	if s.locker != nil {
		acquired, err := s.locker.Acquire(ctx, lockKey(userID, today), s.lockTTL)
		if err != nil {
			s.log.InternalError("nudges.dispatch: acquire lock failed", err, "user_id", userID)
			return OutcomeFailed
		}
		if !acquired {
			return OutcomeLocked
		}
	}

	body := s.message()
	messages := make([]expo.Message, 0, len(devices))
	for _, device := range devices {
		messages = append(messages, expo.Message{
			To:       device.Token,
			Title:    "Colors",
			Body:     body,
			Sound:    "default",
			Priority: "high",
			Data:     map[string]any{"type": "nudge", "day": today.Format("2006-01-02")},
		})
	}

	tickets, err := s.pusher.Send(ctx, messages)
	s.markSent(ctx, userID, today)
	if err != nil {
		s.log.InternalError("nudges.dispatch: push failed", err, "user_id", userID, "devices", len(devices))
		return OutcomeFailed
	}

	delivered := 0
	gone := make([]string, 0)
	for _, ticket := range tickets {
		if ticket.OK() {
			delivered++
			continue
		}
		if ticket.DeviceGone() {
			gone = append(gone, ticket.To)
			continue
		}
		s.log.Warn("nudges.dispatch: push ticket error", "user_id", userID, "error", ticket.Error, "message", ticket.Message)
	}

	if len(gone) > 0 {
		removed, err := s.repo.DeleteDevicesByToken(ctx, gone)
		if err != nil {
			s.log.InternalError("nudges.dispatch: delete stale devices failed", err, "user_id", userID)
		} else {
			s.log.Info("nudges.dispatch: removed unregistered devices", "user_id", userID, "count", removed)
		}
	}

	if delivered == 0 {
		return OutcomeFailed
	}
	return OutcomeSent
}

func (s *Service) markSent(ctx context.Context, userID string, day time.Time) {
	if err := s.repo.MarkSent(ctx, userID, day); err != nil {
		s.log.InternalError("nudges.dispatch: mark sent failed", err, "user_id", userID)
	}
}

func (s *Service) pick(quiet *Window, notBefore int) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return PickMinute(s.window, quiet, notBefore, s.chooser)
}

func (s *Service) message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.messages[s.chooser.IntN(len(s.messages))]
}

func (s *Service) observe(run, outcome string, n int) {
	if n > 0 {
		s.observer.NudgeOutcome(run, outcome, n)
	}
}

func lockKey(userID string, day time.Time) string {
	return fmt.Sprintf("nudge:%s:%s", userID, day.Format("2006-01-02"))
}

func loadLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

func quietWindow(settings Settings) *Window {
	if settings.QuietStart == nil || settings.QuietEnd == nil {
		return nil
	}
	window, err := ParseWindow(*settings.QuietStart, *settings.QuietEnd)
	if err != nil {
		return nil
	}
	return &window
}

func normalizeQuiet(start, end *string) (*string, *string, error) {
	startValue, endValue := "", ""
	if start != nil {
		startValue = strings.TrimSpace(*start)
	}
	if end != nil {
		endValue = strings.TrimSpace(*end)
	}
	if startValue == "" && endValue == "" {
		return nil, nil, nil
	}
	if startValue == "" || endValue == "" {
		return nil, nil, &ValidationError{Field: "quiet_hours", Message: "start and end are both required"}
	}

	startMinute, err := ParseClock(startValue)
	if err != nil || startMinute >= minutesPerDay {
		return nil, nil, &ValidationError{Field: "quiet_start", Message: "must be HH:MM"}
	}
	endMinute, err := ParseClock(endValue)
	if err != nil || endMinute >= minutesPerDay {
		return nil, nil, &ValidationError{Field: "quiet_end", Message: "must be HH:MM"}
	}
	startValue, endValue = FormatClock(startMinute), FormatClock(endMinute)
	return &startValue, &endValue, nil
}
