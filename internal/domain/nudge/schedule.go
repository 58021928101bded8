package nudge

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const minutesPerDay = 24 * 60

// Window is a span of local minutes since midnight, [Start, End). A window
// with Start > End wraps past midnight; Start == End is empty.
type Window struct {
	Start int
	End   int
}

func (w Window) Contains(minute int) bool {
	switch {
	case w.Start == w.End:
		return false
	case w.Start < w.End:
		return minute >= w.Start && minute < w.End
	default:
		return minute >= w.Start || minute < w.End
	}
}

// ParseWindow parses two "HH:MM" clock values.
func ParseWindow(start, end string) (Window, error) {
	s, err := ParseClock(start)
	if err != nil {
		return Window{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return Window{}, err
	}
	return Window{Start: s, End: e}, nil
}

// ParseClock converts "HH:MM" to minutes since midnight. "24:00" is accepted
// as the end of the day.
func ParseClock(value string) (int, error) {
	hours, minutes, ok := strings.Cut(strings.TrimSpace(value), ":")
	if !ok || len(hours) == 0 || len(hours) > 2 || len(minutes) != 2 {
		return 0, fmt.Errorf("invalid clock value %q", value)
	}
	h, err := strconv.Atoi(hours)
	if err != nil {
		return 0, fmt.Errorf("invalid clock value %q", value)
	}
	m, err := strconv.Atoi(minutes)
	if err != nil {
		return 0, fmt.Errorf("invalid clock value %q", value)
	}
	if h == 24 && m == 0 {
		return minutesPerDay, nil
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid clock value %q", value)
	}
	return h*60 + m, nil
}

func FormatClock(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}

// PickMinute draws a minute uniformly from window minus quiet, never earlier
// than notBefore. ok is false when no minute is left.
func PickMinute(window Window, quiet *Window, notBefore int, chooser Chooser) (int, bool) {
	candidates := make([]int, 0, minutesPerDay)
	for minute := 0; minute < minutesPerDay; minute++ {
		if minute < notBefore || !window.Contains(minute) {
			continue
		}
		if quiet != nil && quiet.Contains(minute) {
			continue
		}
		candidates = append(candidates, minute)
	}
	if len(candidates) == 0 {
		return 0, false
	}
	return candidates[chooser.IntN(len(candidates))], true
}

// LocalDay returns t's calendar day in loc as a UTC-midnight date.
func LocalDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// At returns the instant of minute on the local calendar day.
func At(day time.Time, loc *time.Location, minute int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), minute/60, minute%60, 0, 0, loc).UTC()
}

func sameDay(day *time.Time, other time.Time) bool {
	if day == nil {
		return false
	}
	return day.Year() == other.Year() && day.Month() == other.Month() && day.Day() == other.Day()
}
