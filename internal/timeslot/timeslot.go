package timeslot

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// ParseClock converts an "HH:MM" clock string to minutes since midnight.
func ParseClock(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	h, errH := strconv.Atoi(parts[0])
	m, errM := strconv.Atoi(parts[1])
	if errH != nil || errM != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	return h*60 + m, nil
}

// FormatClock renders minutes since midnight as "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Overlaps reports whether the half-open windows [aStart,aEnd) and
// [bStart,bEnd) collide. Times are minutes since midnight on one date;
// an interval ending exactly where another begins does not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}

// WeekdaySet is the set of weekdays a recurring request occupies.
// The schedule convention is Monday=1 through Saturday=6, with Sunday
// accepted as either 0 or 7.
type WeekdaySet map[time.Weekday]bool

// ParseWeekdays builds a WeekdaySet from a comma-separated day list
// such as "1,3,5".
func ParseWeekdays(s string) (WeekdaySet, error) {
	set := make(WeekdaySet)
	if strings.TrimSpace(s) == "" {
		return set, nil
	}
	for _, part := range strings.Split(s, ",") {
		d, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || d < 0 || d > 7 {
			return nil, fmt.Errorf("invalid weekday %q", part)
		}
		set[time.Weekday(d%7)] = true
	}
	return set, nil
}

// FormatWeekdays renders a WeekdaySet back to its comma-separated form,
// ascending, with Sunday as 0.
func FormatWeekdays(set WeekdaySet) string {
	days := make([]int, 0, len(set))
	for d, ok := range set {
		if ok {
			days = append(days, int(d))
		}
	}
	sort.Ints(days)
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, ",")
}

// Expand enumerates, in ascending order, every date in [rangeStart, rangeEnd]
// (inclusive) whose weekday is a member of days. It is a pure function of its
// inputs; an empty set or a reversed range yields nil.
func Expand(rangeStart, rangeEnd time.Time, days WeekdaySet) []time.Time {
	if len(days) == 0 || rangeStart.After(rangeEnd) {
		return nil
	}
	var dates []time.Time
	for d := Midnight(rangeStart); !d.After(Midnight(rangeEnd)); d = d.AddDate(0, 0, 1) {
		if days[d.Weekday()] {
			dates = append(dates, d)
		}
	}
	return dates
}

// Midnight truncates t to its calendar date in UTC.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a "YYYY-MM-DD" calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}

// MinuteOfDay returns t's clock position as minutes since midnight.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}
