package utils

import (
	"fmt"
	"strings"
	"time"
)

const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
)

// ReferenceZone returns a fixed zone for the given UTC offset, named the way
// punch terminals label it (e.g. "GMT+8").
func ReferenceZone(offset time.Duration) *time.Location {
	secs := int(offset / time.Second)
	hours := secs / 3600
	mins := (secs % 3600) / 60
	if mins < 0 {
		mins = -mins
	}

	name := fmt.Sprintf("GMT%+d", hours)
	if mins != 0 {
		name = fmt.Sprintf("GMT%+d:%02d", hours, mins)
	}
	return time.FixedZone(name, secs)
}

// DateOnly truncates t to midnight of its calendar day in loc.
func DateOnly(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// ParseDate parses "YYYY-MM-DD" as midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(s), loc)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	DateTimeLayout,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
}

// ParseTimestamp accepts ISO8601 with or without offset. Timestamps without an
// offset are read as wall-clock time in loc. The result is always in loc.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.In(loc), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// Clock is a time of day without date or zone.
type Clock struct {
	Hour   int
	Minute int
	Second int
}

// ParseClock parses "HH:MM" or "HH:MM:SS".
func ParseClock(s string) (Clock, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return Clock{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}, nil
		}
	}
	return Clock{}, fmt.Errorf("invalid time of day %q, use HH:MM or HH:MM:SS", s)
}

// On places the clock on the calendar day of t, in t's location.
func (c Clock) On(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), c.Hour, c.Minute, c.Second, 0, t.Location())
}

// Before reports whether c is strictly earlier in the day than o.
func (c Clock) Before(o Clock) bool {
	return c.seconds() < o.seconds()
}

func (c Clock) seconds() int {
	return c.Hour*3600 + c.Minute*60 + c.Second
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", c.Hour, c.Minute, c.Second)
}

var weekdayAbbrev = [...]string{"sun", "mon", "tue", "wed", "thu", "fri", "sat"}

// WeekdayAbbrev returns the lowercase three-letter weekday of t.
func WeekdayAbbrev(t time.Time) string {
	return weekdayAbbrev[t.Weekday()]
}

// MinutesBetween returns (to - from) in whole minutes, truncated toward zero.
func MinutesBetween(from, to time.Time) int {
	return int(to.Sub(from) / time.Minute)
}

// DateRange returns every date from start to end inclusive as YYYY-MM-DD.
func DateRange(start, end time.Time) []string {
	var dates []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(DateLayout))
	}
	return dates
}
