package core

import (
	"strings"
	"time"
)

// ISODate is the layout used for stored dates and dedup markers.
const ISODate = "2006-01-02"

// DateFormats are tried in order; the first strict match wins.
var DateFormats = []string{
	ISODate,      // yyyy-MM-dd
	"02-01-2006", // dd-MM-yyyy
	"02/01/2006", // dd/MM/yyyy
}

// entry dates may carry a time of day after the date part
var timeSuffixes = []string{"", " 15:04", " 15:04:05"}

// DefaultZoneName is the canonical reference timezone for day boundaries.
const DefaultZoneName = "Asia/Jakarta"

// LoadZone resolves name, falling back to a fixed UTC+7 zone when the tz
// database is unavailable. Asia/Jakarta has had no DST since 1964.
func LoadZone(name string) *time.Location {
	if name == "" {
		name = DefaultZoneName
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone("WIB", 7*60*60)
	}
	return loc
}

// ParseDate parses a calendar date in one of DateFormats. The result is
// midnight UTC of that date; ok is false when no format matches.
func ParseDate(text string) (date time.Time, ok bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, false
	}
	for _, layout := range DateFormats {
		if t, err := time.Parse(layout, text); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseEntryDate is ParseDate that also tolerates a trailing time of day,
// which ledger rows carry once their creation time has been backfilled.
func ParseEntryDate(text string) (date time.Time, ok bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, false
	}
	for _, layout := range DateFormats {
		for _, suffix := range timeSuffixes {
			if t, err := time.Parse(layout+suffix, text); err == nil {
				return CalendarDate(t), true
			}
		}
	}
	return time.Time{}, false
}

// NormalizeDate rewrites a parseable date to yyyy-MM-dd, keeping any
// time-of-day suffix. Unparseable input is returned unchanged.
func NormalizeDate(text string) string {
	trimmed := strings.TrimSpace(text)
	for _, layout := range DateFormats {
		for _, suffix := range timeSuffixes {
			t, err := time.Parse(layout+suffix, trimmed)
			if err != nil {
				continue
			}
			if suffix == "" {
				return t.Format(ISODate)
			}
			return t.Format(ISODate + suffix)
		}
	}
	return text
}

// CalendarDate drops the time of day and zone, keeping the wall-clock date.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns the current calendar date in loc.
func Today(now time.Time, loc *time.Location) time.Time {
	return CalendarDate(now.In(loc))
}

// DaysBetween counts calendar days from a to b; negative when b is earlier.
func DaysBetween(a, b time.Time) int {
	ca, cb := CalendarDate(a), CalendarDate(b)
	return int(cb.Sub(ca).Hours() / 24)
}
