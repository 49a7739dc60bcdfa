package ics

import (
	"strings"
	"time"

	"axis/internal/model"
)

// stamp is the normalized form of one DTSTART/DTEND token.
type stamp struct {
	Date string // YYYY-MM-DD in the display timezone
	Time string // HH:MM, 24-hour, zero padded
	Day  string // two-letter weekday code
	Unix int64  // epoch millis; internal sort key, never exposed
}

const (
	layoutUTC      = "20060102T150405Z"
	layoutFloating = "20060102T150405"
	layoutDate     = "20060102"
)

// normalizeStamp parses a raw date-time token into the display timezone.
//
// A token with the trailing Z marker is a UTC wall clock and is converted
// into loc explicitly; the ambient environment timezone is never consulted,
// so the same feed normalizes identically wherever the import runs. A token
// without the marker is taken verbatim as wall clock in loc. A date-only
// token gets a 00:00 time.
func normalizeStamp(raw string, loc *time.Location) (stamp, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return stamp{}, false
	}
	if loc == nil {
		loc = time.UTC
	}

	var (
		t   time.Time
		err error
	)
	switch {
	case strings.HasSuffix(raw, "Z"):
		t, err = time.Parse(layoutUTC, raw)
		if err == nil {
			t = t.In(loc)
		}
	case strings.ContainsRune(raw, 'T'):
		t, err = time.ParseInLocation(layoutFloating, raw, loc)
	default:
		t, err = time.ParseInLocation(layoutDate, raw, loc)
	}
	if err != nil {
		return stamp{}, false
	}

	return stamp{
		Date: t.Format("2006-01-02"),
		Time: t.Format("15:04"),
		Day:  model.DayCode(t.Weekday()),
		Unix: t.UnixMilli(),
	}, true
}
