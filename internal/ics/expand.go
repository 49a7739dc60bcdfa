package ics

import (
	"github.com/teambition/rrule-go"

	appLog "axis/internal/log"
	"axis/internal/model"
)

// weekdayCodes maps an RRULE to the set of grid weekday codes it meets on.
//
// The timetable is a weekly template: a class recurring every Monday yields
// exactly one MO slot, never one slot per future date, so the rule is not
// expanded into occurrence instances. Only FREQ=WEEKLY rules are
// recognized. Under the strict policy, a rule that fails to parse, carries
// a non-weekly frequency, or uses ordinal BYDAY tokens (e.g. 2MO)
// invalidates the whole event. SA/SU are valid BYDAY tokens but fall
// outside the five-day grid and contribute no slot.
//
// When the rule has no BYDAY list, the DTSTART weekday (fallback) stands
// in for it.
func weekdayCodes(raw string, fallback string) ([]string, bool) {
	opt, err := rrule.StrToROption(raw)
	if err != nil {
		appLog.Debug("rrule rejected", "rrule", raw, "reason", err)
		return nil, false
	}
	if opt.Freq != rrule.WEEKLY {
		appLog.Debug("rrule rejected: not weekly", "rrule", raw)
		return nil, false
	}

	if len(opt.Byweekday) == 0 {
		if !model.IsGridDay(fallback) {
			return nil, true
		}
		return []string{fallback}, true
	}

	days := make([]string, 0, len(opt.Byweekday))
	seen := make(map[string]bool, len(opt.Byweekday))
	for _, wd := range opt.Byweekday {
		if wd.N() != 0 {
			// Ordinal weekdays never describe a weekly class slot.
			return nil, false
		}
		code := wd.String()
		if !model.IsGridDay(code) || seen[code] {
			continue
		}
		seen[code] = true
		days = append(days, code)
	}
	return days, true
}
