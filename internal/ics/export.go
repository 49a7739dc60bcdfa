package ics

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"axis/internal/model"
)

// ExportICS serializes an imported result back into iCalendar text.
//
// Each slot becomes one weekly-recurring VEVENT anchored to the week that
// starts at monday (the Monday of any reference week, in the display
// timezone); each exam becomes one dated VEVENT.
func ExportICS(res model.Result, monday time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//axis//timetable//EN")

	for _, sub := range res.Subjects {
		for _, label := range sortedSectionLabels(sub.Sections) {
			sec := sub.Sections[label]
			for i, sl := range sec.Slots {
				ev := cal.AddEvent(fmt.Sprintf("%s-%s-%d@axis", slug(sub.Code), slug(label), i))
				ev.SetSummary(sub.Code + " " + sec.Label)
				if sub.Name != "" {
					ev.SetDescription(sub.Name)
				}
				if sl.Room != "" {
					ev.SetLocation(sl.Room)
				}
				start, ok := slotTime(monday, sl.Day, sl.StartTime)
				if !ok {
					continue
				}
				ev.SetStartAt(start)
				if end, ok := slotTime(monday, sl.Day, sl.EndTime); ok {
					ev.SetEndAt(end)
				}
				ev.AddRrule("FREQ=WEEKLY;BYDAY=" + sl.Day)
			}
		}
	}

	for i, ex := range res.Exams {
		ev := cal.AddEvent(fmt.Sprintf("exam-%s-%d@axis", slug(ex.Course), i))
		ev.SetSummary(ex.Title)
		start, err := time.ParseInLocation("2006-01-02 15:04", ex.Date+" "+ex.StartTime, monday.Location())
		if err != nil {
			continue
		}
		ev.SetStartAt(start)
		if ex.EndTime != "" {
			if end, err := time.ParseInLocation("2006-01-02 15:04", ex.Date+" "+ex.EndTime, monday.Location()); err == nil {
				ev.SetEndAt(end)
			}
		}
	}

	return cal.Serialize()
}

func sortedSectionLabels(sections map[string]*model.Section) []string {
	labels := make([]string, 0, len(sections))
	for label := range sections {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// slotTime places a weekday+HH:MM slot onto the concrete reference week.
func slotTime(monday time.Time, day, hhmm string) (time.Time, bool) {
	offsets := map[string]int{
		model.DayMO: 0, model.DayTU: 1, model.DayWE: 2, model.DayTH: 3, model.DayFR: 4,
	}
	off, ok := offsets[day]
	if !ok {
		return time.Time{}, false
	}
	h, m, ok := parseHHMM(hhmm)
	if !ok {
		return time.Time{}, false
	}
	d := monday.AddDate(0, 0, off)
	return time.Date(d.Year(), d.Month(), d.Day(), h, m, 0, 0, monday.Location()), true
}

func parseHHMM(s string) (h, m int, ok bool) {
	hs, ms, found := strings.Cut(s, ":")
	if !found {
		return 0, 0, false
	}
	h, err := strconv.Atoi(hs)
	if err != nil {
		return 0, 0, false
	}
	m, err = strconv.Atoi(ms)
	if err != nil {
		return 0, 0, false
	}
	return h, m, true
}

func slug(s string) string {
	return strings.ReplaceAll(s, " ", "-")
}
