package model

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// Weekday codes used throughout the timetable. Only MO–FR are part of the
// weekly grid; BYDAY tokens for SA/SU parse but never produce a slot.
const (
	DayMO = "MO"
	DayTU = "TU"
	DayWE = "WE"
	DayTH = "TH"
	DayFR = "FR"
)

// GridDays lists the grid weekdays in display order.
var GridDays = []string{DayMO, DayTU, DayWE, DayTH, DayFR}

// IsGridDay reports whether code is one of the five grid weekday codes.
func IsGridDay(code string) bool {
	switch code {
	case DayMO, DayTU, DayWE, DayTH, DayFR:
		return true
	}
	return false
}

// DayCode maps a time.Weekday to its two-letter iCalendar code (MO..SU).
func DayCode(wd time.Weekday) string {
	return [...]string{"SU", "MO", "TU", "WE", "TH", "FR", "SA"}[wd]
}

// Slot is one weekly-recurring meeting of a course section.
type Slot struct {
	Day       string `json:"day"` // MO..FR
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Room      string `json:"room"`
}

// StartMinutes returns the slot's start time as minutes since midnight,
// or -1 if the time string is malformed.
func (s Slot) StartMinutes() int {
	return timeToMinutes(s.StartTime)
}

// Section groups the slots of one lecture/tutorial/lab section.
type Section struct {
	Label      string `json:"section"`
	Instructor string `json:"instructor"`
	Slots      []Slot `json:"slots"`
}

// Exam is a single dated assessment belonging to a course.
type Exam struct {
	Course    string `json:"course"`
	Title     string `json:"title"`
	Date      string `json:"date"` // YYYY-MM-DD in the display timezone
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// DaysUntil returns the number of whole days from now (a time in the display
// timezone) until the exam date, negative for past exams. Returns 0 and
// false when the exam date does not parse.
func (e Exam) DaysUntil(now time.Time) (int, bool) {
	d, err := time.ParseInLocation("2006-01-02", e.Date, now.Location())
	if err != nil {
		return 0, false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return int(d.Sub(today) / (24 * time.Hour)), true
}

// Subject is one course identified by its course code. Sections are keyed
// by section label; keys are unique, insertion order is not meaningful.
type Subject struct {
	Code     string              `json:"code"`
	Name     string              `json:"name"`
	Sections map[string]*Section `json:"sections"`
	Exams    []Exam              `json:"exams"`
}

// Result is the full outcome of importing one feed. A fresh import replaces
// the previous result wholesale; results are never merged.
type Result struct {
	Subjects []Subject `json:"subjects"`
	Exams    []Exam    `json:"exams"`
}

// ClassEntry is one flattened timetable cell: a slot together with the
// course and section it belongs to.
type ClassEntry struct {
	Course  string `json:"course"`
	Section string `json:"section"`
	Slot    Slot   `json:"slot"`
}

// ClassesOn flattens every subject's slots for the given weekday code,
// sorted by start time, then course code, then section label.
func (r Result) ClassesOn(day string) []ClassEntry {
	var out []ClassEntry
	for _, sub := range r.Subjects {
		for _, sec := range sub.Sections {
			for _, sl := range sec.Slots {
				if sl.Day != day {
					continue
				}
				out = append(out, ClassEntry{Course: sub.Code, Section: sec.Label, Slot: sl})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if am, bm := a.Slot.StartMinutes(), b.Slot.StartMinutes(); am != bm {
			return am < bm
		}
		if a.Course != b.Course {
			return a.Course < b.Course
		}
		return a.Section < b.Section
	})
	return out
}

func timeToMinutes(t string) int {
	h, m, ok := strings.Cut(t, ":")
	if !ok {
		return -1
	}
	hh, err := strconv.Atoi(h)
	if err != nil {
		return -1
	}
	mm, err := strconv.Atoi(m)
	if err != nil {
		return -1
	}
	return hh*60 + mm
}
