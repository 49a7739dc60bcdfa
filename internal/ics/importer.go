package ics

import (
	"regexp"
	"sort"
	"strings"
	"time"

	appLog "axis/internal/log"
	"axis/internal/model"
)

// Options controls a single import pass.
type Options struct {
	// DisplayLocation is the timezone UTC-marked tokens are converted into
	// and floating tokens are interpreted in. Nil means UTC.
	DisplayLocation *time.Location

	// MaxInputBytes bounds how much of the feed text is tokenized.
	// Zero or negative uses the default cap.
	MaxInputBytes int
}

// keyedExam pairs an exam with its raw timestamp so the assembler can
// order chronologically; the key stays inside this package.
type keyedExam struct {
	exam model.Exam
	key  int64
}

// builder accumulates a single import pass. ImportFeed allocates a fresh
// builder per call, so concurrent imports never share state.
type builder struct {
	loc      *time.Location
	subjects map[string]*subjectAcc
	exams    []keyedExam
	dropped  int
}

type subjectAcc struct {
	subject model.Subject
	exams   []keyedExam
}

// ImportFeed converts a raw iCalendar feed into a timetable result.
//
// It is total over any input string: malformed feeds yield an empty or
// partial result, never an error. Event blocks that cannot be classified
// unambiguously are dropped silently; absence from the result is the
// signal. Importing the same text twice produces structurally equal
// results, and each import replaces the previous one wholesale.
func ImportFeed(text string, opts Options) model.Result {
	loc := opts.DisplayLocation
	if loc == nil {
		loc = time.UTC
	}

	b := &builder{loc: loc, subjects: make(map[string]*subjectAcc)}

	blocks := tokenize(text, opts.MaxInputBytes)
	for _, ev := range blocks {
		c := classify(ev)
		switch c.kind {
		case kindExam:
			b.addExam(c)
		case kindSlot:
			b.addSlots(c)
		default:
			b.dropped++
		}
	}

	res := b.assemble()
	appLog.Debug("feed import completed",
		"blocks", len(blocks),
		"subjects", len(res.Subjects),
		"exams", len(res.Exams),
		"dropped", b.dropped,
	)
	return res
}

func (b *builder) addExam(c classified) {
	start, ok := normalizeStamp(c.ev.DTStart, b.loc)
	if !ok {
		b.dropped++
		return
	}
	end, ok := normalizeStamp(c.ev.DTEnd, b.loc)
	if !ok {
		b.dropped++
		return
	}

	ke := keyedExam{
		exam: model.Exam{
			Course:    c.code,
			Title:     c.ev.Summary,
			Date:      start.Date,
			StartTime: start.Time,
			EndTime:   end.Time,
		},
		key: start.Unix,
	}

	acc := b.subject(c.code)
	acc.exams = append(acc.exams, ke)
	b.exams = append(b.exams, ke)
}

func (b *builder) addSlots(c classified) {
	start, ok := normalizeStamp(c.ev.DTStart, b.loc)
	if !ok {
		b.dropped++
		return
	}
	end, ok := normalizeStamp(c.ev.DTEnd, b.loc)
	if !ok {
		b.dropped++
		return
	}

	days, ok := weekdayCodes(c.ev.RRule, start.Day)
	if !ok || len(days) == 0 {
		b.dropped++
		return
	}

	acc := b.subject(c.code)
	if acc.subject.Name == "" {
		acc.subject.Name = firstLine(c.ev.Description)
	}

	sec := acc.section(c.section)
	if sec.Instructor == "" {
		sec.Instructor = instructorLine(c.ev.Description)
	}

	room := c.ev.Location
	if room == "" {
		room = "TBD"
	}
	for _, day := range days {
		sec.Slots = append(sec.Slots, model.Slot{
			Day:       day,
			StartTime: start.Time,
			EndTime:   end.Time,
			Room:      room,
		})
	}
}

// subject returns the accumulator for a course code, creating it on first
// reference.
func (b *builder) subject(code string) *subjectAcc {
	if acc, ok := b.subjects[code]; ok {
		return acc
	}
	acc := &subjectAcc{subject: model.Subject{
		Code:     code,
		Sections: make(map[string]*model.Section),
	}}
	b.subjects[code] = acc
	return acc
}

func (a *subjectAcc) section(label string) *model.Section {
	if sec, ok := a.subject.Sections[label]; ok {
		return sec
	}
	sec := &model.Section{Label: label}
	a.subject.Sections[label] = sec
	return sec
}

// assemble freezes the accumulated state into the caller-facing result.
// Subjects are ordered by course code and exam lists chronologically so
// equal inputs produce structurally equal outputs.
func (b *builder) assemble() model.Result {
	codes := make([]string, 0, len(b.subjects))
	for code := range b.subjects {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	res := model.Result{Subjects: make([]model.Subject, 0, len(codes))}
	for _, code := range codes {
		acc := b.subjects[code]
		acc.subject.Exams = sortedExams(acc.exams)
		res.Subjects = append(res.Subjects, acc.subject)
	}
	res.Exams = sortedExams(b.exams)
	return res
}

// sortedExams orders exams ascending by start timestamp; ties keep their
// encounter order in the source text.
func sortedExams(in []keyedExam) []model.Exam {
	keyed := make([]keyedExam, len(in))
	copy(keyed, in)
	sort.SliceStable(keyed, func(i, j int) bool { return keyed[i].key < keyed[j].key })

	out := make([]model.Exam, len(keyed))
	for i, k := range keyed {
		out[i] = k.exam
	}
	return out
}

var instructorPrefixRE = regexp.MustCompile(`(?i)^instructor:\s*`)

// firstLine returns the first line of a description, trimmed. Used as the
// subject display name, set once from the first slot that carries one.
func firstLine(desc string) string {
	line, _, _ := strings.Cut(desc, "\n")
	return strings.TrimSpace(line)
}

// instructorLine finds an "Instructor: ..." line in a description and
// returns its value, or "".
func instructorLine(desc string) string {
	for _, line := range strings.Split(desc, "\n") {
		line = strings.TrimSpace(line)
		if instructorPrefixRE.MatchString(line) {
			return strings.TrimSpace(instructorPrefixRE.ReplaceAllString(line, ""))
		}
	}
	return ""
}
