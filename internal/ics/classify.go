package ics

import (
	"regexp"
	"strings"
)

type eventKind int

const (
	kindDropped eventKind = iota
	kindSlot
	kindExam
)

var (
	// Course codes look like "CS F214": 2–4 uppercase letters, a space,
	// then F and three digits.
	courseCodeRE = regexp.MustCompile(`\b([A-Z]{2,4} F\d{3})\b`)

	// Section labels: lecture/tutorial/practical letter plus a number.
	sectionRE = regexp.MustCompile(`(?i)\b([LTP]\d+)\b`)

	// Section label in the hyphen-separated summary shape; any single
	// letter followed by digits.
	hyphenSectionRE = regexp.MustCompile(`(?i)^[A-Z]\d+$`)

	examKeywordRE = regexp.MustCompile(`(?i)exam|midsem|endsem|compre|quiz`)
)

// classified is the classifier's verdict on one raw block, carrying the
// extracted identifiers downstream stages group by.
type classified struct {
	kind    eventKind
	code    string
	section string
	ev      rawEvent
}

// classify applies the strict policy: a block that cannot be attributed
// unambiguously is dropped. A garbage slot wrongly imported hurts a
// timetable more than a real class silently missing, so there is no
// best-effort fallback.
//
// Rules, in order: required fields (SUMMARY, DTSTART, DTEND), exam keyword
// with a resolvable course code, then recurring class with one of the two
// accepted summary shapes ("CODE ... SECTION" or "CODE - SECTION").
// One-off non-exam events have no place in a weekly template and drop.
func classify(ev rawEvent) classified {
	if ev.Summary == "" || ev.DTStart == "" || ev.DTEnd == "" {
		return classified{kind: kindDropped}
	}

	code := ""
	if m := courseCodeRE.FindStringSubmatch(ev.Summary); m != nil {
		code = m[1]
	}

	if examKeywordRE.MatchString(ev.Summary) {
		if code == "" {
			return classified{kind: kindDropped}
		}
		return classified{kind: kindExam, code: code, ev: ev}
	}

	if ev.RRule == "" {
		return classified{kind: kindDropped}
	}

	section := ""
	if code != "" {
		if m := sectionRE.FindStringSubmatch(ev.Summary); m != nil {
			section = strings.ToUpper(m[1])
		}
	}
	if section == "" {
		code, section = splitHyphenShape(ev.Summary)
	}
	if code == "" || section == "" {
		return classified{kind: kindDropped}
	}

	return classified{kind: kindSlot, code: code, section: section, ev: ev}
}

// splitHyphenShape matches the "<CODE> - <SECTION>" summary shape. Both
// halves must validate against their character classes or nothing matches.
func splitHyphenShape(summary string) (code, section string) {
	left, right, ok := strings.Cut(summary, " - ")
	if !ok {
		return "", ""
	}
	m := courseCodeRE.FindStringSubmatch(left)
	if m == nil {
		return "", ""
	}
	right = strings.TrimSpace(right)
	if !hyphenSectionRE.MatchString(right) {
		return "", ""
	}
	return m[1], strings.ToUpper(right)
}
