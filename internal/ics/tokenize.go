package ics

import "strings"

// rawEvent holds the property values collected from one
// BEGIN:VEVENT..END:VEVENT span. Completeness is not checked here; an
// incomplete block is emitted as-is and filtered by the classifier.
type rawEvent struct {
	Summary     string
	DTStart     string
	DTEnd       string
	Location    string
	Description string
	RRule       string
}

// defaultMaxInputBytes bounds how much feed text a single import will
// tokenize, so a malformed feed (e.g. one that never closes a VEVENT)
// cannot balloon memory use.
const defaultMaxInputBytes = 8 << 20

// unfold undoes the iCalendar line-folding convention: a line break
// followed by a single space or tab continues the previous logical line.
func unfold(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\n ", " ")
	text = strings.ReplaceAll(text, "\n\t", " ")
	return text
}

// tokenize scans the feed text and returns one rawEvent per completed
// VEVENT block. Lines outside any block (calendar preamble, metadata) are
// ignored, as is a BEGIN:VEVENT that never sees its END:VEVENT.
func tokenize(text string, maxBytes int) []rawEvent {
	if maxBytes <= 0 {
		maxBytes = defaultMaxInputBytes
	}
	if len(text) > maxBytes {
		text = text[:maxBytes]
		// Discard the possibly half-cut trailing line.
		if i := strings.LastIndexByte(text, '\n'); i >= 0 {
			text = text[:i]
		}
	}

	var (
		events  []rawEvent
		current *rawEvent
	)

	for _, line := range strings.Split(unfold(text), "\n") {
		switch {
		case line == "BEGIN:VEVENT":
			current = &rawEvent{}
		case line == "END:VEVENT":
			if current != nil {
				events = append(events, *current)
			}
			current = nil
		case current == nil:
			// Outside any event block.
		default:
			name, value, ok := splitProperty(line)
			if !ok {
				continue
			}
			switch name {
			case "SUMMARY":
				current.Summary = strings.TrimSpace(value)
			case "DTSTART":
				current.DTStart = strings.TrimSpace(value)
			case "DTEND":
				current.DTEnd = strings.TrimSpace(value)
			case "LOCATION":
				current.Location = strings.TrimSpace(value)
			case "DESCRIPTION":
				current.Description = unescapeText(value)
			case "RRULE":
				current.RRule = strings.TrimSpace(value)
			}
		}
	}

	return events
}

// splitProperty splits a content line at its first colon and strips any
// ;-delimited parameters from the property name (e.g. DTSTART;TZID=...:).
// Only the first colon delimits; values may legitimately contain colons.
func splitProperty(line string) (name, value string, ok bool) {
	name, value, ok = strings.Cut(line, ":")
	if !ok {
		return "", "", false
	}
	if i := strings.IndexByte(name, ';'); i >= 0 {
		name = name[:i]
	}
	return name, value, true
}

// unescapeText undoes the DESCRIPTION escape for embedded newlines: the
// feed encodes a newline as the two characters backslash-n.
func unescapeText(v string) string {
	return strings.ReplaceAll(v, `\n`, "\n")
}
