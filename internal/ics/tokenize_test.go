package ics

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenizeBasicBlock(t *testing.T) {
	feed := strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//test//EN",
		"BEGIN:VEVENT",
		"SUMMARY:CS F214 L1",
		"DTSTART:20250113T090000Z",
		"DTEND:20250113T100000Z",
		"LOCATION:LT-2",
		"RRULE:FREQ=WEEKLY;BYDAY=MO",
		"UID:ignored@example.com",
		"END:VEVENT",
		"END:VCALENDAR",
	}, "\r\n")

	events := tokenize(feed, 0)
	require.Len(t, events, 1)

	ev := events[0]
	assert.Equal(t, "CS F214 L1", ev.Summary)
	assert.Equal(t, "20250113T090000Z", ev.DTStart)
	assert.Equal(t, "20250113T100000Z", ev.DTEnd)
	assert.Equal(t, "LT-2", ev.Location)
	assert.Equal(t, "FREQ=WEEKLY;BYDAY=MO", ev.RRule)
}

func TestTokenizeFoldedLineReassembly(t *testing.T) {
	folded := "BEGIN:VEVENT\r\nDESCRIPTION:Course: Intro\r\n to CS\r\nEND:VEVENT"
	flat := "BEGIN:VEVENT\r\nDESCRIPTION:Course: Intro to CS\r\nEND:VEVENT"

	a := tokenize(folded, 0)
	b := tokenize(flat, 0)
	require.Len(t, a, 1)
	require.Len(t, b, 1)
	assert.Equal(t, b[0].Description, a[0].Description)
	assert.Equal(t, "Course: Intro to CS", a[0].Description)
}

func TestTokenizeColonInValue(t *testing.T) {
	feed := "BEGIN:VEVENT\nSUMMARY:Review: chapter 3\nDESCRIPTION:See https://example.com/notes\nEND:VEVENT"

	events := tokenize(feed, 0)
	require.Len(t, events, 1)
	assert.Equal(t, "Review: chapter 3", events[0].Summary)
	assert.Equal(t, "See https://example.com/notes", events[0].Description)
}

func TestTokenizeParameterStripped(t *testing.T) {
	feed := "BEGIN:VEVENT\nDTSTART;TZID=Asia/Kolkata:20250113T090000\nEND:VEVENT"

	events := tokenize(feed, 0)
	require.Len(t, events, 1)
	assert.Equal(t, "20250113T090000", events[0].DTStart)
}

func TestTokenizeDescriptionNewlineEscape(t *testing.T) {
	feed := `BEGIN:VEVENT` + "\n" + `DESCRIPTION:Logic in CS\nInstructor: R. Sharma` + "\n" + `END:VEVENT`

	events := tokenize(feed, 0)
	require.Len(t, events, 1)
	assert.Equal(t, "Logic in CS\nInstructor: R. Sharma", events[0].Description)
}

func TestTokenizeUnterminatedBlockDropped(t *testing.T) {
	feed := "BEGIN:VEVENT\nSUMMARY:CS F214 L1\nDTSTART:20250113T090000Z"
	assert.Empty(t, tokenize(feed, 0))
}

func TestTokenizeLinesOutsideBlocksIgnored(t *testing.T) {
	feed := strings.Join([]string{
		"X-WR-CALNAME:My Calendar",
		"SUMMARY:stray summary outside any event",
		"BEGIN:VEVENT",
		"SUMMARY:inside",
		"END:VEVENT",
		"SUMMARY:another stray",
	}, "\n")

	events := tokenize(feed, 0)
	require.Len(t, events, 1)
	assert.Equal(t, "inside", events[0].Summary)
}

func TestTokenizeConsecutiveBeginResetsBlock(t *testing.T) {
	feed := strings.Join([]string{
		"BEGIN:VEVENT",
		"SUMMARY:first, never closed",
		"BEGIN:VEVENT",
		"SUMMARY:second",
		"END:VEVENT",
	}, "\n")

	events := tokenize(feed, 0)
	require.Len(t, events, 1)
	assert.Equal(t, "second", events[0].Summary)
}

func TestTokenizeEmptyInput(t *testing.T) {
	assert.Empty(t, tokenize("", 0))
	assert.Empty(t, tokenize("\n\n\n", 0))
}

func TestTokenizeInputCap(t *testing.T) {
	one := "BEGIN:VEVENT\nSUMMARY:kept\nEND:VEVENT\n"
	feed := one + strings.Repeat("COMMENT:padding line\n", 100)

	// Cap that covers only the first block: the rest is discarded, nothing
	// crashes, and the surviving block still parses.
	events := tokenize(feed, len(one))
	require.Len(t, events, 1)
	assert.Equal(t, "kept", events[0].Summary)

	// A cap cutting into the block yields nothing.
	assert.Empty(t, tokenize(feed, 10))
}
