package ics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWeekdayCodes(t *testing.T) {
	tests := []struct {
		name     string
		rrule    string
		fallback string
		want     []string
		wantOK   bool
	}{
		{
			name:   "single weekday",
			rrule:  "FREQ=WEEKLY;BYDAY=MO",
			want:   []string{"MO"},
			wantOK: true,
		},
		{
			name:   "multiple weekdays keep BYDAY order",
			rrule:  "FREQ=WEEKLY;BYDAY=MO,WE,FR",
			want:   []string{"MO", "WE", "FR"},
			wantOK: true,
		},
		{
			name:   "duplicate tokens collapse",
			rrule:  "FREQ=WEEKLY;BYDAY=MO,MO,WE",
			want:   []string{"MO", "WE"},
			wantOK: true,
		},
		{
			name:   "weekend tokens are valid but outside the grid",
			rrule:  "FREQ=WEEKLY;BYDAY=SA,SU,TH",
			want:   []string{"TH"},
			wantOK: true,
		},
		{
			name:   "weekend-only rule yields no days",
			rrule:  "FREQ=WEEKLY;BYDAY=SA,SU",
			want:   []string{},
			wantOK: true,
		},
		{
			name:     "no BYDAY falls back to DTSTART weekday",
			rrule:    "FREQ=WEEKLY",
			fallback: "TU",
			want:     []string{"TU"},
			wantOK:   true,
		},
		{
			name:     "no BYDAY with weekend DTSTART yields no days",
			rrule:    "FREQ=WEEKLY",
			fallback: "SA",
			want:     nil,
			wantOK:   true,
		},
		{
			name:   "unknown weekday token invalidates the event",
			rrule:  "FREQ=WEEKLY;BYDAY=MO,XX",
			wantOK: false,
		},
		{
			name:   "daily frequency invalidates the event",
			rrule:  "FREQ=DAILY",
			wantOK: false,
		},
		{
			name:   "monthly frequency invalidates the event",
			rrule:  "FREQ=MONTHLY;BYDAY=MO",
			wantOK: false,
		},
		{
			name:   "ordinal BYDAY invalidates the event",
			rrule:  "FREQ=WEEKLY;BYDAY=2MO",
			wantOK: false,
		},
		{
			name:   "garbage rule invalidates the event",
			rrule:  "definitely not a rule",
			wantOK: false,
		},
		{
			name:   "until clause is tolerated",
			rrule:  "FREQ=WEEKLY;BYDAY=WE;UNTIL=20250430T000000Z",
			want:   []string{"WE"},
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := weekdayCodes(tt.rrule, tt.fallback)
			assert.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				return
			}
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
