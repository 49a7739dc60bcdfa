package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayCode(t *testing.T) {
	assert.Equal(t, "MO", DayCode(time.Monday))
	assert.Equal(t, "FR", DayCode(time.Friday))
	assert.Equal(t, "SU", DayCode(time.Sunday))
	assert.Equal(t, "SA", DayCode(time.Saturday))
}

func TestIsGridDay(t *testing.T) {
	for _, d := range GridDays {
		assert.True(t, IsGridDay(d))
	}
	assert.False(t, IsGridDay("SA"))
	assert.False(t, IsGridDay("SU"))
	assert.False(t, IsGridDay(""))
	assert.False(t, IsGridDay("mo"))
}

func TestSlotStartMinutes(t *testing.T) {
	assert.Equal(t, 9*60, Slot{StartTime: "09:00"}.StartMinutes())
	assert.Equal(t, 14*60+30, Slot{StartTime: "14:30"}.StartMinutes())
	assert.Equal(t, -1, Slot{StartTime: ""}.StartMinutes())
	assert.Equal(t, -1, Slot{StartTime: "morning"}.StartMinutes())
}

func TestExamDaysUntil(t *testing.T) {
	now := time.Date(2025, 1, 13, 15, 30, 0, 0, time.UTC)

	d, ok := Exam{Date: "2025-01-16"}.DaysUntil(now)
	require.True(t, ok)
	assert.Equal(t, 3, d)

	d, ok = Exam{Date: "2025-01-13"}.DaysUntil(now)
	require.True(t, ok)
	assert.Equal(t, 0, d)

	d, ok = Exam{Date: "2025-01-10"}.DaysUntil(now)
	require.True(t, ok)
	assert.Equal(t, -3, d)

	_, ok = Exam{Date: "soon"}.DaysUntil(now)
	assert.False(t, ok)
}

func TestResultClassesOn(t *testing.T) {
	res := Result{
		Subjects: []Subject{
			{
				Code: "CS F214",
				Sections: map[string]*Section{
					"L1": {Label: "L1", Slots: []Slot{
						{Day: DayMO, StartTime: "11:00", EndTime: "11:50"},
						{Day: DayTU, StartTime: "09:00", EndTime: "09:50"},
					}},
				},
			},
			{
				Code: "MATH F211",
				Sections: map[string]*Section{
					"L2": {Label: "L2", Slots: []Slot{
						{Day: DayMO, StartTime: "09:00", EndTime: "09:50"},
					}},
					"T1": {Label: "T1", Slots: []Slot{
						{Day: DayMO, StartTime: "11:00", EndTime: "11:50"},
					}},
				},
			},
		},
	}

	classes := res.ClassesOn(DayMO)
	require.Len(t, classes, 3)
	assert.Equal(t, "MATH F211", classes[0].Course)
	assert.Equal(t, "09:00", classes[0].Slot.StartTime)
	// Same start time: course code, then section label breaks the tie.
	assert.Equal(t, "CS F214", classes[1].Course)
	assert.Equal(t, "MATH F211", classes[2].Course)
	assert.Equal(t, "T1", classes[2].Section)

	assert.Empty(t, res.ClassesOn(DayFR))
}
