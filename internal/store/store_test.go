package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"axis/internal/model"
)

func sampleSnapshot(feedID string) *Snapshot {
	return &Snapshot{
		FeedID:     feedID,
		ImportedAt: time.Date(2025, 1, 13, 9, 0, 0, 0, time.UTC),
		Result: model.Result{
			Subjects: []model.Subject{
				{
					Code: "CS F214",
					Name: "Logic in Computer Science",
					Sections: map[string]*model.Section{
						"L1": {Label: "L1", Slots: []model.Slot{
							{Day: model.DayMO, StartTime: "09:00", EndTime: "10:00", Room: "LT-2"},
						}},
					},
					Exams: []model.Exam{},
				},
			},
			Exams: []model.Exam{},
		},
	}
}

func TestStoreLoadBeforeAnySave(t *testing.T) {
	st := New(t.TempDir())
	snap, err := st.Load()
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)

	want := sampleSnapshot("upload")
	require.NoError(t, st.Save(want))

	got, err := st.Load()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want, got)

	// No stray temp files left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "timetable.json", entries[0].Name())
}

func TestStoreSaveOverwrites(t *testing.T) {
	st := New(t.TempDir())

	require.NoError(t, st.Save(sampleSnapshot("first")))
	require.NoError(t, st.Save(sampleSnapshot("second")))

	got, err := st.Load()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "second", got.FeedID)
}

func TestStoreSaveNilSnapshot(t *testing.T) {
	st := New(t.TempDir())
	assert.Error(t, st.Save(nil))
}

func TestStoreLoadCorruptFile(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "timetable.json"), []byte("{not json"), 0o600))

	_, err := st.Load()
	assert.Error(t, err)
}

func TestStoreCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	st := New(dir)
	require.NoError(t, st.Save(sampleSnapshot("upload")))

	_, err := os.Stat(filepath.Join(dir, "timetable.json"))
	assert.NoError(t, err)
}
