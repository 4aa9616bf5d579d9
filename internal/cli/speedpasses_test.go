package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sqlsaturday/satops/internal/attendee"
	"github.com/sqlsaturday/satops/internal/batch"
	"github.com/sqlsaturday/satops/internal/paper"
	"github.com/sqlsaturday/satops/internal/render"
	"github.com/sqlsaturday/satops/internal/speedpass"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSpeedPassJob(t *testing.T, store *fakeStore, r render.DocumentRenderer) *speedPassJob {
	t.Helper()
	e, _ := testEnv(t)
	return &speedPassJob{
		env:      e,
		store:    store,
		qr:       fakeQR{},
		renderer: r,
		out:      testDir(t),
		event:    speedpass.Event{Name: "SQL Saturday", Date: "March 15, 2025", RaffleTickets: 2},
		filter:   attendee.Filter{Unprinted: true},
		report:   batch.NewReport("print-speedpasses"),
		now:      fixedNow,
	}
}

func TestSpeedPassJob_PerAttendee(t *testing.T) {
	store := &fakeStore{list: attendees()}
	r := &fakeRenderer{failOn: map[string]bool{"Alan Turing": true}}
	job := newSpeedPassJob(t, store, r)

	files, err := job.run(context.Background())
	require.NoError(t, err)

	require.Len(t, files, 1)
	assert.Equal(t, "SpeedPass_Lovelace_Ada_111.pdf", filepath.Base(files[0]))
	assert.Equal(t, []string{"111"}, store.printed)
	assert.True(t, store.filters[0].Unprinted)

	req := r.requests[0]
	assert.Equal(t, paper.Letter, req.Paper)
	assert.Equal(t, render.Portrait, req.Orientation)

	assert.Equal(t, []string{"111 (Ada Lovelace)"}, job.report.Processed())
	stages := map[string]string{}
	for _, f := range job.report.Failures() {
		stages[f.Key] = f.Stage
	}
	assert.Equal(t, map[string]string{"222 (Alan Turing)": "render", "333": "compose"}, stages)
}

func TestSpeedPassJob_Combined(t *testing.T) {
	store := &fakeStore{list: attendees()[:2]}
	r := &fakeRenderer{}
	job := newSpeedPassJob(t, store, r)
	job.combined = true

	files, err := job.run(context.Background())
	require.NoError(t, err)

	require.Len(t, files, 1)
	assert.Equal(t, "SpeedPasses_20250314-183000.pdf", filepath.Base(files[0]))
	require.Len(t, r.requests, 1, "one document for every pass")
	assert.Equal(t, []string{"111", "222"}, store.printed)
	assert.Equal(t, 2, job.report.Succeeded())
}

func TestSpeedPassJob_CombinedRenderFailure(t *testing.T) {
	store := &fakeStore{list: attendees()[:2]}
	job := newSpeedPassJob(t, store, &fakeRenderer{failOn: map[string]bool{"SpeedPasses": true}})
	job.combined = true

	files, err := job.run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, files)
	assert.Empty(t, store.printed)
	assert.Len(t, job.report.Failures(), 2)
}

func TestSpeedPassJob_HTMLOnly(t *testing.T) {
	store := &fakeStore{list: attendees()[:1]}
	job := newSpeedPassJob(t, store, nil)
	job.htmlOnly = true

	files, err := job.run(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "SpeedPass_Lovelace_Ada_111.html", filepath.Base(files[0]))
	assert.Empty(t, store.printed, "previews are not marked printed")

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "Raffle 2")
}

func TestSpeedPassJob_MarkFailure(t *testing.T) {
	store := &fakeStore{list: attendees()[:1], failMark: map[string]bool{"111": true}}
	job := newSpeedPassJob(t, store, &fakeRenderer{})

	_, err := job.run(context.Background())
	require.NoError(t, err)
	failures := job.report.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, "mark", failures[0].Stage)
	assert.Equal(t, 0, job.report.Succeeded())
}

func TestSpeedPassJob_Empty(t *testing.T) {
	job := newSpeedPassJob(t, &fakeStore{}, &fakeRenderer{})
	files, err := job.run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, files)
	assert.Contains(t, job.env.stdout.(*bytes.Buffer).String(), "No attendees to print.")
}

func TestSpeedPassJob_ListErrorAborts(t *testing.T) {
	job := newSpeedPassJob(t, &fakeStore{listErr: errors.New("connection refused")}, &fakeRenderer{})
	_, err := job.run(context.Background())
	assert.Error(t, err)
}

func TestHTMLName(t *testing.T) {
	assert.Equal(t, "SpeedPass_A_B_1.html", htmlName("SpeedPass_A_B_1.pdf"))
	assert.Equal(t, "x.html", htmlName("x"))
}

func TestStageOf(t *testing.T) {
	assert.Equal(t, "render", stageOf(stageError{"render", errors.New("x")}))
	assert.Equal(t, "unknown", stageOf(errors.New("x")))
}
