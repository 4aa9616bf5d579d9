package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/sqlsaturday/satops/internal/attendee"
	"github.com/sqlsaturday/satops/internal/batch"
	"github.com/sqlsaturday/satops/internal/mailer"
	"github.com/sqlsaturday/satops/internal/speedpass"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEmailJob(t *testing.T, store *fakeStore, sender mailer.Sender) *emailJob {
	t.Helper()
	e, _ := testEnv(t)
	return &emailJob{
		env:      e,
		store:    store,
		qr:       fakeQR{},
		renderer: &fakeRenderer{},
		sender:   sender,
		event:    speedpass.Event{Name: "SQL Saturday", Date: "March 15, 2025", RaffleTickets: 1},
		subject:  "Your SpeedPass for SQL Saturday",
		filter:   attendee.Filter{Unemailed: true},
		report:   batch.NewReport("email-speedpasses"),
		now:      fixedNow,
	}
}

func TestEmailJob_Send(t *testing.T) {
	list := attendees()
	list[2] = attendee.Attendee{Barcode: "444", FirstName: "Grace", LastName: "Hopper"}
	store := &fakeStore{list: list}
	sender := &fakeSender{failTo: map[string]bool{"alan@example.com": true}}
	job := newEmailJob(t, store, sender)

	require.NoError(t, job.run(context.Background()))

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, "ada@example.com", msg.To)
	assert.Equal(t, "Ada Lovelace", msg.ToName)
	assert.Equal(t, "Your SpeedPass for SQL Saturday", msg.Subject)
	assert.Contains(t, msg.HTML, "Hi Ada,")
	require.NotNil(t, msg.Attachment)
	assert.Equal(t, "SpeedPass_Lovelace_Ada_111.pdf", msg.Attachment.Name)
	assert.Equal(t, "%PDF-1.4 Ada Lovelace", string(msg.Attachment.Data))

	assert.Equal(t, []string{"111"}, store.emailed)
	assert.Equal(t, []string{"111 (Ada Lovelace)"}, job.report.Processed())
	stages := map[string]string{}
	for _, f := range job.report.Failures() {
		stages[f.Key] = f.Stage
	}
	assert.Equal(t, map[string]string{
		"222 (Alan Turing)":  "send",
		"444 (Grace Hopper)": "validate",
	}, stages)
}

func TestEmailJob_DryRun(t *testing.T) {
	store := &fakeStore{list: attendees()[:2]}
	var out bytes.Buffer
	job := newEmailJob(t, store, mailer.NewDryRunSender(&out))
	job.dryRun = true

	require.NoError(t, job.run(context.Background()))

	assert.Empty(t, store.emailed, "dry runs do not mark attendees")
	assert.Equal(t, 2, job.report.Succeeded())
	assert.Contains(t, out.String(), "To: alan@example.com")
	assert.Contains(t, out.String(), "Attachment: SpeedPass_Turing_Alan_222.pdf")
}
