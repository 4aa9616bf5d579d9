package mailer

import (
	"context"
	"fmt"
	"io"
	"os"
)

// DryRunSender prints what would be emailed without sending anything
type DryRunSender struct {
	out   io.Writer
	count int
}

// NewDryRunSender creates a dry-run sender writing to out (stdout when nil)
func NewDryRunSender(out io.Writer) *DryRunSender {
	if out == nil {
		out = os.Stdout
	}
	return &DryRunSender{out: out}
}

// Send prints the message summary
func (d *DryRunSender) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	d.count++

	fmt.Fprintf(d.out, "--- Email %d ---\n", d.count)
	fmt.Fprintf(d.out, "To: %s\n", msg.To)
	fmt.Fprintf(d.out, "Subject: %s\n", msg.Subject)
	if a := msg.Attachment; a != nil {
		fmt.Fprintf(d.out, "Attachment: %s (%d bytes)\n", a.Name, len(a.Data))
	}
	fmt.Fprintln(d.out)
	return nil
}

// Count returns how many messages were printed
func (d *DryRunSender) Count() int {
	return d.count
}

var _ Sender = (*DryRunSender)(nil)
