package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/sqlsaturday/satops/internal/attendee"
	"github.com/sqlsaturday/satops/internal/batch"
	"github.com/sqlsaturday/satops/internal/config"
	"github.com/sqlsaturday/satops/internal/logger"
	"github.com/sqlsaturday/satops/internal/mailer"
	"github.com/sqlsaturday/satops/internal/output"
	"github.com/sqlsaturday/satops/internal/qrcode"
	"github.com/sqlsaturday/satops/internal/render"
	"github.com/sqlsaturday/satops/internal/speedpass"
)

type emailFlags struct {
	commonFlags
	name     string
	email    string
	resend   bool
	dryRun   bool
	throttle time.Duration
	limit    int
}

// NewEmailSpeedPassesCmd creates the email-speedpasses command
func NewEmailSpeedPassesCmd() *cobra.Command {
	flags := &emailFlags{}
	cmd := &cobra.Command{
		Use:   "email-speedpasses",
		Short: "Email SpeedPass credentials to registered attendees",
		Long: `Render the SpeedPass of every attendee who has not been emailed yet, send it as
a PDF attachment and mark the attendee as emailed. Sends are spaced out by the
throttle interval. Attendees that fail are listed at the end and written to an
error log in the output folder.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEmailSpeedPasses(cmd, flags)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&flags.name, "name", "", "Only attendees whose name contains this text")
	cmd.Flags().StringVar(&flags.email, "email", "", "Only attendees whose email contains this text")
	cmd.Flags().BoolVar(&flags.resend, "resend", false, "Include attendees who were already emailed")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Print the emails instead of sending them")
	cmd.Flags().DurationVar(&flags.throttle, "throttle", 2*time.Second, "Minimum time between two sends (overrides smtp.throttle)")
	cmd.Flags().IntVar(&flags.limit, "limit", 0, "Maximum number of attendees (0 means all)")

	return cmd
}

func runEmailSpeedPasses(cmd *cobra.Command, flags *emailFlags) error {
	e, err := setup(cmd, &flags.commonFlags, func(cfg *config.Config) error {
		if cmd.Flags().Changed("throttle") {
			cfg.SMTP.Throttle = flags.throttle
		}
		if err := cfg.QRCode.Validate(); err != nil {
			return err
		}
		if !flags.dryRun {
			if err := cfg.SMTP.Validate(); err != nil {
				return err
			}
		}
		return cfg.Database.Validate()
	})
	if err != nil {
		return err
	}
	cfg := e.cfg

	out, err := output.New(cfg.Output.Dir)
	if err != nil {
		return err
	}
	gen, err := qrcode.New(cfg.QRCode.Mode, cfg.QRCode.RemoteURL, cfg.QRCode.Size)
	if err != nil {
		return err
	}

	var sender mailer.Sender
	if flags.dryRun {
		sender = mailer.NewDryRunSender(e.stdout)
	} else {
		smtp, err := mailer.NewSMTPSender(&cfg.SMTP, e.zap().Named("mailer"))
		if err != nil {
			return err
		}
		sender = mailer.NewThrottled(smtp, cfg.SMTP.Throttle)
	}

	store, err := attendee.Open(cmd.Context(), &cfg.Database, e.zap().Named("store"))
	if err != nil {
		return err
	}
	defer store.Close()

	renderer := e.newRenderer()
	defer renderer.Close()

	job := &emailJob{
		env:         e,
		store:       store,
		qr:          gen,
		renderer:    renderer,
		sender:      sender,
		event:       eventFromConfig(cfg),
		logoURL:     cfg.Event.LogoURL,
		scheduleURL: cfg.Event.ScheduleURL,
		subject:     cfg.SMTP.Subject,
		filter: attendee.Filter{
			Name:      flags.name,
			Email:     flags.email,
			Unemailed: !flags.resend,
			Limit:     flags.limit,
		},
		dryRun: flags.dryRun,
		report: batch.NewReport("email-speedpasses"),
		now:    time.Now,
	}

	if err := job.run(cmd.Context()); err != nil {
		return err
	}
	return e.finish(job.report, out, nil)
}

// emailJob emails the SpeedPasses of the selected attendees
type emailJob struct {
	env         *env
	store       attendeeStore
	qr          qrcode.Generator
	renderer    render.DocumentRenderer
	sender      mailer.Sender
	event       speedpass.Event
	logoURL     string
	scheduleURL string
	subject     string
	filter      attendee.Filter
	dryRun      bool
	report      *batch.Report
	now         func() time.Time
}

func (j *emailJob) run(ctx context.Context) error {
	e := j.env
	list, err := j.store.List(ctx, j.filter)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(e.stdout, "No attendees to email.")
		return nil
	}
	fmt.Fprintf(e.stdout, "Emailing SpeedPasses to %d attendee(s)\n", len(list))

	for i, a := range list {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := j.send(ctx, a); err != nil {
			e.fail(j.report, a.Key(), stageOf(err), err)
			continue
		}
		if !j.dryRun {
			if err := j.store.MarkEmailed(ctx, a.Barcode, j.now()); err != nil {
				e.fail(j.report, a.Key(), "mark", err)
				continue
			}
		}
		e.succeed(j.report, a.Key())
		e.log.Debug("SpeedPass emailed", logger.Fields{"barcode": a.Barcode, "dry_run": j.dryRun})
		fmt.Fprintf(e.stdout, "  [%d/%d] %s <%s>\n", i+1, len(list), a.FullName(), a.Email)
	}
	return nil
}

func (j *emailJob) send(ctx context.Context, a attendee.Attendee) error {
	if strings.TrimSpace(a.Email) == "" {
		return stageError{"validate", errors.New("attendee has no email address")}
	}

	pass, err := speedpass.Compose(ctx, a, j.event, j.qr)
	if err != nil {
		return stageError{"compose", err}
	}
	html, err := render.SpeedPassHTML(render.SpeedPassData{Title: pass.FullName, LogoURL: j.logoURL, Passes: []render.SpeedPass{pass}})
	if err != nil {
		return stageError{"html", err}
	}
	pdf, err := j.env.renderPDF(ctx, j.renderer, speedPassRequest(html, pass.FullName))
	if err != nil {
		return stageError{"render", err}
	}
	j.env.metrics.AddPages(1)

	body, err := render.SpeedPassEmailHTML(render.EmailData{
		FirstName:   pass.FirstName,
		EventName:   j.event.Name,
		EventDate:   j.event.Date,
		Venue:       j.event.Venue,
		ScheduleURL: j.scheduleURL,
	})
	if err != nil {
		return stageError{"html", err}
	}

	msg := mailer.Message{
		To:      strings.TrimSpace(a.Email),
		ToName:  pass.FullName,
		Subject: j.subject,
		HTML:    body,
		Attachment: &mailer.Attachment{
			Name:        speedpass.FileName(a),
			ContentType: "application/pdf",
			Data:        pdf,
		},
	}
	if err := j.sender.Send(ctx, msg); err != nil {
		return stageError{"send", err}
	}
	return nil
}
