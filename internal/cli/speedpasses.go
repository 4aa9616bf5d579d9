package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/sqlsaturday/satops/internal/attendee"
	"github.com/sqlsaturday/satops/internal/batch"
	"github.com/sqlsaturday/satops/internal/config"
	"github.com/sqlsaturday/satops/internal/logger"
	"github.com/sqlsaturday/satops/internal/output"
	"github.com/sqlsaturday/satops/internal/paper"
	"github.com/sqlsaturday/satops/internal/qrcode"
	"github.com/sqlsaturday/satops/internal/render"
	"github.com/sqlsaturday/satops/internal/speedpass"
)

// attendeeStore is the part of the attendee store the SpeedPass tools use
type attendeeStore interface {
	List(ctx context.Context, f attendee.Filter) ([]attendee.Attendee, error)
	MarkPrinted(ctx context.Context, barcode string, at time.Time) error
	MarkEmailed(ctx context.Context, barcode string, at time.Time) error
}

type speedPassFlags struct {
	commonFlags
	outputDir string
	name      string
	email     string
	reprint   bool
	combined  bool
	htmlOnly  bool
	limit     int
}

// NewPrintSpeedPassesCmd creates the print-speedpasses command
func NewPrintSpeedPassesCmd() *cobra.Command {
	flags := &speedPassFlags{}
	cmd := &cobra.Command{
		Use:   "print-speedpasses",
		Short: "Print SpeedPass credentials for registered attendees",
		Long: `Generate a SpeedPass (admission ticket, raffle tickets and name badge) for every
attendee whose pass has not been printed yet, write one PDF per attendee and mark
each attendee as printed. Attendees that fail are listed at the end and written to
an error log in the output folder.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrintSpeedPasses(cmd, flags)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&flags.outputDir, "output", ".", "Existing folder the SpeedPasses are written to")
	cmd.Flags().StringVar(&flags.name, "name", "", "Only attendees whose name contains this text")
	cmd.Flags().StringVar(&flags.email, "email", "", "Only attendees whose email contains this text")
	cmd.Flags().BoolVar(&flags.reprint, "reprint", false, "Include attendees whose SpeedPass was already printed")
	cmd.Flags().BoolVar(&flags.combined, "combined", false, "Write all SpeedPasses into one document")
	cmd.Flags().BoolVar(&flags.htmlOnly, "html-only", false, "Write HTML and skip PDF rendering; attendees are not marked printed")
	cmd.Flags().IntVar(&flags.limit, "limit", 0, "Maximum number of attendees (0 means all)")

	return cmd
}

func runPrintSpeedPasses(cmd *cobra.Command, flags *speedPassFlags) error {
	e, err := setup(cmd, &flags.commonFlags, func(cfg *config.Config) error {
		if cmd.Flags().Changed("output") {
			cfg.Output.Dir = flags.outputDir
		}
		if err := cfg.QRCode.Validate(); err != nil {
			return err
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

	store, err := attendee.Open(cmd.Context(), &cfg.Database, e.zap().Named("store"))
	if err != nil {
		return err
	}
	defer store.Close()

	job := &speedPassJob{
		env:     e,
		store:   store,
		qr:      gen,
		out:     out,
		event:   eventFromConfig(cfg),
		logoURL: cfg.Event.LogoURL,
		filter: attendee.Filter{
			Name:      flags.name,
			Email:     flags.email,
			Unprinted: !flags.reprint,
			Limit:     flags.limit,
		},
		combined: flags.combined,
		htmlOnly: flags.htmlOnly,
		report:   batch.NewReport("print-speedpasses"),
		now:      time.Now,
	}
	if !flags.htmlOnly {
		job.renderer = e.newRenderer()
		defer job.renderer.Close()
	}

	files, err := job.run(cmd.Context())
	if err != nil {
		return err
	}
	return e.finish(job.report, out, files)
}

func eventFromConfig(cfg *config.Config) speedpass.Event {
	return speedpass.Event{
		Name:          cfg.Event.Name,
		Date:          cfg.Event.Date,
		Venue:         cfg.Event.Venue,
		RaffleTickets: cfg.Event.RaffleTickets,
	}
}

// speedPassRequest is the render request of a SpeedPass document
func speedPassRequest(html, title string) *render.Request {
	return &render.Request{
		HTML:        html,
		Paper:       paper.Letter,
		Orientation: render.Portrait,
		Margin:      paper.Margin,
		Title:       title,
	}
}

// speedPassJob prints the SpeedPasses of the selected attendees
type speedPassJob struct {
	env      *env
	store    attendeeStore
	qr       qrcode.Generator
	renderer render.DocumentRenderer
	out      *output.Dir
	event    speedpass.Event
	logoURL  string
	filter   attendee.Filter
	combined bool
	htmlOnly bool
	report   *batch.Report
	now      func() time.Time
}

// composed is an attendee whose SpeedPass is ready to render
type composed struct {
	attendee attendee.Attendee
	pass     render.SpeedPass
}

func (j *speedPassJob) run(ctx context.Context) ([]string, error) {
	e := j.env
	list, err := j.store.List(ctx, j.filter)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		fmt.Fprintln(e.stdout, "No attendees to print.")
		return nil, nil
	}
	fmt.Fprintf(e.stdout, "Printing SpeedPasses for %d attendee(s)\n", len(list))

	var (
		files   []string
		pending []composed
	)
	for i, a := range list {
		if err := ctx.Err(); err != nil {
			return files, err
		}
		pass, err := speedpass.Compose(ctx, a, j.event, j.qr)
		if err != nil {
			e.fail(j.report, a.Key(), "compose", err)
			continue
		}
		if j.combined {
			pending = append(pending, composed{attendee: a, pass: pass})
			continue
		}

		path, err := j.write(ctx, speedpass.FileName(a), a.FullName(), []render.SpeedPass{pass})
		if err != nil {
			e.fail(j.report, a.Key(), stageOf(err), err)
			continue
		}
		files = append(files, path)
		if j.markPrinted(ctx, a) {
			fmt.Fprintf(e.stdout, "  [%d/%d] %s\n", i+1, len(list), a.FullName())
		}
	}

	if j.combined && len(pending) > 0 {
		passes := make([]render.SpeedPass, len(pending))
		for i, c := range pending {
			passes[i] = c.pass
		}
		name := "SpeedPasses_" + j.now().Format("20060102-150405") + ".pdf"
		path, err := j.write(ctx, name, "SpeedPasses", passes)
		if err != nil {
			for _, c := range pending {
				e.fail(j.report, c.attendee.Key(), stageOf(err), err)
			}
			return files, nil
		}
		files = append(files, path)
		for _, c := range pending {
			j.markPrinted(ctx, c.attendee)
		}
	}
	return files, nil
}

// write renders passes into one document named name (extension replaced with
// .html in HTML-only mode)
func (j *speedPassJob) write(ctx context.Context, name, title string, passes []render.SpeedPass) (string, error) {
	html, err := render.SpeedPassHTML(render.SpeedPassData{Title: title, LogoURL: j.logoURL, Passes: passes})
	if err != nil {
		return "", stageError{"html", err}
	}

	if j.htmlOnly {
		path, err := j.out.Write(htmlName(name), []byte(html))
		if err != nil {
			return "", stageError{"write", err}
		}
		return path, nil
	}

	pdf, err := j.env.renderPDF(ctx, j.renderer, speedPassRequest(html, title))
	if err != nil {
		return "", stageError{"render", err}
	}
	j.env.metrics.AddPages(len(passes))
	path, err := j.out.Write(name, pdf)
	if err != nil {
		return "", stageError{"write", err}
	}
	return path, nil
}

// markPrinted records the print. It reports whether the attendee counts as done.
func (j *speedPassJob) markPrinted(ctx context.Context, a attendee.Attendee) bool {
	if !j.htmlOnly {
		if err := j.store.MarkPrinted(ctx, a.Barcode, j.now()); err != nil {
			j.env.fail(j.report, a.Key(), "mark", err)
			return false
		}
	}
	j.env.succeed(j.report, a.Key())
	j.env.log.Debug("SpeedPass printed", logger.Fields{"barcode": a.Barcode})
	return true
}

func htmlName(pdfName string) string {
	if n := len(pdfName); n > 4 && pdfName[n-4:] == ".pdf" {
		return pdfName[:n-4] + ".html"
	}
	return pdfName + ".html"
}

// stageError tags an error with the pipeline stage it came from
type stageError struct {
	stage string
	err   error
}

func (s stageError) Error() string { return s.err.Error() }
func (s stageError) Unwrap() error { return s.err }

func stageOf(err error) string {
	var s stageError
	if errors.As(err, &s) {
		return s.stage
	}
	return "unknown"
}
