package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/sqlsaturday/satops/internal/batch"
	"github.com/sqlsaturday/satops/internal/calendar"
	"github.com/sqlsaturday/satops/internal/config"
	"github.com/sqlsaturday/satops/internal/layout"
	"github.com/sqlsaturday/satops/internal/logger"
	"github.com/sqlsaturday/satops/internal/output"
	"github.com/sqlsaturday/satops/internal/paper"
	"github.com/sqlsaturday/satops/internal/render"
	"github.com/sqlsaturday/satops/internal/schedule"
)

// gridSource fetches the schedule grid
type gridSource interface {
	FetchGrid(ctx context.Context) ([]schedule.Day, error)
}

type scheduleFlags struct {
	commonFlags
	apiURL     string
	outputDir  string
	paper      string
	color      string
	roomPrefix string
	pagination string
	keywords   string
	htmlOnly   bool
	ics        bool
}

func (f *scheduleFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	set := func(name string, dst *string, v string) {
		if cmd.Flags().Changed(name) {
			*dst = v
		}
	}
	set("api-url", &cfg.Schedule.APIURL, f.apiURL)
	set("output", &cfg.Output.Dir, f.outputDir)
	set("paper", &cfg.Schedule.Paper, f.paper)
	set("color", &cfg.Schedule.Color, f.color)
	set("room-prefix", &cfg.Schedule.RoomPrefix, f.roomPrefix)
	set("pagination", &cfg.Schedule.Pagination, f.pagination)
	set("keywords", &cfg.Schedule.KeywordFile, f.keywords)

	if err := cfg.Schedule.Validate(); err != nil {
		return err
	}
	return schedule.ValidateURL(cfg.Schedule.APIURL)
}

// NewPrintScheduleCmd creates the print-schedule command
func NewPrintScheduleCmd() *cobra.Command {
	flags := &scheduleFlags{}
	cmd := &cobra.Command{
		Use:   "print-schedule",
		Short: "Print the conference schedule grid",
		Long: `Fetch the schedule grid from the scheduling API and print one document per
conference day: rooms as columns, time slots as rows, plenum events (keynote,
lunch, raffle) as blocks across the rooms that have no session of their own.
Rooms that do not fit on one landscape page are split across several pages.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrintSchedule(cmd, flags)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&flags.apiURL, "api-url", "", "Schedule grid API URL (overrides schedule.api_url)")
	cmd.Flags().StringVar(&flags.outputDir, "output", ".", "Existing folder the documents are written to")
	cmd.Flags().StringVar(&flags.paper, "paper", paper.Letter.Name, "Paper size: "+strings.Join(paper.Names(), ", "))
	cmd.Flags().StringVar(&flags.color, "color", "#1f4e79", "Accent color (#RGB or #RRGGBB)")
	cmd.Flags().StringVar(&flags.roomPrefix, "room-prefix", "", "Prefix stripped from room names, e.g. \"BEC \"")
	cmd.Flags().StringVar(&flags.pagination, "pagination", string(layout.StrategyChunked), "Room pagination: chunked or sequential")
	cmd.Flags().StringVar(&flags.keywords, "keywords", "", "YAML file overriding the plenum event keywords")
	cmd.Flags().BoolVar(&flags.htmlOnly, "html-only", false, "Write HTML documents and skip PDF rendering")
	cmd.Flags().BoolVar(&flags.ics, "ics", false, "Also write an iCalendar file per day")

	return cmd
}

func runPrintSchedule(cmd *cobra.Command, flags *scheduleFlags) error {
	e, err := setup(cmd, &flags.commonFlags, func(cfg *config.Config) error {
		return flags.apply(cmd, cfg)
	})
	if err != nil {
		return err
	}
	cfg := e.cfg

	out, err := output.New(cfg.Output.Dir)
	if err != nil {
		return err
	}

	size, _ := paper.Lookup(cfg.Schedule.Paper)
	strategy, _ := layout.ParseStrategy(cfg.Schedule.Pagination)

	var classifier layout.Classifier = layout.NewKeywordClassifier()
	if cfg.Schedule.KeywordFile != "" {
		kc, err := layout.LoadKeywordSets(cfg.Schedule.KeywordFile)
		if err != nil {
			return err
		}
		classifier = kc
	}

	client, err := schedule.NewClient(cfg.Schedule.APIURL)
	if err != nil {
		return err
	}

	job := &scheduleJob{
		env:    e,
		source: client,
		out:    out,
		layout: layout.Options{
			Estimator:  layout.NewEstimator(cfg.Schedule.RoomPrefix),
			Classifier: classifier,
			Paper:      size,
			Strategy:   strategy,
			Logger:     e.zap().Named("layout"),
		},
		eventName: cfg.Event.Name,
		color:     cfg.Schedule.Color,
		htmlOnly:  flags.htmlOnly,
		ics:       flags.ics,
		report:    batch.NewReport("print-schedule"),
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

// scheduleJob prints every day of the grid
type scheduleJob struct {
	env       *env
	source    gridSource
	renderer  render.DocumentRenderer
	out       *output.Dir
	layout    layout.Options
	eventName string
	color     string
	htmlOnly  bool
	ics       bool
	report    *batch.Report
}

// run fetches the grid and writes the documents. Only a failed fetch aborts.
func (j *scheduleJob) run(ctx context.Context) ([]string, error) {
	e := j.env
	fmt.Fprintf(e.stdout, "Fetching schedule...\n")
	days, err := j.source.FetchGrid(ctx)
	if err != nil {
		return nil, err
	}
	sortDays(days)
	fmt.Fprintf(e.stdout, "Found %d day(s)\n", len(days))

	var files []string
	for i := range days {
		if err := ctx.Err(); err != nil {
			return files, err
		}
		written, err := j.printDay(ctx, &days[i], i)
		files = append(files, written...)
		if err != nil {
			continue
		}
		e.succeed(j.report, dayName(&days[i], i))
	}
	return files, nil
}

func (j *scheduleJob) printDay(ctx context.Context, day *schedule.Day, index int) ([]string, error) {
	e := j.env
	name := dayName(day, index)
	fail := func(stage string, err error) ([]string, error) {
		e.fail(j.report, name, stage, err)
		return nil, err
	}

	l, err := layout.Build(day, j.layout)
	if err != nil {
		return fail("layout", err)
	}
	e.metrics.AddPages(len(l.Pages))
	e.log.Info("day laid out", logger.Fields{
		"day":   name,
		"rows":  len(l.Plan.Slots),
		"rooms": len(l.Columns),
		"pages": len(l.Pages),
	})

	html, err := render.ScheduleHTML(render.NewScheduleData(j.eventName, j.color, j.layout.Paper, l, time.Now()))
	if err != nil {
		return fail("html", err)
	}

	var files []string
	base := "Schedule_" + name
	if j.htmlOnly {
		path, err := j.out.Write(base+".html", []byte(html))
		if err != nil {
			return fail("write", err)
		}
		files = append(files, path)
	} else {
		pdf, err := e.renderPDF(ctx, j.renderer, &render.Request{
			HTML:        html,
			Paper:       j.layout.Paper,
			Orientation: render.Landscape,
			Margin:      render.ScheduleMargin,
			Title:       j.eventName + " - " + day.Label(),
		})
		if err != nil {
			return fail("render", err)
		}
		path, err := j.out.Write(base+".pdf", pdf)
		if err != nil {
			return fail("write", err)
		}
		files = append(files, path)
	}

	if j.ics {
		path, err := j.out.Write(base+".ics", []byte(calendar.GenerateICS(j.eventName, day)))
		if err != nil {
			e.fail(j.report, name, "ics", err)
			return files, err
		}
		files = append(files, path)
	}

	fmt.Fprintf(e.stdout, "  %s: %d page(s)\n", day.Label(), len(l.Pages))
	return files, nil
}

// dayName is the date used in file names, e.g. 2025-03-15
func dayName(day *schedule.Day, index int) string {
	if t := day.ParseDate(); !t.IsZero() {
		return t.Format("2006-01-02")
	}
	return "day-" + strconv.Itoa(index+1)
}
