package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/sqlsaturday/satops/internal/attendee"
	"github.com/sqlsaturday/satops/internal/batch"
	"github.com/sqlsaturday/satops/internal/config"
	"github.com/sqlsaturday/satops/internal/output"
	"github.com/sqlsaturday/satops/internal/ticketing"
)

type importFlags struct {
	commonFlags
	outputDir string
	xlsx      string
}

// NewImportAttendeesCmd creates the import-attendees command
func NewImportAttendeesCmd() *cobra.Command {
	flags := &importFlags{}
	cmd := &cobra.Command{
		Use:   "import-attendees",
		Short: "Import registrations into the attendee store",
		Long: `Read the event's registrations from the ticketing platform API, or from an
XLSX attendee export with --xlsx, and insert or update them in the attendee
store. Printed and emailed markers of existing attendees are kept. Attendees
that could not be stored are listed in an error log in the output folder.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImportAttendees(cmd, flags)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&flags.outputDir, "output", ".", "Existing folder the error log is written to")
	cmd.Flags().StringVar(&flags.xlsx, "xlsx", "", "Attendee export spreadsheet to import instead of the API")

	return cmd
}

func runImportAttendees(cmd *cobra.Command, flags *importFlags) error {
	e, err := setup(cmd, &flags.commonFlags, func(cfg *config.Config) error {
		if cmd.Flags().Changed("output") {
			cfg.Output.Dir = flags.outputDir
		}
		if flags.xlsx == "" {
			if err := cfg.Ticketing.Validate(); err != nil {
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

	var src ticketing.Source
	if flags.xlsx != "" {
		src = &ticketing.XLSXSource{Path: flags.xlsx}
		fmt.Fprintf(e.stdout, "Importing attendees from %s\n", flags.xlsx)
	} else {
		src = ticketing.NewAPISource(cfg.Ticketing.BaseURL, cfg.Ticketing.Token, cfg.Ticketing.EventID)
		fmt.Fprintf(e.stdout, "Importing attendees of event %s\n", cfg.Ticketing.EventID)
	}

	store, err := attendee.Open(cmd.Context(), &cfg.Database, e.zap().Named("store"))
	if err != nil {
		return err
	}
	defer store.Close()

	job := &importJob{
		env:    e,
		source: src,
		store:  store,
		out:    out,
		report: batch.NewReport("import-attendees"),
	}
	return job.run(cmd.Context())
}

type importJob struct {
	env    *env
	source ticketing.Source
	store  ticketing.Upserter
	out    *output.Dir
	report *batch.Report
}

func (j *importJob) run(ctx context.Context) error {
	e := j.env
	if err := ticketing.Import(ctx, j.source, j.store, j.report, e.zap().Named("import")); err != nil {
		return err
	}
	for _, f := range j.report.Failures() {
		e.metrics.IncrFailed(j.report.Operation, f.Stage)
	}
	e.metrics.AddProcessed(j.report.Operation, j.report.Succeeded())
	return e.finish(j.report, j.out, nil)
}
