package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/sqlsaturday/satops/internal/batch"
	"github.com/sqlsaturday/satops/internal/config"
	"github.com/sqlsaturday/satops/internal/logger"
	"github.com/sqlsaturday/satops/internal/output"
	"github.com/sqlsaturday/satops/internal/render"
	"go.uber.org/zap"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

// commonFlags are shared by every tool
type commonFlags struct {
	configPath string
	logLevel   string
	format     string
	verbose    bool
}

func (f *commonFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.configPath, "config", os.Getenv("SATOPS_CONFIG"), "Config file (YAML or JSON)")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn or error (overrides config)")
	cmd.Flags().StringVar(&f.format, "format", "text", "Result format: text or json")
	cmd.Flags().BoolVar(&f.verbose, "verbose", false, "Enable verbose logging and list every failure")
}

// env is what a tool holds after setup
type env struct {
	cfg     *config.Config
	log     *logger.Logger
	metrics *logger.Metrics
	stdout  io.Writer
	format  OutputFormat
	verbose bool
}

// setup loads configuration and builds the logger. Flags are applied by the caller
// through apply before anything is validated.
func setup(cmd *cobra.Command, flags *commonFlags, apply func(*config.Config) error) (*env, error) {
	format := OutputFormat(strings.ToLower(flags.format))
	if format != FormatText && format != FormatJSON {
		return nil, fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flags.format)
	}

	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, err
	}
	if flags.logLevel != "" {
		cfg.Logging.Level = flags.logLevel
	}
	if flags.verbose {
		cfg.Logging.Level = string(logger.LevelDebug)
	}
	if err := cfg.Logging.Validate(); err != nil {
		return nil, err
	}
	if apply != nil {
		if err := apply(cfg); err != nil {
			return nil, err
		}
	}

	level, _ := logger.ParseLevel(cfg.Logging.Level)
	log, err := logger.New(level, logger.Format(cfg.Logging.Format))
	if err != nil {
		return nil, err
	}
	log = log.Named(cmd.Name())
	logger.SetDefault(log)

	return &env{
		cfg:     cfg,
		log:     log,
		metrics: logger.DefaultMetrics(),
		stdout:  cmd.OutOrStdout(),
		format:  format,
		verbose: flags.verbose,
	}, nil
}

// zap returns the zap logger behind the tool's logger
func (e *env) zap() *zap.Logger {
	return e.log.Zap()
}

func (e *env) newRenderer() render.DocumentRenderer {
	return render.NewChromedpRenderer(&render.ChromedpConfig{
		DefaultTimeout: e.cfg.Render.Timeout,
		RemoteURL:      e.cfg.Render.RemoteURL,
		NoSandbox:      e.cfg.Render.NoSandbox,
		Logger:         e.zap().Named("render"),
	})
}

// finish writes the error log and the run result, and dumps the run metrics
func (e *env) finish(report *batch.Report, out *output.Dir, files []string) error {
	result := newResult(report, files)

	if out != nil {
		path, err := report.WriteLog(out.String())
		if err != nil {
			e.log.Error("could not write error log", logger.Fields{"dir": out.String()}, err)
		}
		result.ErrorLog = path
	}

	if path := e.cfg.Metrics.Textfile; path != "" {
		if err := e.metrics.WriteTextfile(path); err != nil {
			e.log.Warn("could not write metrics textfile", logger.Fields{"path": path, "error": err.Error()})
		}
	}

	if err := WriteOutput(e.stdout, result, e.format, e.verbose); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	e.log.Sync()
	return nil
}

// Execute runs a tool and exits non-zero on setup failure
func Execute(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(ExitError)
	}
}

// fail records a per-item failure in the report, the metrics and the log
func (e *env) fail(report *batch.Report, key, stage string, err error) {
	report.Fail(key, stage, err)
	e.metrics.IncrFailed(report.Operation, stage)
	e.log.Warn("item failed", logger.Fields{"item": key, "stage": stage, "error": err.Error()})
}

func (e *env) succeed(report *batch.Report, key string) {
	report.Succeed(key)
	e.metrics.IncrProcessed(report.Operation)
}

// renderPDF renders one document and records the time spent
func (e *env) renderPDF(ctx context.Context, r render.DocumentRenderer, req *render.Request) ([]byte, error) {
	start := time.Now()
	pdf, err := r.Render(ctx, req)
	e.metrics.RecordRender(time.Since(start))
	return pdf, err
}
