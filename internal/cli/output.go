package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/sqlsaturday/satops/internal/batch"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// FailureOutput is one failed item
type FailureOutput struct {
	Item  string `json:"item"`
	Stage string `json:"stage"`
	Error string `json:"error"`
}

// OutputResult contains data to be output
type OutputResult struct {
	Operation  string          `json:"operation"`
	RunID      string          `json:"run_id"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Succeeded  int             `json:"succeeded"`
	Failed     int             `json:"failed"`
	Files      []string        `json:"files,omitempty"`
	Failures   []FailureOutput `json:"failures,omitempty"`
	ErrorLog   string          `json:"error_log,omitempty"`
	Summary    string          `json:"summary"`
}

func newResult(report *batch.Report, files []string) *OutputResult {
	result := &OutputResult{
		Operation:  report.Operation,
		RunID:      report.RunID,
		StartedAt:  report.Started.UTC(),
		FinishedAt: time.Now().UTC(),
		Succeeded:  report.Succeeded(),
		Files:      files,
		Summary:    report.Summary(),
	}
	for _, f := range report.Failures() {
		msg := ""
		if f.Err != nil {
			msg = f.Err.Error()
		}
		result.Failures = append(result.Failures, FailureOutput{Item: f.Key, Stage: f.Stage, Error: msg})
	}
	result.Failed = len(result.Failures)
	return result
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, result *OutputResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, result *OutputResult, verbose bool) error {
	if len(result.Files) > 0 {
		fmt.Fprintf(w, "\nWrote %d file(s):\n", len(result.Files))
		for _, f := range result.Files {
			fmt.Fprintf(w, "  %s\n", f)
		}
	}

	if result.Failed > 0 {
		shown := result.Failures
		if !verbose && len(shown) > 10 {
			shown = shown[:10]
		}
		fmt.Fprintf(w, "\nFailures:\n")
		for _, f := range shown {
			fmt.Fprintf(w, "  FAILED (%s): %s: %s\n", f.Stage, f.Item, f.Error)
		}
		if len(shown) < len(result.Failures) {
			fmt.Fprintf(w, "  ... and %d more (use --verbose to list all)\n", len(result.Failures)-len(shown))
		}
	}

	fmt.Fprintf(w, "\n%s\n", result.Summary)
	if result.ErrorLog != "" {
		fmt.Fprintf(w, "Error log: %s\n", result.ErrorLog)
	}
	if verbose {
		fmt.Fprintf(w, "Run ID: %s (%s)\n", result.RunID, result.FinishedAt.Sub(result.StartedAt).Round(time.Millisecond))
	}
	return nil
}
