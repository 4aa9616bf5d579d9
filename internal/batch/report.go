package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Failure is one item that could not be processed
type Failure struct {
	Key   string
	Stage string
	Err   error
	At    time.Time
}

// Report tracks the outcome of one run. Items are processed one at a time, so
// a Report is not safe for concurrent use.
type Report struct {
	RunID     string
	Operation string
	Started   time.Time

	succeeded []string
	failures  []Failure
	now       func() time.Time
}

// NewReport starts a report for operation
func NewReport(operation string) *Report {
	return newReport(operation, time.Now)
}

func newReport(operation string, now func() time.Time) *Report {
	return &Report{
		RunID:     uuid.New().String(),
		Operation: operation,
		Started:   now(),
		now:       now,
	}
}

// Succeed records a processed item
func (r *Report) Succeed(key string) {
	r.succeeded = append(r.succeeded, key)
}

// Fail records a failed item and the stage it failed in
func (r *Report) Fail(key, stage string, err error) {
	r.failures = append(r.failures, Failure{Key: key, Stage: stage, Err: err, At: r.now()})
}

// Succeeded returns the number of processed items
func (r *Report) Succeeded() int {
	return len(r.succeeded)
}

// Processed returns the keys of the processed items in order
func (r *Report) Processed() []string {
	return append([]string(nil), r.succeeded...)
}

// Failures returns a copy of the recorded failures
func (r *Report) Failures() []Failure {
	return append([]Failure(nil), r.failures...)
}

// HasFailures reports whether any item failed
func (r *Report) HasFailures() bool {
	return len(r.failures) > 0
}

// Summary is the one-line result printed at the end of a run
func (r *Report) Summary() string {
	s := fmt.Sprintf("%s: %d succeeded, %d failed", r.Operation, len(r.succeeded), len(r.failures))
	if len(r.failures) > 0 {
		stages := make(map[string]int)
		var order []string
		for _, f := range r.failures {
			if stages[f.Stage] == 0 {
				order = append(order, f.Stage)
			}
			stages[f.Stage]++
		}
		parts := make([]string, 0, len(order))
		for _, stage := range order {
			parts = append(parts, fmt.Sprintf("%s: %d", stage, stages[stage]))
		}
		s += " (" + strings.Join(parts, ", ") + ")"
	}
	return s
}

// LogName is the error log file name for this run
func (r *Report) LogName() string {
	return "errors-" + r.Started.Format("20060102-150405") + ".log"
}

// WriteLog writes the failures into dir. It writes nothing and returns an empty
// path when every item succeeded.
func (r *Report) WriteLog(dir string) (string, error) {
	failures := r.Failures()
	if len(failures) == 0 {
		return "", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s run %s started %s\n", r.Operation, r.RunID, r.Started.Format(time.RFC3339))
	for _, f := range failures {
		msg := "<nil>"
		if f.Err != nil {
			msg = strings.ReplaceAll(f.Err.Error(), "\n", " ")
		}
		fmt.Fprintf(&b, "%s\t%s\t%s\t%s\n", f.At.Format(time.RFC3339), f.Key, f.Stage, msg)
	}

	path := filepath.Join(dir, r.LogName())
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return "", fmt.Errorf("writing error log: %w", err)
	}
	return path, nil
}
