package migration

import (
	"fmt"
	"strings"
	"time"
)

// Status is the outcome of one step within a run.
type Status string

const (
	StatusOK      Status = "ok"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
	StatusNotRun  Status = "not_run"
)

// StepResult describes what happened to one step.
type StepResult struct {
	Name    string
	Status  Status
	Reason  string
	Stats   Stats
	Elapsed time.Duration
}

// Report is the outcome of a whole run.
type Report struct {
	RunID    string
	Started  time.Time
	Finished time.Time
	Results  []StepResult
	Failures []Failure
}

// OK reports whether no step failed.
func (r *Report) OK() bool {
	return len(r.Failures) == 0
}

// Totals sums the stats of every step.
func (r *Report) Totals() Stats {
	var total Stats
	for _, res := range r.Results {
		total.Add(res.Stats)
	}
	return total
}

// Err returns nil for a successful run, otherwise a single error listing
// every failure.
func (r *Report) Err() error {
	if r.OK() {
		return nil
	}
	return &AggregateError{Failures: r.Failures}
}

// String renders the report for the operator.
func (r *Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Migration run %s\n", r.RunID)
	for _, res := range r.Results {
		switch res.Status {
		case StatusSkipped:
			fmt.Fprintf(&b, "  %-22s skipped (%s)\n", res.Name, res.Reason)
		case StatusNotRun:
			fmt.Fprintf(&b, "  %-22s not run\n", res.Name)
		default:
			fmt.Fprintf(&b, "  %-22s %-6s imported=%d skipped=%d elapsed=%v\n",
				res.Name, res.Status, res.Stats.Imported, res.Stats.Skipped, res.Elapsed.Round(time.Millisecond))
		}
	}
	total := r.Totals()
	fmt.Fprintf(&b, "  %-22s imported=%d skipped=%d elapsed=%v\n",
		"total", total.Imported, total.Skipped, r.Finished.Sub(r.Started).Round(time.Millisecond))
	if r.OK() {
		b.WriteString("All steps completed successfully\n")
		return b.String()
	}
	fmt.Fprintf(&b, "%d step(s) failed:\n", len(r.Failures))
	for _, f := range r.Failures {
		fmt.Fprintf(&b, "  - %s\n", f)
	}
	return b.String()
}

// AggregateError carries every failure of a run.
type AggregateError struct {
	Failures []Failure
}

func (e *AggregateError) Error() string {
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = f.String()
	}
	return fmt.Sprintf("migration failed in %d step(s): %s", len(e.Failures), strings.Join(parts, "; "))
}
