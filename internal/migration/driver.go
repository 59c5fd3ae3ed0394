package migration

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/gotrs-io/cemigrate/internal/logger"
	"github.com/gotrs-io/cemigrate/internal/metrics"
)

// Options tunes a Driver.
type Options struct {
	// Debug stops the run at the first failure and prints every captured
	// failure to DebugOut. Meant for interactive troubleshooting.
	Debug    bool
	DebugOut io.Writer
	RunID    string
	Logger   *logger.Logger
	Metrics  *metrics.Recorder
}

// Driver executes a fixed, ordered list of steps.
type Driver struct {
	steps   []Step
	opts    Options
	logger  *logrus.Entry
	metrics *metrics.Recorder
}

// NewDriver creates a driver for steps, which run in the given order
func NewDriver(steps []Step, opts Options) *Driver {
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	if opts.Logger == nil {
		opts.Logger = logger.New("info", "text")
	}
	if opts.DebugOut == nil {
		opts.DebugOut = os.Stderr
	}
	return &Driver{
		steps:   steps,
		opts:    opts,
		logger:  opts.Logger.WithField("run_id", opts.RunID),
		metrics: opts.Metrics,
	}
}

// Steps returns the step names in execution order.
func (d *Driver) Steps() []string {
	names := make([]string, len(d.steps))
	for i, s := range d.steps {
		names[i] = s.Name()
	}
	return names
}

// Run executes every step once, in order. A failing step is recorded and the
// run moves on to the next one; only debug mode or context cancellation
// stops early. The returned report is never nil.
func (d *Driver) Run(ctx context.Context) *Report {
	report := &Report{RunID: d.opts.RunID, Started: time.Now()}
	d.logger.WithField("steps", strings.Join(d.Steps(), ",")).Infof("Starting migration with %d steps", len(d.steps))

	halted := false
	for _, step := range d.steps {
		name := step.Name()

		if halted {
			report.Results = append(report.Results, StepResult{Name: name, Status: StatusNotRun})
			continue
		}
		if err := ctx.Err(); err != nil {
			report.Failures = append(report.Failures, Failure{Step: name, Message: fmt.Sprintf("run cancelled: %v", err)})
			report.Results = append(report.Results, StepResult{Name: name, Status: StatusNotRun})
			halted = true
			continue
		}

		if sk, ok := step.(Skipper); ok {
			if skip, reason := sk.Skip(); skip {
				d.logger.WithField("step", name).Infof("Skipping step: %s", reason)
				report.Results = append(report.Results, StepResult{Name: name, Status: StatusSkipped, Reason: reason})
				continue
			}
		}

		result, failure := d.execute(ctx, step)
		report.Results = append(report.Results, result)
		if failure != nil {
			report.Failures = append(report.Failures, *failure)
			if d.opts.Debug {
				d.printFailures(report.Failures)
				halted = true
			}
		}
	}

	report.Finished = time.Now()
	if report.OK() {
		d.logger.Infof("Migration completed successfully in %v", report.Finished.Sub(report.Started))
	} else {
		d.logger.Errorf("Migration finished with %d failed step(s) in %v", len(report.Failures), report.Finished.Sub(report.Started))
	}
	return report
}

// execute runs a single step with timing and panic recovery
func (d *Driver) execute(ctx context.Context, step Step) (result StepResult, failure *Failure) {
	name := step.Name()
	log := d.logger.WithField("step", name)
	log.Info("Starting step")

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			failure = &Failure{Step: name, Message: fmt.Sprintf("panic: %v", r), Source: panicSource()}
			result = StepResult{Name: name, Status: StatusFailed, Elapsed: time.Since(start)}
			d.finish(log, result, failure)
		}
	}()

	stats, err := step.Run(ctx)
	elapsed := time.Since(start)

	result = StepResult{Name: name, Status: StatusOK, Stats: stats, Elapsed: elapsed}
	if err != nil {
		result.Status = StatusFailed
		failure = &Failure{Step: name, Message: err.Error(), Source: SourceOf(err)}
	}
	d.finish(log, result, failure)
	return result, failure
}

func (d *Driver) finish(log *logrus.Entry, result StepResult, failure *Failure) {
	fields := logrus.Fields{
		"elapsed":  result.Elapsed.String(),
		"imported": result.Stats.Imported,
		"skipped":  result.Stats.Skipped,
	}
	if failure != nil {
		fields["source"] = failure.Source
		log.WithFields(fields).Errorf("Step failed after %v: %s", result.Elapsed, failure.Message)
	} else {
		log.WithFields(fields).Infof("Step completed in %v", result.Elapsed)
	}
	if d.metrics != nil {
		d.metrics.Observe(result.Name, result.Stats.Imported, result.Stats.Skipped, result.Elapsed, failure != nil)
	}
}

func (d *Driver) printFailures(failures []Failure) {
	fmt.Fprintf(d.opts.DebugOut, "Debug mode: halting after %d failure(s)\n", len(failures))
	for _, f := range failures {
		fmt.Fprintf(d.opts.DebugOut, "  %s\n", f)
	}
}
