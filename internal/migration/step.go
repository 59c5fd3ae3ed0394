// Package migration runs an ordered list of import steps, times each one,
// and aggregates failures without aborting the run.
package migration

import "context"

// Step is one named unit of import work.
type Step interface {
	// Name returns the unique name of the step
	Name() string

	// Run executes the step and reports how many records it wrote and skipped
	Run(ctx context.Context) (Stats, error)
}

// Skipper is implemented by steps that can decide, right before they run,
// that there is nothing to do (for example because a previous run already
// imported their records).
type Skipper interface {
	Skip() (bool, string)
}

// Stats counts the records a step handled.
type Stats struct {
	Imported int
	Skipped  int
}

// Add merges other into s.
func (s *Stats) Add(other Stats) {
	s.Imported += other.Imported
	s.Skipped += other.Skipped
}

// StepFunc adapts a plain function into a Step.
type StepFunc struct {
	StepName string
	Fn       func(ctx context.Context) (Stats, error)
}

// Name returns the step name
func (f StepFunc) Name() string { return f.StepName }

// Run calls the wrapped function
func (f StepFunc) Run(ctx context.Context) (Stats, error) { return f.Fn(ctx) }
