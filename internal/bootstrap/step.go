// Package bootstrap brings the machine to a state where the demo can run:
// an ordered list of steps, each with a precondition probe and an action.
// Satisfied steps are skipped; the first failure aborts the whole plan.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
)

// Step is one unit of provisioning work. Check reports whether the step's
// outcome is already in place; a nil Check means the step always runs.
type Step struct {
	Name  string
	Check func(ctx context.Context) (bool, error)
	Run   func(ctx context.Context) error
}

// StepError identifies which step a failed run aborted at.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string { return fmt.Sprintf("step %s: %v", e.Step, e.Err) }
func (e *StepError) Unwrap() error { return e.Err }

// IsStepError reports whether err is a step abort and returns the step name.
func IsStepError(err error) (string, bool) {
	var se *StepError
	if errors.As(err, &se) {
		return se.Step, true
	}
	return "", false
}

// Run executes steps in order. Each step's Check runs first; a satisfied
// check skips the action. Any failure stops the sequence immediately.
func Run(ctx context.Context, log zerolog.Logger, steps []Step) error {
	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			return &StepError{Step: s.Name, Err: err}
		}
		if s.Check != nil {
			ok, err := s.Check(ctx)
			if err != nil {
				return &StepError{Step: s.Name, Err: err}
			}
			if ok {
				log.Info().Str("step", s.Name).Str("status", "satisfied").Msg("skipping")
				continue
			}
		}
		log.Info().Str("step", s.Name).Str("status", "running").Msg("step")
		if err := s.Run(ctx); err != nil {
			log.Error().Str("step", s.Name).Err(err).Msg("step failed")
			return &StepError{Step: s.Name, Err: err}
		}
		log.Info().Str("step", s.Name).Str("status", "done").Msg("step")
	}
	return nil
}

// ProbeResult is one row of a doctor report.
type ProbeResult struct {
	Step       string
	Satisfied  bool
	AlwaysRuns bool // steps without a precondition (pip install, launch)
	Err        error
}

// Probe evaluates every step's precondition without performing any action.
func Probe(ctx context.Context, steps []Step) []ProbeResult {
	out := make([]ProbeResult, 0, len(steps))
	for _, s := range steps {
		if s.Check == nil {
			out = append(out, ProbeResult{Step: s.Name, AlwaysRuns: true})
			continue
		}
		ok, err := s.Check(ctx)
		out = append(out, ProbeResult{Step: s.Name, Satisfied: ok, Err: err})
	}
	return out
}
