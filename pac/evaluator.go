// Copyright 2026 The Proxyenv Authors
// SPDX-License-Identifier: Apache-2.0

package pac

import (
	"context"
	"fmt"
	"time"

	"github.com/proxyenv-foundation/proxyenv/lib/clock"
)

// DefaultWaitCeiling bounds how long Evaluate waits for the facility's
// completion callback. The underlying evaluation is usually fast, but
// a facility that never calls back must not hang a resolution cycle
// forever.
const DefaultWaitCeiling = 30 * time.Second

// Evaluator turns the facility's asynchronous callback into a bounded
// blocking call and reduces the candidate list to at most one proxy.
type Evaluator struct {
	facility Facility
	clock    clock.Clock
	ceiling  time.Duration
}

// EvaluatorOptions configures an Evaluator.
type EvaluatorOptions struct {
	// Facility executes the PAC script. Required.
	Facility Facility

	// Clock drives the wait ceiling. Defaults to clock.Real().
	Clock clock.Clock

	// WaitCeiling caps the wait for the completion callback. Defaults
	// to DefaultWaitCeiling; negative means wait without bound (the
	// context still applies).
	WaitCeiling time.Duration
}

// NewEvaluator creates an Evaluator.
func NewEvaluator(options EvaluatorOptions) (*Evaluator, error) {
	if options.Facility == nil {
		return nil, fmt.Errorf("pac: evaluator requires a facility")
	}
	if options.Clock == nil {
		options.Clock = clock.Real()
	}
	if options.WaitCeiling == 0 {
		options.WaitCeiling = DefaultWaitCeiling
	}
	return &Evaluator{
		facility: options.Facility,
		clock:    options.Clock,
		ceiling:  options.WaitCeiling,
	}, nil
}

// Evaluate runs the PAC script against the target URL and returns the
// first candidate, or (nil, nil) when no proxy is required (empty
// list, or a leading DIRECT). A facility error or an expired wait
// ceiling returns a *EvaluationError.
//
// Only the first candidate is honored; lower-priority alternates are
// ignored. Fallback to later candidates on connection failure is a
// per-request concern and out of scope here.
func (e *Evaluator) Evaluate(ctx context.Context, pacURL, targetURL string) (*Candidate, error) {
	// Cancelling on return lets the facility abandon work (interrupt
	// the script engine, abort the fetch) once the ceiling expires.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type outcome struct {
		candidates []Candidate
		err        error
	}
	// Buffered so a late callback after the ceiling fires does not
	// block the facility's goroutine forever.
	results := make(chan outcome, 1)

	e.facility.Evaluate(ctx, pacURL, targetURL, func(candidates []Candidate, err error) {
		select {
		case results <- outcome{candidates: candidates, err: err}:
		default:
		}
	})

	var ceiling <-chan time.Time
	if e.ceiling > 0 {
		ceiling = e.clock.After(e.ceiling)
	}

	select {
	case result := <-results:
		if result.err != nil {
			return nil, &EvaluationError{PACURL: pacURL, Err: result.err}
		}
		if len(result.candidates) == 0 || result.candidates[0].Type == Direct {
			return nil, nil
		}
		first := result.candidates[0]
		return &first, nil
	case <-ceiling:
		return nil, &EvaluationError{PACURL: pacURL, Err: fmt.Errorf("no completion within %v", e.ceiling)}
	case <-ctx.Done():
		return nil, &EvaluationError{PACURL: pacURL, Err: ctx.Err()}
	}
}
