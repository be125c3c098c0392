// Copyright 2026 The Proxyenv Authors
// SPDX-License-Identifier: Apache-2.0

package pac

import (
	"context"
	"fmt"
)

// Facility executes a PAC script for a target URL and delivers the
// candidate list asynchronously. Implementations must invoke done
// exactly once, from any goroutine, with either a candidate list or an
// error (never both). This mirrors the callback shape of OS proxy
// facilities.
type Facility interface {
	Evaluate(ctx context.Context, pacURL, targetURL string, done func(candidates []Candidate, err error))
}

// EvaluationError reports a PAC evaluation failure: the facility
// returned an error, the script was unreachable or broken, or the wait
// ceiling expired before the completion callback fired. Callers treat
// it as "no proxy applies" after logging — it is never fatal.
type EvaluationError struct {
	// PACURL is the script that failed.
	PACURL string
	// Err is the underlying diagnostic.
	Err error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("pac: evaluating %s: %v", e.PACURL, e.Err)
}

func (e *EvaluationError) Unwrap() error { return e.Err }
