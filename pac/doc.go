// Copyright 2026 The Proxyenv Authors
// SPDX-License-Identifier: Apache-2.0

// Package pac evaluates Proxy Auto-Configuration scripts for a target
// URL and reduces the result to a single proxy candidate.
//
// PAC execution is asynchronous by nature: a [Facility] fetches and
// runs the script and delivers an ordered candidate list through a
// completion callback, exactly like the OS-level proxy facilities this
// models. [Evaluator] bridges that callback world back into a plain
// blocking call with an explicit wait ceiling — a channel select on an
// injected clock rather than a poll loop, so the wait is deterministic
// under test and can never hang the caller indefinitely.
//
// Result semantics follow the PAC contract: an empty candidate list,
// or a first candidate of type [Direct], means no proxy is required —
// not an error. Only the first candidate is honored; lower-priority
// alternates are ignored. A nil list accompanied by an error is a
// genuine evaluation failure, reported as [*EvaluationError].
//
// [GojaFacility] is the production facility: it fetches the script
// over HTTP and executes FindProxyForURL under the goja JavaScript
// engine with the standard PAC helper functions bound.
package pac
