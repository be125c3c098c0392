// Copyright 2026 The Proxyenv Authors
// SPDX-License-Identifier: Apache-2.0

// Package resolve turns the host's proxy configuration into process
// environment variables for a proxy-aware subprocess.
//
// One resolution cycle is deterministic and idempotent: read a
// configuration snapshot, decide per protocol whether a proxy applies
// (static settings or a PAC script evaluated for the cycle's target
// URL), fetch any stored credential for that proxy, synthesize the
// value
//
//	scheme://[user:pass@]host[:port]
//
// and assign it to http_proxy / ftp_proxy — or positively clear a
// variable whose proxy is no longer configured. Repeating a cycle
// against unchanged configuration produces identical variables.
//
// [Service] is the dependency-injected cycle engine; everything it
// touches (configuration source, credential store, PAC evaluator,
// environment, clock, logger) is supplied by the caller. [Watcher]
// owns the target URL, subscribes to configuration change
// notifications, and serializes cycles so a notification arriving
// mid-cycle queues instead of racing. For hosts with no natural owner,
// [UpdateProxyEnvironmentForURL] drives a lazily-created ambient
// instance.
//
// Every failure in the chain degrades rather than aborts: a store
// fault means "no credential", a PAC failure means "no proxy", a
// subscription failure leaves explicit updates working. Log records
// carry masked values only.
package resolve
