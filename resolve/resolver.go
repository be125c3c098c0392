// Copyright 2026 The Proxyenv Authors
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/proxyenv-foundation/proxyenv/pac"
	"github.com/proxyenv-foundation/proxyenv/sysconfig"
)

// Outcome is the resolver's decision for one cycle. For each variable,
// either a descriptor applies, or the variable must be positively
// cleared, or (both nil/false) the cycle leaves it untouched.
type Outcome struct {
	// HTTP and FTP are the descriptors to apply, nil when none.
	HTTP *Descriptor
	FTP  *Descriptor
	// UnsetHTTP and UnsetFTP mark variables to clear. Absence of a
	// proxy positively overrides a previously active one.
	UnsetHTTP bool
	UnsetFTP  bool
}

// Resolver decides, from a configuration snapshot, which proxies apply
// to a target URL. PAC takes precedence over static settings; a single
// PAC result is applied identically to both the HTTP and FTP variables
// (PAC results are not separated by protocol — a documented
// simplification carried over from the original behavior).
type Resolver struct {
	evaluator *pac.Evaluator
	logger    *slog.Logger
}

// ResolverOptions configures a Resolver.
type ResolverOptions struct {
	// Evaluator runs PAC scripts. When nil, PAC-enabled snapshots
	// resolve as "no proxy" with an error log (the facility is
	// unavailable).
	Evaluator *pac.Evaluator

	// Logger receives resolution diagnostics. Defaults to
	// slog.Default().
	Logger *slog.Logger
}

// NewResolver creates a Resolver.
func NewResolver(options ResolverOptions) *Resolver {
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		evaluator: options.Evaluator,
		logger:    logger.With("component", "resolver"),
	}
}

// Resolve runs the decision state machine for one snapshot:
//
//  1. PAC enabled with a parsable PAC URL: evaluate the script for the
//     target URL. The one resulting descriptor (if any) feeds both
//     variables; a DIRECT result or an evaluation failure clears both.
//  2. PAC enabled without a usable PAC URL: no changes this cycle.
//  3. Otherwise, per protocol independently: an enabled protocol with
//     a configured host yields a descriptor; a disabled one is
//     cleared.
//
// A PAC result of "no proxy required" is distinguished from an
// evaluation failure: only the latter produces an error-level log, and
// exactly one.
func (r *Resolver) Resolve(ctx context.Context, snapshot sysconfig.Snapshot, targetURL string) Outcome {
	if snapshot.PACEnable {
		if !usablePACURL(snapshot.PACURL) {
			r.logger.Info("no PAC URL given", "pac_url", snapshot.PACURL)
			return Outcome{}
		}
		return r.resolvePAC(ctx, snapshot.PACURL, targetURL)
	}
	return resolveStatic(snapshot)
}

func (r *Resolver) resolvePAC(ctx context.Context, pacURL, targetURL string) Outcome {
	if r.evaluator == nil {
		r.logger.Error("PAC evaluation unavailable", "pac_url", pacURL)
		return Outcome{UnsetHTTP: true, UnsetFTP: true}
	}

	candidate, err := r.evaluator.Evaluate(ctx, pacURL, targetURL)
	if err != nil {
		// Reported but non-fatal: the cycle proceeds as if no proxy
		// applies.
		r.logger.Error("PAC evaluation failed", "pac_url", pacURL, "target_url", targetURL, "error", err)
		return Outcome{UnsetHTTP: true, UnsetFTP: true}
	}
	if candidate == nil {
		// The script chose DIRECT. Not an error.
		return Outcome{UnsetHTTP: true, UnsetFTP: true}
	}

	return Outcome{
		HTTP: &Descriptor{Variable: VarHTTPProxy, Host: candidate.Host, Port: candidate.Port},
		FTP:  &Descriptor{Variable: VarFTPProxy, Host: candidate.Host, Port: candidate.Port},
	}
}

func resolveStatic(snapshot sysconfig.Snapshot) Outcome {
	var outcome Outcome

	if descriptor := staticDescriptor(VarHTTPProxy, snapshot.HTTPEnable, snapshot.HTTPProxy, snapshot.HTTPPort); descriptor.Active() {
		outcome.HTTP = descriptor
	} else {
		outcome.UnsetHTTP = true
	}
	if descriptor := staticDescriptor(VarFTPProxy, snapshot.FTPEnable, snapshot.FTPProxy, snapshot.FTPPort); descriptor.Active() {
		outcome.FTP = descriptor
	} else {
		outcome.UnsetFTP = true
	}
	return outcome
}

func staticDescriptor(variable string, enabled bool, rawHost string, port uint16) *Descriptor {
	if !enabled {
		return nil
	}
	scheme, host := splitSchemeHost(rawHost)
	if host == "" {
		return nil
	}
	return &Descriptor{Variable: variable, Scheme: scheme, Host: host, Port: port}
}

// usablePACURL reports whether the configured PAC URL can actually be
// fetched: it must parse and carry a scheme and host.
func usablePACURL(pacURL string) bool {
	if pacURL == "" {
		return false
	}
	parsed, err := url.Parse(pacURL)
	if err != nil {
		return false
	}
	return parsed.Scheme != "" && parsed.Host != ""
}
