// Copyright 2026 The Proxyenv Authors
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/proxyenv-foundation/proxyenv/credstore"
	"github.com/proxyenv-foundation/proxyenv/lib/clock"
	"github.com/proxyenv-foundation/proxyenv/lib/statefile"
	"github.com/proxyenv-foundation/proxyenv/sysconfig"
)

// Service runs resolution cycles. Every collaborator is injected;
// nothing is process-global. Construct one per hosting application and
// share it — or use the package-level ambient instance when the
// application has no natural owner for it.
type Service struct {
	source    sysconfig.Source
	resolver  *Resolver
	store     credstore.Store
	environ   Environ
	clock     clock.Clock
	logger    *slog.Logger
	statePath string
}

// ServiceOptions configures a Service.
type ServiceOptions struct {
	// Source provides configuration snapshots. Required.
	Source sysconfig.Source

	// Resolver decides which proxies apply. Required.
	Resolver *Resolver

	// Store looks up proxy credentials. Nil means credentials are
	// never attached.
	Store credstore.Store

	// Environ receives the resolved variables. Defaults to
	// OSEnviron().
	Environ Environ

	// Clock timestamps recorded outcomes. Defaults to clock.Real().
	Clock clock.Clock

	// Logger receives cycle diagnostics. Defaults to slog.Default().
	// Never receives a plaintext password.
	Logger *slog.Logger

	// StatePath, when non-empty, is where each cycle's masked outcome
	// is recorded. Write failures are logged, never fatal.
	StatePath string
}

// NewService creates a Service.
func NewService(options ServiceOptions) (*Service, error) {
	if options.Source == nil {
		return nil, fmt.Errorf("resolve: service requires a configuration source")
	}
	if options.Resolver == nil {
		return nil, fmt.Errorf("resolve: service requires a resolver")
	}
	if options.Environ == nil {
		options.Environ = OSEnviron()
	}
	if options.Clock == nil {
		options.Clock = clock.Real()
	}
	if options.Logger == nil {
		options.Logger = slog.Default()
	}
	return &Service{
		source:    options.Source,
		resolver:  options.Resolver,
		store:     options.Store,
		environ:   options.Environ,
		clock:     options.Clock,
		logger:    options.Logger.With("component", "resolve"),
		statePath: options.StatePath,
	}, nil
}

// ResolveAndApply runs one full cycle for the given target URL: read
// the configuration snapshot, resolve descriptors, fetch credentials,
// synthesize values, and set or clear http_proxy and ftp_proxy.
//
// Only a configuration read failure aborts the cycle (there is nothing
// sound to apply). Every later failure degrades: store faults proceed
// credential-less, masking failures log a placeholder, state-file
// write failures are logged and dropped.
func (s *Service) ResolveAndApply(ctx context.Context, targetURL string) error {
	snapshot, err := s.source.Current(ctx)
	if err != nil {
		s.logger.Error("reading proxy configuration failed", "error", err)
		return fmt.Errorf("resolve: reading configuration: %w", err)
	}

	outcome := s.resolver.Resolve(ctx, snapshot, targetURL)

	var assignments []statefile.Assignment
	s.applyOne(ctx, VarHTTPProxy, outcome.HTTP, outcome.UnsetHTTP, &assignments)
	s.applyOne(ctx, VarFTPProxy, outcome.FTP, outcome.UnsetFTP, &assignments)

	if s.statePath != "" {
		state := statefile.State{
			TargetURL:   targetURL,
			Assignments: assignments,
			ResolvedAt:  s.clock.Now().UTC(),
		}
		if err := statefile.Write(s.statePath, state); err != nil {
			s.logger.Warn("recording resolution state failed", "path", s.statePath, "error", err)
		}
	}
	return nil
}

// applyOne applies one variable's share of the outcome. A descriptor
// sets the variable; an unset mark clears it; neither leaves it
// untouched.
func (s *Service) applyOne(ctx context.Context, variable string, descriptor *Descriptor, unset bool, assignments *[]statefile.Assignment) {
	switch {
	case descriptor.Active():
		credential := s.lookupCredential(ctx, descriptor)
		synthesis := Synthesize(*descriptor, credential)
		credential.Close()

		if synthesis.MaskingFailed {
			s.logger.Error("password could not be located for masking",
				"variable", variable, "value", MaskingFailedPlaceholder)
		}
		if synthesis.Value == "" {
			return
		}
		if err := s.environ.Set(variable, synthesis.Value); err != nil {
			s.logger.Error("setting environment variable failed", "variable", variable, "error", err)
			return
		}
		s.logger.Info("proxy environment set", "variable", variable, "value", synthesis.Masked)
		*assignments = append(*assignments, statefile.Assignment{Variable: variable, MaskedValue: synthesis.Masked})

	case unset:
		wasSet := s.environ.Get(variable) != ""
		if err := s.environ.Unset(variable); err != nil {
			s.logger.Error("clearing environment variable failed", "variable", variable, "error", err)
			return
		}
		if wasSet {
			s.logger.Info("proxy environment cleared", "variable", variable)
		}
		*assignments = append(*assignments, statefile.Assignment{Variable: variable, Unset: true})
	}
}

// lookupCredential fetches the stored credential for a descriptor.
// Credentials are fetched fresh every cycle — store content can change
// between resolutions. A miss is expected and silent; a store fault is
// logged (distinctly from a miss) and treated as "no credential".
func (s *Service) lookupCredential(ctx context.Context, descriptor *Descriptor) *credstore.Credential {
	if s.store == nil {
		return nil
	}
	credential, err := s.store.Find(ctx, descriptor.Host, descriptor.Port)
	if err != nil {
		if errors.Is(err, credstore.ErrNotFound) {
			s.logger.Debug("no stored credential", "host", descriptor.Host, "port", descriptor.Port)
		} else {
			s.logger.Warn("credential store fault; proceeding without credentials",
				"host", descriptor.Host, "port", descriptor.Port, "error", err)
		}
		return nil
	}
	return credential
}
