// Copyright 2026 The Proxyenv Authors
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/proxyenv-foundation/proxyenv/credstore"
	"github.com/proxyenv-foundation/proxyenv/pac"
)

// The ambient watcher serves hosts that want "keep my proxy
// environment current" without wiring the pieces themselves. It is
// built lazily on first use from the platform configuration source and
// credential stores; applications that need control construct their
// own Service and Watcher instead.
var (
	ambientOnce    sync.Once
	ambientWatcher *Watcher
	ambientErr     error

	// DefaultTargetURLProvider supplies the target URL the ambient
	// watcher resolves for when no explicit URL has been given. Hosts
	// set this before the first UpdateProxyEnvironmentForURL call
	// (typically to return their configured server or mirror URL).
	DefaultTargetURLProvider func() string
)

// UpdateProxyEnvironmentForURL re-resolves the proxy environment for
// url, building the ambient watcher on first call. An empty url
// resolves for the ambient default target. The given url becomes the
// target for all subsequent change-driven cycles.
func UpdateProxyEnvironmentForURL(ctx context.Context, url string) error {
	watcher, err := Default(ctx)
	if err != nil {
		return err
	}
	return watcher.UpdateForURL(ctx, url)
}

// Default returns the process-wide ambient watcher, building and
// starting it on first call. Every call observes the same instance
// (and the same construction error, if any). The watcher's change
// loop runs for the life of the process, independent of the first
// caller's context.
func Default(ctx context.Context) (*Watcher, error) {
	ambientOnce.Do(func() { ambientErr = initAmbient() })
	return ambientWatcher, ambientErr
}

func initAmbient() error {
	source := platformSource()
	evaluator, err := pac.NewEvaluator(pac.EvaluatorOptions{
		Facility: pac.NewGojaFacility(pac.GojaFacilityOptions{}),
	})
	if err != nil {
		return fmt.Errorf("resolve: building PAC evaluator: %w", err)
	}
	resolver := NewResolver(ResolverOptions{Evaluator: evaluator})
	service, err := NewService(ServiceOptions{
		Source:    source,
		Resolver:  resolver,
		Store:     credstore.Chain(platformStores()),
		StatePath: ambientStatePath(),
	})
	if err != nil {
		return fmt.Errorf("resolve: building ambient service: %w", err)
	}
	watcher, err := NewWatcher(WatcherOptions{
		Service:          service,
		Source:           source,
		DefaultTargetURL: DefaultTargetURLProvider,
	})
	if err != nil {
		return fmt.Errorf("resolve: building ambient watcher: %w", err)
	}
	if err := watcher.Start(context.Background()); err != nil {
		return fmt.Errorf("resolve: starting ambient watcher: %w", err)
	}
	ambientWatcher = watcher
	return nil
}

// ambientStatePath picks where the ambient watcher records each
// cycle's masked outcome. Empty (state recording disabled) when no
// writable cache location exists.
func ambientStatePath() string {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	dir := filepath.Join(cacheDir, "proxyenv")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return ""
	}
	return filepath.Join(dir, "state.cbor")
}
