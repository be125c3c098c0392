// Copyright 2026 The Proxyenv Authors
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/proxyenv-foundation/proxyenv/sysconfig"
)

// Watcher keeps the proxy environment current. It owns the target URL,
// subscribes to configuration change notifications, and runs one
// resolution cycle per change. Cycles are serialized: a notification
// arriving while a cycle runs is queued and coalesced, never run
// concurrently.
type Watcher struct {
	service       *Service
	source        sysconfig.Source
	defaultTarget func() string
	logger        *slog.Logger

	mu        sync.Mutex // guards targetURL
	targetURL string

	cycleMu sync.Mutex // serializes cycles across the loop and UpdateForURL

	notifications chan struct{}
	cancelSub     func()
	stop          chan struct{}
	done          chan struct{}
	started       bool
	closeOnce     sync.Once
}

// WatcherOptions configures a Watcher.
type WatcherOptions struct {
	// Service runs the cycles. Required.
	Service *Service

	// Source delivers change notifications. Required. Usually the same
	// Source the Service reads snapshots from.
	Source sysconfig.Source

	// DefaultTargetURL supplies the target URL when none has been set
	// explicitly, consulted once at Start. Nil means start with an
	// empty target.
	DefaultTargetURL func() string

	// Logger receives watcher diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
}

// NewWatcher creates a Watcher. Call Start to begin watching.
func NewWatcher(options WatcherOptions) (*Watcher, error) {
	if options.Service == nil {
		return nil, fmt.Errorf("resolve: watcher requires a service")
	}
	if options.Source == nil {
		return nil, fmt.Errorf("resolve: watcher requires a configuration source")
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		service:       options.Service,
		source:        options.Source,
		defaultTarget: options.DefaultTargetURL,
		logger:        logger.With("component", "watcher"),
		notifications: make(chan struct{}, 1),
		stop:          make(chan struct{}),
		done:          make(chan struct{}),
	}, nil
}

// Start establishes the initial target URL, subscribes to
// configuration changes, runs the first cycle, and launches the
// notification loop.
//
// A subscription failure is logged but does not fail Start: the
// watcher then reacts only to explicit UpdateForURL calls, which is
// still a working (if less responsive) mode.
func (w *Watcher) Start(ctx context.Context) error {
	if w.defaultTarget != nil {
		w.mu.Lock()
		w.targetURL = w.defaultTarget()
		w.mu.Unlock()
	}

	cancel, err := w.source.Subscribe(func() {
		select {
		case w.notifications <- struct{}{}:
		default:
			// A cycle is already pending; the next one reads the
			// latest snapshot anyway.
		}
	})
	if err != nil {
		w.logger.Warn("configuration change subscription failed; explicit updates remain available", "error", err)
	} else {
		w.cancelSub = cancel
	}

	if err := w.runCycle(ctx); err != nil {
		w.logger.Warn("initial resolution cycle failed", "error", err)
	}

	w.started = true
	go w.loop(ctx)
	return nil
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case <-w.stop:
			return
		case <-ctx.Done():
			return
		case <-w.notifications:
			if err := w.runCycle(ctx); err != nil {
				w.logger.Warn("resolution cycle failed", "error", err)
			}
		}
	}
}

// UpdateForURL sets a new target URL (when non-empty) and runs one
// cycle synchronously. An empty url re-resolves for the current
// target. The new target persists for all subsequent cycles.
func (w *Watcher) UpdateForURL(ctx context.Context, url string) error {
	if url != "" {
		w.mu.Lock()
		w.targetURL = url
		w.mu.Unlock()
	}
	return w.runCycle(ctx)
}

// TargetURL returns the target URL the next cycle will resolve for.
func (w *Watcher) TargetURL() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.targetURL
}

func (w *Watcher) runCycle(ctx context.Context) error {
	w.cycleMu.Lock()
	defer w.cycleMu.Unlock()
	return w.service.ResolveAndApply(ctx, w.TargetURL())
}

// Close cancels the change subscription and stops the notification
// loop. The subscription is cancelled first so no notification can
// arrive during teardown. Safe to call more than once.
func (w *Watcher) Close() {
	w.closeOnce.Do(func() {
		if w.cancelSub != nil {
			w.cancelSub()
		}
		close(w.stop)
		if w.started {
			<-w.done
		}
	})
}
