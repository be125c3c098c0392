// Copyright 2026 The Proxyenv Authors
// SPDX-License-Identifier: Apache-2.0

//go:build darwin

package sysconfig

import (
	"context"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"github.com/proxyenv-foundation/proxyenv/lib/clock"
)

// ScutilSource reads the system proxy configuration on macOS by
// executing scutil --proxies. Change notification is poll-based: the
// SystemConfiguration dynamic store has no subprocess-visible push
// channel, so the source re-reads on the configured interval and
// notifies when the parsed snapshot differs.
type ScutilSource struct {
	clock    clock.Clock
	interval time.Duration

	mu   sync.Mutex
	last *Snapshot
}

// ScutilSourceOptions configures a ScutilSource.
type ScutilSourceOptions struct {
	// Clock drives the change poll. Defaults to clock.Real().
	Clock clock.Clock

	// PollInterval is how often scutil is re-run while a subscription
	// is active. Defaults to DefaultPollInterval.
	PollInterval time.Duration
}

// NewScutilSource creates a ScutilSource.
func NewScutilSource(options ScutilSourceOptions) *ScutilSource {
	if options.Clock == nil {
		options.Clock = clock.Real()
	}
	if options.PollInterval <= 0 {
		options.PollInterval = DefaultPollInterval
	}
	return &ScutilSource{
		clock:    options.Clock,
		interval: options.PollInterval,
	}
}

// Current runs scutil --proxies and parses its output.
func (s *ScutilSource) Current(ctx context.Context) (Snapshot, error) {
	snapshot, err := s.load(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	s.mu.Lock()
	s.last = &snapshot
	s.mu.Unlock()
	return snapshot, nil
}

func (s *ScutilSource) load(ctx context.Context) (Snapshot, error) {
	output, err := exec.CommandContext(ctx, "scutil", "--proxies").Output()
	if err != nil {
		return Snapshot{}, fmt.Errorf("sysconfig: running scutil --proxies: %w", err)
	}
	return parseScutilProxies(string(output))
}

// Subscribe polls scutil on the configured interval and calls notify
// when the proxy configuration changes. A failed poll is skipped; the
// next successful poll resumes change detection.
func (s *ScutilSource) Subscribe(notify func()) (func(), error) {
	stop := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := s.clock.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				snapshot, err := s.load(context.Background())
				if err != nil {
					continue
				}
				s.mu.Lock()
				changed := s.last == nil || *s.last != snapshot
				s.last = &snapshot
				s.mu.Unlock()
				if changed {
					notify()
				}
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done
		})
	}, nil
}
