// Copyright 2026 The Proxyenv Authors
// SPDX-License-Identifier: Apache-2.0

package sysconfig

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/proxyenv-foundation/proxyenv/lib/clock"
)

// DefaultPollInterval is how often polling sources re-read their
// backing store when no interval is configured.
const DefaultPollInterval = 5 * time.Second

// FileSource reads the proxy configuration from a YAML file and polls
// it for changes. A notification fires only when the parsed snapshot
// differs from the previous poll — rewriting the file with identical
// content is silent.
type FileSource struct {
	path     string
	clock    clock.Clock
	interval time.Duration

	mu   sync.Mutex
	last *Snapshot // most recent parse, nil before first read
}

// FileSourceOptions configures a FileSource.
type FileSourceOptions struct {
	// Path is the YAML file to read. Required.
	Path string

	// Clock drives the change poll. Defaults to clock.Real().
	Clock clock.Clock

	// PollInterval is how often the file is re-read while a
	// subscription is active. Defaults to DefaultPollInterval.
	PollInterval time.Duration
}

// NewFileSource creates a FileSource. The file is not read until the
// first Current call or the first poll tick.
func NewFileSource(options FileSourceOptions) (*FileSource, error) {
	if options.Path == "" {
		return nil, fmt.Errorf("sysconfig: file source requires a path")
	}
	if options.Clock == nil {
		options.Clock = clock.Real()
	}
	if options.PollInterval <= 0 {
		options.PollInterval = DefaultPollInterval
	}
	return &FileSource{
		path:     options.Path,
		clock:    options.Clock,
		interval: options.PollInterval,
	}, nil
}

// Current parses the file and returns its snapshot.
func (s *FileSource) Current(ctx context.Context) (Snapshot, error) {
	snapshot, err := s.load()
	if err != nil {
		return Snapshot{}, err
	}

	s.mu.Lock()
	s.last = &snapshot
	s.mu.Unlock()
	return snapshot, nil
}

func (s *FileSource) load() (Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("sysconfig: reading %s: %w", s.path, err)
	}
	var snapshot Snapshot
	if err := yaml.Unmarshal(data, &snapshot); err != nil {
		return Snapshot{}, fmt.Errorf("sysconfig: parsing %s: %w", s.path, err)
	}
	return snapshot, nil
}

// Subscribe polls the file on the configured interval and calls notify
// when the parsed snapshot changes. An unreadable or unparsable file
// during a poll is skipped (the previous snapshot stands); the next
// successful poll resumes change detection.
func (s *FileSource) Subscribe(notify func()) (func(), error) {
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
				snapshot, err := s.load()
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
