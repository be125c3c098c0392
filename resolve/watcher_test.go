// Copyright 2026 The Proxyenv Authors
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/proxyenv-foundation/proxyenv/lib/testutil"
	"github.com/proxyenv-foundation/proxyenv/sysconfig"
)

func newTestWatcher(t *testing.T, source sysconfig.Source, environ Environ, defaultTarget func() string) *Watcher {
	t.Helper()
	service := newTestService(t, source, nil, environ, "")
	watcher, err := NewWatcher(WatcherOptions{
		Service:          service,
		Source:           source,
		DefaultTargetURL: defaultTarget,
		Logger:           slog.New(newRecordingHandler()),
	})
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	t.Cleanup(watcher.Close)
	return watcher
}

func TestWatcherInitialCycleOnStart(t *testing.T) {
	source := sysconfig.NewStatic(sysconfig.Snapshot{
		HTTPEnable: true, HTTPProxy: "proxy.example.com", HTTPPort: 8080,
	})
	environ := newMapEnviron()
	watcher := newTestWatcher(t, source, environ, func() string { return "https://default.example.com/" })

	if err := watcher.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if got, want := environ.Get(VarHTTPProxy), "http://proxy.example.com:8080"; got != want {
		t.Errorf("http_proxy after Start = %q, want %q", got, want)
	}
	if got := watcher.TargetURL(); got != "https://default.example.com/" {
		t.Errorf("TargetURL = %q, want the default provider's value", got)
	}
}

func TestWatcherReactsToConfigurationChange(t *testing.T) {
	source := sysconfig.NewStatic(sysconfig.Snapshot{
		HTTPEnable: true, HTTPProxy: "proxy.example.com", HTTPPort: 8080,
	})
	environ := newMapEnviron()
	environ.changed = make(chan struct{}, 1)
	watcher := newTestWatcher(t, source, environ, nil)

	if err := watcher.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	testutil.RequireReceive(t, environ.changed, 5*time.Second, "initial cycle")

	// A configuration change must trigger a cycle without any explicit
	// call.
	source.Set(sysconfig.Snapshot{
		HTTPEnable: true, HTTPProxy: "other-proxy.example.com", HTTPPort: 3128,
	})

	deadline := time.After(5 * time.Second)
	for environ.Get(VarHTTPProxy) != "http://other-proxy.example.com:3128" {
		select {
		case <-deadline:
			t.Fatalf("http_proxy = %q, change never applied", environ.Get(VarHTTPProxy))
		case <-environ.changed:
		}
	}
}

func TestWatcherChangeClearsDisabledProxy(t *testing.T) {
	source := sysconfig.NewStatic(sysconfig.Snapshot{
		HTTPEnable: true, HTTPProxy: "proxy.example.com", HTTPPort: 8080,
		FTPEnable: true, FTPProxy: "proxy.example.com", FTPPort: 8080,
	})
	environ := newMapEnviron()
	environ.changed = make(chan struct{}, 1)
	watcher := newTestWatcher(t, source, environ, nil)

	if err := watcher.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	// Disable FTP; its variable must be positively cleared.
	source.Set(sysconfig.Snapshot{
		HTTPEnable: true, HTTPProxy: "proxy.example.com", HTTPPort: 8080,
	})

	deadline := time.After(5 * time.Second)
	for environ.Get(VarFTPProxy) != "" {
		select {
		case <-deadline:
			t.Fatalf("ftp_proxy = %q, never cleared after disable", environ.Get(VarFTPProxy))
		case <-environ.changed:
		}
	}
	if got, want := environ.Get(VarHTTPProxy), "http://proxy.example.com:8080"; got != want {
		t.Errorf("http_proxy = %q, want %q (HTTP stays active)", got, want)
	}
}

func TestWatcherUpdateForURLPersistsTarget(t *testing.T) {
	source := sysconfig.NewStatic(sysconfig.Snapshot{
		HTTPEnable: true, HTTPProxy: "proxy.example.com", HTTPPort: 8080,
	})
	environ := newMapEnviron()
	watcher := newTestWatcher(t, source, environ, func() string { return "https://default.example.com/" })

	if err := watcher.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if err := watcher.UpdateForURL(context.Background(), "https://mirror.example.org/pub/"); err != nil {
		t.Fatalf("UpdateForURL: %v", err)
	}
	if got := watcher.TargetURL(); got != "https://mirror.example.org/pub/" {
		t.Errorf("TargetURL = %q, want the explicit override", got)
	}

	// An empty URL re-resolves for the retained target.
	if err := watcher.UpdateForURL(context.Background(), ""); err != nil {
		t.Fatalf("UpdateForURL(empty): %v", err)
	}
	if got := watcher.TargetURL(); got != "https://mirror.example.org/pub/" {
		t.Errorf("TargetURL = %q, empty update must not reset the target", got)
	}
}

func TestWatcherUpdateWithoutSubscription(t *testing.T) {
	// A source whose Subscribe fails: explicit updates must keep
	// working.
	environ := newMapEnviron()
	service := newTestService(t, subscribeFailingSource{}, nil, environ, "")
	watcher, err := NewWatcher(WatcherOptions{
		Service: service,
		Source:  subscribeFailingSource{},
		Logger:  slog.New(newRecordingHandler()),
	})
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	t.Cleanup(watcher.Close)

	if err := watcher.Start(context.Background()); err != nil {
		t.Fatalf("Start must not fail on subscription failure: %v", err)
	}
	environ.values[VarHTTPProxy] = "http://stale:8080"
	if err := watcher.UpdateForURL(context.Background(), "https://target.example.com/"); err != nil {
		t.Fatalf("UpdateForURL: %v", err)
	}
	if got := environ.Get(VarHTTPProxy); got != "" {
		t.Errorf("http_proxy = %q, want cleared by the explicit cycle", got)
	}
}

func TestWatcherCloseIdempotent(t *testing.T) {
	source := sysconfig.NewStatic(sysconfig.Snapshot{})
	watcher := newTestWatcher(t, source, newMapEnviron(), nil)
	if err := watcher.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	watcher.Close()
	watcher.Close()
}

type subscribeFailingSource struct{}

func (subscribeFailingSource) Current(context.Context) (sysconfig.Snapshot, error) {
	return sysconfig.Snapshot{}, nil
}

func (subscribeFailingSource) Subscribe(func()) (func(), error) {
	return nil, errors.New("notification daemon unavailable")
}
