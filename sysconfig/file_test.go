// Copyright 2026 The Proxyenv Authors
// SPDX-License-Identifier: Apache-2.0

package sysconfig

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/proxyenv-foundation/proxyenv/lib/clock"
	"github.com/proxyenv-foundation/proxyenv/lib/testutil"
)

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
}

func TestFileSourceCurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "proxies.yaml")
	writeConfig(t, path, "http_enable: true\nhttp_proxy: proxy.example.com\nhttp_port: 8080\n")

	source, err := NewFileSource(FileSourceOptions{Path: path})
	if err != nil {
		t.Fatalf("NewFileSource: %v", err)
	}

	snapshot, err := source.Current(context.Background())
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	want := Snapshot{HTTPEnable: true, HTTPProxy: "proxy.example.com", HTTPPort: 8080}
	if snapshot != want {
		t.Errorf("Current = %+v, want %+v", snapshot, want)
	}
}

func TestFileSourceCurrentMissingFile(t *testing.T) {
	source, err := NewFileSource(FileSourceOptions{Path: filepath.Join(t.TempDir(), "absent.yaml")})
	if err != nil {
		t.Fatalf("NewFileSource: %v", err)
	}
	if _, err := source.Current(context.Background()); err == nil {
		t.Error("Current on missing file succeeded")
	}
}

func TestFileSourceSubscribeFiresOncePerChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "proxies.yaml")
	writeConfig(t, path, "http_enable: false\n")

	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	source, err := NewFileSource(FileSourceOptions{
		Path:         path,
		Clock:        fake,
		PollInterval: time.Second,
	})
	if err != nil {
		t.Fatalf("NewFileSource: %v", err)
	}
	if _, err := source.Current(context.Background()); err != nil {
		t.Fatalf("priming Current: %v", err)
	}

	notifications := make(chan struct{}, 8)
	cancel, err := source.Subscribe(func() { notifications <- struct{}{} })
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer cancel()

	// Unchanged content: a poll fires, no notification.
	fake.WaitForTimers(1)
	fake.Advance(time.Second)
	select {
	case <-notifications:
		t.Fatal("notification fired for unchanged content")
	default:
	}

	// Changed content: exactly one notification on the next poll.
	writeConfig(t, path, "http_enable: true\nhttp_proxy: proxy.example.com\n")
	fake.Advance(time.Second)
	testutil.RequireReceive(t, notifications, 5*time.Second, "waiting for change notification")

	// Rewrite with identical content: silent.
	writeConfig(t, path, "http_enable: true\nhttp_proxy: proxy.example.com\n")
	fake.Advance(time.Second)
	select {
	case <-notifications:
		t.Fatal("notification fired for identical rewrite")
	default:
	}
}
