// Copyright 2026 The Proxyenv Authors
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/proxyenv-foundation/proxyenv/pac"
	"github.com/proxyenv-foundation/proxyenv/sysconfig"
)

// recordingHandler counts log records by level and remembers their
// messages, so tests can assert "exactly one error was logged".
type recordingHandler struct {
	mu       sync.Mutex
	messages map[slog.Level][]string
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{messages: make(map[slog.Level][]string)}
}

func (h *recordingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *recordingHandler) Handle(_ context.Context, record slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages[record.Level] = append(h.messages[record.Level], record.Message)
	return nil
}

func (h *recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *recordingHandler) WithGroup(string) slog.Handler      { return h }

func (h *recordingHandler) count(level slog.Level) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.messages[level])
}

type facilityFunc func(ctx context.Context, pacURL, targetURL string, done func([]pac.Candidate, error))

func (f facilityFunc) Evaluate(ctx context.Context, pacURL, targetURL string, done func([]pac.Candidate, error)) {
	f(ctx, pacURL, targetURL, done)
}

func evaluatorReturning(t *testing.T, candidates []pac.Candidate, err error) *pac.Evaluator {
	t.Helper()
	evaluator, buildErr := pac.NewEvaluator(pac.EvaluatorOptions{
		Facility: facilityFunc(func(_ context.Context, _, _ string, done func([]pac.Candidate, error)) {
			done(candidates, err)
		}),
	})
	if buildErr != nil {
		t.Fatalf("NewEvaluator: %v", buildErr)
	}
	return evaluator
}

func TestResolveStaticEnabled(t *testing.T) {
	resolver := NewResolver(ResolverOptions{Logger: slog.New(newRecordingHandler())})
	snapshot := sysconfig.Snapshot{
		HTTPEnable: true, HTTPProxy: "proxy.example.com", HTTPPort: 8080,
		FTPEnable: true, FTPProxy: "ftp-gw.example.com", FTPPort: 2121,
	}

	outcome := resolver.Resolve(context.Background(), snapshot, "https://target.example.com/")

	if !outcome.HTTP.Active() || outcome.HTTP.Host != "proxy.example.com" || outcome.HTTP.Port != 8080 {
		t.Errorf("HTTP = %+v, want proxy.example.com:8080", outcome.HTTP)
	}
	if !outcome.FTP.Active() || outcome.FTP.Host != "ftp-gw.example.com" || outcome.FTP.Port != 2121 {
		t.Errorf("FTP = %+v, want ftp-gw.example.com:2121", outcome.FTP)
	}
	if outcome.UnsetHTTP || outcome.UnsetFTP {
		t.Error("unset marks present alongside active descriptors")
	}
}

func TestResolveStaticDisabledClearsVariables(t *testing.T) {
	resolver := NewResolver(ResolverOptions{Logger: slog.New(newRecordingHandler())})
	snapshot := sysconfig.Snapshot{
		HTTPEnable: true, HTTPProxy: "proxy.example.com", HTTPPort: 8080,
		// FTP disabled: its variable must be positively cleared.
	}

	outcome := resolver.Resolve(context.Background(), snapshot, "https://target.example.com/")

	if !outcome.HTTP.Active() {
		t.Error("HTTP descriptor missing")
	}
	if outcome.FTP != nil || !outcome.UnsetFTP {
		t.Errorf("FTP = %+v UnsetFTP = %v, want nil descriptor and unset mark", outcome.FTP, outcome.UnsetFTP)
	}
}

func TestResolveStaticEnabledWithoutHost(t *testing.T) {
	resolver := NewResolver(ResolverOptions{Logger: slog.New(newRecordingHandler())})
	snapshot := sysconfig.Snapshot{HTTPEnable: true, HTTPProxy: "", HTTPPort: 8080}

	outcome := resolver.Resolve(context.Background(), snapshot, "https://target.example.com/")
	if outcome.HTTP != nil || !outcome.UnsetHTTP {
		t.Errorf("enabled-but-hostless proxy must clear, got HTTP=%+v UnsetHTTP=%v", outcome.HTTP, outcome.UnsetHTTP)
	}
}

func TestResolveStaticStripsSchemePrefix(t *testing.T) {
	resolver := NewResolver(ResolverOptions{Logger: slog.New(newRecordingHandler())})
	snapshot := sysconfig.Snapshot{HTTPEnable: true, HTTPProxy: "http://proxy.example.com", HTTPPort: 8080}

	outcome := resolver.Resolve(context.Background(), snapshot, "https://target.example.com/")
	if outcome.HTTP.Host != "proxy.example.com" || outcome.HTTP.Scheme != "http" {
		t.Errorf("HTTP = %+v, want bare host with split scheme", outcome.HTTP)
	}
}

func TestResolvePACPrecedesStatic(t *testing.T) {
	evaluator := evaluatorReturning(t, []pac.Candidate{{Type: pac.Proxy, Host: "pac-proxy", Port: 3128}}, nil)
	resolver := NewResolver(ResolverOptions{Evaluator: evaluator, Logger: slog.New(newRecordingHandler())})
	snapshot := sysconfig.Snapshot{
		PACEnable: true, PACURL: "http://pac.example.com/proxy.pac",
		// Static settings must be ignored while PAC is enabled.
		HTTPEnable: true, HTTPProxy: "static-proxy", HTTPPort: 8080,
	}

	outcome := resolver.Resolve(context.Background(), snapshot, "https://target.example.com/")

	if outcome.HTTP == nil || outcome.HTTP.Host != "pac-proxy" || outcome.HTTP.Port != 3128 {
		t.Errorf("HTTP = %+v, want PAC result pac-proxy:3128", outcome.HTTP)
	}
	if outcome.FTP == nil || outcome.FTP.Host != "pac-proxy" {
		t.Errorf("FTP = %+v, want the same PAC result applied to ftp_proxy", outcome.FTP)
	}
}

func TestResolvePACDirectClearsBoth(t *testing.T) {
	handler := newRecordingHandler()
	evaluator := evaluatorReturning(t, []pac.Candidate{{Type: pac.Direct}}, nil)
	resolver := NewResolver(ResolverOptions{Evaluator: evaluator, Logger: slog.New(handler)})
	snapshot := sysconfig.Snapshot{PACEnable: true, PACURL: "http://pac.example.com/proxy.pac"}

	outcome := resolver.Resolve(context.Background(), snapshot, "https://target.example.com/")

	if !outcome.UnsetHTTP || !outcome.UnsetFTP || outcome.HTTP != nil || outcome.FTP != nil {
		t.Errorf("outcome = %+v, want both variables cleared", outcome)
	}
	if errors := handler.count(slog.LevelError); errors != 0 {
		t.Errorf("DIRECT produced %d error logs, want 0 (not a failure)", errors)
	}
}

func TestResolvePACFailureLogsExactlyOnce(t *testing.T) {
	handler := newRecordingHandler()
	evaluator := evaluatorReturning(t, nil, errors.New("script exploded"))
	resolver := NewResolver(ResolverOptions{Evaluator: evaluator, Logger: slog.New(handler)})
	snapshot := sysconfig.Snapshot{PACEnable: true, PACURL: "http://pac.example.com/proxy.pac"}

	outcome := resolver.Resolve(context.Background(), snapshot, "https://target.example.com/")

	if !outcome.UnsetHTTP || !outcome.UnsetFTP {
		t.Errorf("outcome = %+v, want both variables cleared on failure", outcome)
	}
	if count := handler.count(slog.LevelError); count != 1 {
		t.Errorf("failure produced %d error logs, want exactly 1", count)
	}
}

func TestResolvePACWithoutUsableURL(t *testing.T) {
	handler := newRecordingHandler()
	resolver := NewResolver(ResolverOptions{Logger: slog.New(handler)})

	for _, pacURL := range []string{"", "not-a-url", "/relative/path.pac"} {
		snapshot := sysconfig.Snapshot{
			PACEnable: true, PACURL: pacURL,
			HTTPEnable: true, HTTPProxy: "static-proxy", HTTPPort: 8080,
		}
		outcome := resolver.Resolve(context.Background(), snapshot, "https://target.example.com/")
		if outcome != (Outcome{}) {
			t.Errorf("PACURL=%q: outcome = %+v, want no changes at all", pacURL, outcome)
		}
	}
	if count := handler.count(slog.LevelInfo); count == 0 {
		t.Error("unusable PAC URL produced no informational log")
	}
	if count := handler.count(slog.LevelError); count != 0 {
		t.Errorf("unusable PAC URL produced %d error logs, want 0", count)
	}
}

func TestResolvePACWithoutEvaluator(t *testing.T) {
	handler := newRecordingHandler()
	resolver := NewResolver(ResolverOptions{Logger: slog.New(handler)})
	snapshot := sysconfig.Snapshot{PACEnable: true, PACURL: "http://pac.example.com/proxy.pac"}

	outcome := resolver.Resolve(context.Background(), snapshot, "https://target.example.com/")
	if !outcome.UnsetHTTP || !outcome.UnsetFTP {
		t.Errorf("outcome = %+v, want both variables cleared", outcome)
	}
	if count := handler.count(slog.LevelError); count != 1 {
		t.Errorf("missing evaluator produced %d error logs, want 1", count)
	}
}
