// Copyright 2026 The Proxyenv Authors
// SPDX-License-Identifier: Apache-2.0

package pac

import (
	"reflect"
	"testing"
)

func TestParseResult(t *testing.T) {
	tests := []struct {
		name   string
		result string
		want   []Candidate
	}{
		{
			name:   "single proxy",
			result: "PROXY proxy.example.com:8080",
			want:   []Candidate{{Type: Proxy, Host: "proxy.example.com", Port: 8080}},
		},
		{
			name:   "chain with fallbacks",
			result: "PROXY proxy.example.com:8080; SOCKS5 fallback.example.com:1080; DIRECT",
			want: []Candidate{
				{Type: Proxy, Host: "proxy.example.com", Port: 8080},
				{Type: SOCKS5, Host: "fallback.example.com", Port: 1080},
				{Type: Direct},
			},
		},
		{
			name:   "direct only",
			result: "DIRECT",
			want:   []Candidate{{Type: Direct}},
		},
		{
			name:   "lowercase keyword",
			result: "proxy proxy.example.com:3128",
			want:   []Candidate{{Type: Proxy, Host: "proxy.example.com", Port: 3128}},
		},
		{
			name:   "bare host without port",
			result: "PROXY proxy.example.com",
			want:   []Candidate{{Type: Proxy, Host: "proxy.example.com"}},
		},
		{
			name:   "empty string",
			result: "",
			want:   nil,
		},
		{
			name:   "whitespace and empty segments",
			result: " ; PROXY proxy.example.com:8080 ; ",
			want:   []Candidate{{Type: Proxy, Host: "proxy.example.com", Port: 8080}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseResult(tt.result)
			if err != nil {
				t.Fatalf("ParseResult(%q): %v", tt.result, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseResult(%q) = %v, want %v", tt.result, got, tt.want)
			}
		})
	}
}

func TestParseResultErrors(t *testing.T) {
	tests := []string{
		"HTTPS proxy.example.com:443", // keyword outside the grammar
		"PROXY",                       // missing host
		"PROXY :8080",                 // empty host
		"PROXY proxy.example.com:http",
		"PROXY proxy.example.com:99999",
	}
	for _, result := range tests {
		if _, err := ParseResult(result); err == nil {
			t.Errorf("ParseResult(%q) succeeded, want error", result)
		}
	}
}

func TestCandidateString(t *testing.T) {
	tests := []struct {
		candidate Candidate
		want      string
	}{
		{Candidate{Type: Direct}, "DIRECT"},
		{Candidate{Type: Proxy, Host: "proxy.example.com", Port: 8080}, "PROXY proxy.example.com:8080"},
		{Candidate{Type: SOCKS5, Host: "fallback.example.com"}, "SOCKS5 fallback.example.com"},
	}
	for _, tt := range tests {
		if got := tt.candidate.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
