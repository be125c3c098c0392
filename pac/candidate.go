// Copyright 2026 The Proxyenv Authors
// SPDX-License-Identifier: Apache-2.0

package pac

import (
	"fmt"
	"strconv"
	"strings"
)

// CandidateType classifies one entry of a PAC result list.
type CandidateType string

const (
	// Direct means connect without a proxy.
	Direct CandidateType = "DIRECT"
	// Proxy is an HTTP proxy.
	Proxy CandidateType = "PROXY"
	// SOCKS is a SOCKS4 proxy.
	SOCKS CandidateType = "SOCKS"
	// SOCKS5 is a SOCKS5 proxy.
	SOCKS5 CandidateType = "SOCKS5"
)

// Candidate is one proxy option from a PAC result, in preference
// order. Host and Port are empty/zero for Direct candidates.
type Candidate struct {
	Type CandidateType
	Host string
	Port uint16
}

// String renders the candidate in PAC result syntax.
func (c Candidate) String() string {
	if c.Type == Direct {
		return string(Direct)
	}
	if c.Port == 0 {
		return fmt.Sprintf("%s %s", c.Type, c.Host)
	}
	return fmt.Sprintf("%s %s:%d", c.Type, c.Host, c.Port)
}

// ParseResult parses a FindProxyForURL return string into an ordered
// candidate list. The grammar is semicolon-separated directives:
//
//	"PROXY proxy.example.com:8080; SOCKS5 fallback:1080; DIRECT"
//
// An empty or all-whitespace string yields an empty list (no proxy
// required). Unrecognized directives are an error — a malformed result
// must not silently pass as "no proxy".
func ParseResult(result string) ([]Candidate, error) {
	var candidates []Candidate
	for _, entry := range strings.Split(result, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		keyword, rest, _ := strings.Cut(entry, " ")
		candidateType := CandidateType(strings.ToUpper(keyword))
		switch candidateType {
		case Direct:
			candidates = append(candidates, Candidate{Type: Direct})
		case Proxy, SOCKS, SOCKS5:
			host, port, err := splitHostPort(strings.TrimSpace(rest))
			if err != nil {
				return nil, fmt.Errorf("pac: directive %q: %w", entry, err)
			}
			candidates = append(candidates, Candidate{Type: candidateType, Host: host, Port: port})
		default:
			return nil, fmt.Errorf("pac: unrecognized directive %q", entry)
		}
	}
	return candidates, nil
}

// splitHostPort splits "host:port" with an optional port. Unlike
// net.SplitHostPort it tolerates a bare host (port 0, scheme default
// applies downstream).
func splitHostPort(hostport string) (string, uint16, error) {
	if hostport == "" {
		return "", 0, fmt.Errorf("missing host")
	}
	host, portText, found := strings.Cut(hostport, ":")
	if host == "" {
		return "", 0, fmt.Errorf("missing host")
	}
	if !found || portText == "" {
		return host, 0, nil
	}
	port, err := strconv.ParseUint(portText, 10, 16)
	if err != nil {
		return "", 0, fmt.Errorf("invalid port %q", portText)
	}
	return host, uint16(port), nil
}
