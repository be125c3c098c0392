// Copyright 2026 The Proxyenv Authors
// SPDX-License-Identifier: Apache-2.0

package resolve

import "strings"

// Environment variables this module owns. The value grammar
// scheme://[user:pass@]host[:port] is the binding contract with the
// downstream subprocess and must be preserved exactly.
const (
	// VarHTTPProxy is the HTTP proxy environment variable.
	VarHTTPProxy = "http_proxy"
	// VarFTPProxy is the FTP proxy environment variable.
	VarFTPProxy = "ftp_proxy"
)

// Descriptor is a normalized "this proxy applies to this variable"
// record. Host never carries a scheme prefix; any scheme found in the
// configuration is split off into Scheme at construction so credential
// lookups see the bare host.
type Descriptor struct {
	// Variable is the environment variable the descriptor feeds
	// (VarHTTPProxy or VarFTPProxy).
	Variable string
	// Scheme is the proxy URL scheme; empty means the default
	// ("http") applies at synthesis.
	Scheme string
	// Host is the bare proxy host. A descriptor with an empty host is
	// never active.
	Host string
	// Port is the proxy port; 0 means no explicit port, the scheme
	// default applies.
	Port uint16
}

// Active reports whether the descriptor names a usable proxy.
func (d *Descriptor) Active() bool {
	return d != nil && d.Host != ""
}

// splitSchemeHost separates an optional scheme prefix from a
// configured proxy host. System preference panes accept entries like
// "http://proxy.corp" and "://proxy.corp"; the literal host portion
// must be isolated before credential lookup and reconstruction.
func splitSchemeHost(raw string) (scheme, host string) {
	host = strings.TrimSpace(raw)
	if index := strings.Index(host, "://"); index >= 0 {
		scheme = host[:index]
		host = host[index+len("://"):]
	}
	return scheme, host
}
