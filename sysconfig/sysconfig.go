// Copyright 2026 The Proxyenv Authors
// SPDX-License-Identifier: Apache-2.0

package sysconfig

import "context"

// Snapshot is the proxy-relevant subset of the system network
// configuration at one point in time.
//
// Port 0 means "no explicit port configured"; downstream code applies
// the scheme default. An enable flag can be set while the host is
// empty — such a descriptor is never considered active.
type Snapshot struct {
	// HTTPEnable reports whether a static HTTP proxy is configured.
	HTTPEnable bool `yaml:"http_enable"`
	// HTTPProxy is the HTTP proxy host. May carry a scheme prefix
	// (e.g. "http://proxy.corp"); the resolver strips it.
	HTTPProxy string `yaml:"http_proxy"`
	// HTTPPort is the HTTP proxy port, 0 when unconfigured.
	HTTPPort uint16 `yaml:"http_port"`

	// FTPEnable reports whether a static FTP proxy is configured.
	FTPEnable bool `yaml:"ftp_enable"`
	// FTPProxy is the FTP proxy host.
	FTPProxy string `yaml:"ftp_proxy"`
	// FTPPort is the FTP proxy port, 0 when unconfigured.
	FTPPort uint16 `yaml:"ftp_port"`

	// PACEnable reports whether proxy auto-configuration is active.
	// When set (and PACURL parses), PAC takes precedence over the
	// static per-protocol settings.
	PACEnable bool `yaml:"pac_enable"`
	// PACURL is the PAC script URL.
	PACURL string `yaml:"pac_url"`
}

// Source produces configuration snapshots and change notifications.
type Source interface {
	// Current returns the configuration as of now. Implementations
	// must not cache across calls — keychain-style stores and system
	// preferences can change between resolutions.
	Current(ctx context.Context) (Snapshot, error)

	// Subscribe registers notify to be called whenever a
	// proxy-relevant key changes. The callback carries no payload;
	// subscribers re-read Current. Returns a cancel function that
	// unregisters the subscription; cancel must be called before the
	// subscriber is torn down. Subscribe may fail (for example when
	// the underlying notification facility is unavailable), in which
	// case the source remains usable for explicit Current calls.
	Subscribe(notify func()) (cancel func(), err error)
}
