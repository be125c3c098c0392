// Copyright 2026 The Proxyenv Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports the proxyenv build version.
package version

// version is overridden at build time via
// -ldflags "-X github.com/proxyenv-foundation/proxyenv/lib/version.version=v1.2.3".
var version = "dev"

// Info returns the version string baked into the binary, or "dev" for
// untagged builds.
func Info() string {
	return version
}
