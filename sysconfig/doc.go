// Copyright 2026 The Proxyenv Authors
// SPDX-License-Identifier: Apache-2.0

// Package sysconfig reads the host's proxy-relevant network
// configuration and reports changes to it.
//
// A [Snapshot] is a normalized view of the settings the resolver cares
// about: per-protocol enable flags, proxy host and port for HTTP and
// FTP, and the PAC enable flag and script URL. A [Source] produces
// snapshots and notifies subscribers when any of those keys change.
//
// Three sources are provided:
//
//   - [Static]: an in-memory source whose snapshot is replaced with
//     Set. Used by tests and by deployments that pin a configuration.
//   - [FileSource]: a YAML file polled for changes on an injected
//     clock. Used where no system facility is available or desired.
//   - ScutilSource (darwin only): shells out to scutil --proxies and
//     parses its dictionary output. The parse layer is portable and
//     tested on every platform; only the exec call is build-tagged.
//
// Change notification is deliberately edge-triggered and contentless:
// subscribers re-read Current rather than diffing payloads, which
// keeps the resolver's "snapshot at cycle start" ordering guarantee
// trivial.
package sysconfig
