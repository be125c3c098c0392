// Copyright 2026 The Proxyenv Authors
// SPDX-License-Identifier: Apache-2.0

// Package statefile provides atomic persistence for the outcome of the
// most recent proxy resolution cycle. After every cycle the resolver
// records which environment variables were set or cleared, for which
// target URL, and when — with credential segments already masked. The
// "proxyenv state" subcommand reads the file back for diagnostics.
//
// The file is written atomically (write to temporary file, fsync,
// rename) so readers never see a partial or corrupt state, and is
// encoded as deterministic CBOR via lib/codec: identical resolution
// outcomes produce byte-identical files.
//
// The state file never contains a plaintext password. Callers are
// responsible for passing masked values only; the package stores what
// it is given.
package statefile
