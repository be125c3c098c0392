// Copyright 2026 The Proxyenv Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides proxyenv's standard CBOR encoding configuration.
//
// Proxyenv uses two serialization formats with a clear boundary:
//
//   - YAML for operator-edited inputs: the CLI config file, file-backed
//     system proxy snapshots, and credential files.
//   - CBOR for internal on-disk state: the last-resolution state file
//     written after every cycle and read back by "proxyenv state".
//
// This package provides the shared CBOR encoding and decoding modes so
// that every proxyenv package encodes identically without duplicating
// configuration. The encoder uses Core Deterministic Encoding (RFC 8949
// §4.2): sorted map keys, smallest integer encoding, no
// indefinite-length items. Same logical data always produces identical
// bytes, which keeps repeated identical resolutions byte-identical on
// disk (the idempotence contract extends to the state file).
package codec
