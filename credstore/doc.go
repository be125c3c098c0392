// Copyright 2026 The Proxyenv Authors
// SPDX-License-Identifier: Apache-2.0

// Package credstore looks up proxy credentials by host and port.
//
// A [Store] answers "is there a stored username/password for this
// proxy?" — [ErrNotFound] is the expected, common miss and is distinct
// from a [*StoreError], which reports a store-level fault (permission
// denial, corrupt record, tool failure). Callers treat both as "no
// credential available" but log them differently.
//
// Credentials are fetched fresh on every resolution and never cached:
// keychain content can change between resolutions, and a stale hit is
// worse than a repeated lookup.
//
// Backends:
//
//   - Keychain (darwin only): shells out to security(1), searching
//     internet passwords first and generic passwords second so an
//     entry is found regardless of how the store classified it. The
//     lookup may trigger the OS authorization prompt; that is expected
//     and never retried (a retry would re-prompt). The attribute dump
//     has no typed accessor for "the username field"; a typed lookup
//     table over semantic field names isolates the raw tag scan to
//     this package (see attr.go).
//   - [File]: a YAML credential file keyed "host:port".
//   - [Env]: environment variables derived from host and port.
//   - [Prompt]: interactive terminal prompt (explicit opt-in).
//   - [Chain]: tries backends in order; first hit wins.
//
// Passwords live in lib/secret buffers from the moment they are
// parsed; call [Credential.Close] once the value has been consumed.
package credstore
