// Copyright 2026 The Proxyenv Authors
// SPDX-License-Identifier: Apache-2.0

package credstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/proxyenv-foundation/proxyenv/lib/secret"
)

// ErrNotFound reports that no credential is stored for the requested
// host and port. This is the expected, common outcome — not a fault.
var ErrNotFound = errors.New("credstore: no stored credential")

// StoreError reports a store-level fault: permission denial, a corrupt
// record, or a backend tool failure. Distinct from ErrNotFound so
// callers can log the difference while degrading identically.
type StoreError struct {
	// Backend names the store that failed ("keychain", "file", ...).
	Backend string
	// Err is the underlying diagnostic.
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("credstore: %s backend: %v", e.Backend, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Credential is a stored username/password pair. The password lives in
// a locked secret buffer; Close releases it.
type Credential struct {
	// User is the account name.
	User string
	// Password is the stored password. Never logged unmasked.
	Password *secret.Buffer
}

// Close releases the password buffer. Safe on a credential with no
// password and idempotent.
func (c *Credential) Close() error {
	if c == nil || c.Password == nil {
		return nil
	}
	return c.Password.Close()
}

// Store queries a credential backend by proxy host and port.
//
// The port is passed exactly as given — including 0 — because proxy
// credentials are keyed by host+port in most stores; "any port" must
// not be assumed. Implementations return ErrNotFound for the expected
// miss and *StoreError for faults. A lookup may block on a user-facing
// authorization prompt; that is accepted and must not be retried.
type Store interface {
	Find(ctx context.Context, host string, port uint16) (*Credential, error)
}

// Chain tries each store in order. ErrNotFound falls through to the
// next backend; a hit or a StoreError stops the chain (a faulting
// store is surfaced, not papered over by a later backend).
type Chain []Store

// Find implements Store.
func (c Chain) Find(ctx context.Context, host string, port uint16) (*Credential, error) {
	for _, store := range c {
		credential, err := store.Find(ctx, host, port)
		if err == nil {
			return credential, nil
		}
		if errors.Is(err, ErrNotFound) {
			continue
		}
		return nil, err
	}
	return nil, ErrNotFound
}
