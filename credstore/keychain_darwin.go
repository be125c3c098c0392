// Copyright 2026 The Proxyenv Authors
// SPDX-License-Identifier: Apache-2.0

//go:build darwin

package credstore

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"

	"github.com/proxyenv-foundation/proxyenv/lib/secret"
)

// Keychain looks up proxy credentials in the macOS keychain via
// security(1). Internet passwords are searched first, then generic
// passwords, so an entry is found regardless of how it was recorded.
// No protocol or authentication-type restriction is passed — the
// search is as unconstrained as the tool allows, to avoid false
// negatives on entries recorded under ftp, http, or no protocol at
// all.
//
// A lookup may trigger the OS authorization prompt ("security wants to
// use your confidential information"). That is expected, may block
// until the user answers, and is never retried — a retry would
// re-prompt.
type Keychain struct{}

// Find implements Store.
func (Keychain) Find(ctx context.Context, host string, port uint16) (*Credential, error) {
	if host == "" {
		return nil, &StoreError{Backend: "keychain", Err: fmt.Errorf("empty host")}
	}

	// -g dumps the password alongside the attribute block. The port
	// is passed exactly as given, including 0: keychain entries are
	// keyed by host+port and "any port" must not be assumed.
	internetArgs := []string{
		"find-internet-password",
		"-s", host,
		"-P", strconv.Itoa(int(port)),
		"-g",
	}
	credential, err := runSecurity(ctx, internetArgs)
	if err == nil {
		return credential, nil
	}
	if _, isStoreError := err.(*StoreError); isStoreError {
		return nil, err
	}

	// Not found as an internet password: fall back to a generic
	// password recorded under the host as service name.
	genericArgs := []string{
		"find-generic-password",
		"-s", host,
		"-g",
	}
	return runSecurity(ctx, genericArgs)
}

// runSecurity executes security(1) and parses its combined output.
// The attribute block arrives on stdout, the password line on stderr;
// both are captured together.
func runSecurity(ctx context.Context, args []string) (*Credential, error) {
	command := exec.CommandContext(ctx, "security", args...)
	var output bytes.Buffer
	command.Stdout = &output
	command.Stderr = &output

	if err := command.Run(); err != nil {
		if bytes.Contains(output.Bytes(), []byte("could not be found")) {
			return nil, ErrNotFound
		}
		return nil, &StoreError{
			Backend: "keychain",
			Err:     fmt.Errorf("security %s: %w: %s", args[0], err, bytes.TrimSpace(output.Bytes())),
		}
	}

	attributes, password, err := parseSecurityDump(output.String())
	// Scrub the captured dump — it held the plaintext password.
	secret.Zero(output.Bytes())
	if err != nil {
		return nil, &StoreError{Backend: "keychain", Err: err}
	}

	credential := &Credential{
		// No typed accessor exists for the username: the account
		// field is selected from the full attribute set via the
		// semantic tag table.
		User: attributes.stringField(fieldAccount),
	}
	if password != "" {
		buffer, err := secret.NewFromString(password)
		if err != nil {
			return nil, &StoreError{Backend: "keychain", Err: err}
		}
		credential.Password = buffer
	}
	return credential, nil
}
