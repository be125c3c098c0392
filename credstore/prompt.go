// Copyright 2026 The Proxyenv Authors
// SPDX-License-Identifier: Apache-2.0

package credstore

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/proxyenv-foundation/proxyenv/lib/secret"
)

// Prompt asks the user for credentials on the controlling terminal.
// This is the interactive analog of the OS keychain authorization
// prompt: it blocks until the user answers, which is accepted and not
// treated as a hang. When stdin is not a terminal the store reports
// ErrNotFound so non-interactive runs degrade silently.
//
// Prompt is an explicit opt-in backend (config "prompt"); it is never
// part of a default chain.
type Prompt struct {
	// Input defaults to os.Stdin.
	Input *os.File
	// Output receives the prompts; defaults to os.Stderr.
	Output *os.File
}

// Find implements Store. An empty username answer means the user
// declined: ErrNotFound.
func (p Prompt) Find(ctx context.Context, host string, port uint16) (*Credential, error) {
	input := p.Input
	if input == nil {
		input = os.Stdin
	}
	output := p.Output
	if output == nil {
		output = os.Stderr
	}

	if !term.IsTerminal(int(input.Fd())) {
		return nil, ErrNotFound
	}

	fmt.Fprintf(output, "Username for proxy %s:%d (empty to skip): ", host, port)
	reader := bufio.NewReader(input)
	userLine, err := reader.ReadString('\n')
	if err != nil {
		return nil, &StoreError{Backend: "prompt", Err: err}
	}
	user := strings.TrimSpace(userLine)
	if user == "" {
		return nil, ErrNotFound
	}

	fmt.Fprintf(output, "Password for %s@%s:%d: ", user, host, port)
	passwordBytes, err := term.ReadPassword(int(input.Fd()))
	fmt.Fprintln(output)
	if err != nil {
		return nil, &StoreError{Backend: "prompt", Err: err}
	}

	credential := &Credential{User: user}
	if len(passwordBytes) > 0 {
		// NewFromBytes zeros passwordBytes after copying.
		buffer, err := secret.NewFromBytes(passwordBytes)
		if err != nil {
			return nil, &StoreError{Backend: "prompt", Err: err}
		}
		credential.Password = buffer
	}
	return credential, nil
}
