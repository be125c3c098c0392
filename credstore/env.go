// Copyright 2026 The Proxyenv Authors
// SPDX-License-Identifier: Apache-2.0

package credstore

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/proxyenv-foundation/proxyenv/lib/secret"
)

// Env reads credentials from environment variables derived from the
// proxy host and port. For host "proxy.example.com" port 8080 with
// prefix "PROXYENV_", the variables consulted are:
//
//	PROXYENV_PROXY_EXAMPLE_COM_8080_USER
//	PROXYENV_PROXY_EXAMPLE_COM_8080_PASS
//
// Useful for development and CI. Values remain visible in the process
// environment; prefer File or the system keychain elsewhere.
type Env struct {
	// Prefix is prepended to derived variable names.
	// Defaults to "PROXYENV_" when empty.
	Prefix string
}

// Find implements Store.
func (e Env) Find(ctx context.Context, host string, port uint16) (*Credential, error) {
	prefix := e.Prefix
	if prefix == "" {
		prefix = "PROXYENV_"
	}

	base := prefix + envToken(host) + fmt.Sprintf("_%d", port)
	user, userSet := os.LookupEnv(base + "_USER")
	pass, passSet := os.LookupEnv(base + "_PASS")
	if !userSet && !passSet {
		return nil, ErrNotFound
	}

	credential := &Credential{User: user}
	if pass != "" {
		buffer, err := secret.NewFromString(pass)
		if err != nil {
			return nil, &StoreError{Backend: "env", Err: err}
		}
		credential.Password = buffer
	}
	return credential, nil
}

// envToken converts a host name to environment-variable form:
// "proxy.example.com" -> "PROXY_EXAMPLE_COM".
func envToken(host string) string {
	token := strings.ToUpper(host)
	token = strings.ReplaceAll(token, ".", "_")
	token = strings.ReplaceAll(token, "-", "_")
	return token
}
