// Copyright 2026 The Proxyenv Authors
// SPDX-License-Identifier: Apache-2.0

package resolve

import "os"

// Environ is the environment-variable-setting primitive the resolver
// applies its outcome through. The production implementation wraps the
// process environment (inherited by every subsequently launched
// subprocess); tests inject a map.
//
// Set overwrites any prior value and is idempotent; Unset of an absent
// variable is a no-op.
type Environ interface {
	Get(key string) string
	Set(key, value string) error
	Unset(key string) error
}

// OSEnviron returns the process-environment implementation.
func OSEnviron() Environ { return osEnviron{} }

type osEnviron struct{}

func (osEnviron) Get(key string) string       { return os.Getenv(key) }
func (osEnviron) Set(key, value string) error { return os.Setenv(key, value) }
func (osEnviron) Unset(key string) error      { return os.Unsetenv(key) }
