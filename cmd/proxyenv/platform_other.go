// Copyright 2026 The Proxyenv Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !darwin

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/proxyenv-foundation/proxyenv/credstore"
	"github.com/proxyenv-foundation/proxyenv/sysconfig"
)

// defaultPlatformSource reads proxies.yaml under the user config
// directory when it exists, otherwise an empty static source (no
// proxies configured).
func defaultPlatformSource(cfg config) (sysconfig.Source, error) {
	configDir, err := os.UserConfigDir()
	if err == nil {
		path := filepath.Join(configDir, "proxyenv", "proxies.yaml")
		if _, statErr := os.Stat(path); statErr == nil {
			return sysconfig.NewFileSource(sysconfig.FileSourceOptions{
				Path:         path,
				PollInterval: cfg.Source.PollInterval,
			})
		}
	}
	return sysconfig.NewStatic(sysconfig.Snapshot{}), nil
}

func newScutilSource(config) (sysconfig.Source, error) {
	return nil, fmt.Errorf("source type %q is only available on macOS", "scutil")
}

func newKeychainStore() (credstore.Store, error) {
	return nil, fmt.Errorf("store type %q is only available on macOS", "keychain")
}
