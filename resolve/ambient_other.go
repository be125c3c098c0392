// Copyright 2026 The Proxyenv Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !darwin

package resolve

import (
	"os"
	"path/filepath"

	"github.com/proxyenv-foundation/proxyenv/credstore"
	"github.com/proxyenv-foundation/proxyenv/sysconfig"
)

// platformSource polls a YAML proxy configuration file under the user
// configuration directory when one exists; otherwise configuration is
// static and empty (no proxies, explicit updates still work).
func platformSource() sysconfig.Source {
	path := configFilePath("proxies.yaml")
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			source, err := sysconfig.NewFileSource(sysconfig.FileSourceOptions{Path: path})
			if err == nil {
				return source
			}
		}
	}
	return sysconfig.NewStatic(sysconfig.Snapshot{})
}

// platformStores is the default credential lookup order: environment
// overrides first, then the credentials file.
func platformStores() []credstore.Store {
	stores := []credstore.Store{&credstore.Env{}}
	if path := configFilePath("credentials.yaml"); path != "" {
		stores = append(stores, &credstore.File{Path: path})
	}
	return stores
}

func configFilePath(name string) string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(configDir, "proxyenv", name)
}
