// Copyright 2026 The Proxyenv Authors
// SPDX-License-Identifier: Apache-2.0

//go:build darwin

package main

import (
	"github.com/proxyenv-foundation/proxyenv/credstore"
	"github.com/proxyenv-foundation/proxyenv/sysconfig"
)

func defaultPlatformSource(cfg config) (sysconfig.Source, error) {
	return newScutilSource(cfg)
}

func newScutilSource(cfg config) (sysconfig.Source, error) {
	return sysconfig.NewScutilSource(sysconfig.ScutilSourceOptions{
		PollInterval: cfg.Source.PollInterval,
	}), nil
}

func newKeychainStore() (credstore.Store, error) {
	return &credstore.Keychain{}, nil
}
