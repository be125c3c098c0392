// Copyright 2026 The Proxyenv Authors
// SPDX-License-Identifier: Apache-2.0

//go:build darwin

package resolve

import (
	"github.com/proxyenv-foundation/proxyenv/credstore"
	"github.com/proxyenv-foundation/proxyenv/sysconfig"
)

// platformSource reads the system proxy preferences via scutil.
func platformSource() sysconfig.Source {
	return sysconfig.NewScutilSource(sysconfig.ScutilSourceOptions{})
}

// platformStores is the default credential lookup order: environment
// overrides first, then the login keychain.
func platformStores() []credstore.Store {
	return []credstore.Store{
		&credstore.Env{},
		&credstore.Keychain{},
	}
}
