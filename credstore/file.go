// Copyright 2026 The Proxyenv Authors
// SPDX-License-Identifier: Apache-2.0

package credstore

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/proxyenv-foundation/proxyenv/lib/secret"
)

// File reads credentials from a YAML file keyed "host:port":
//
//	credentials:
//	  "proxy.example.com:8080":
//	    user: alice
//	    pass: s3cret
//	  "ftpproxy.example.com:2121":
//	    user: bob
//	    pass: hunter2
//
// The file should be mode 0600; more permissive modes are a fault, not
// a silent accept. The file is re-read on every Find — store content
// can change between resolutions and is never cached.
type File struct {
	// Path is the credential file location.
	Path string
}

type fileEntry struct {
	User string `yaml:"user"`
	Pass string `yaml:"pass"`
}

type fileFormat struct {
	Credentials map[string]fileEntry `yaml:"credentials"`
}

// Find implements Store.
func (f File) Find(ctx context.Context, host string, port uint16) (*Credential, error) {
	info, err := os.Stat(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, &StoreError{Backend: "file", Err: err}
	}
	if info.Mode().Perm()&0o077 != 0 {
		return nil, &StoreError{
			Backend: "file",
			Err:     fmt.Errorf("%s is group/world accessible (mode %o); refusing to read credentials", f.Path, info.Mode().Perm()),
		}
	}

	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, &StoreError{Backend: "file", Err: err}
	}
	defer secret.Zero(data)

	var parsed fileFormat
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, &StoreError{Backend: "file", Err: fmt.Errorf("parsing %s: %w", f.Path, err)}
	}

	key := fmt.Sprintf("%s:%d", host, port)
	entry, ok := parsed.Credentials[key]
	if !ok {
		return nil, ErrNotFound
	}

	credential := &Credential{User: entry.User}
	if entry.Pass != "" {
		buffer, err := secret.NewFromString(entry.Pass)
		if err != nil {
			return nil, &StoreError{Backend: "file", Err: err}
		}
		credential.Password = buffer
	}
	return credential, nil
}
