// Copyright 2026 The Proxyenv Authors
// SPDX-License-Identifier: Apache-2.0

package statefile

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/proxyenv-foundation/proxyenv/lib/codec"
)

// Assignment records the outcome for one environment variable in a
// resolution cycle: either a masked value that was set, or an explicit
// unset.
type Assignment struct {
	// Variable is the environment variable name ("http_proxy" or
	// "ftp_proxy").
	Variable string `cbor:"variable"`

	// MaskedValue is the assigned value with every password character
	// replaced by the mask glyph. Empty when Unset is true.
	MaskedValue string `cbor:"masked_value,omitempty"`

	// Unset is true when the variable was explicitly cleared.
	Unset bool `cbor:"unset,omitempty"`
}

// State records the outcome of one resolution cycle.
type State struct {
	// TargetURL is the URL the cycle resolved for.
	TargetURL string `cbor:"target_url"`

	// Assignments lists the per-variable outcomes, in variable order.
	Assignments []Assignment `cbor:"assignments"`

	// ResolvedAt is when the cycle completed.
	ResolvedAt time.Time `cbor:"resolved_at"`
}

// Write atomically writes the state file. The file is written to a
// temporary location in the same directory, fsynced for durability,
// and renamed into place. Readers never see a partial write.
//
// The file is created with mode 0600 (owner read/write only). The
// parent directory must exist.
func Write(path string, state State) error {
	data, err := codec.Marshal(state)
	if err != nil {
		return fmt.Errorf("statefile: encoding state: %w", err)
	}

	directory := filepath.Dir(path)
	temporary, err := os.CreateTemp(directory, ".proxyenv-state-*")
	if err != nil {
		return fmt.Errorf("statefile: creating temporary file: %w", err)
	}
	temporaryPath := temporary.Name()

	cleanup := func() {
		temporary.Close()
		os.Remove(temporaryPath)
	}

	if err := temporary.Chmod(0o600); err != nil {
		cleanup()
		return fmt.Errorf("statefile: setting mode: %w", err)
	}
	if _, err := temporary.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("statefile: writing state: %w", err)
	}
	if err := temporary.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("statefile: fsync: %w", err)
	}
	if err := temporary.Close(); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("statefile: closing temporary file: %w", err)
	}
	if err := os.Rename(temporaryPath, path); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("statefile: renaming into place: %w", err)
	}
	return nil
}

// Read loads the state file. Returns os.ErrNotExist (wrapped) when no
// cycle has been recorded yet.
func Read(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("statefile: reading %s: %w", path, err)
	}

	var state State
	if err := codec.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("statefile: decoding %s: %w", path, err)
	}
	return &state, nil
}
