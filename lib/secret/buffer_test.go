// Copyright 2026 The Proxyenv Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"bytes"
	"testing"
)

func TestNewFromBytesZerosSource(t *testing.T) {
	source := []byte("s3cret")
	buffer, err := NewFromBytes(source)
	if err != nil {
		t.Fatalf("NewFromBytes: %v", err)
	}
	defer buffer.Close()

	if got := buffer.String(); got != "s3cret" {
		t.Errorf("String() = %q, want %q", got, "s3cret")
	}
	if !bytes.Equal(source, make([]byte, len(source))) {
		t.Errorf("source not zeroed after NewFromBytes: %q", source)
	}
}

func TestNewFromString(t *testing.T) {
	buffer, err := NewFromString("hunter2")
	if err != nil {
		t.Fatalf("NewFromString: %v", err)
	}
	defer buffer.Close()

	if got := buffer.Len(); got != 7 {
		t.Errorf("Len() = %d, want 7", got)
	}
	if got := string(buffer.Bytes()); got != "hunter2" {
		t.Errorf("Bytes() = %q, want %q", got, "hunter2")
	}
}

func TestEmptySourceRejected(t *testing.T) {
	if _, err := NewFromBytes(nil); err == nil {
		t.Error("NewFromBytes(nil) succeeded, want error")
	}
	if _, err := NewFromString(""); err == nil {
		t.Error(`NewFromString("") succeeded, want error`)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	buffer, err := NewFromString("x")
	if err != nil {
		t.Fatalf("NewFromString: %v", err)
	}
	if err := buffer.Close(); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := buffer.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestAccessAfterClosePanics(t *testing.T) {
	buffer, err := NewFromString("x")
	if err != nil {
		t.Fatalf("NewFromString: %v", err)
	}
	buffer.Close()

	defer func() {
		if recover() == nil {
			t.Error("Bytes() after Close did not panic")
		}
	}()
	buffer.Bytes()
}

func TestZero(t *testing.T) {
	data := []byte("wipe me")
	Zero(data)
	for index, b := range data {
		if b != 0 {
			t.Fatalf("byte %d not zeroed", index)
		}
	}
}
