// Copyright 2026 The Proxyenv Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"testing"
	"time"
)

// sampleState is a representative internal record using cbor struct
// tags (the convention for purely-internal types).
type sampleState struct {
	Variable string    `cbor:"variable"`
	Value    string    `cbor:"value,omitempty"`
	At       time.Time `cbor:"at"`
}

func TestRoundTrip(t *testing.T) {
	original := sampleState{
		Variable: "http_proxy",
		Value:    "http://proxy.example.com:8080",
		At:       time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
	}

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded sampleState
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.Variable != original.Variable || decoded.Value != original.Value || !decoded.At.Equal(original.At) {
		t.Errorf("round trip mismatch: got %+v, want %+v", decoded, original)
	}
}

func TestDeterministicEncoding(t *testing.T) {
	value := map[string]int{"b": 2, "a": 1, "c": 3}

	first, err := Marshal(value)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	second, err := Marshal(value)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("same logical data produced different bytes")
	}
}

func TestAnyTargetDecodesStringKeyedMaps(t *testing.T) {
	data, err := Marshal(map[string]any{"outer": map[string]any{"inner": "v"}})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded any
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	outer, ok := decoded.(map[string]any)
	if !ok {
		t.Fatalf("decoded type = %T, want map[string]any", decoded)
	}
	if _, ok := outer["outer"].(map[string]any); !ok {
		t.Fatalf("nested type = %T, want map[string]any", outer["outer"])
	}
}
