// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/glasstokey/g2k"
	"github.com/glasstokey/g2k/capture"
)

func writeFixtureCapture(t *testing.T) string {
	t.Helper()
	w := capture.NewWriter(0, "linux", "fixture")
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	for seq := uint64(1); seq <= 3; seq++ {
		w.Observe(g2k.RawFrame{
			Sequence:    seq,
			DeviceIndex: 0,
			Side:        g2k.SideLeft,
			Contacts:    []g2k.RawContact{{ID: 1, X: 0.3, Y: 0.3, State: g2k.StateTouching}},
		})
	}
	path := filepath.Join(t.TempDir(), "fixture.atpcap")
	if err := w.Stop(path, "2026-01-01T00:00:00Z"); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	return path
}

func TestReplayPassesFingerprintIdentically(t *testing.T) {
	path := writeFixtureCapture(t)

	first, err := runReplayPass(path)
	if err != nil {
		t.Fatalf("first pass: %v", err)
	}
	second, err := runReplayPass(path)
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("expected identical fingerprints across two replay passes, got %x vs %x", first, second)
	}
}

func TestRunReplayCheckExitsZeroOnStableFixture(t *testing.T) {
	path := writeFixtureCapture(t)
	if code := runReplayCheck(path); code != 0 {
		t.Errorf("expected exit code 0 for a deterministic fixture, got %d", code)
	}
}

func TestRunReplayCheckExitsNonZeroOnMissingFile(t *testing.T) {
	if code := runReplayCheck(filepath.Join(t.TempDir(), "missing.atpcap")); code == 0 {
		t.Error("expected a non-zero exit code for a missing capture file")
	}
}
