// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package config

import (
	"path/filepath"
	"testing"

	"github.com/glasstokey/g2k"
)

func TestTunablesRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tunables.toml")

	want := DefaultTunables()
	want.HoldDurationMS = 180
	want.TapClickEnabled = false

	if err := SaveTunables(path, want); err != nil {
		t.Fatalf("save failed: %s", err)
	}
	got, err := LoadTunables(path)
	if err != nil {
		t.Fatalf("load failed: %s", err)
	}
	if got != want {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, want)
	}
}

func TestTunablesOptionsAppliesInOrder(t *testing.T) {
	tun := DefaultTunables()
	tun.TypingGraceMS = 500
	tun.KeyBufferMS = 2_000 // exceeds TypingGraceMS; Options must clamp to it

	cfg := g2k.Apply(tun.Options()...)
	if cfg.KeyBufferMS != 500 {
		t.Errorf("expected key buffer clamped to typing grace, got %v", cfg.KeyBufferMS)
	}
}
