// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package config

import (
	"testing"

	"github.com/glasstokey/g2k"
)

func TestLayout(t *testing.T) {
	doc := []byte(`
side: left
allow_hold_bindings: true
rows:
  - - {storage_key: "L_R0C0", label: "Q", x: 0.0, y: 0.0, w: 0.1, h: 0.2}
    - {storage_key: "L_R0C1", label: "W", x: 0.1, y: 0.0, w: 0.1, h: 0.2}
`)
	layout, bindings, err := Layout(doc)
	if err != nil {
		t.Fatalf("layout parse failed: %s", err)
	}
	if layout.Side != g2k.SideLeft || !layout.AllowHoldBindings {
		t.Errorf("unexpected layout header: %+v", layout)
	}
	if len(layout.Rects) != 1 || len(layout.Rects[0]) != 2 {
		t.Fatalf("expected 1 row of 2 cells, got %d rows", len(layout.Rects))
	}
	if len(bindings) != 2 {
		t.Fatalf("expected 2 flattened bindings, got %d", len(bindings))
	}
	if bindings[1].StorageKey != "L_R0C1" || bindings[1].Label != "W" {
		t.Errorf("unexpected binding: %+v", bindings[1])
	}
}

func TestLayoutUnsupportedSide(t *testing.T) {
	_, _, err := Layout([]byte("side: center\nrows: []\n"))
	if err == nil {
		t.Fatalf("expected an error for an unsupported side")
	}
}

func TestCustomButtons(t *testing.T) {
	doc := []byte(`
- side: right
  layer: 1
  storage_key: "CB_SHIFT"
  label: "Shift"
  x: 0.9
  y: 0.0
  w: 0.1
  h: 0.1
`)
	buttons, err := CustomButtons(doc)
	if err != nil {
		t.Fatalf("custom buttons parse failed: %s", err)
	}
	if len(buttons) != 1 {
		t.Fatalf("expected 1 button, got %d", len(buttons))
	}
	b := buttons[0]
	if b.Side != g2k.SideRight || b.Layer != 1 || b.StorageKey != "CB_SHIFT" {
		t.Errorf("unexpected button: %+v", b)
	}
}

func TestCustomButtonsLayerOutOfRange(t *testing.T) {
	doc := []byte(`
- side: left
  layer: 99
  storage_key: "CB_BAD"
`)
	if _, err := CustomButtons(doc); err == nil {
		t.Fatalf("expected an error for an out-of-range layer")
	}
}
