// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package binding

import (
	"testing"

	"github.com/glasstokey/g2k"
	"github.com/glasstokey/g2k/geom"
)

func keyBinding(side g2k.Side, key string, rect g2k.Rect) g2k.KeyBinding {
	return g2k.KeyBinding{Side: side, StorageKey: g2k.StorageKey(key), Label: key, Rect: rect}
}

func simpleKeyMap(keys ...string) *g2k.KeyMap {
	entries := make([]g2k.KeyMapEntry, 0, len(keys))
	for i, k := range keys {
		entries = append(entries, g2k.KeyMapEntry{
			StorageKey: g2k.StorageKey(k),
			Layer:      0,
			Mapping:    g2k.KeyMapping{Primary: g2k.Action{Kind: g2k.ActionKey, VK: uint16(65 + i)}},
		})
	}
	return g2k.NewKeyMap(entries)
}

func TestHitTestPrefersMostInterior(t *testing.T) {
	bindings := []g2k.KeyBinding{
		keyBinding(g2k.SideLeft, "A", g2k.Rect{X: 0, Y: 0, W: 0.5, H: 0.5}),
		keyBinding(g2k.SideLeft, "B", g2k.Rect{X: 0.1, Y: 0.1, W: 0.1, H: 0.1}),
	}
	idx := BuildFromBindings(bindings, simpleKeyMap("A", "B"), g2k.NewCustomButtons(nil), g2k.SideLeft, 0, geom.Surface{WidthMM: 55, HeightMM: 45}, 35)

	e, ok := idx.HitTest(0.15, 0.15)
	if !ok {
		t.Fatal("expected a hit")
	}
	// (0.15, 0.15) lies 0.15 from A's nearest edge but only 0.05 from B's,
	// so A is the more interior containment even though B is smaller.
	if e.StorageKey != "A" {
		t.Errorf("expected rect A, whose nearest edge is farther from the point, to win, got %s", e.StorageKey)
	}
}

func TestHitTestMiss(t *testing.T) {
	bindings := []g2k.KeyBinding{
		keyBinding(g2k.SideLeft, "A", g2k.Rect{X: 0, Y: 0, W: 0.2, H: 0.2}),
	}
	idx := BuildFromBindings(bindings, simpleKeyMap("A"), g2k.NewCustomButtons(nil), g2k.SideLeft, 0, geom.Surface{WidthMM: 55, HeightMM: 45}, 35)

	if _, ok := idx.HitTest(0.9, 0.9); ok {
		t.Error("expected a miss far from any rect")
	}
}

func TestSnapRejectsOutsideRadius(t *testing.T) {
	bindings := []g2k.KeyBinding{
		keyBinding(g2k.SideLeft, "A", g2k.Rect{X: 0.1, Y: 0.1, W: 0.05, H: 0.05}),
	}
	idx := BuildFromBindings(bindings, simpleKeyMap("A"), g2k.NewCustomButtons(nil), g2k.SideLeft, 0, geom.Surface{WidthMM: 55, HeightMM: 45}, 5)

	if _, ok := idx.Snap(0.9, 0.9, 1.3); ok {
		t.Error("expected snap to reject a point far outside the radius")
	}
}

func TestSnapFindsNearestWithinRadius(t *testing.T) {
	bindings := []g2k.KeyBinding{
		keyBinding(g2k.SideLeft, "A", g2k.Rect{X: 0.1, Y: 0.1, W: 0.05, H: 0.05}),
		keyBinding(g2k.SideLeft, "B", g2k.Rect{X: 0.5, Y: 0.5, W: 0.05, H: 0.05}),
	}
	idx := BuildFromBindings(bindings, simpleKeyMap("A", "B"), g2k.NewCustomButtons(nil), g2k.SideLeft, 0, geom.Surface{WidthMM: 55, HeightMM: 45}, 35)

	e, ok := idx.Snap(0.14, 0.14, 1.3)
	if !ok {
		t.Fatal("expected a snap hit near A")
	}
	if e.StorageKey != "A" {
		t.Errorf("expected snap to find A, got %s", e.StorageKey)
	}
}

func TestSnapExcludesNonSnappableActions(t *testing.T) {
	entries := []g2k.KeyMapEntry{{
		StorageKey: "M",
		Layer:      0,
		Mapping:    g2k.KeyMapping{Primary: g2k.Action{Kind: g2k.ActionMouseButton, Button: g2k.MouseLeft}},
	}}
	bindings := []g2k.KeyBinding{keyBinding(g2k.SideLeft, "M", g2k.Rect{X: 0.1, Y: 0.1, W: 0.05, H: 0.05})}
	idx := BuildFromBindings(bindings, g2k.NewKeyMap(entries), g2k.NewCustomButtons(nil), g2k.SideLeft, 0, geom.Surface{WidthMM: 55, HeightMM: 45}, 35)

	if _, ok := idx.Snap(0.12, 0.12, 1.3); ok {
		t.Error("expected a MouseButton binding to be excluded from the snap table")
	}
}

func TestStoreCachesByVersionAndRebuildsOnChange(t *testing.T) {
	store := NewStore()
	bindings := []g2k.KeyBinding{keyBinding(g2k.SideLeft, "A", g2k.Rect{X: 0, Y: 0, W: 0.2, H: 0.2})}
	km := simpleKeyMap("A")
	buttons := g2k.NewCustomButtons(nil)
	surface := geom.Surface{WidthMM: 55, HeightMM: 45}

	p := Params{Bindings: bindings, KeyMap: km, Buttons: buttons, Side: g2k.SideLeft, Layer: 0, Surface: surface, SnapRadiusPercent: 35, SnapAmbiguityRatio: 1.3, LayoutVersion: 1, KeymapVersion: 1}
	idx1 := store.Get(p)
	idx2 := store.Get(p)
	if idx1 != idx2 {
		t.Error("expected the same cached Index for an unchanged key")
	}

	p.LayoutVersion = 2
	idx3 := store.Get(p)
	if idx3 == idx1 {
		t.Error("expected a rebuild after LayoutVersion changed")
	}
}
