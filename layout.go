// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package g2k

// layout.go holds the immutable layout/keymap data the engine consumes.
// None of this is loaded from disk by the engine itself. See
// internal/config for the YAML/TOML loaders a host uses to build these
// values before handing them to the engine, which is pure w.r.t. this
// state.

// Rect is a normalized rectangle on one side's surface: x, y is the
// top-left corner, w, h the extent, all in [0,1].
type Rect struct {
	X, Y, W, H float64
}

// Contains reports whether the point (px, py) lies within the rect,
// inclusive of its edges.
func (r Rect) Contains(px, py float64) bool {
	return px >= r.X && px <= r.X+r.W && py >= r.Y && py <= r.Y+r.H
}

// Area returns the rect's normalized area, used to break hit-test ties
// in favor of the smaller rect.
func (r Rect) Area() float64 { return r.W * r.H }

// EdgeDistance returns the smallest distance from (px, py), assumed to be
// inside the rect, to any of its four edges. Hit-test picks the binding
// that maximizes this value: the most-interior match.
func (r Rect) EdgeDistance(px, py float64) float64 {
	left := px - r.X
	right := r.X + r.W - px
	top := py - r.Y
	bottom := r.Y + r.H - py
	d := left
	if right < d {
		d = right
	}
	if top < d {
		d = top
	}
	if bottom < d {
		d = bottom
	}
	return d
}

// Center returns the rect's midpoint.
func (r Rect) Center() (x, y float64) {
	return r.X + r.W/2, r.Y + r.H/2
}

// StorageKey is a stable, opaque identifier for a binding across layout
// and keymap changes. Persisted keymaps key their entries by it.
type StorageKey string

// KeyBinding is one grid cell of a layout, addressed by row/col, carrying
// the stable key used to look its mapping up in a keymap, plus a label
// for display. Rectangles may overlap; hit-test tie-break rules live on
// Rect and in package binding.
type KeyBinding struct {
	Side       Side
	Row, Col   int
	StorageKey StorageKey
	Label      string
	Rect       Rect
}

// CustomButton is a layer-scoped, arbitrarily placed binding drawn above
// the grid keys. It shares KeyBinding's hit-test tie-break rules.
type CustomButton struct {
	Side       Side
	Layer      Layer
	StorageKey StorageKey
	Label      string
	Rect       Rect
}

// Layout is one side's static key grid: parallel rects/labels indexed by
// [row][col], plus whether hold bindings are permitted for this layout.
type Layout struct {
	Side               Side
	Rects              [][]Rect
	Labels             [][]string
	AllowHoldBindings  bool
}

// KeyMap resolves (StorageKey, Layer) pairs to a KeyMapping. It is
// immutable once constructed; layer/keymap switches are cheap map
// lookups, not rebuilds; only the spatial Binding Index needs rebuilding
// on those transitions.
type KeyMap struct {
	bindings map[keymapKey]KeyMapping
}

type keymapKey struct {
	storage StorageKey
	layer   Layer
}

// NewKeyMap builds a KeyMap from a flat list of entries, the shape a
// loader naturally produces from a persisted document.
func NewKeyMap(entries []KeyMapEntry) *KeyMap {
	km := &KeyMap{bindings: make(map[keymapKey]KeyMapping, len(entries))}
	for _, e := range entries {
		km.bindings[keymapKey{e.StorageKey, e.Layer}] = e.Mapping
	}
	return km
}

// KeyMapEntry is one (storage key, layer) -> mapping row, the natural
// flattened shape for a YAML/TOML document.
type KeyMapEntry struct {
	StorageKey StorageKey
	Layer      Layer
	Mapping    KeyMapping
}

// Lookup returns the mapping bound to key at layer, and whether one
// exists.
func (km *KeyMap) Lookup(key StorageKey, layer Layer) (KeyMapping, bool) {
	if km == nil {
		return KeyMapping{}, false
	}
	m, ok := km.bindings[keymapKey{key, layer}]
	return m, ok
}

// Layout bindings for custom buttons, grouped by (side, layer); the
// Binding Index consumes this alongside the grid Layout.
type CustomButtons struct {
	bySideLayer map[Side]map[Layer][]CustomButton
}

// NewCustomButtons groups a flat list of custom buttons by side and layer.
func NewCustomButtons(buttons []CustomButton) *CustomButtons {
	c := &CustomButtons{bySideLayer: make(map[Side]map[Layer][]CustomButton)}
	for _, b := range buttons {
		if c.bySideLayer[b.Side] == nil {
			c.bySideLayer[b.Side] = make(map[Layer][]CustomButton)
		}
		c.bySideLayer[b.Side][b.Layer] = append(c.bySideLayer[b.Side][b.Layer], b)
	}
	return c
}

// For returns the custom buttons registered for (side, layer).
func (c *CustomButtons) For(side Side, layer Layer) []CustomButton {
	if c == nil {
		return nil
	}
	return c.bySideLayer[side][layer]
}
