// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package binding builds and queries the per-(side, layer) spatial index
// of key and custom-button rectangles: a hit-test over all bindings, and
// a parallel snap-center table for release-time off-key recovery.
package binding

import (
	"github.com/glasstokey/g2k"
	"github.com/glasstokey/g2k/geom"
)

// gridCols and gridRows size the coarse 10x12 spatial bucket grid
// bindings are optionally grouped into.
const (
	gridCols = 10
	gridRows = 12
)

// Entry is one binding as carried inside an Index: a rect, the action it
// resolves to, and enough identity to report back to the caller.
type Entry struct {
	StorageKey     g2k.StorageKey
	Label          string
	Rect           g2k.Rect
	Mapping        g2k.KeyMapping
	IsCustomButton bool
}

// Index is the built spatial index for one (side, layer) combination: a
// flat entry list, a coarse bucket grid over it for HitTest, and a
// parallel snap table restricted to snappable actions for Snap.
type Index struct {
	Side  g2k.Side
	Layer g2k.Layer

	entries []Entry
	buckets [gridCols][gridRows][]int // indices into entries

	snapCenters    []geom.V2
	snapRadiusSq   []float64
	snapEntryIndex []int
}

// BuildFromBindings is the concrete constructor used by the engine: it
// takes an already-flattened list of KeyBindings for one side (all rows
// and columns) plus the keymap and custom buttons, and produces the
// queryable Index. Rebuild triggers are owned by the caller (package
// g2k's engine worker): layout change, keymap change, active-layer
// change, or a change to snap_radius_percent / snap_ambiguity_ratio.
func BuildFromBindings(bindings []g2k.KeyBinding, keymap *g2k.KeyMap, buttons *g2k.CustomButtons, side g2k.Side, layer g2k.Layer, surface geom.Surface, snapRadiusPercent float64) *Index {
	idx := &Index{Side: side, Layer: layer}

	addEntry := func(storageKey g2k.StorageKey, label string, rect g2k.Rect, isCustom bool) {
		mapping, ok := keymap.Lookup(storageKey, layer)
		if !ok {
			return
		}
		idx.entries = append(idx.entries, Entry{
			StorageKey:     storageKey,
			Label:          label,
			Rect:           rect,
			Mapping:        mapping,
			IsCustomButton: isCustom,
		})
	}

	for _, b := range bindings {
		if b.Side != side {
			continue
		}
		addEntry(b.StorageKey, b.Label, b.Rect, false)
	}
	for _, cb := range buttons.For(side, layer) {
		addEntry(cb.StorageKey, cb.Label, cb.Rect, true)
	}

	idx.bucketize()
	idx.buildSnapTable(surface, snapRadiusPercent)
	return idx
}

func bucketFor(v, count float64, buckets int) int {
	b := int(v * float64(buckets))
	if b < 0 {
		b = 0
	}
	if b >= buckets {
		b = buckets - 1
	}
	return b
}

// bucketize assigns every entry to the buckets its rect overlaps, so a
// HitTest query only ever needs to scan the single bucket its point
// falls in.
func (idx *Index) bucketize() {
	for i, e := range idx.entries {
		c0 := bucketFor(e.Rect.X, 1, gridCols)
		c1 := bucketFor(e.Rect.X+e.Rect.W, 1, gridCols)
		r0 := bucketFor(e.Rect.Y, 1, gridRows)
		r1 := bucketFor(e.Rect.Y+e.Rect.H, 1, gridRows)
		for c := c0; c <= c1; c++ {
			for r := r0; r <= r1; r++ {
				idx.buckets[c][r] = append(idx.buckets[c][r], i)
			}
		}
	}
}

// buildSnapTable extracts snappable entries (Key, Modifier, Continuous,
// KeyChord, never MouseButton, TypingToggle, or layer actions) into a
// parallel center/radius table for Snap.
func (idx *Index) buildSnapTable(surface geom.Surface, snapRadiusPercent float64) {
	smallerMM := surface.WidthMM
	if surface.HeightMM < smallerMM {
		smallerMM = surface.HeightMM
	}
	radiusMM := smallerMM * snapRadiusPercent / 100
	radiusNormX := surface.MMToNormalizedX(radiusMM)

	for i, e := range idx.entries {
		if !e.Mapping.Primary.Snappable() {
			continue
		}
		cx, cy := e.Rect.Center()
		idx.snapCenters = append(idx.snapCenters, geom.V2{X: cx, Y: cy})
		idx.snapRadiusSq = append(idx.snapRadiusSq, radiusNormX*radiusNormX)
		idx.snapEntryIndex = append(idx.snapEntryIndex, i)
	}
}

// HitTest returns the binding whose rect contains (x, y), maximizing the
// min-edge distance (most-interior containment); ties break in favor of
// the smaller-area rect. Returns false if no rect contains the point.
func (idx *Index) HitTest(x, y float64) (Entry, bool) {
	c := bucketFor(x, 1, gridCols)
	r := bucketFor(y, 1, gridRows)

	bestIdx := -1
	var bestEdge, bestArea float64
	for _, i := range idx.buckets[c][r] {
		e := idx.entries[i]
		if !e.Rect.Contains(x, y) {
			continue
		}
		edge := e.Rect.EdgeDistance(x, y)
		area := e.Rect.Area()
		if bestIdx == -1 || edge > bestEdge || (edge == bestEdge && area < bestArea) {
			bestIdx, bestEdge, bestArea = i, edge, area
		}
	}
	if bestIdx == -1 {
		return Entry{}, false
	}
	return idx.entries[bestIdx], true
}

// Snap finds the snap center nearest (x, y), restricted to entries whose
// resolved action is snappable. It rejects a match outside the center's
// radius, and breaks a near-tie (second-best within ambiguityRatio^2 of
// the best) in favor of whichever rect edge is physically closer to
// (x, y).
func (idx *Index) Snap(x, y, ambiguityRatio float64) (Entry, bool) {
	if len(idx.snapCenters) == 0 {
		return Entry{}, false
	}
	p := geom.V2{X: x, Y: y}

	bestI, secondI := -1, -1
	bestD, secondD := 0.0, 0.0
	for i, c := range idx.snapCenters {
		d := p.DistSqr(c)
		if bestI == -1 || d < bestD {
			secondI, secondD = bestI, bestD
			bestI, bestD = i, d
		} else if secondI == -1 || d < secondD {
			secondI, secondD = i, d
		}
	}
	if bestI == -1 || bestD > idx.snapRadiusSq[bestI] {
		return Entry{}, false
	}

	winner := bestI
	if secondI != -1 && secondD <= bestD*ambiguityRatio*ambiguityRatio {
		bestEntry := idx.entries[idx.snapEntryIndex[bestI]]
		secondEntry := idx.entries[idx.snapEntryIndex[secondI]]
		if bestEntry.Rect.EdgeDistance(x, y) < 0 && secondEntry.Rect.EdgeDistance(x, y) >= 0 {
			winner = secondI
		} else {
			bd := edgeProximity(bestEntry.Rect, x, y)
			sd := edgeProximity(secondEntry.Rect, x, y)
			if sd < bd {
				winner = secondI
			}
		}
	}
	return idx.entries[idx.snapEntryIndex[winner]], true
}

// edgeProximity measures how close (x,y) is to rect's boundary,
// regardless of whether the point is inside or outside it, for breaking
// ambiguous Snap ties.
func edgeProximity(r g2k.Rect, x, y float64) float64 {
	dx := 0.0
	if x < r.X {
		dx = r.X - x
	} else if x > r.X+r.W {
		dx = x - (r.X + r.W)
	}
	dy := 0.0
	if y < r.Y {
		dy = r.Y - y
	} else if y > r.Y+r.H {
		dy = y - (r.Y + r.H)
	}
	if dx == 0 && dy == 0 {
		return -r.EdgeDistance(x, y)
	}
	return dx*dx + dy*dy
}

// Len returns the number of bindings in the index, for diagnostics.
func (idx *Index) Len() int { return len(idx.entries) }
