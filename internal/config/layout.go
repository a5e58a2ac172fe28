// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/glasstokey/g2k"
)

// layout.go reads a key grid layout from disk. A layout document
// describes one side's static rows/cols of key rects, the way
// load/shd.go describes a shader's stages and uniforms.

// layoutDoc is the on-disk shape of a Layout.
type layoutDoc struct {
	Side              string        `yaml:"side"`
	AllowHoldBindings bool          `yaml:"allow_hold_bindings"`
	Rows              [][]cellDoc   `yaml:"rows"`
}

type cellDoc struct {
	StorageKey string  `yaml:"storage_key"`
	Label      string  `yaml:"label"`
	X          float64 `yaml:"x"`
	Y          float64 `yaml:"y"`
	W          float64 `yaml:"w"`
	H          float64 `yaml:"h"`
}

var sides = map[string]g2k.Side{
	"left":  g2k.SideLeft,
	"right": g2k.SideRight,
}

// Layout parses a layout document's raw bytes into a g2k.Layout plus the
// flat list of KeyBindings the Binding Index needs to build its spatial
// grid and snap table.
func Layout(data []byte) (*g2k.Layout, []g2k.KeyBinding, error) {
	var doc layoutDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("config: layout yaml: %w", err)
	}
	side, ok := sides[doc.Side]
	if !ok {
		return nil, nil, fmt.Errorf("config: layout: unsupported side %q", doc.Side)
	}

	rects := make([][]g2k.Rect, len(doc.Rows))
	labels := make([][]string, len(doc.Rows))
	var bindings []g2k.KeyBinding
	for row, cols := range doc.Rows {
		rects[row] = make([]g2k.Rect, len(cols))
		labels[row] = make([]string, len(cols))
		for col, cell := range cols {
			rect := g2k.Rect{X: cell.X, Y: cell.Y, W: cell.W, H: cell.H}
			rects[row][col] = rect
			labels[row][col] = cell.Label
			bindings = append(bindings, g2k.KeyBinding{
				Side:       side,
				Row:        row,
				Col:        col,
				StorageKey: g2k.StorageKey(cell.StorageKey),
				Label:      cell.Label,
				Rect:       rect,
			})
		}
	}

	layout := &g2k.Layout{
		Side:              side,
		Rects:             rects,
		Labels:            labels,
		AllowHoldBindings: doc.AllowHoldBindings,
	}
	return layout, bindings, nil
}

// customButtonDoc is one entry of a custom-buttons document.
type customButtonDoc struct {
	Side       string  `yaml:"side"`
	Layer      int     `yaml:"layer"`
	StorageKey string  `yaml:"storage_key"`
	Label      string  `yaml:"label"`
	X          float64 `yaml:"x"`
	Y          float64 `yaml:"y"`
	W          float64 `yaml:"w"`
	H          float64 `yaml:"h"`
}

// CustomButtons parses a flat list of layer-scoped custom buttons.
func CustomButtons(data []byte) ([]g2k.CustomButton, error) {
	var docs []customButtonDoc
	if err := yaml.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("config: custom buttons yaml: %w", err)
	}

	buttons := make([]g2k.CustomButton, 0, len(docs))
	for _, d := range docs {
		side, ok := sides[d.Side]
		if !ok {
			return nil, fmt.Errorf("config: custom button %q: unsupported side %q", d.StorageKey, d.Side)
		}
		if d.Layer < 0 || g2k.Layer(d.Layer) > g2k.MaxLayer {
			return nil, fmt.Errorf("config: custom button %q: layer %d out of range", d.StorageKey, d.Layer)
		}
		buttons = append(buttons, g2k.CustomButton{
			Side:       side,
			Layer:      g2k.Layer(d.Layer),
			StorageKey: g2k.StorageKey(d.StorageKey),
			Label:      d.Label,
			Rect:       g2k.Rect{X: d.X, Y: d.Y, W: d.W, H: d.H},
		})
	}
	return buttons, nil
}
