// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/glasstokey/g2k"
)

// keymap.go reads a keymap from disk: a flat list of (storage key, layer)
// rows each resolving to a primary action and an optional hold action.

var actionKinds = map[string]g2k.ActionKind{
	"none":             g2k.ActionNone,
	"key":              g2k.ActionKey,
	"modifier":         g2k.ActionModifier,
	"continuous":       g2k.ActionContinuous,
	"mouse_button":     g2k.ActionMouseButton,
	"key_chord":        g2k.ActionKeyChord,
	"momentary_layer":  g2k.ActionMomentaryLayer,
	"layer_set":        g2k.ActionLayerSet,
	"layer_toggle":     g2k.ActionLayerToggle,
	"typing_toggle":    g2k.ActionTypingToggle,
}

var mouseButtons = map[string]g2k.MouseButton{
	"left":   g2k.MouseLeft,
	"right":  g2k.MouseRight,
	"middle": g2k.MouseMiddle,
}

// actionDoc is the on-disk shape of a g2k.Action.
type actionDoc struct {
	Kind       string `yaml:"kind"`
	VK         uint16 `yaml:"vk"`
	ModifierVK uint16 `yaml:"modifier_vk"`
	Button     string `yaml:"button"`
	Layer      int    `yaml:"layer"`
}

func (d actionDoc) resolve() (g2k.Action, error) {
	kind, ok := actionKinds[d.Kind]
	if !ok {
		return g2k.Action{}, fmt.Errorf("config: keymap: unsupported action kind %q", d.Kind)
	}
	a := g2k.Action{Kind: kind, VK: d.VK, ModifierVK: d.ModifierVK, Layer: g2k.Layer(d.Layer)}
	if d.Button != "" {
		button, ok := mouseButtons[d.Button]
		if !ok {
			return g2k.Action{}, fmt.Errorf("config: keymap: unsupported mouse button %q", d.Button)
		}
		a.Button = button
	}
	return a, nil
}

// keymapEntryDoc is one row of a keymap document.
type keymapEntryDoc struct {
	StorageKey string     `yaml:"storage_key"`
	Layer      int        `yaml:"layer"`
	Primary    actionDoc  `yaml:"primary"`
	Hold       *actionDoc `yaml:"hold"`
}

// KeyMap parses a keymap document's raw bytes into a g2k.KeyMap.
func KeyMap(data []byte) (*g2k.KeyMap, error) {
	var docs []keymapEntryDoc
	if err := yaml.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("config: keymap yaml: %w", err)
	}

	entries := make([]g2k.KeyMapEntry, 0, len(docs))
	for _, d := range docs {
		if d.Layer < 0 || g2k.Layer(d.Layer) > g2k.MaxLayer {
			return nil, fmt.Errorf("config: keymap entry %q: layer %d out of range", d.StorageKey, d.Layer)
		}
		primary, err := d.Primary.resolve()
		if err != nil {
			return nil, fmt.Errorf("config: keymap entry %q: %w", d.StorageKey, err)
		}
		mapping := g2k.KeyMapping{Primary: primary}
		if d.Hold != nil {
			hold, err := d.Hold.resolve()
			if err != nil {
				return nil, fmt.Errorf("config: keymap entry %q hold: %w", d.StorageKey, err)
			}
			mapping.Hold = &hold
		}
		entries = append(entries, g2k.KeyMapEntry{
			StorageKey: g2k.StorageKey(d.StorageKey),
			Layer:      g2k.Layer(d.Layer),
			Mapping:    mapping,
		})
	}
	return g2k.NewKeyMap(entries), nil
}
