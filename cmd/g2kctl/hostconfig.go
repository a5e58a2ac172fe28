// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"

	"github.com/glasstokey/g2k"
	"github.com/glasstokey/g2k/engine"
	"github.com/glasstokey/g2k/internal/config"
)

// hostconfig.go hydrates the engine from the host's persisted settings
// directory, when present. Everything is optional: a missing file just
// leaves the engine on its defaults, so g2kctl works out of the box.

const (
	tunablesFile    = "tunables.toml"
	layoutLeftFile  = "layout-left.yaml"
	layoutRightFile = "layout-right.yaml"
	keymapFile      = "keymap.yaml"
	buttonsFile     = "buttons.yaml"
)

// hostConfig builds the engine Config from the persisted tunables file,
// falling back to the documented defaults when the file is absent or
// malformed.
func hostConfig() g2k.Config {
	t, err := config.LoadTunables(filepath.Join(config.Dir(), tunablesFile))
	if err != nil {
		return g2k.DefaultConfig()
	}
	return g2k.Apply(t.Options()...)
}

// applyHostLayout loads any persisted layout, keymap, and custom-button
// documents into eng.
func applyHostLayout(eng *engine.Engine) {
	dir := config.Dir()

	var bindings []g2k.KeyBinding
	for _, name := range []string{layoutLeftFile, layoutRightFile} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		if _, flat, err := config.Layout(data); err == nil {
			bindings = append(bindings, flat...)
		}
	}
	if len(bindings) > 0 {
		eng.SetLayout(bindings)
	}

	if data, err := os.ReadFile(filepath.Join(dir, keymapFile)); err == nil {
		if km, err := config.KeyMap(data); err == nil {
			eng.SetKeyMap(km)
		}
	}
	if data, err := os.ReadFile(filepath.Join(dir, buttonsFile)); err == nil {
		if buttons, err := config.CustomButtons(data); err == nil {
			eng.SetCustomButtons(g2k.NewCustomButtons(buttons))
		}
	}
}
