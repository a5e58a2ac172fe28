// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package config loads the engine's external, persisted configuration
// surface from disk: layout/keymap/custom-button documents in YAML and
// scalar tunables in TOML. None of this runs inside the engine itself:
// a host reads these files, passes the g2k.Config to engine.New, and
// posts the key bindings and g2k.KeyMap with the engine's SetLayout and
// SetKeyMap.
package config
