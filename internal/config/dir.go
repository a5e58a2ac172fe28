// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
)

// dir.go locates the host's persisted settings directory, the same
// $XDG_CONFIG_HOME-with-fallback resolution noisetorch's configDir uses.

// Dir returns the directory g2kctl keeps its layout/keymap/tunables files
// in: $XDG_CONFIG_HOME/g2k, or $HOME/.config/g2k if that variable is
// unset or does not name an existing directory.
func Dir() string {
	return filepath.Join(xdgOrFallback("XDG_CONFIG_HOME", filepath.Join(os.Getenv("HOME"), ".config")), "g2k")
}

func xdgOrFallback(xdg, fallback string) string {
	if dir := os.Getenv(xdg); dir != "" {
		if fi, err := os.Stat(dir); err == nil && fi.IsDir() {
			return dir
		}
	}
	return fallback
}
