// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/glasstokey/g2k"
)

// tunables.go reads and writes the scalar engine tunables as a flat TOML
// document, the way noisetorch's config.go persists its own scalar user
// settings with toml.DecodeFile/toml.NewEncoder.

// Tunables is the on-disk shape of the scalar subset of g2k.Config: every
// field that isn't a Surface or a Logger.
type Tunables struct {
	HoldDurationMS      float64 `toml:"hold_duration_ms"`
	DragCancelMM        float64 `toml:"drag_cancel_mm"`
	TypingGraceMS       float64 `toml:"typing_grace_ms"`
	KeyBufferMS         float64 `toml:"key_buffer_ms"`
	IntentMoveMM        float64 `toml:"intent_move_mm"`
	IntentVelocityMMSec float64 `toml:"intent_velocity_mm_per_sec"`

	SnapRadiusPercent  float64 `toml:"snap_radius_percent"`
	SnapAmbiguityRatio float64 `toml:"snap_ambiguity_ratio"`

	ForceClickMin  float64 `toml:"force_click_min"`
	ForceClickCap  float64 `toml:"force_click_cap"`
	HapticStrength float64 `toml:"haptic_strength"`

	TapClickEnabled    bool    `toml:"tap_click_enabled"`
	TapCadenceMS       float64 `toml:"tap_cadence_ms"`
	TapStaggerMS       float64 `toml:"tap_stagger_ms"`
	TapMoveThresholdMM float64 `toml:"tap_move_threshold_mm"`

	ChordShiftEnabled   bool `toml:"chord_shift_enabled"`
	KeyboardModeEnabled bool `toml:"keyboard_mode_enabled"`
	AllowMouseTakeover  bool `toml:"allow_mouse_takeover"`
}

// DefaultTunables mirrors g2k.DefaultConfig's values so a freshly
// initialized settings file round-trips to the engine's own defaults.
func DefaultTunables() Tunables {
	d := g2k.DefaultConfig()
	return Tunables{
		HoldDurationMS:      d.HoldDurationMS,
		DragCancelMM:        d.DragCancelMM,
		TypingGraceMS:       d.TypingGraceMS,
		KeyBufferMS:         d.KeyBufferMS,
		IntentMoveMM:        d.IntentMoveMM,
		IntentVelocityMMSec: d.IntentVelocityMMSec,
		SnapRadiusPercent:   d.SnapRadiusPercent,
		SnapAmbiguityRatio:  d.SnapAmbiguityRatio,
		ForceClickMin:       d.ForceClickMin,
		ForceClickCap:       d.ForceClickCap,
		HapticStrength:      d.HapticStrength,
		TapClickEnabled:     d.TapClickEnabled,
		TapCadenceMS:        d.TapCadenceMS,
		TapStaggerMS:        d.TapStaggerMS,
		TapMoveThresholdMM:  d.TapMoveThresholdMM,
		ChordShiftEnabled:   d.ChordShiftEnabled,
		KeyboardModeEnabled: d.KeyboardModeEnabled,
		AllowMouseTakeover:  d.AllowMouseTakeover,
	}
}

// LoadTunables reads and decodes a TOML tunables file.
func LoadTunables(path string) (Tunables, error) {
	var t Tunables
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return Tunables{}, fmt.Errorf("config: tunables: %w", err)
	}
	return t, nil
}

// SaveTunables encodes t as TOML and writes it to path.
func SaveTunables(path string, t Tunables) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(&t); err != nil {
		return fmt.Errorf("config: tunables: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("config: tunables: %w", err)
	}
	return nil
}

// Options converts t into the g2k.Option list engine.New/PostConfig
// consume.
func (t Tunables) Options() []g2k.Option {
	return []g2k.Option{
		g2k.WithHoldDuration(t.HoldDurationMS),
		g2k.WithDragCancel(t.DragCancelMM),
		g2k.WithTypingGrace(t.TypingGraceMS),
		g2k.WithKeyBuffer(t.KeyBufferMS),
		g2k.WithIntentThresholds(t.IntentMoveMM, t.IntentVelocityMMSec),
		g2k.WithSnap(t.SnapRadiusPercent, t.SnapAmbiguityRatio),
		g2k.WithForceClick(t.ForceClickMin, t.ForceClickCap),
		g2k.WithHapticStrength(t.HapticStrength),
		g2k.WithTapClick(t.TapClickEnabled, t.TapCadenceMS, t.TapStaggerMS, t.TapMoveThresholdMM),
		g2k.WithChordShift(t.ChordShiftEnabled),
		g2k.WithKeyboardMode(t.KeyboardModeEnabled),
		g2k.WithMouseTakeover(t.AllowMouseTakeover),
	}
}
