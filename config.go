// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package g2k

import (
	"io"
	"log/slog"

	"github.com/glasstokey/g2k/geom"
)

// config.go reduces the engine.New API footprint using functional options
// over a Config/Option pair (see DESIGN.md).

// Config carries every tunable the engine consumes. It has no file I/O of
// its own. See package internal/config for loading one of these from a
// host's persisted settings.
type Config struct {
	// Physical surface, one per side; both default to a common 13" trackpad.
	LeftSurface, RightSurface geom.Surface

	HoldDurationMS      float64 // default 220, >= 0
	DragCancelMM        float64 // default 8, >= 0
	TypingGraceMS       float64 // default 1000, >= 0
	KeyBufferMS         float64 // default 120, <= TypingGraceMS
	IntentMoveMM        float64 // default 3.0, >= 0.1
	IntentVelocityMMSec float64 // default 50, >= 1

	SnapRadiusPercent   float64 // default 35, 0-200
	SnapAmbiguityRatio  float64 // default 1.3, > 1

	ForceClickMin float64 // default 0, [0,255]
	ForceClickCap float64 // default 255, [0,255]
	HapticStrength float64 // default 0.5, [0,1]

	TapClickEnabled    bool
	TapCadenceMS       float64 // default 250
	TapStaggerMS       float64 // default 60
	TapMoveThresholdMM float64 // default 5

	ChordShiftEnabled   bool
	KeyboardModeEnabled bool
	AllowMouseTakeover  bool

	Logger *slog.Logger // nil means discard; the engine is silent by default.
}

// DefaultConfig returns the documented engine defaults.
func DefaultConfig() Config {
	return Config{
		LeftSurface:         geom.Surface{WidthMM: 55, HeightMM: 45},
		RightSurface:        geom.Surface{WidthMM: 55, HeightMM: 45},
		HoldDurationMS:      220,
		DragCancelMM:        8,
		TypingGraceMS:       1000,
		KeyBufferMS:         120,
		IntentMoveMM:        3.0,
		IntentVelocityMMSec: 50,
		SnapRadiusPercent:   35,
		SnapAmbiguityRatio:  1.3,
		ForceClickMin:       0,
		ForceClickCap:       255,
		HapticStrength:      0.5,
		TapClickEnabled:     true,
		TapCadenceMS:        250,
		TapStaggerMS:        60,
		TapMoveThresholdMM:  5,
		ChordShiftEnabled:   true,
		KeyboardModeEnabled: false,
		AllowMouseTakeover:  true,
	}
}

// Option overrides a single Config attribute. Apply folds a list of
// options over the defaults into the Config engine.New consumes.
//
//	eng := engine.New(g2k.Apply(
//	    g2k.WithHoldDuration(180),
//	    g2k.WithDragCancel(10),
//	))
type Option func(*Config)

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// WithSurfaces sets both sides' physical trackpad dimensions.
func WithSurfaces(left, right geom.Surface) Option {
	return func(c *Config) { c.LeftSurface, c.RightSurface = left, right }
}

// WithHoldDuration sets hold_duration_ms. Negative values are clamped to 0.
func WithHoldDuration(ms float64) Option {
	return func(c *Config) { c.HoldDurationMS = clampf(ms, 0, 1_000_000) }
}

// WithDragCancel sets drag_cancel_mm. Negative values are clamped to 0.
func WithDragCancel(mm float64) Option {
	return func(c *Config) { c.DragCancelMM = clampf(mm, 0, 1_000) }
}

// WithTypingGrace sets typing_grace_ms. Negative values are clamped to 0.
func WithTypingGrace(ms float64) Option {
	return func(c *Config) { c.TypingGraceMS = clampf(ms, 0, 1_000_000) }
}

// WithKeyBuffer sets key_buffer_ms. Clamped to [0, TypingGraceMS] since
// the key buffer must not exceed the typing grace window.
func WithKeyBuffer(ms float64) Option {
	return func(c *Config) {
		if ms < 0 {
			ms = 0
		}
		if ms > c.TypingGraceMS {
			ms = c.TypingGraceMS
		}
		c.KeyBufferMS = ms
	}
}

// WithIntentThresholds sets intent_move_mm and intent_velocity_mm_per_sec.
func WithIntentThresholds(moveMM, velocityMMPerSec float64) Option {
	return func(c *Config) {
		c.IntentMoveMM = clampf(moveMM, 0.1, 1_000)
		c.IntentVelocityMMSec = clampf(velocityMMPerSec, 1, 100_000)
	}
}

// WithSnap sets snap_radius_percent and snap_ambiguity_ratio.
func WithSnap(radiusPercent, ambiguityRatio float64) Option {
	return func(c *Config) {
		c.SnapRadiusPercent = clampf(radiusPercent, 0, 200)
		if ambiguityRatio <= 1 {
			ambiguityRatio = 1.0001
		}
		c.SnapAmbiguityRatio = ambiguityRatio
	}
}

// WithForceClick sets force_click_min and force_click_cap.
func WithForceClick(min, cap float64) Option {
	return func(c *Config) {
		c.ForceClickMin = clampf(min, 0, 255)
		c.ForceClickCap = clampf(cap, 0, 255)
	}
}

// WithHapticStrength sets haptic_strength, clamped to [0,1].
func WithHapticStrength(strength float64) Option {
	return func(c *Config) { c.HapticStrength = clampf(strength, 0, 1) }
}

// WithTapClick configures the N-finger tap-click gesture tunables.
func WithTapClick(enabled bool, cadenceMS, staggerMS, moveThresholdMM float64) Option {
	return func(c *Config) {
		c.TapClickEnabled = enabled
		c.TapCadenceMS = clampf(cadenceMS, 0, 1_000_000)
		c.TapStaggerMS = clampf(staggerMS, 0, 1_000_000)
		c.TapMoveThresholdMM = clampf(moveThresholdMM, 0, 1_000)
	}
}

// WithChordShift enables/disables the chord-shift gesture.
func WithChordShift(enabled bool) Option {
	return func(c *Config) { c.ChordShiftEnabled = enabled }
}

// WithKeyboardMode forces the intent classifier to collapse into
// TypingCommitted-until-all-up regardless of movement.
func WithKeyboardMode(enabled bool) Option {
	return func(c *Config) { c.KeyboardModeEnabled = enabled }
}

// WithMouseTakeover enables/disables allow_mouse_takeover.
func WithMouseTakeover(enabled bool) Option {
	return func(c *Config) { c.AllowMouseTakeover = enabled }
}

// WithLogger attaches a structured logger. A nil logger (the default)
// discards all engine log output.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) { c.Logger = logger }
}

// Apply returns a Config built from DefaultConfig with every opt applied
// in order.
func Apply(opts ...Option) Config {
	c := DefaultConfig()
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// ForceEligible reports whether a contact presses hard enough to count
// as a touch: a reading below ForceClickMin is treated as a resting
// finger and ignored by the contact state machine. ForceClickCap bounds
// runaway sensor values before the comparison. The default min of 0
// accepts every tip-down contact.
func (c Config) ForceEligible(contact RawContact) bool {
	p := contact.Pressure
	if p > c.ForceClickCap {
		p = c.ForceClickCap
	}
	return p >= c.ForceClickMin
}

// Log returns the configured logger, or a discard logger when none is
// set, so callers never need a nil check before logging.
func (c Config) Log() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c.Logger
}
