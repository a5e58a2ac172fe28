// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package intent implements the global Intent Classifier: a single state
// machine over both sides' live contacts that decides whether the user
// is about to type, point, or gesture, and holds a typing-grace window
// open across brief all-up gaps between keystrokes.
package intent

import "github.com/glasstokey/g2k"

// State is one of the six classifier states.
type State uint8

const (
	Idle State = iota
	KeyCandidate
	TypingCommitted
	MouseCandidate
	MouseActive
	GestureCandidate
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case KeyCandidate:
		return "key_candidate"
	case TypingCommitted:
		return "typing_committed"
	case MouseCandidate:
		return "mouse_candidate"
	case MouseActive:
		return "mouse_active"
	case GestureCandidate:
		return "gesture_candidate"
	default:
		return "unknown"
	}
}

// Aggregate is the per-frame summary over every live contact on both
// sides that the classifier transitions on. CentroidDeltaMM is the
// physical distance the combined centroid has moved since the
// classifier last entered its current state; the engine worker computes
// it with the wider of the two sides' Surfaces, since Aggregate itself
// carries no surface of its own.
type Aggregate struct {
	ContactCount, LeftCount, RightCount int
	OnKeyCount, OffKeyCount             int
	KeyboardAnchor                      bool
	MaxDistanceMM                       float64
	MaxVelocityMMPerSec                 float64
	CentroidDeltaMM                     float64
	FirstOnKeyTouchKey                  g2k.StorageKey
	EarliestStartTick, LatestStartTick  float64
}

// Classifier holds the current state and the typing-grace deadline.
type Classifier struct {
	cfg   g2k.Config
	state State

	stateEnteredAtMS float64
	graceActive      bool
	graceUntilMS     float64
}

// NewClassifier creates a Classifier starting in Idle.
func NewClassifier(cfg g2k.Config) *Classifier {
	return &Classifier{cfg: cfg, state: Idle}
}

// SetConfig swaps the tunables Update consults.
func (c *Classifier) SetConfig(cfg g2k.Config) { c.cfg = cfg }

// State returns the current classifier state.
func (c *Classifier) State() State { return c.state }

// GraceActive reports whether the typing-grace window is currently open.
func (c *Classifier) GraceActive() bool { return c.graceActive }

// AllowsSnap reports whether the current state permits release-time Snap
// recovery in the Contact State Machine.
func (c *Classifier) AllowsSnap() bool {
	return c.state == KeyCandidate || c.state == TypingCommitted
}

// ExtendGrace opens or extends the typing-grace window from nowMS.
// Called by the engine worker whenever a Key/Modifier/Continuous/
// MouseButton/KeyChord action is emitted.
func (c *Classifier) ExtendGrace(nowMS float64) {
	c.graceActive = true
	c.graceUntilMS = nowMS + c.cfg.TypingGraceMS
}

func (c *Classifier) enter(s State, nowMS float64) {
	if c.state != s {
		c.state = s
		c.stateEnteredAtMS = nowMS
	}
}

func (c *Classifier) mouseSignal(agg Aggregate) bool {
	if agg.MaxDistanceMM > c.cfg.IntentMoveMM {
		return true
	}
	if agg.MaxVelocityMMPerSec > c.cfg.IntentVelocityMMSec {
		return true
	}
	if agg.ContactCount >= 2 && agg.OffKeyCount >= 1 {
		return true
	}
	if agg.CentroidDeltaMM > c.cfg.IntentMoveMM {
		return true
	}
	return false
}

// Update advances the classifier by one frame's Aggregate and returns the
// resulting state plus a short reason tag, matching the documented
// transition table.
func (c *Classifier) Update(agg Aggregate, nowMS float64) (State, string) {
	if agg.ContactCount == 0 {
		if c.graceActive && nowMS < c.graceUntilMS {
			c.enter(TypingCommitted, nowMS)
			return c.state, "grace"
		}
		c.graceActive = false
		c.enter(Idle, nowMS)
		return c.state, "all_up"
	}
	if c.graceActive && nowMS >= c.graceUntilMS {
		c.graceActive = false
	}

	if c.cfg.KeyboardModeEnabled {
		c.enter(TypingCommitted, nowMS)
		return c.state, "keyboard_mode"
	}

	elapsed := nowMS - c.stateEnteredAtMS

	switch c.state {
	case Idle:
		buffered := agg.LatestStartTick-agg.EarliestStartTick <= c.cfg.KeyBufferMS && agg.ContactCount >= 2
		switch {
		case buffered && !agg.KeyboardAnchor:
			c.enter(GestureCandidate, nowMS)
			return c.state, "gesture_buffer"
		case agg.OnKeyCount >= 1 && !c.mouseSignal(agg):
			c.enter(KeyCandidate, nowMS)
			return c.state, "on_key"
		default:
			c.enter(MouseCandidate, nowMS)
			return c.state, "off_key"
		}

	case KeyCandidate:
		switch {
		case c.mouseSignal(agg):
			c.enter(MouseCandidate, nowMS)
			return c.state, "mouse_signal"
		case elapsed >= c.cfg.KeyBufferMS:
			c.enter(TypingCommitted, nowMS)
			return c.state, "candidate_elapsed"
		default:
			return c.state, "key_candidate"
		}

	case TypingCommitted:
		if c.cfg.AllowMouseTakeover && c.mouseSignal(agg) {
			c.enter(MouseActive, nowMS)
			return c.state, "mouse_takeover"
		}
		return c.state, "typing_committed"

	case MouseCandidate:
		if c.mouseSignal(agg) || elapsed >= c.cfg.KeyBufferMS {
			c.enter(MouseActive, nowMS)
			return c.state, "mouse_confirmed"
		}
		return c.state, "mouse_candidate"

	case MouseActive:
		return c.state, "mouse_active"

	case GestureCandidate:
		if agg.ContactCount < 2 {
			c.enter(Idle, nowMS)
			return c.state, "gesture_exit"
		}
		return c.state, "gesture_candidate"
	}

	return c.state, "unchanged"
}
