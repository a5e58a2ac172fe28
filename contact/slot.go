// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package contact implements the per-contact lifetime state machine:
// pending/active lifecycle, hold detection, drag-cancel, momentary-layer
// activation, repeat token assignment, and deferred tap resolution at
// release time.
package contact

import (
	"github.com/glasstokey/g2k"
	"github.com/glasstokey/g2k/binding"
	"github.com/glasstokey/g2k/geom"
)

// Lifecycle is a contact slot's coarse state: Pending while still
// possibly promoting to a hold action, Active once a press has begun or
// a hold has fired.
type Lifecycle uint8

const (
	Pending Lifecycle = iota
	Active
)

// Slot is the per-contact lifetime state, named field by field.
type Slot struct {
	Side g2k.Side
	ID   int

	Entry    binding.Entry
	HasEntry bool // false if the initial hit-test missed.

	Lifecycle     Lifecycle
	StartTick     float64
	StartXY       geom.V2
	LastXY        geom.V2
	MaxDistanceMM float64

	HasHoldAction bool
	HoldTriggered bool

	MomentaryLayerTarget    g2k.Layer
	HasMomentaryLayerTarget bool

	DispatchDownSent   bool
	DispatchDownKind   dispatchKind
	DispatchDownVK     uint16
	DispatchDownButton g2k.MouseButton
	DispatchDownLabel  string
	RepeatToken        uint64

	// DragCancelled records that end_press_action already fired from the
	// drag-cancel path on a subsequent frame, so release must emit
	// nothing even though a press was sent.
	DragCancelled bool

	// TapClaimedByGesture is set by the gesture layer when it claims this
	// contact, for a resolved tap-click or as a chord-shift source
	// contact, so release emits nothing here.
	TapClaimedByGesture bool
}

type dispatchKind uint8

const (
	dispatchNone dispatchKind = iota
	dispatchModifier
	dispatchContinuous
)

// IsOnKey reports whether the initial hit-test found a binding.
func (s *Slot) IsOnKey() bool { return s.HasEntry }

// IsKeyboardAnchor reports whether this contact's initial binding is one
// of the kinds the Intent Classifier treats as a keyboard anchor:
// Modifier, Continuous, MomentaryLayer, or KeyChord.
func (s *Slot) IsKeyboardAnchor() bool {
	if !s.HasEntry {
		return false
	}
	switch s.Entry.Mapping.Primary.Kind {
	case g2k.ActionModifier, g2k.ActionContinuous, g2k.ActionMomentaryLayer, g2k.ActionKeyChord:
		return true
	default:
		return false
	}
}
