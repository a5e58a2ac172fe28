// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package g2k

// model.go holds the immutable, wire-shaped data types every other package
// in this module consumes: the raw per-frame touch data coming in, and the
// action catalog the binding map resolves contacts against.

// Side identifies a physical trackpad half. A device is assigned to at
// most one side by the external frame source; the engine never guesses.
type Side int

const (
	SideUnknown Side = iota
	SideLeft
	SideRight
)

func (s Side) String() string {
	switch s {
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	default:
		return "unknown"
	}
}

// Opposite returns the other physical side, or SideUnknown if s is
// SideUnknown.
func (s Side) Opposite() Side {
	switch s {
	case SideLeft:
		return SideRight
	case SideRight:
		return SideLeft
	default:
		return SideUnknown
	}
}

// ContactState mirrors the device-reported lifecycle of a single finger
// within one frame. Only the tip-down states count as a live contact; a
// hovering finger never does.
type ContactState uint8

const (
	StateNotTouching ContactState = iota
	StateStarting
	StateHovering
	StateMaking
	StateTouching
	StateBreaking
	StateLingering
	StateLeaving
)

// TipDown reports whether this state counts as a physical touch for the
// purposes of the contact state machine and intent classifier.
func (s ContactState) TipDown() bool {
	switch s {
	case StateStarting, StateMaking, StateTouching, StateBreaking, StateLingering, StateLeaving:
		return true
	default:
		return false
	}
}

// RawContact is one finger's reading within a RawFrame. Coordinates are
// normalized to [0,1] with the origin at the top-left of that side's
// surface. Pressure and shape fields are device-specific units and are
// only ever compared to themselves across frames of the same device.
type RawContact struct {
	ID         int
	X, Y       float64
	Pressure   float64
	Total      float64
	MajorAxis  float64
	MinorAxis  float64
	Angle      float64
	Density    float64
	State      ContactState
}

// RawFrame is one canonical multi-touch sample from a single device.
// Sequence is assigned by the frame ingest stage, never by the source.
type RawFrame struct {
	Sequence        uint64
	TimestampSecs   float64
	DeviceNumericID uint64
	DeviceIndex     int // 0 = left, 1 = right, matches Side-1 for valid sides.
	Side            Side
	Contacts        []RawContact
}

// TipDownCount returns the number of contacts in the frame whose state
// counts as touching.
func (f *RawFrame) TipDownCount() int {
	n := 0
	for i := range f.Contacts {
		if f.Contacts[i].State.TipDown() {
			n++
		}
	}
	return n
}

// Layer is a keymap layer index in [0,7]. Layer 0 is the base layer.
type Layer int

const MaxLayer Layer = 7

// ActionKind discriminates the Action tagged-union variants.
type ActionKind uint8

const (
	ActionNone ActionKind = iota
	ActionKey
	ActionModifier
	ActionContinuous
	ActionMouseButton
	ActionKeyChord
	ActionMomentaryLayer
	ActionLayerSet
	ActionLayerToggle
	ActionTypingToggle
)

// MouseButton enumerates the pointer buttons a MouseButton action can
// address.
type MouseButton uint8

const (
	MouseLeft MouseButton = iota
	MouseRight
	MouseMiddle
)

// Action is the resolved behaviour bound to a key, custom button, or
// gesture slot. Zero value is ActionNone.
type Action struct {
	Kind        ActionKind
	VK          uint16 // virtual-key code, for Key/Modifier/Continuous/KeyChord's key half.
	ModifierVK  uint16 // modifier half of a KeyChord.
	Button      MouseButton
	Layer       Layer // target layer for MomentaryLayer/LayerSet/LayerToggle.
}

// Snappable reports whether this action's binding participates in
// release-time Snap recovery: Key, Modifier, Continuous, and KeyChord are
// snappable; mouse, typing-toggle, and layer actions are not.
func (a Action) Snappable() bool {
	switch a.Kind {
	case ActionKey, ActionModifier, ActionContinuous, ActionKeyChord:
		return true
	default:
		return false
	}
}

// KeyMapping is the pair of actions a binding resolves to: a required
// primary (tap) action and an optional hold action. Hold is only
// meaningful when the owning layer allows hold bindings.
type KeyMapping struct {
	Primary Action
	Hold    *Action
}

// HasHold reports whether this mapping carries a distinct hold action.
func (m KeyMapping) HasHold() bool { return m.Hold != nil }
