// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package contact

import (
	"github.com/glasstokey/g2k"
	"github.com/glasstokey/g2k/binding"
	"github.com/glasstokey/g2k/dispatch"
	"github.com/glasstokey/g2k/geom"
)

// Machine runs the per-contact lifecycle for both sides. It owns no
// binding index or intent state of its own: the engine worker supplies
// the current Binding Index for a side on every Process call, and tells
// Machine whether Snap recovery is currently permitted (the intent
// classifier's KeyCandidate/TypingCommitted gate).
type Machine struct {
	cfg      g2k.Config
	queue    *dispatch.Queue
	contacts *table
	tokens   uint64

	// nowTicks is the engine clock of the frame currently being
	// processed, stamped onto every dispatch event produced for it.
	nowTicks int64

	typingEnabledFlag bool

	// LayerAction, if set, is invoked when a LayerSet/LayerToggle tap
	// resolves, so the engine worker can update persistent_layer and
	// invalidate the affected Binding Index. Machine carries no layer
	// state of its own.
	LayerAction func(action g2k.Action)
}

// NewMachine creates a Machine that dispatches through queue. Typing
// starts enabled, the documented typing_enabled default.
func NewMachine(cfg g2k.Config, queue *dispatch.Queue) *Machine {
	return &Machine{cfg: cfg, queue: queue, contacts: newTable(), typingEnabledFlag: true}
}

// TypingEnabled reports the current typing_enabled state.
func (m *Machine) TypingEnabled() bool { return m.typingEnabledFlag }

// SetTypingEnabled overrides typing_enabled directly, for the five-finger
// swipe gesture and external toggles.
func (m *Machine) SetTypingEnabled(enabled bool) { m.typingEnabledFlag = enabled }

// SetConfig swaps the tunables Process consults. The engine calls this
// from PostConfig; Process never mutates cfg itself.
func (m *Machine) SetConfig(cfg g2k.Config) { m.cfg = cfg }

func (m *Machine) nextToken() uint64 {
	m.tokens++
	return m.tokens
}

// Slot returns the live slot for (side, id), or nil.
func (m *Machine) Slot(side g2k.Side, id int) *Slot { return m.contacts.Get(side, id) }

// ForEach calls fn for every live slot on the given side.
func (m *Machine) ForEach(side g2k.Side, fn func(id int, s *Slot)) {
	m.contacts.ForEach(func(s g2k.Side, id int, slot *Slot) {
		if s == side {
			fn(id, slot)
		}
	})
}

// MomentaryLayerTouches counts, per target layer, how many live contacts
// on side are currently contributing a momentary-layer hold.
func (m *Machine) MomentaryLayerTouches(side g2k.Side) map[g2k.Layer]int {
	out := make(map[g2k.Layer]int)
	m.ForEach(side, func(_ int, s *Slot) {
		if s.HasMomentaryLayerTarget {
			out[s.MomentaryLayerTarget]++
		}
	})
	return out
}

// Reset clears every live contact slot, emitting a balancing Up for any
// slot whose press action was already sent: it cancels outstanding
// dispatch-down state by emitting balancing ups for every held
// key/modifier before clearing all slots.
func (m *Machine) Reset() {
	m.contacts.ForEach(func(_ g2k.Side, _ int, slot *Slot) {
		if slot.DispatchDownSent {
			m.endPressAction(slot)
		}
	})
	m.contacts = newTable()
}

// ClaimForGesture marks a live contact's release as owned by the gesture
// subsystem, suppressing this machine's own tap emission for it.
func (m *Machine) ClaimForGesture(side g2k.Side, id int) {
	if s := m.contacts.Get(side, id); s != nil {
		s.TapClaimedByGesture = true
	}
}

// Process advances the contact state machine by one frame for a single
// side. index is the side's current Binding Index at its active layer;
// surface converts normalized displacement into millimeters; nowMS is
// the engine's monotonic clock in milliseconds; allowSnap reflects
// whether the intent classifier is currently in KeyCandidate or
// TypingCommitted, the only states where release-time Snap recovery
// runs.
func (m *Machine) Process(side g2k.Side, frame g2k.RawFrame, index *binding.Index, surface geom.Surface, nowMS float64, allowSnap bool) {
	m.nowTicks = int64(nowMS)
	present := make(map[int]g2k.RawContact, len(frame.Contacts))
	for _, c := range frame.Contacts {
		if c.State.TipDown() && m.cfg.ForceEligible(c) {
			present[c.ID] = c
		}
	}

	var releasedIDs []int
	m.contacts.ForEach(func(s g2k.Side, id int, slot *Slot) {
		if s != side {
			return
		}
		if _, ok := present[id]; !ok {
			releasedIDs = append(releasedIDs, id)
		}
	})
	for _, id := range releasedIDs {
		slot := m.contacts.Get(side, id)
		m.release(side, id, slot, index, allowSnap)
		m.contacts.Delete(side, id)
	}

	// Walk the frame's own contact order, not the presence map: with two
	// new contacts in one frame, the order their press dispatches enqueue
	// must be reproducible for replay.
	for _, c := range frame.Contacts {
		if _, ok := present[c.ID]; !ok {
			continue
		}
		xy := geom.V2{X: c.X, Y: c.Y}
		if slot := m.contacts.Get(side, c.ID); slot != nil {
			m.update(side, slot, xy, surface, nowMS)
			continue
		}
		m.begin(side, c.ID, xy, index, nowMS)
	}
}

func (m *Machine) begin(side g2k.Side, id int, xy geom.V2, index *binding.Index, nowMS float64) {
	slot := &Slot{
		Side:      side,
		ID:        id,
		Lifecycle: Pending,
		StartTick: nowMS,
		StartXY:   xy,
		LastXY:    xy,
	}

	if index != nil {
		if e, ok := index.HitTest(xy.X, xy.Y); ok {
			slot.Entry = e
			slot.HasEntry = true
			slot.HasHoldAction = e.Mapping.HasHold()

			if slot.HasHoldAction {
				// Press deferred until hold fires or release arrives.
			} else {
				slot.Lifecycle = Active
				m.beginPressAction(side, slot, e.Mapping.Primary, e.Label)
			}

			if e.Mapping.Primary.Kind == g2k.ActionMomentaryLayer {
				slot.HasMomentaryLayerTarget = true
				slot.MomentaryLayerTarget = e.Mapping.Primary.Layer
			}
		}
	}

	m.contacts.Put(side, id, slot)
}

func (m *Machine) update(side g2k.Side, slot *Slot, xy geom.V2, surface geom.Surface, nowMS float64) {
	slot.LastXY = xy
	if d := surface.DistanceMM(slot.StartXY, xy); d > slot.MaxDistanceMM {
		slot.MaxDistanceMM = d
	}

	if slot.DispatchDownSent && slot.MaxDistanceMM > m.cfg.DragCancelMM {
		m.endPressAction(slot)
		slot.DragCancelled = true
		return
	}

	if slot.Lifecycle == Pending && slot.HasHoldAction && !slot.HoldTriggered &&
		slot.MaxDistanceMM <= m.cfg.DragCancelMM && nowMS-slot.StartTick >= m.cfg.HoldDurationMS {
		slot.Lifecycle = Active
		slot.HoldTriggered = true
		hold := *slot.Entry.Mapping.Hold
		m.beginPressAction(side, slot, hold, slot.Entry.Label)
	}
}

func (m *Machine) release(side g2k.Side, id int, slot *Slot, index *binding.Index, allowSnap bool) {
	if slot == nil {
		return
	}

	if slot.HasMomentaryLayerTarget {
		slot.HasMomentaryLayerTarget = false
	}

	if slot.DispatchDownSent {
		m.endPressAction(slot)
		return
	}
	if slot.MaxDistanceMM > m.cfg.DragCancelMM {
		return
	}
	if slot.TapClaimedByGesture {
		return
	}
	if slot.HoldTriggered {
		return
	}

	if slot.HasEntry && slot.Entry.Rect.Contains(slot.LastXY.X, slot.LastXY.Y) {
		m.emitTapDispatch(side, slot.Entry.Mapping.Primary, slot.Entry.Label)
		return
	}

	// Released over a different binding than it started on: an explicit
	// drag-across-keys, which emits nothing.
	if index != nil {
		if _, ok := index.HitTest(slot.LastXY.X, slot.LastXY.Y); ok {
			return
		}
	}

	if allowSnap && m.cfg.SnapRadiusPercent > 0 && index != nil {
		if e, ok := index.Snap(slot.LastXY.X, slot.LastXY.Y, m.cfg.SnapAmbiguityRatio); ok {
			m.emitTapDispatch(side, e.Mapping.Primary, e.Label)
		}
	}
}

// beginPressAction implements begin_press_action: only Modifier and
// Continuous bindings produce an immediate down dispatch; everything
// else waits for release-time tap emission.
func (m *Machine) beginPressAction(side g2k.Side, slot *Slot, action g2k.Action, label string) {
	switch action.Kind {
	case g2k.ActionModifier:
		token := m.nextToken()
		slot.DispatchDownSent = true
		slot.DispatchDownKind = dispatchModifier
		slot.DispatchDownVK = action.VK
		slot.DispatchDownLabel = label
		slot.RepeatToken = token
		m.queue.EnqueueOrSuppress(dispatch.Event{
			TimestampTicks: m.nowTicks,
			Kind:           dispatch.ModifierDown, VK: action.VK, RepeatToken: token, Side: side, Label: label,
		}, m.TypingEnabled())
	case g2k.ActionContinuous:
		token := m.nextToken()
		slot.DispatchDownSent = true
		slot.DispatchDownKind = dispatchContinuous
		slot.DispatchDownVK = action.VK
		slot.DispatchDownLabel = label
		slot.RepeatToken = token
		m.queue.EnqueueOrSuppress(dispatch.Event{
			TimestampTicks: m.nowTicks,
			Kind:           dispatch.KeyDown, VK: action.VK, RepeatToken: token, Flags: dispatch.FlagRepeatable, Side: side, Label: label,
		}, m.TypingEnabled())
	default:
		// Deferred to release-time tap emission.
	}
}

// endPressAction emits the exact inverse of a previously sent down,
// reusing its repeat token so the backend can cancel auto-repeat.
func (m *Machine) endPressAction(slot *Slot) {
	if !slot.DispatchDownSent {
		return
	}
	switch slot.DispatchDownKind {
	case dispatchModifier:
		m.queue.Enqueue(dispatch.Event{
			TimestampTicks: m.nowTicks,
			Kind:           dispatch.ModifierUp, VK: slot.DispatchDownVK, RepeatToken: slot.RepeatToken, Side: slot.Side, Label: slot.DispatchDownLabel,
		})
	case dispatchContinuous:
		m.queue.Enqueue(dispatch.Event{
			TimestampTicks: m.nowTicks,
			Kind:           dispatch.KeyUp, VK: slot.DispatchDownVK, RepeatToken: slot.RepeatToken, Side: slot.Side, Label: slot.DispatchDownLabel,
		})
	}
	slot.DispatchDownSent = false
}

// emitTapDispatch implements emit_tap_dispatch: one-shot dispatch
// sequences for actions whose effect was deferred to release. Taps and
// clicks carry the haptic flag when the actuator is enabled.
func (m *Machine) emitTapDispatch(side g2k.Side, action g2k.Action, label string) {
	enabled := m.TypingEnabled()
	var haptic dispatch.Flag
	if m.cfg.HapticStrength > 0 {
		haptic = dispatch.FlagHaptic
	}
	switch action.Kind {
	case g2k.ActionKey:
		m.queue.EnqueueOrSuppress(dispatch.Event{TimestampTicks: m.nowTicks, Kind: dispatch.KeyTap, VK: action.VK, Flags: haptic, Side: side, Label: label}, enabled)
	case g2k.ActionModifier:
		token := m.nextToken()
		// The up only follows a down that actually made it onto the ring.
		if m.queue.EnqueueOrSuppress(dispatch.Event{TimestampTicks: m.nowTicks, Kind: dispatch.ModifierDown, VK: action.VK, RepeatToken: token, Side: side, Label: label}, enabled) {
			m.queue.Enqueue(dispatch.Event{TimestampTicks: m.nowTicks, Kind: dispatch.ModifierUp, VK: action.VK, RepeatToken: token, Side: side, Label: label})
		}
	case g2k.ActionMouseButton:
		m.queue.EnqueueOrSuppress(dispatch.Event{TimestampTicks: m.nowTicks, Kind: dispatch.MouseButtonClick, Button: action.Button, Flags: haptic, Side: side, Label: label}, enabled)
	case g2k.ActionKeyChord:
		token := m.nextToken()
		if m.queue.EnqueueOrSuppress(dispatch.Event{TimestampTicks: m.nowTicks, Kind: dispatch.ModifierDown, VK: action.ModifierVK, RepeatToken: token, Side: side, Label: label}, enabled) {
			m.queue.EnqueueOrSuppress(dispatch.Event{TimestampTicks: m.nowTicks, Kind: dispatch.KeyTap, VK: action.VK, Flags: haptic, Side: side, Label: label}, enabled)
			m.queue.Enqueue(dispatch.Event{TimestampTicks: m.nowTicks, Kind: dispatch.ModifierUp, VK: action.ModifierVK, RepeatToken: token, Side: side, Label: label})
		}
	case g2k.ActionTypingToggle:
		m.typingEnabledFlag = !m.typingEnabledFlag
	case g2k.ActionLayerSet, g2k.ActionLayerToggle:
		m.onLayerAction(action)
	case g2k.ActionMomentaryLayer:
		// Effect is the live momentary touch, already ended above.
	}
}

func (m *Machine) onLayerAction(action g2k.Action) {
	if m.LayerAction != nil {
		m.LayerAction(action)
	}
}
