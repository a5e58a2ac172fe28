// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package contact

import (
	"testing"

	"github.com/glasstokey/g2k"
	"github.com/glasstokey/g2k/binding"
	"github.com/glasstokey/g2k/dispatch"
	"github.com/glasstokey/g2k/geom"
)

func surface() geom.Surface { return geom.Surface{WidthMM: 55, HeightMM: 45} }

func oneKeyIndex(t *testing.T, kind g2k.ActionKind, vk uint16) *binding.Index {
	t.Helper()
	rect := g2k.Rect{X: 0.1, Y: 0.1, W: 0.1, H: 0.1}
	bindings := []g2k.KeyBinding{{Side: g2k.SideLeft, StorageKey: "A", Label: "A", Rect: rect}}
	entries := []g2k.KeyMapEntry{{
		StorageKey: "A",
		Mapping:    g2k.KeyMapping{Primary: g2k.Action{Kind: kind, VK: vk}},
	}}
	km := g2k.NewKeyMap(entries)
	return binding.BuildFromBindings(bindings, km, g2k.NewCustomButtons(nil), g2k.SideLeft, 0, surface(), 35)
}

func frameAt(id int, x, y float64, state g2k.ContactState) g2k.RawFrame {
	return g2k.RawFrame{Contacts: []g2k.RawContact{{ID: id, X: x, Y: y, State: state}}}
}

func TestMachineEmitsTapOnCleanRelease(t *testing.T) {
	cfg := g2k.DefaultConfig()
	q := dispatch.NewQueue(8)
	m := NewMachine(cfg, q)
	idx := oneKeyIndex(t, g2k.ActionKey, 65)

	m.Process(g2k.SideLeft, frameAt(1, 0.15, 0.15, g2k.StateTouching), idx, surface(), 0, true)
	if got := q.Len(); got != 0 {
		t.Fatalf("expected no dispatch on press for a plain key, got %d", got)
	}

	m.Process(g2k.SideLeft, g2k.RawFrame{}, idx, surface(), 10, true)

	evs := q.Drain(0)
	if len(evs) != 1 || evs[0].Kind != dispatch.KeyTap || evs[0].VK != 65 {
		t.Fatalf("expected a single KeyTap(65), got %+v", evs)
	}
}

func TestMachineModifierPressAndRelease(t *testing.T) {
	cfg := g2k.DefaultConfig()
	q := dispatch.NewQueue(8)
	m := NewMachine(cfg, q)
	idx := oneKeyIndex(t, g2k.ActionModifier, 1)

	m.Process(g2k.SideLeft, frameAt(1, 0.15, 0.15, g2k.StateTouching), idx, surface(), 0, true)
	downs := q.Drain(0)
	if len(downs) != 1 || downs[0].Kind != dispatch.ModifierDown {
		t.Fatalf("expected an immediate ModifierDown, got %+v", downs)
	}

	m.Process(g2k.SideLeft, g2k.RawFrame{}, idx, surface(), 10, true)
	ups := q.Drain(0)
	if len(ups) != 1 || ups[0].Kind != dispatch.ModifierUp || ups[0].RepeatToken != downs[0].RepeatToken {
		t.Fatalf("expected a balancing ModifierUp with the same token, got %+v", ups)
	}
}

func TestMachineDragCancelSuppressesTap(t *testing.T) {
	cfg := g2k.DefaultConfig()
	q := dispatch.NewQueue(8)
	m := NewMachine(cfg, q)
	idx := oneKeyIndex(t, g2k.ActionKey, 65)

	m.Process(g2k.SideLeft, frameAt(1, 0.15, 0.15, g2k.StateTouching), idx, surface(), 0, true)
	// Drag far enough to exceed drag_cancel_mm on a 55mm-wide surface.
	m.Process(g2k.SideLeft, frameAt(1, 0.9, 0.9, g2k.StateTouching), idx, surface(), 10, true)
	m.Process(g2k.SideLeft, g2k.RawFrame{}, idx, surface(), 20, true)

	if got := q.Len(); got != 0 {
		t.Errorf("expected no dispatch after a drag-cancelled plain key, got %d events", got)
	}
}

func TestMachineHoldPromotion(t *testing.T) {
	cfg := g2k.DefaultConfig()
	q := dispatch.NewQueue(8)
	m := NewMachine(cfg, q)

	rect := g2k.Rect{X: 0.1, Y: 0.1, W: 0.1, H: 0.1}
	bindings := []g2k.KeyBinding{{Side: g2k.SideLeft, StorageKey: "A", Label: "A", Rect: rect}}
	hold := g2k.Action{Kind: g2k.ActionModifier, VK: 2}
	entries := []g2k.KeyMapEntry{{
		StorageKey: "A",
		Mapping:    g2k.KeyMapping{Primary: g2k.Action{Kind: g2k.ActionKey, VK: 65}, Hold: &hold},
	}}
	idx := binding.BuildFromBindings(bindings, g2k.NewKeyMap(entries), g2k.NewCustomButtons(nil), g2k.SideLeft, 0, surface(), 35)

	m.Process(g2k.SideLeft, frameAt(1, 0.15, 0.15, g2k.StateTouching), idx, surface(), 0, true)
	if got := q.Len(); got != 0 {
		t.Fatalf("expected no dispatch before hold_duration_ms elapses, got %d", got)
	}

	m.Process(g2k.SideLeft, frameAt(1, 0.15, 0.15, g2k.StateTouching), idx, surface(), cfg.HoldDurationMS+1, true)
	downs := q.Drain(0)
	if len(downs) != 1 || downs[0].Kind != dispatch.ModifierDown || downs[0].VK != 2 {
		t.Fatalf("expected the hold action's ModifierDown, got %+v", downs)
	}

	m.Process(g2k.SideLeft, g2k.RawFrame{}, idx, surface(), cfg.HoldDurationMS+20, true)
	ups := q.Drain(0)
	if len(ups) != 1 || ups[0].Kind != dispatch.ModifierUp {
		t.Fatalf("expected a balancing ModifierUp and no tap after a triggered hold, got %+v", ups)
	}
}

func TestMachineOffKeyMissEmitsNothing(t *testing.T) {
	cfg := g2k.DefaultConfig()
	q := dispatch.NewQueue(8)
	m := NewMachine(cfg, q)
	idx := oneKeyIndex(t, g2k.ActionKey, 65)

	m.Process(g2k.SideLeft, frameAt(1, 0.9, 0.9, g2k.StateTouching), idx, surface(), 0, true)
	m.Process(g2k.SideLeft, g2k.RawFrame{}, idx, surface(), 10, false)

	if got := q.Len(); got != 0 {
		t.Errorf("expected no dispatch for an off-key contact with snap disallowed, got %d", got)
	}
}

func TestMachineSnapRecoversReleaseOffKey(t *testing.T) {
	cfg := g2k.DefaultConfig()
	q := dispatch.NewQueue(8)
	m := NewMachine(cfg, q)
	idx := oneKeyIndex(t, g2k.ActionKey, 65)

	// Starts on the key...
	m.Process(g2k.SideLeft, frameAt(1, 0.15, 0.15, g2k.StateTouching), idx, surface(), 0, true)
	// ...drifts just off it, but still within the snap radius.
	m.Process(g2k.SideLeft, frameAt(1, 0.21, 0.21, g2k.StateTouching), idx, surface(), 10, true)
	m.Process(g2k.SideLeft, g2k.RawFrame{}, idx, surface(), 20, true)

	evs := q.Drain(0)
	if len(evs) != 1 || evs[0].Kind != dispatch.KeyTap {
		t.Fatalf("expected Snap to recover a KeyTap, got %+v", evs)
	}
}

func TestMachineRestingPressureIgnored(t *testing.T) {
	cfg := g2k.DefaultConfig()
	cfg.ForceClickMin = 10
	q := dispatch.NewQueue(8)
	m := NewMachine(cfg, q)
	idx := oneKeyIndex(t, g2k.ActionKey, 65)

	resting := g2k.RawFrame{Contacts: []g2k.RawContact{
		{ID: 1, X: 0.15, Y: 0.15, Pressure: 5, State: g2k.StateTouching},
	}}
	m.Process(g2k.SideLeft, resting, idx, surface(), 0, true)
	if m.Slot(g2k.SideLeft, 1) != nil {
		t.Fatal("expected a sub-threshold contact to be ignored as a resting finger")
	}

	pressing := g2k.RawFrame{Contacts: []g2k.RawContact{
		{ID: 1, X: 0.15, Y: 0.15, Pressure: 50, State: g2k.StateTouching},
	}}
	m.Process(g2k.SideLeft, pressing, idx, surface(), 10, true)
	if m.Slot(g2k.SideLeft, 1) == nil {
		t.Fatal("expected an above-threshold contact to be tracked")
	}

	m.Process(g2k.SideLeft, g2k.RawFrame{}, idx, surface(), 20, true)
	evs := q.Drain(0)
	if len(evs) != 1 || evs[0].Kind != dispatch.KeyTap {
		t.Fatalf("expected the pressing contact to tap on release, got %+v", evs)
	}
}

func TestMachineTypingDisabledSuppressesKeyTap(t *testing.T) {
	cfg := g2k.DefaultConfig()
	q := dispatch.NewQueue(8)
	m := NewMachine(cfg, q)
	m.SetTypingEnabled(false)
	idx := oneKeyIndex(t, g2k.ActionKey, 65)

	m.Process(g2k.SideLeft, frameAt(1, 0.15, 0.15, g2k.StateTouching), idx, surface(), 0, true)
	m.Process(g2k.SideLeft, g2k.RawFrame{}, idx, surface(), 10, true)

	if got := q.Len(); got != 0 {
		t.Errorf("expected KeyTap to be suppressed while typing is disabled, got %d events", got)
	}
	if q.Stats().SuppressedTyping != 1 {
		t.Errorf("expected the suppression counter to increase by 1, got %d", q.Stats().SuppressedTyping)
	}
}
