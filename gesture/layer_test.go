// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package gesture

import (
	"testing"

	"github.com/glasstokey/g2k"
	"github.com/glasstokey/g2k/contact"
	"github.com/glasstokey/g2k/dispatch"
	"github.com/glasstokey/g2k/geom"
)

func surf() geom.Surface { return geom.Surface{WidthMM: 55, HeightMM: 45} }

func TestTapClickTwoFingerEmitsLeftClick(t *testing.T) {
	cfg := g2k.DefaultConfig()
	q := dispatch.NewQueue(8)
	l := NewLayer(cfg, q)
	m := contact.NewMachine(cfg, q)

	bySide := map[g2k.Side]SideInput{
		g2k.SideLeft: {Surface: surf(), Contacts: []ContactSnapshot{
			{ID: 1, XY: geom.V2{X: 0.5, Y: 0.5}, StartMS: 0},
			{ID: 2, XY: geom.V2{X: 0.55, Y: 0.5}, StartMS: 5},
		}},
	}
	l.Update(10, bySide, m, false, false)

	l.Update(20, map[g2k.Side]SideInput{}, m, false, false)

	evs := q.Drain(0)
	if len(evs) != 1 || evs[0].Kind != dispatch.MouseButtonClick || evs[0].Button != g2k.MouseLeft {
		t.Fatalf("expected a left MouseButtonClick, got %+v", evs)
	}
}

func TestTapClickThreeFingerEmitsRightClick(t *testing.T) {
	cfg := g2k.DefaultConfig()
	q := dispatch.NewQueue(8)
	l := NewLayer(cfg, q)
	m := contact.NewMachine(cfg, q)

	bySide := map[g2k.Side]SideInput{
		g2k.SideLeft: {Surface: surf(), Contacts: []ContactSnapshot{
			{ID: 1, XY: geom.V2{X: 0.5, Y: 0.5}, StartMS: 0},
			{ID: 2, XY: geom.V2{X: 0.55, Y: 0.5}, StartMS: 2},
			{ID: 3, XY: geom.V2{X: 0.45, Y: 0.5}, StartMS: 4},
		}},
	}
	l.Update(10, bySide, m, false, false)
	l.Update(20, map[g2k.Side]SideInput{}, m, false, false)

	evs := q.Drain(0)
	if len(evs) != 1 || evs[0].Button != g2k.MouseRight {
		t.Fatalf("expected a right MouseButtonClick, got %+v", evs)
	}
}

func TestTapClickInvalidatedByExcessMovement(t *testing.T) {
	cfg := g2k.DefaultConfig()
	q := dispatch.NewQueue(8)
	l := NewLayer(cfg, q)
	m := contact.NewMachine(cfg, q)

	bySide := map[g2k.Side]SideInput{
		g2k.SideLeft: {Surface: surf(), Contacts: []ContactSnapshot{
			{ID: 1, XY: geom.V2{X: 0.5, Y: 0.5}, StartMS: 0},
			{ID: 2, XY: geom.V2{X: 0.55, Y: 0.5}, StartMS: 2},
		}},
	}
	l.Update(10, bySide, m, false, false)

	moved := map[g2k.Side]SideInput{
		g2k.SideLeft: {Surface: surf(), Contacts: []ContactSnapshot{
			{ID: 1, XY: geom.V2{X: 0.9, Y: 0.9}, StartMS: 0},
			{ID: 2, XY: geom.V2{X: 0.55, Y: 0.5}, StartMS: 2},
		}},
	}
	l.Update(15, moved, m, false, false)
	l.Update(20, map[g2k.Side]SideInput{}, m, false, false)

	if got := q.Len(); got != 0 {
		t.Errorf("expected no click after excess movement invalidated the candidate, got %d events", got)
	}
}

func TestFiveFingerSwipeFlipsTypingEnabled(t *testing.T) {
	cfg := g2k.DefaultConfig()
	q := dispatch.NewQueue(8)
	l := NewLayer(cfg, q)
	m := contact.NewMachine(cfg, q)

	five := []ContactSnapshot{
		{ID: 1, XY: geom.V2{X: 0.1, Y: 0.5}},
		{ID: 2, XY: geom.V2{X: 0.2, Y: 0.5}},
		{ID: 3, XY: geom.V2{X: 0.3, Y: 0.5}},
		{ID: 4, XY: geom.V2{X: 0.4, Y: 0.5}},
		{ID: 5, XY: geom.V2{X: 0.5, Y: 0.5}},
	}
	l.Update(0, map[g2k.Side]SideInput{g2k.SideLeft: {Surface: surf(), Contacts: five}}, m, false, false)

	wasEnabled := m.TypingEnabled()

	moved := make([]ContactSnapshot, len(five))
	for i, c := range five {
		moved[i] = c
		moved[i].XY.X += 0.3 // 0.3*55mm = 16.5mm, comfortably over the 8mm trigger
	}
	l.Update(10, map[g2k.Side]SideInput{g2k.SideLeft: {Surface: surf(), Contacts: moved}}, m, false, false)

	if m.TypingEnabled() == wasEnabled {
		t.Error("expected the five-finger swipe to flip typing_enabled")
	}

	triggers := l.ConsumeSwipeTriggers()
	if len(triggers) != 1 {
		t.Fatalf("expected exactly one swipe trigger, got %d", len(triggers))
	}
	if triggers[0].Side != g2k.SideLeft || triggers[0].SignX != 1 {
		t.Errorf("expected a left-side, positive-X swipe trigger, got %+v", triggers[0])
	}
	if more := l.ConsumeSwipeTriggers(); len(more) != 0 {
		t.Errorf("expected ConsumeSwipeTriggers to drain, got %d leftover", len(more))
	}
}

func TestChordShiftLatchesWhileOppositeSideChorded(t *testing.T) {
	cfg := g2k.DefaultConfig()
	q := dispatch.NewQueue(8)
	l := NewLayer(cfg, q)
	m := contact.NewMachine(cfg, q)

	four := []ContactSnapshot{
		{ID: 1, XY: geom.V2{X: 0.1, Y: 0.5}},
		{ID: 2, XY: geom.V2{X: 0.2, Y: 0.5}},
		{ID: 3, XY: geom.V2{X: 0.3, Y: 0.5}},
		{ID: 4, XY: geom.V2{X: 0.4, Y: 0.5}},
	}
	key := []ContactSnapshot{{ID: 10, XY: geom.V2{X: 0.5, Y: 0.5}, OnKey: true}}

	bySide := map[g2k.Side]SideInput{
		g2k.SideRight: {Surface: surf(), Contacts: four},
		g2k.SideLeft:  {Surface: surf(), Contacts: key},
	}
	l.Update(0, bySide, m, false, false)

	evs := q.Drain(0)
	if len(evs) != 1 || evs[0].Kind != dispatch.ModifierDown || evs[0].VK != ShiftVK {
		t.Fatalf("expected a ModifierDown(Shift), got %+v", evs)
	}

	l.Update(10, map[g2k.Side]SideInput{
		g2k.SideLeft:  {Surface: surf(), Contacts: key},
		g2k.SideRight: {Surface: surf()},
	}, m, false, false)

	ups := q.Drain(0)
	if len(ups) != 1 || ups[0].Kind != dispatch.ModifierUp {
		t.Fatalf("expected a ModifierUp(Shift) once the chorded side falls to 0, got %+v", ups)
	}
}

func TestChordShiftSuppressedWhileTypingDisabled(t *testing.T) {
	cfg := g2k.DefaultConfig()
	q := dispatch.NewQueue(8)
	l := NewLayer(cfg, q)
	m := contact.NewMachine(cfg, q)
	m.SetTypingEnabled(false)

	four := []ContactSnapshot{
		{ID: 1, XY: geom.V2{X: 0.1, Y: 0.5}},
		{ID: 2, XY: geom.V2{X: 0.2, Y: 0.5}},
		{ID: 3, XY: geom.V2{X: 0.3, Y: 0.5}},
		{ID: 4, XY: geom.V2{X: 0.4, Y: 0.5}},
	}
	key := []ContactSnapshot{{ID: 10, XY: geom.V2{X: 0.5, Y: 0.5}, OnKey: true}}

	l.Update(0, map[g2k.Side]SideInput{
		g2k.SideRight: {Surface: surf(), Contacts: four},
		g2k.SideLeft:  {Surface: surf(), Contacts: key},
	}, m, false, false)
	l.Update(10, map[g2k.Side]SideInput{
		g2k.SideLeft:  {Surface: surf(), Contacts: key},
		g2k.SideRight: {Surface: surf()},
	}, m, false, false)

	if got := q.Len(); got != 0 {
		t.Errorf("expected no chord dispatch while typing is disabled, got %d events", got)
	}
	if got := q.Stats().SuppressedTyping; got != 1 {
		t.Errorf("expected the suppressed ModifierDown counted once, got %d", got)
	}
}
