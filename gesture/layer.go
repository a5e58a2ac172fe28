// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package gesture implements the three multi-touch gestures layered on
// top of the Contact State Machine and Intent Classifier: N-finger tap
// click, five-finger swipe, and chord shift.
package gesture

import (
	"github.com/glasstokey/g2k"
	"github.com/glasstokey/g2k/contact"
	"github.com/glasstokey/g2k/dispatch"
	"github.com/glasstokey/g2k/geom"
)

// ShiftVK is the virtual-key code chord shift latches, the conventional
// Windows VK_SHIFT value. The host backend remaps it as needed.
const ShiftVK = 0x10

const staleContactMS = 200

// ContactSnapshot is one live contact as the engine worker reports it to
// the gesture layer for one side, already resolved against that side's
// Binding Index.
type ContactSnapshot struct {
	ID      int
	XY      geom.V2
	OnKey   bool
	StartMS float64
}

// SideInput is one side's live contacts for this frame.
type SideInput struct {
	Contacts []ContactSnapshot
	Surface  geom.Surface
}

type swipeState struct {
	armed      bool
	triggered  bool
	armCentroid geom.V2
	lastSeenMS  float64
}

// SwipeTrigger reports one side's five-finger swipe firing, including
// the sign of the centroid delta that triggered it. The engine worker
// surfaces this on the diagnostics ring; only the sign is recorded, not
// a direction-specific dispatch.
type SwipeTrigger struct {
	Side    g2k.Side
	SignX   int
	SignY   int
}

type tapCandidate struct {
	open         bool
	n            int
	majoritySide g2k.Side
	openedAtMS   float64
	starts       map[g2k.Side]map[int]geom.V2
	count        map[g2k.Side]int

	// lastTotal is the previous frame's combined contact count: a
	// candidate only opens on a transition from <=1 contacts, so fingers
	// lifting out of a larger stack never read as a tap.
	lastTotal int
}

// Layer tracks gesture state across both sides. The engine worker calls
// Update once per processed frame.
type Layer struct {
	cfg   g2k.Config
	queue *dispatch.Queue

	tap tapCandidate

	swipe map[g2k.Side]*swipeState

	// nowMS is the engine clock of the frame currently being updated,
	// stamped onto gesture-produced dispatch events.
	nowMS float64

	chordActive      bool
	chordSourceSide  g2k.Side
	chordLastSeenMS  map[g2k.Side]float64
	chordCounts      map[g2k.Side]int

	// chordDownSent records whether the latch's ModifierDown actually
	// made it onto the ring; a down suppressed by typing-disabled (or
	// dropped by a full ring) must not be balanced by an orphan up.
	chordDownSent bool

	// pendingSwipeTriggers accumulates this frame's newly-triggered
	// swipes; ConsumeSwipeTriggers drains it for the engine worker to
	// record on the diagnostics ring.
	pendingSwipeTriggers []SwipeTrigger
}

// NewLayer creates a Layer that dispatches through queue.
func NewLayer(cfg g2k.Config, queue *dispatch.Queue) *Layer {
	return &Layer{
		cfg:   cfg,
		queue: queue,
		swipe: map[g2k.Side]*swipeState{
			g2k.SideLeft:  {},
			g2k.SideRight: {},
		},
		chordLastSeenMS: map[g2k.Side]float64{},
		chordCounts:     map[g2k.Side]int{},
	}
}

// SetConfig swaps the tunables Update consults.
func (l *Layer) SetConfig(cfg g2k.Config) { l.cfg = cfg }

// sideOrder fixes the iteration order over per-side input everywhere in
// this package: gesture decisions (and their enqueue order) must not
// depend on map iteration order, or replaying the same capture twice
// could produce different transcripts.
var sideOrder = [2]g2k.Side{g2k.SideLeft, g2k.SideRight}

// Reset clears all gesture state, emitting the balancing ModifierUp
// first if a chord shift is currently latched.
func (l *Layer) Reset() {
	if l.chordActive {
		l.endChord()
	}
	l.tap = tapCandidate{}
	for _, s := range l.swipe {
		*s = swipeState{}
	}
	l.chordLastSeenMS = map[g2k.Side]float64{}
	l.chordCounts = map[g2k.Side]int{}
	l.pendingSwipeTriggers = nil
}

// Update advances every gesture by one frame. machine is used to claim
// contacts away from tap dispatch (tap-click, chord-source cancellation)
// and to flip typing_enabled (five-finger swipe). typingCommittedOrKeyboardMode
// suppresses tap-click.
func (l *Layer) Update(now float64, bySide map[g2k.Side]SideInput, machine *contact.Machine, keyboardAnchored, typingCommittedOrKeyboardMode bool) {
	l.nowMS = now
	l.updateSwipe(now, bySide, machine)
	l.updateTapClick(now, bySide, machine, keyboardAnchored, typingCommittedOrKeyboardMode)
	l.updateChordShift(now, bySide, machine)
}

// --- Five-finger swipe ---------------------------------------------------

func (l *Layer) updateSwipe(now float64, bySide map[g2k.Side]SideInput, machine *contact.Machine) {
	for _, side := range sideOrder {
		in, ok := bySide[side]
		if !ok {
			continue
		}
		s := l.swipe[side]
		if s == nil {
			s = &swipeState{}
			l.swipe[side] = s
		}
		n := len(in.Contacts)

		switch {
		case n >= 5 && !s.armed:
			s.armed = true
			s.triggered = false
			s.armCentroid = centroidOf(in.Contacts)
		case n <= 2:
			s.armed = false
			s.triggered = false
		}

		if s.armed && !s.triggered && n >= 4 {
			c := centroidOf(in.Contacts)
			dxMM, dyMM := in.Surface.ToMM(c.X-s.armCentroid.X, c.Y-s.armCentroid.Y)
			if abs(dxMM) >= 8 || abs(dyMM) >= 8 {
				s.triggered = true
				machine.SetTypingEnabled(!machine.TypingEnabled())
				l.pendingSwipeTriggers = append(l.pendingSwipeTriggers, SwipeTrigger{
					Side: side, SignX: sign(dxMM), SignY: sign(dyMM),
				})
			}
		}
	}
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// ConsumeSwipeTriggers drains and returns every swipe that newly fired
// during the most recent Update call.
func (l *Layer) ConsumeSwipeTriggers() []SwipeTrigger {
	out := l.pendingSwipeTriggers
	l.pendingSwipeTriggers = nil
	return out
}

func centroidOf(cs []ContactSnapshot) geom.V2 {
	pts := make([]geom.V2, len(cs))
	for i, c := range cs {
		pts[i] = c.XY
	}
	return geom.Centroid(pts)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// --- N-finger tap click ---------------------------------------------------

func (l *Layer) updateTapClick(now float64, bySide map[g2k.Side]SideInput, machine *contact.Machine, keyboardAnchored, suppressed bool) {
	total := 0
	allOffKey := true
	earliest, latest := now, now
	first := true
	for _, side := range sideOrder {
		in := bySide[side]
		total += len(in.Contacts)
		for _, c := range in.Contacts {
			if c.OnKey {
				allOffKey = false
			}
			if first {
				earliest, latest = c.StartMS, c.StartMS
				first = false
			}
			if c.StartMS < earliest {
				earliest = c.StartMS
			}
			if c.StartMS > latest {
				latest = c.StartMS
			}
		}
	}

	if !l.tap.open {
		if l.cfg.TapClickEnabled && !suppressed && !keyboardAnchored && allOffKey &&
			(total == 2 || total == 3) && l.tap.lastTotal <= 1 &&
			latest-earliest <= l.cfg.TapStaggerMS {
			l.openTapCandidate(now, total, bySide)
		}
		l.tap.lastTotal = total
		return
	}
	l.tap.lastTotal = total

	// A candidate is open: check invalidation conditions first. A clean
	// all-up release resolves the candidate, but only inside the cadence
	// window; a slow release is not a tap.
	if total != l.tap.n {
		if total == 0 && now-l.tap.openedAtMS <= l.cfg.TapCadenceMS {
			l.resolveTapCandidate(machine)
		} else {
			l.tap.open = false
		}
		return
	}
	if now-l.tap.openedAtMS > l.cfg.TapCadenceMS {
		l.tap.open = false
		return
	}
	for _, side := range sideOrder {
		in := bySide[side]
		starts := l.tap.starts[side]
		for _, c := range in.Contacts {
			start, ok := starts[c.ID]
			if !ok {
				continue
			}
			if in.Surface.DistanceMM(start, c.XY) > l.cfg.TapMoveThresholdMM {
				l.tap.open = false
				return
			}
		}
	}
}

func (l *Layer) openTapCandidate(now float64, total int, bySide map[g2k.Side]SideInput) {
	l.tap = tapCandidate{
		open:       true,
		n:          total,
		openedAtMS: now,
		starts:     map[g2k.Side]map[int]geom.V2{},
		count:      map[g2k.Side]int{},
	}
	// Majority of contacts picks the click's side; a tie goes to left,
	// which the strict > below guarantees given the fixed side order.
	best := g2k.SideUnknown
	bestCount := 0
	for _, side := range sideOrder {
		in, ok := bySide[side]
		if !ok {
			continue
		}
		l.tap.starts[side] = map[int]geom.V2{}
		for _, c := range in.Contacts {
			l.tap.starts[side][c.ID] = c.XY
		}
		l.tap.count[side] = len(in.Contacts)
		if len(in.Contacts) > bestCount {
			bestCount, best = len(in.Contacts), side
		}
	}
	l.tap.majoritySide = best
}

func (l *Layer) resolveTapCandidate(machine *contact.Machine) {
	defer func() { l.tap.open = false }()
	for _, side := range sideOrder {
		for id := range l.tap.starts[side] {
			machine.ClaimForGesture(side, id)
		}
	}
	var button g2k.MouseButton
	switch l.tap.n {
	case 2:
		button = g2k.MouseLeft
	case 3:
		button = g2k.MouseRight
	default:
		return
	}
	l.queue.Enqueue(dispatch.Event{TimestampTicks: int64(l.nowMS), Kind: dispatch.MouseButtonClick, Button: button, Side: l.tap.majoritySide})
}

// --- Chord shift -----------------------------------------------------------

func (l *Layer) updateChordShift(now float64, bySide map[g2k.Side]SideInput, machine *contact.Machine) {
	if !l.cfg.ChordShiftEnabled {
		if l.chordActive {
			l.endChord()
		}
		return
	}

	for _, side := range sideOrder {
		if in, ok := bySide[side]; ok {
			l.chordCounts[side] = len(in.Contacts)
			l.chordLastSeenMS[side] = now
		} else if now-l.chordLastSeenMS[side] > staleContactMS {
			l.chordCounts[side] = 0
		}
	}

	if l.chordActive {
		if l.chordCounts[l.chordSourceSide] == 0 {
			l.endChord()
			return
		}
		// Keep the chord-source contacts claimed: none of them may
		// produce a tap dispatch of its own while the chord is latched.
		for _, id := range liveIDs(bySide[l.chordSourceSide]) {
			machine.ClaimForGesture(l.chordSourceSide, id)
		}
		return
	}

	// The side holding >=4 contacts is the chord source; its contacts
	// are cancelled. Keys tapped on the opposite side dispatch as usual
	// under the latched Shift.
	for _, chordSide := range sideOrder {
		keySide := chordSide.Opposite()
		if l.chordCounts[chordSide] < 4 {
			continue
		}
		if s := l.swipe[chordSide]; s != nil && (s.armed || s.triggered) {
			continue // swipe precedence over the chord-source role
		}
		if !hasRegularKeyContact(bySide[keySide]) {
			continue
		}
		l.chordActive = true
		l.chordSourceSide = chordSide
		for _, id := range liveIDs(bySide[chordSide]) {
			machine.ClaimForGesture(chordSide, id)
		}
		l.chordDownSent = l.queue.EnqueueOrSuppress(dispatch.Event{
			TimestampTicks: int64(l.nowMS), Kind: dispatch.ModifierDown, VK: ShiftVK, Side: chordSide,
		}, machine.TypingEnabled())
		return
	}
}

func (l *Layer) endChord() {
	if l.chordDownSent {
		l.queue.Enqueue(dispatch.Event{TimestampTicks: int64(l.nowMS), Kind: dispatch.ModifierUp, VK: ShiftVK, Side: l.chordSourceSide})
	}
	l.chordActive = false
	l.chordDownSent = false
}

func liveIDs(in SideInput) []int {
	ids := make([]int, len(in.Contacts))
	for i, c := range in.Contacts {
		ids[i] = c.ID
	}
	return ids
}

// hasRegularKeyContact reports whether at least one contact resolved to
// a binding via the side's Binding Index. OnKey covers the whole action
// catalog, a deliberately loose reading of "regular key": a chord
// around a custom button behaves the same as one around a letter.
func hasRegularKeyContact(in SideInput) bool {
	for _, c := range in.Contacts {
		if c.OnKey {
			return true
		}
	}
	return false
}
