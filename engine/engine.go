// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package engine is the top-level actor of the touch processing engine:
// it owns every subsystem, serializes all mutation onto one worker
// goroutine, and exposes Action/Reset plus command-message setters --
// configuration changes are posted as closures to the single worker
// rather than guarded by locks.
package engine

import (
	"context"
	"fmt"
	"maps"
	"runtime"
	"sort"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/glasstokey/g2k"
	"github.com/glasstokey/g2k/binding"
	"github.com/glasstokey/g2k/capture"
	"github.com/glasstokey/g2k/contact"
	"github.com/glasstokey/g2k/diag"
	"github.com/glasstokey/g2k/dispatch"
	"github.com/glasstokey/g2k/frame"
	"github.com/glasstokey/g2k/geom"
	"github.com/glasstokey/g2k/gesture"
	"github.com/glasstokey/g2k/intent"
	"github.com/glasstokey/g2k/snapshot"
)

// statusPublishInterval is the Snapshot Surface's fixed status cadence.
const statusPublishInterval = 50 * time.Millisecond

// dispatchQueueCapacity sizes the bounded dispatch ring.
const dispatchQueueCapacity = 256

// diagRingCapacity sizes the diagnostics ring.
const diagRingCapacity = 4096

// Engine owns every leaf subsystem and the single worker goroutine that
// serializes all mutation of contact slots, the intent classifier, the
// binding index, the gesture layer, and the dispatch-producer side:
// exclusive access is enforced by serial execution, not fine-grained
// locks.
type Engine struct {
	queue      *dispatch.Queue
	diagRing   *diag.Ring
	snapshots  *snapshot.Surface
	ingest     *frame.Ingest
	bindings   *binding.Store
	machine    *contact.Machine
	classifier *intent.Classifier
	gestures   *gesture.Layer
	replay     *capture.Replay
	writer     *capture.Writer

	// commands is the single worker's inbound queue of configuration and
	// layout mutations, so every write to engine state happens on the
	// worker goroutine regardless of which goroutine called PostConfig /
	// SetLayout / SetKeyMap.
	commands chan func()

	// livePaused is read by the subscriber-drain loop outside the
	// command channel, since it must take effect immediately when a
	// replay session begins, pausing live ingest before the first replay
	// frame is fed.
	livePaused atomic.Bool

	// cfg and every field below are only ever read or written from the
	// worker goroutine, either directly inside processFrame/runWorker or
	// via a closure drained off commands, so none of them need a lock.
	cfg g2k.Config

	bindingsData  []g2k.KeyBinding
	keymap        *g2k.KeyMap
	buttons       *g2k.CustomButtons
	layoutVersion uint64
	keymapVersion uint64

	persistentLayer map[g2k.Side]g2k.Layer

	// velocity tracks the most recently observed instantaneous speed of
	// each live contact, in mm/sec, since Slot itself only carries
	// cumulative max displacement, not a per-frame delta, and the
	// IntentAggregate needs max_velocity_mm_per_sec.
	velocity map[contactKey]float64
	lastSeen map[contactKey]seenPoint

	prevQueueStats dispatch.Stats

	// lastStatus is the most recently published StatusSnapshot content,
	// kept so the status revision only ever advances when the intent
	// mode, contact counts, typing flag, or counter set actually change.
	lastStatus    snapshot.StatusSnapshot
	hasLastStatus bool

	// centroidAtStateEntry is the combined centroid observed the frame
	// the classifier last entered its current state, so CentroidDeltaMM
	// measures displacement since then rather than since the previous
	// frame.
	centroidAtStateEntry geom.V2
	haveCentroidEntry    bool
}

type contactKey struct {
	side g2k.Side
	id   int
}

type seenPoint struct {
	xy   geom.V2
	tick float64
}

// New creates an Engine configured by cfg. No frame processing happens
// until Action is called or frames are fed directly.
func New(cfg g2k.Config) *Engine {
	queue := dispatch.NewQueue(dispatchQueueCapacity)
	e := &Engine{
		queue:      queue,
		diagRing:   diag.NewRing(diagRingCapacity),
		snapshots:  snapshot.NewSurface(),
		ingest:     frame.NewIngest(),
		bindings:   binding.NewStore(),
		machine:    contact.NewMachine(cfg, queue),
		classifier: intent.NewClassifier(cfg),
		gestures:   gesture.NewLayer(cfg, queue),
		replay:     capture.NewReplay(),
		writer:     capture.NewWriter(0, runtime.GOOS, "live"),
		commands:   make(chan func(), 32),
		cfg:        cfg,
		persistentLayer: map[g2k.Side]g2k.Layer{
			g2k.SideLeft:  0,
			g2k.SideRight: 0,
		},
		velocity: map[contactKey]float64{},
		lastSeen: map[contactKey]seenPoint{},
	}
	e.machine.LayerAction = e.onLayerAction
	return e
}

// Queue returns the dispatch ring the OS backend drains.
func (e *Engine) Queue() *dispatch.Queue { return e.queue }

// Diagnostics returns the fixed-size trace ring.
func (e *Engine) Diagnostics() *diag.Ring { return e.diagRing }

// Snapshots returns the render/status publish surface.
func (e *Engine) Snapshots() *snapshot.Surface { return e.snapshots }

// Ingest returns the Frame Ingest stage a host wires a Source into.
func (e *Engine) Ingest() *frame.Ingest { return e.ingest }

// Replay returns the capture/replay coordinator.
func (e *Engine) Replay() *capture.Replay { return e.replay }

// CaptureWriter returns the live-capture writer.
func (e *Engine) CaptureWriter() *capture.Writer { return e.writer }

// PostConfig posts a configuration change as a command message onto the
// worker, applied before the next frame is processed.
func (e *Engine) PostConfig(cfg g2k.Config) {
	e.post(func() {
		e.cfg = cfg
		e.machine.SetConfig(cfg)
		e.classifier.SetConfig(cfg)
		e.gestures.SetConfig(cfg)
	})
}

// SetLayout posts a replacement flattened binding list for both sides,
// invalidating every cached Binding Index.
func (e *Engine) SetLayout(bindings []g2k.KeyBinding) {
	cp := make([]g2k.KeyBinding, len(bindings))
	copy(cp, bindings)
	e.post(func() {
		e.bindingsData = cp
		e.layoutVersion++
	})
}

// SetKeyMap posts a replacement keymap, another Binding Index rebuild
// trigger.
func (e *Engine) SetKeyMap(km *g2k.KeyMap) {
	e.post(func() {
		e.keymap = km
		e.keymapVersion++
	})
}

// SetCustomButtons posts a replacement custom-button set (participates
// in the same keymap-version rebuild trigger as SetKeyMap, since custom
// buttons resolve through the same keymap).
func (e *Engine) SetCustomButtons(buttons *g2k.CustomButtons) {
	e.post(func() {
		e.buttons = buttons
		e.keymapVersion++
	})
}

// SetPersistentLayer posts a direct persistent-layer change for side,
// the non-gesture path to LayerSet/LayerToggle. The active layer is the
// momentary layer if any contact currently holds one, else the
// persistent layer set here.
func (e *Engine) SetPersistentLayer(side g2k.Side, layer g2k.Layer) {
	e.post(func() {
		e.persistentLayer[side] = clampLayer(layer)
		e.layoutVersion++ // active_layer change is also a rebuild trigger.
	})
}

func clampLayer(l g2k.Layer) g2k.Layer {
	if l < 0 {
		return 0
	}
	if l > g2k.MaxLayer {
		return g2k.MaxLayer
	}
	return l
}

func (e *Engine) post(fn func()) {
	e.commands <- fn
}

func (e *Engine) onLayerAction(action g2k.Action) {
	switch action.Kind {
	case g2k.ActionLayerSet:
		e.post(func() {
			e.persistentLayer[g2k.SideLeft] = action.Layer
			e.persistentLayer[g2k.SideRight] = action.Layer
			e.layoutVersion++
		})
	case g2k.ActionLayerToggle:
		e.post(func() {
			for _, s := range []g2k.Side{g2k.SideLeft, g2k.SideRight} {
				if e.persistentLayer[s] == action.Layer {
					e.persistentLayer[s] = 0
				} else {
					e.persistentLayer[s] = action.Layer
				}
			}
			e.layoutVersion++
		})
	}
}

// Reset is idempotent and always safe: it cancels outstanding
// dispatch-down state by emitting balancing ups for every held key or
// modifier (and any latched chord shift), then clears every contact
// slot and gesture/classifier state. Configuration, layout, and keymap
// are left untouched.
func (e *Engine) Reset() {
	e.post(func() {
		e.resetLocked()
	})
}

func (e *Engine) resetLocked() {
	e.gestures.Reset()
	e.machine.Reset()
	e.classifier = intent.NewClassifier(e.cfg)
	e.velocity = map[contactKey]float64{}
	e.lastSeen = map[contactKey]seenPoint{}
	e.haveCentroidEntry = false
}

// Action runs the engine's worker loop until ctx is cancelled or src
// reaches a clean end of stream. It starts the Frame Ingest worker and
// the engine worker under one cancellable group, and returns once both
// have stopped. Only one Action call may be in flight at a time.
func (e *Engine) Action(ctx context.Context, src frame.Source) error {
	g, ctx := errgroup.WithContext(ctx)
	sub := e.ingest.Subscribe(frame.SideAny)
	defer sub.Cancel()

	g.Go(func() error {
		e.ingest.Run(src)
		return nil
	})

	g.Go(func() error {
		return e.runWorker(ctx, sub.Frames)
	})

	return g.Wait()
}

// runWorker is the body of the single serialized engine worker. It only
// ever blocks waiting for the next raw frame, the next command, the
// status-publish ticker, or ctx cancellation -- never mid-frame.
func (e *Engine) runWorker(ctx context.Context, frames <-chan g2k.RawFrame) error {
	ticker := time.NewTicker(statusPublishInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-e.commands:
			fn()
		case f, ok := <-frames:
			if !ok {
				return nil
			}
			if e.livePaused.Load() {
				continue
			}
			e.writer.Observe(f)
			e.processFrame(f)
		case <-ticker.C:
			e.publishStatus()
		}
	}
}

// FeedFrame processes a single frame synchronously, bypassing the ingest
// fan-out. The replay coordinator's Hooks.Feed and tests use this path
// directly; it is otherwise equivalent to a frame arriving live.
func (e *Engine) FeedFrame(f g2k.RawFrame) {
	e.drainCommands()
	e.processFrame(f)
}

func (e *Engine) drainCommands() {
	for {
		select {
		case fn := <-e.commands:
			fn()
		default:
			return
		}
	}
}

// StartCapture begins buffering the live frame stream for a later
// .atpcap write. Capture and replay are mutually exclusive.
func (e *Engine) StartCapture() error {
	if e.replay.Active() {
		return &g2k.CaptureOrReplayConflictError{}
	}
	if err := e.writer.Start(); err != nil {
		return err
	}
	e.cfg.Log().Info("capture started")
	return nil
}

// StopCapture ends the capture and writes the buffered frames to path.
func (e *Engine) StopCapture(path, capturedAt string) error {
	if err := e.writer.Stop(path, capturedAt); err != nil {
		e.cfg.Log().Warn("capture stop failed", "path", path, "error", err)
		return err
	}
	e.cfg.Log().Info("capture written", "path", path)
	return nil
}

// BeginReplay starts a replay session from path, pausing live ingest
// consumption for the duration of the session. Rejected while a capture
// is recording.
func (e *Engine) BeginReplay(path string) error {
	if e.writer.Recording() {
		return &g2k.CaptureOrReplayConflictError{}
	}
	e.cfg.Log().Info("replay session starting", "path", path)
	err := e.replay.BeginSession(path, capture.Hooks{
		Feed:        e.FeedFrame,
		ResetEngine: e.Reset,
		StopLiveIngest: func() error {
			e.livePaused.Store(true)
			return nil
		},
		RestoreLiveIngest: func() error {
			e.livePaused.Store(false)
			return nil
		},
	})
	if err != nil {
		return err
	}
	if meta := e.replay.Meta(); meta.NewerThanEngine() {
		e.cfg.Log().Warn("capture written by a newer engine build",
			"captureVersion", meta.EngineVersion,
			"engineVersion", capture.EngineVersion.String())
	}
	return nil
}

// activeLayer returns side's currently active layer: the lowest
// momentary-layer target a live contact on that side is holding, else
// the persistent layer. Scanning targets in layer order keeps the
// answer stable when two momentary holds overlap.
func (e *Engine) activeLayer(side g2k.Side) g2k.Layer {
	touches := e.machine.MomentaryLayerTouches(side)
	for l := g2k.Layer(0); l <= g2k.MaxLayer; l++ {
		if touches[l] > 0 {
			return l
		}
	}
	return e.persistentLayer[side]
}

func (e *Engine) surfaceFor(side g2k.Side) geom.Surface {
	if side == g2k.SideRight {
		return e.cfg.RightSurface
	}
	return e.cfg.LeftSurface
}

func (e *Engine) indexFor(side g2k.Side, layer g2k.Layer) *binding.Index {
	return e.bindings.Get(binding.Params{
		Bindings:           e.bindingsData,
		KeyMap:             e.keymap,
		Buttons:            e.buttons,
		Side:               side,
		Layer:              layer,
		Surface:            e.surfaceFor(side),
		SnapRadiusPercent:  e.cfg.SnapRadiusPercent,
		SnapAmbiguityRatio: e.cfg.SnapAmbiguityRatio,
		LayoutVersion:      e.layoutVersion,
		KeymapVersion:      e.keymapVersion,
	})
}

// processFrame is the hot path: it never logs, and every decision below
// only ever touches counters or the (size-bounded) diagnostics ring. The
// one formatted string it builds is the detail of a five-finger swipe
// trigger event, formatted with fmt.Sprintf when a swipe fires.
func (e *Engine) processFrame(f g2k.RawFrame) {
	e.drainCommands()

	side := f.Side
	if side != g2k.SideLeft && side != g2k.SideRight {
		return
	}
	nowMS := f.TimestampSecs * 1000

	layer := e.activeLayer(side)
	idx := e.indexFor(side, layer)
	allowSnap := e.classifier.AllowsSnap()

	e.updateVelocity(side, f, nowMS)
	e.machine.Process(side, f, idx, e.surfaceFor(side), nowMS, allowSnap)
	for _, rel := range e.releasedKeysForSide(side) {
		delete(e.velocity, rel)
		delete(e.lastSeen, rel)
		e.diagRing.Record(diag.Event{Tick: nowMS, Kind: diag.EventContactRelease, Side: side, ContactID: rel.id})
	}

	// Reconcile before the classifier runs: an action emitted by a
	// release in this same frame must extend grace now, so the
	// classifier holds TypingCommitted across the lift rather than
	// dipping through Idle for one frame.
	e.reconcileQueueStats(nowMS, side)

	agg, centroid, haveCentroid := e.buildAggregate()
	prevState := e.classifier.State()
	newState, reason := e.classifier.Update(agg, nowMS)
	if newState != prevState {
		e.diagRing.Record(diag.Event{Tick: nowMS, Kind: diag.EventIntentTransition, Side: side, Detail: reason})
		e.haveCentroidEntry = haveCentroid
		e.centroidAtStateEntry = centroid
	}

	bySide := e.gestureInputs()
	e.gestures.Update(nowMS, bySide, e.machine, agg.KeyboardAnchor, newState == intent.TypingCommitted || e.cfg.KeyboardModeEnabled)
	for _, trig := range e.gestures.ConsumeSwipeTriggers() {
		e.diagRing.Record(diag.Event{
			Tick: nowMS, Kind: diag.EventGestureTrigger, Side: trig.Side,
			Detail: fmt.Sprintf("swipe sign_x=%d sign_y=%d", trig.SignX, trig.SignY),
		})
	}

	e.reconcileQueueStats(nowMS, side) // gesture emissions this frame
	e.publishRender(layer)
}

// reconcileQueueStats compares the dispatch queue's counters against the
// last reconcile point: any new enqueue or typing-suppression means an
// action was emitted (extending typing grace), and drop or suppression
// deltas land on the diagnostics ring.
func (e *Engine) reconcileQueueStats(nowMS float64, side g2k.Side) {
	stats := e.queue.Stats()
	if stats.Enqueued > e.prevQueueStats.Enqueued || stats.SuppressedTyping > e.prevQueueStats.SuppressedTyping {
		e.classifier.ExtendGrace(nowMS)
	}
	if stats.Dropped > e.prevQueueStats.Dropped {
		e.diagRing.Record(diag.Event{Tick: nowMS, Kind: diag.EventDispatchDrop, Side: side})
	}
	if stats.SuppressedTyping > e.prevQueueStats.SuppressedTyping {
		e.diagRing.Record(diag.Event{Tick: nowMS, Kind: diag.EventDispatchSuppressed, Side: side})
	}
	e.prevQueueStats = stats
}

// releasedKeysForSide returns contact keys no longer tracked by the
// machine for side, so the engine's own velocity-tracking maps don't
// leak entries past a contact's lifetime: every live contact appears in
// exactly one state-machine slot. Sorted by contact id so the release
// trace events they produce replay identically.
func (e *Engine) releasedKeysForSide(side g2k.Side) []contactKey {
	var stale []contactKey
	for k := range e.lastSeen {
		if k.side != side {
			continue
		}
		if e.machine.Slot(side, k.id) == nil {
			stale = append(stale, k)
		}
	}
	sort.Slice(stale, func(i, j int) bool { return stale[i].id < stale[j].id })
	return stale
}

func (e *Engine) updateVelocity(side g2k.Side, f g2k.RawFrame, nowMS float64) {
	surface := e.surfaceFor(side)
	for _, c := range f.Contacts {
		// Same presence rule as the contact machine: hovering fingers and
		// sub-threshold resting pressure are not touches.
		if !c.State.TipDown() || !e.cfg.ForceEligible(c) {
			continue
		}
		k := contactKey{side, c.ID}
		cur := geom.V2{X: c.X, Y: c.Y}
		if prev, ok := e.lastSeen[k]; ok {
			dtSec := (nowMS - prev.tick) / 1000
			e.velocity[k] = surface.VelocityMMPerSec(prev.xy, cur, dtSec)
		} else {
			e.velocity[k] = 0
			e.diagRing.Record(diag.Event{Tick: nowMS, Kind: diag.EventContactBegin, Side: side, ContactID: c.ID})
		}
		e.lastSeen[k] = seenPoint{xy: cur, tick: nowMS}
	}
}

// buildAggregate computes the IntentAggregate the classifier needs, over
// both sides' currently live contacts, plus the current combined
// centroid so the caller can re-anchor CentroidDeltaMM's reference point
// whenever the classifier changes state.
func (e *Engine) buildAggregate() (agg intent.Aggregate, centroid geom.V2, haveCentroid bool) {
	var pts []geom.V2
	first := true
	haveOnKeyTouch := false
	var earliestOnKeyTick float64

	for _, side := range []g2k.Side{g2k.SideLeft, g2k.SideRight} {
		count := 0
		e.machine.ForEach(side, func(id int, s *contact.Slot) {
			count++
			pts = append(pts, s.LastXY)
			if s.IsOnKey() {
				agg.OnKeyCount++
				if !haveOnKeyTouch || s.StartTick < earliestOnKeyTick {
					agg.FirstOnKeyTouchKey = s.Entry.StorageKey
					earliestOnKeyTick = s.StartTick
					haveOnKeyTouch = true
				}
			} else {
				agg.OffKeyCount++
			}
			if s.IsKeyboardAnchor() {
				agg.KeyboardAnchor = true
			}
			if s.MaxDistanceMM > agg.MaxDistanceMM {
				agg.MaxDistanceMM = s.MaxDistanceMM
			}
			if v := e.velocity[contactKey{side, id}]; v > agg.MaxVelocityMMPerSec {
				agg.MaxVelocityMMPerSec = v
			}
			if first || s.StartTick < agg.EarliestStartTick {
				agg.EarliestStartTick = s.StartTick
			}
			if first || s.StartTick > agg.LatestStartTick {
				agg.LatestStartTick = s.StartTick
			}
			first = false
		})
		if side == g2k.SideLeft {
			agg.LeftCount = count
		} else {
			agg.RightCount = count
		}
		agg.ContactCount += count
	}

	if len(pts) == 0 {
		return agg, geom.V2{}, false
	}
	centroid = geom.Centroid(pts)

	surf := e.cfg.LeftSurface
	if e.cfg.RightSurface.WidthMM > surf.WidthMM {
		surf = e.cfg.RightSurface
	}
	if e.haveCentroidEntry {
		agg.CentroidDeltaMM = surf.DistanceMM(e.centroidAtStateEntry, centroid)
	}
	return agg, centroid, true
}

// gestureInputs builds the per-side ContactSnapshot list the gesture
// layer consumes, each resolved against that side's own active layer.
func (e *Engine) gestureInputs() map[g2k.Side]gesture.SideInput {
	out := make(map[g2k.Side]gesture.SideInput, 2)
	for _, side := range []g2k.Side{g2k.SideLeft, g2k.SideRight} {
		idx := e.indexFor(side, e.activeLayer(side))
		var snaps []gesture.ContactSnapshot
		e.machine.ForEach(side, func(id int, s *contact.Slot) {
			onKey := s.IsOnKey()
			if idx != nil {
				if _, ok := idx.HitTest(s.LastXY.X, s.LastXY.Y); ok {
					onKey = true
				}
			}
			snaps = append(snaps, gesture.ContactSnapshot{
				ID:      id,
				XY:      s.LastXY,
				OnKey:   onKey,
				StartMS: s.StartTick,
			})
		})
		out[side] = gesture.SideInput{Contacts: snaps, Surface: e.surfaceFor(side)}
	}
	return out
}

// publishRender builds and publishes a RenderSnapshot reflecting both
// sides' current contacts, a no-op while recording is disabled
// (snapshot.Surface.PublishRender already gates on that).
func (e *Engine) publishRender(layer g2k.Layer) {
	var rs snapshot.RenderSnapshot
	rs.ActiveLayer = layer
	for _, side := range []g2k.Side{g2k.SideLeft, g2k.SideRight} {
		var touches []snapshot.Touch
		e.machine.ForEach(side, func(id int, s *contact.Slot) {
			touches = append(touches, snapshot.Touch{
				ID:    id,
				X:     s.LastXY.X,
				Y:     s.LastXY.Y,
				OnKey: s.IsOnKey(),
			})
			if s.HasEntry {
				if s.Entry.IsCustomButton {
					rs.HighlightedButton, rs.HasHighlightedButton = s.Entry.StorageKey, true
				} else {
					rs.HighlightedKey, rs.HasHighlightedKey = s.Entry.StorageKey, true
				}
			}
		})
		if side == g2k.SideLeft {
			rs.LeftTouches = touches
		} else {
			rs.RightTouches = touches
		}
	}
	rs.HasTransitionState = e.classifier.State() == intent.KeyCandidate || e.classifier.State() == intent.MouseCandidate || e.classifier.State() == intent.GestureCandidate
	e.snapshots.PublishRender(rs)
}

// publishStatus builds a StatusSnapshot and publishes it only if its
// content differs from the last one published, keeping the status
// revision strictly tied to real state changes.
func (e *Engine) publishStatus() {
	ss := snapshot.StatusSnapshot{
		IntentModeBySide: map[g2k.Side]string{
			g2k.SideLeft:  e.classifier.State().String(),
			g2k.SideRight: e.classifier.State().String(),
		},
		ContactCountBySide: map[g2k.Side]int{
			g2k.SideLeft:  countSide(e.machine, g2k.SideLeft),
			g2k.SideRight: countSide(e.machine, g2k.SideRight),
		},
		TypingEnabled:       e.machine.TypingEnabled(),
		KeyboardModeEnabled: e.cfg.KeyboardModeEnabled,
		DiagnosticsCounters: e.diagnosticsCounters(),
	}
	if e.hasLastStatus && statusEqual(ss, e.lastStatus) {
		return
	}
	e.lastStatus = ss
	e.hasLastStatus = true
	e.snapshots.PublishStatus(ss)
}

func statusEqual(a, b snapshot.StatusSnapshot) bool {
	return a.TypingEnabled == b.TypingEnabled &&
		a.KeyboardModeEnabled == b.KeyboardModeEnabled &&
		maps.Equal(a.IntentModeBySide, b.IntentModeBySide) &&
		maps.Equal(a.ContactCountBySide, b.ContactCountBySide) &&
		maps.Equal(a.DiagnosticsCounters, b.DiagnosticsCounters)
}

func countSide(m *contact.Machine, side g2k.Side) int {
	n := 0
	m.ForEach(side, func(int, *contact.Slot) { n++ })
	return n
}

func (e *Engine) diagnosticsCounters() map[string]int64 {
	stats := e.queue.Stats()
	return map[string]int64{
		"dispatch_enqueued":   stats.Enqueued,
		"dispatch_dropped":    stats.Dropped,
		"dispatch_suppressed": stats.SuppressedTyping,
		"diag_overflow":       e.diagRing.Overflow(),
	}
}

// String renders a short human-readable engine summary, useful for a CLI
// host's status line.
func (e *Engine) String() string {
	return fmt.Sprintf("engine.Engine{state=%s typing=%t}", e.classifier.State(), e.machine.TypingEnabled())
}
