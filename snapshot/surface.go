// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package snapshot implements the revision-keyed render/status publish
// surface: the engine worker is the sole writer, any number of readers
// poll an immutable snapshot without ever blocking the hot path or
// observing a partially-updated one.
package snapshot

import (
	"sync"
	"sync/atomic"

	"github.com/glasstokey/g2k"
)

// Touch is one live contact as shown to a UI.
type Touch struct {
	ID       int
	X, Y     float64
	OnKey    bool
	StateTag string
}

// RenderSnapshot is the per-frame render publish.
type RenderSnapshot struct {
	LeftTouches, RightTouches []Touch
	HasTransitionState        bool
	HighlightedKey            g2k.StorageKey
	HasHighlightedKey         bool
	HighlightedButton         g2k.StorageKey
	HasHighlightedButton      bool
	ActiveLayer               g2k.Layer
	Revision                  uint64
}

// StatusSnapshot is the fixed-cadence status publish.
type StatusSnapshot struct {
	IntentModeBySide      map[g2k.Side]string
	ContactCountBySide     map[g2k.Side]int
	TypingEnabled          bool
	KeyboardModeEnabled    bool
	DiagnosticsCounters    map[string]int64
	Revision               uint64
}

// Surface holds the latest published RenderSnapshot and StatusSnapshot
// behind atomic pointers, so Publish never blocks a concurrent Poll and
// vice versa.
type Surface struct {
	renderRevision uint64
	statusRevision uint64

	render atomic.Pointer[RenderSnapshot]
	status atomic.Pointer[StatusSnapshot]

	// recording gates whether PublishRender does anything at all, so a
	// host only pays the snapshot-copy cost while a UI is actually
	// visible.
	recordingMu sync.RWMutex
	recording   bool
}

// NewSurface creates an empty Surface. Recording starts disabled.
func NewSurface() *Surface {
	s := &Surface{}
	s.render.Store(&RenderSnapshot{})
	s.status.Store(&StatusSnapshot{})
	return s
}

// SetRecording toggles whether PublishRender actually updates the render
// snapshot; StatusSnapshot publishing is unaffected.
func (s *Surface) SetRecording(enabled bool) {
	s.recordingMu.Lock()
	s.recording = enabled
	s.recordingMu.Unlock()
}

// Recording reports the current recording flag.
func (s *Surface) Recording() bool {
	s.recordingMu.RLock()
	defer s.recordingMu.RUnlock()
	return s.recording
}

// PublishRender atomically installs a new RenderSnapshot with the next
// revision, unless recording is disabled.
func (s *Surface) PublishRender(rs RenderSnapshot) {
	if !s.Recording() {
		return
	}
	s.renderRevision++
	rs.Revision = s.renderRevision
	s.render.Store(&rs)
}

// RenderIfUpdatedSince returns the current RenderSnapshot and true if its
// revision is newer than lastSeenRevision, or (zero value, false) if
// unchanged.
func (s *Surface) RenderIfUpdatedSince(lastSeenRevision uint64) (RenderSnapshot, bool) {
	cur := s.render.Load()
	if cur == nil || cur.Revision <= lastSeenRevision {
		return RenderSnapshot{}, false
	}
	return *cur, true
}

// PublishStatus atomically installs a new StatusSnapshot with the next
// revision. The engine worker calls this on its own fixed cadence
// (50ms default), and only when something in the snapshot actually
// changed, so the revision only ever advances when the content does.
func (s *Surface) PublishStatus(ss StatusSnapshot) {
	s.statusRevision++
	ss.Revision = s.statusRevision
	s.status.Store(&ss)
}

// StatusIfUpdatedSince returns the current StatusSnapshot and true if its
// revision is newer than lastSeenRevision, or (zero value, false) if
// unchanged.
func (s *Surface) StatusIfUpdatedSince(lastSeenRevision uint64) (StatusSnapshot, bool) {
	cur := s.status.Load()
	if cur == nil || cur.Revision <= lastSeenRevision {
		return StatusSnapshot{}, false
	}
	return *cur, true
}
