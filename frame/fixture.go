// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package frame

import "github.com/glasstokey/g2k"

// FixtureSource is a deterministic in-memory Source, used by the Frame
// Ingest tests to feed an exact frame list without touching a file.
type FixtureSource struct {
	frames []g2k.RawFrame
	pos    int
}

// NewFixtureSource returns a Source that yields frames in order, then
// signals end of stream. The caller's slice is not retained past
// construction.
func NewFixtureSource(frames []g2k.RawFrame) *FixtureSource {
	cp := make([]g2k.RawFrame, len(frames))
	copy(cp, frames)
	return &FixtureSource{frames: cp}
}

// Next implements Source.
func (s *FixtureSource) Next() (g2k.RawFrame, bool) {
	if s.pos >= len(s.frames) {
		return g2k.RawFrame{}, false
	}
	f := s.frames[s.pos]
	s.pos++
	return f, true
}
