// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package snapshot

import "testing"

func TestRenderSnapshotRequiresRecording(t *testing.T) {
	s := NewSurface()
	s.PublishRender(RenderSnapshot{})
	if _, ok := s.RenderIfUpdatedSince(0); ok {
		t.Error("expected PublishRender to no-op while recording is disabled")
	}

	s.SetRecording(true)
	s.PublishRender(RenderSnapshot{})
	rs, ok := s.RenderIfUpdatedSince(0)
	if !ok || rs.Revision != 1 {
		t.Fatalf("expected a published snapshot at revision 1, got %+v ok=%v", rs, ok)
	}
}

func TestRenderIfUpdatedSinceReturnsFalseWhenUnchanged(t *testing.T) {
	s := NewSurface()
	s.SetRecording(true)
	s.PublishRender(RenderSnapshot{})
	rs, _ := s.RenderIfUpdatedSince(0)

	if _, ok := s.RenderIfUpdatedSince(rs.Revision); ok {
		t.Error("expected no update when the caller has already seen the latest revision")
	}
}

func TestStatusRevisionMonotonic(t *testing.T) {
	s := NewSurface()
	s.PublishStatus(StatusSnapshot{TypingEnabled: true})
	s.PublishStatus(StatusSnapshot{TypingEnabled: false})

	ss, ok := s.StatusIfUpdatedSince(0)
	if !ok || ss.Revision != 2 {
		t.Fatalf("expected the latest status at revision 2, got %+v ok=%v", ss, ok)
	}
	if _, ok := s.StatusIfUpdatedSince(2); ok {
		t.Error("expected no update for a caller already at the latest revision")
	}
}
