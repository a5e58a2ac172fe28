// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package intent

import (
	"testing"

	"github.com/glasstokey/g2k"
)

func TestClassifierIdleToKeyCandidateToTypingCommitted(t *testing.T) {
	cfg := g2k.DefaultConfig()
	c := NewClassifier(cfg)

	st, reason := c.Update(Aggregate{ContactCount: 1, OnKeyCount: 1}, 0)
	if st != KeyCandidate || reason != "on_key" {
		t.Fatalf("expected KeyCandidate/on_key, got %v/%s", st, reason)
	}

	st, reason = c.Update(Aggregate{ContactCount: 1, OnKeyCount: 1}, cfg.KeyBufferMS+1)
	if st != TypingCommitted || reason != "candidate_elapsed" {
		t.Fatalf("expected TypingCommitted/candidate_elapsed, got %v/%s", st, reason)
	}
}

func TestClassifierMouseSignalDivertsFromKeyCandidate(t *testing.T) {
	cfg := g2k.DefaultConfig()
	c := NewClassifier(cfg)

	c.Update(Aggregate{ContactCount: 1, OnKeyCount: 1}, 0)
	st, reason := c.Update(Aggregate{ContactCount: 1, OnKeyCount: 1, MaxDistanceMM: cfg.IntentMoveMM + 1}, 10)
	if st != MouseCandidate || reason != "mouse_signal" {
		t.Fatalf("expected MouseCandidate/mouse_signal, got %v/%s", st, reason)
	}
}

func TestClassifierAllUpEntersIdleWithoutGrace(t *testing.T) {
	cfg := g2k.DefaultConfig()
	c := NewClassifier(cfg)
	st, reason := c.Update(Aggregate{ContactCount: 0}, 0)
	if st != Idle || reason != "all_up" {
		t.Fatalf("expected Idle/all_up, got %v/%s", st, reason)
	}
}

func TestClassifierGraceHoldsTypingCommittedAcrossAllUp(t *testing.T) {
	cfg := g2k.DefaultConfig()
	c := NewClassifier(cfg)
	c.ExtendGrace(0)

	st, reason := c.Update(Aggregate{ContactCount: 0}, cfg.TypingGraceMS-1)
	if st != TypingCommitted || reason != "grace" {
		t.Fatalf("expected TypingCommitted/grace while within the window, got %v/%s", st, reason)
	}

	st, reason = c.Update(Aggregate{ContactCount: 0}, cfg.TypingGraceMS+1)
	if st != Idle || reason != "all_up" {
		t.Fatalf("expected Idle/all_up once grace expires, got %v/%s", st, reason)
	}
}

func TestClassifierGestureCandidateFromBufferedMultiTouch(t *testing.T) {
	cfg := g2k.DefaultConfig()
	c := NewClassifier(cfg)

	st, reason := c.Update(Aggregate{
		ContactCount:      2,
		EarliestStartTick: 0,
		LatestStartTick:   cfg.KeyBufferMS / 2,
	}, 0)
	if st != GestureCandidate || reason != "gesture_buffer" {
		t.Fatalf("expected GestureCandidate/gesture_buffer, got %v/%s", st, reason)
	}

	st, reason = c.Update(Aggregate{ContactCount: 1}, 10)
	if st != Idle || reason != "gesture_exit" {
		t.Fatalf("expected Idle/gesture_exit once contacts drop below 2, got %v/%s", st, reason)
	}
}

func TestClassifierKeyboardModeCollapsesToTypingCommitted(t *testing.T) {
	cfg := g2k.DefaultConfig()
	cfg.KeyboardModeEnabled = true
	c := NewClassifier(cfg)

	st, reason := c.Update(Aggregate{ContactCount: 1, MaxDistanceMM: 1000}, 0)
	if st != TypingCommitted || reason != "keyboard_mode" {
		t.Fatalf("expected TypingCommitted/keyboard_mode regardless of movement, got %v/%s", st, reason)
	}
}

func TestClassifierMouseTakeoverFromTypingCommitted(t *testing.T) {
	cfg := g2k.DefaultConfig()
	cfg.AllowMouseTakeover = true
	c := NewClassifier(cfg)

	c.Update(Aggregate{ContactCount: 1, OnKeyCount: 1}, 0)
	c.Update(Aggregate{ContactCount: 1, OnKeyCount: 1}, cfg.KeyBufferMS+1) // now TypingCommitted

	st, reason := c.Update(Aggregate{ContactCount: 1, MaxDistanceMM: cfg.IntentMoveMM + 1}, cfg.KeyBufferMS+2)
	if st != MouseActive || reason != "mouse_takeover" {
		t.Fatalf("expected MouseActive/mouse_takeover, got %v/%s", st, reason)
	}
}
