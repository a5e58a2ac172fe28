// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package contact

import (
	"testing"

	"github.com/glasstokey/g2k"
)

func TestTablePutGetDelete(t *testing.T) {
	tb := newTable()
	s := &Slot{ID: 1}
	tb.Put(g2k.SideLeft, 1, s)
	if got := tb.Get(g2k.SideLeft, 1); got != s {
		t.Fatalf("expected to get back the slot just put")
	}
	tb.Delete(g2k.SideLeft, 1)
	if got := tb.Get(g2k.SideLeft, 1); got != nil {
		t.Errorf("expected nil after delete, got %+v", got)
	}
}

func TestTableReclaimsTombstonesAcrossManyCycles(t *testing.T) {
	tb := newTable()
	// Cycle far more insert/delete pairs through the table than its fixed
	// capacity would allow if tombstones were never reclaimed.
	for i := 0; i < tableCapacity*4; i++ {
		tb.Put(g2k.SideLeft, i, &Slot{ID: i})
		if tb.Count() != 1 {
			t.Fatalf("iteration %d: expected exactly 1 live slot, got %d", i, tb.Count())
		}
		tb.Delete(g2k.SideLeft, i)
	}
	if tb.Count() != 0 {
		t.Errorf("expected an empty table after the final delete, got count %d", tb.Count())
	}
}

func TestTableDistinguishesSides(t *testing.T) {
	tb := newTable()
	left := &Slot{ID: 1}
	right := &Slot{ID: 1}
	tb.Put(g2k.SideLeft, 1, left)
	tb.Put(g2k.SideRight, 1, right)

	if tb.Get(g2k.SideLeft, 1) != left {
		t.Error("expected the left-side slot for (SideLeft, 1)")
	}
	if tb.Get(g2k.SideRight, 1) != right {
		t.Error("expected the right-side slot for (SideRight, 1)")
	}
	if tb.Count() != 2 {
		t.Errorf("expected 2 live slots across both sides, got %d", tb.Count())
	}
}

func TestTableForEachVisitsOnlyLiveSlots(t *testing.T) {
	tb := newTable()
	tb.Put(g2k.SideLeft, 1, &Slot{ID: 1})
	tb.Put(g2k.SideLeft, 2, &Slot{ID: 2})
	tb.Delete(g2k.SideLeft, 1)

	seen := map[int]bool{}
	tb.ForEach(func(side g2k.Side, id int, s *Slot) {
		seen[id] = true
	})
	if len(seen) != 1 || !seen[2] {
		t.Errorf("expected ForEach to visit only id 2, got %v", seen)
	}
}
