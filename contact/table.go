// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package contact

import "github.com/glasstokey/g2k"

// key addresses one contact slot by (side, contact id): an
// open-addressed hash table keyed by (side, contact_id) with a
// stable-capacity invariant, to avoid rehash during a session.
type key struct {
	side g2k.Side
	id   int
}

// tableCapacity bounds the table at a fixed size for the lifetime of the
// engine: a trackpad never reports more than a handful of simultaneous
// contacts per side, so this comfortably covers both sides at once with
// generous headroom for hash collisions.
const tableCapacity = 64

type slotState uint8

const (
	stateEmpty slotState = iota
	stateOccupied
	stateTombstone
)

// table is a fixed-capacity open-addressed hash table from key to *Slot,
// linear-probed, never rehashed. A deleted entry leaves a tombstone so
// later probes for a different, colliding key keep scanning past it;
// Put reclaims the first tombstone it passes over rather than stopping
// there, so repeated insert/delete cycles never leak capacity.
type table struct {
	keys   []key
	slots  []*Slot
	states []slotState
	count  int
}

func newTable() *table {
	return &table{
		keys:   make([]key, tableCapacity),
		slots:  make([]*Slot, tableCapacity),
		states: make([]slotState, tableCapacity),
	}
}

func hashKey(k key) uint64 {
	return uint64(k.side)*2654435761 + uint64(uint32(k.id))*40503
}

// find returns the index holding k if present, or -1.
func (t *table) find(k key) int {
	i := int(hashKey(k) % uint64(tableCapacity))
	for n := 0; n < tableCapacity; n++ {
		idx := (i + n) % tableCapacity
		switch t.states[idx] {
		case stateEmpty:
			return -1
		case stateOccupied:
			if t.keys[idx] == k {
				return idx
			}
		}
		// stateTombstone: keep scanning past it.
	}
	return -1
}

// Get returns the slot for (side, id), or nil if none is tracked.
func (t *table) Get(side g2k.Side, id int) *Slot {
	idx := t.find(key{side, id})
	if idx == -1 {
		return nil
	}
	return t.slots[idx]
}

// Put inserts or overwrites the slot for (side, id).
func (t *table) Put(side g2k.Side, id int, s *Slot) {
	k := key{side, id}
	i := int(hashKey(k) % uint64(tableCapacity))
	firstTombstone := -1
	for n := 0; n < tableCapacity; n++ {
		idx := (i + n) % tableCapacity
		switch t.states[idx] {
		case stateEmpty:
			dest := idx
			if firstTombstone != -1 {
				dest = firstTombstone
			}
			t.states[dest] = stateOccupied
			t.keys[dest] = k
			t.slots[dest] = s
			t.count++
			return
		case stateOccupied:
			if t.keys[idx] == k {
				t.slots[idx] = s
				return
			}
		case stateTombstone:
			if firstTombstone == -1 {
				firstTombstone = idx
			}
		}
	}
	// No empty slot left anywhere: reuse the first tombstone passed over.
	if firstTombstone != -1 {
		t.states[firstTombstone] = stateOccupied
		t.keys[firstTombstone] = k
		t.slots[firstTombstone] = s
		t.count++
		return
	}
	panic("contact: table is full; more simultaneous contacts than the fixed capacity allows")
}

// Delete removes the slot for (side, id), if any, leaving a tombstone.
func (t *table) Delete(side g2k.Side, id int) {
	idx := t.find(key{side, id})
	if idx == -1 {
		return
	}
	t.states[idx] = stateTombstone
	t.slots[idx] = nil
	t.count--
}

// Count returns the number of live slots.
func (t *table) Count() int { return t.count }

// ForEach calls fn for every live slot. fn must not mutate the table.
func (t *table) ForEach(fn func(side g2k.Side, id int, s *Slot)) {
	for i := 0; i < tableCapacity; i++ {
		if t.states[i] == stateOccupied && t.slots[i] != nil {
			fn(t.keys[i].side, t.keys[i].id, t.slots[i])
		}
	}
}
