// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package frame implements Frame Ingest: it receives canonical raw
// frames from an external capture source, assigns a monotonically
// increasing sequence number, and fans them out to subscribers with a
// bounded, newest-wins drop policy per subscriber.
//
// Unlike a single polled input device, there is no polling consumer
// here: Ingest is a multi-producer-in, multi-consumer-out fan-out, so
// each subscriber gets its own small bounded channel rather than a
// single shared signal/update pair.
package frame

import (
	"sync"

	"github.com/glasstokey/g2k"
)

// Source yields canonical raw frames until the upstream terminates.
// Implementations must not allocate per frame once steady state is
// reached, and must release any device-owned frame memory after Next
// returns it.
type Source interface {
	// Next blocks for the next frame. ok is false once the source has
	// reached a clean end of stream; Next must not be called again
	// after that.
	Next() (f g2k.RawFrame, ok bool)
}

// Stats accumulates Ingest's lifetime counters.
type Stats struct {
	Ingested int64 // frames pulled off the source
	Emitted  int64 // frame*subscriber yields that were accepted
	Dropped  int64 // buffered frames evicted by the newest-wins policy
	Released int64 // frames yielded to zero subscribers
}

// subscriberCapacity is the bounded newest-wins queue depth per
// subscriber. A depth of 2 is sufficient for the engine.
const subscriberCapacity = 2

// Ingest assigns sequence numbers to frames from a Source and fans them
// out to subscribers. It owns no OS resources, performs no I/O or
// logging on the per-frame path, and makes no per-frame heap allocation
// while it has at most four subscribers.
type Ingest struct {
	mu          sync.Mutex // guards subs; held to add/remove and, once per frame, to copy the fan-out list.
	subs        map[int]*subscriber
	nextSubID   int
	sequence    uint64
	statsMu     sync.Mutex
	stats       Stats
}

type subscriber struct {
	side Side
	ch   chan g2k.RawFrame
}

// Side filters which frames a subscriber receives: SideAny gets every
// frame regardless of device side.
type Side int

const (
	SideAny Side = iota
	SideLeftOnly
	SideRightOnly
)

// NewIngest creates an empty Ingest ready to accept subscribers and run.
func NewIngest() *Ingest {
	return &Ingest{subs: make(map[int]*subscriber)}
}

// Subscription is a subscriber's bounded inbound channel plus a Cancel
// to unregister and release it.
type Subscription struct {
	Frames <-chan g2k.RawFrame
	cancel func()
}

// Cancel unregisters the subscription. Safe to call more than once.
func (s *Subscription) Cancel() { s.cancel() }

// Subscribe registers a new subscriber filtered to side (SideAny for
// every frame) and returns its Subscription. The fan-out list mutation
// is guarded by a short-held lock; the frame-processing path holds it
// only long enough to copy the list.
func (in *Ingest) Subscribe(side Side) *Subscription {
	in.mu.Lock()
	id := in.nextSubID
	in.nextSubID++
	sub := &subscriber{side: side, ch: make(chan g2k.RawFrame, subscriberCapacity)}
	in.subs[id] = sub
	in.mu.Unlock()

	return &Subscription{
		Frames: sub.ch,
		cancel: func() {
			in.mu.Lock()
			delete(in.subs, id)
			in.mu.Unlock()
		},
	}
}

// Run drains src until it signals end of stream, sequencing and
// fanning out every frame. Run is meant to be the body of the ingest
// worker goroutine; it returns once src is exhausted, after closing
// every subscriber's channel so a consumer ranging over Subscription.Frames
// also terminates cleanly rather than blocking forever on a channel that
// will never receive again.
func (in *Ingest) Run(src Source) {
	for {
		f, ok := src.Next()
		if !ok {
			in.closeSubscribers()
			return
		}
		in.ingest(f)
	}
}

// closeSubscribers closes every currently registered subscriber channel.
// Safe even if a subscriber concurrently calls Cancel: closing an
// already-removed channel here is harmless since Cancel only removes the
// map entry, it never closes the channel itself.
func (in *Ingest) closeSubscribers() {
	in.mu.Lock()
	subs := make([]*subscriber, 0, len(in.subs))
	for _, sub := range in.subs {
		subs = append(subs, sub)
	}
	in.subs = make(map[int]*subscriber)
	in.mu.Unlock()

	for _, sub := range subs {
		close(sub.ch)
	}
}

func (in *Ingest) ingest(f g2k.RawFrame) {
	in.sequence++
	f.Sequence = in.sequence
	in.addStat(func(s *Stats) { s.Ingested++ })

	// A stack array holds the copied fan-out list, so up to four
	// subscribers cost no heap allocation per frame.
	var scratch [4]*subscriber
	targets := scratch[:0]
	in.mu.Lock()
	for _, sub := range in.subs {
		if sub.side == SideAny || (sub.side == SideLeftOnly && f.Side == g2k.SideLeft) || (sub.side == SideRightOnly && f.Side == g2k.SideRight) {
			targets = append(targets, sub)
		}
	}
	in.mu.Unlock()

	if len(targets) == 0 {
		in.addStat(func(s *Stats) { s.Released++ })
		return
	}

	for _, sub := range targets {
		in.sendNewestWins(sub, f)
	}
}

// sendNewestWins delivers f to sub, evicting the oldest buffered frame
// if the bounded channel is full. Sequence numbers are never reassigned
// on drop.
func (in *Ingest) sendNewestWins(sub *subscriber, f g2k.RawFrame) {
	select {
	case sub.ch <- f:
		in.addStat(func(s *Stats) { s.Emitted++ })
		return
	default:
	}

	// Full: drop the oldest buffered frame, then retry once. A
	// concurrent receiver could have drained it meanwhile, in which case
	// the retry send below just succeeds on the room that freed up.
	select {
	case <-sub.ch:
		in.addStat(func(s *Stats) { s.Dropped++ })
	default:
	}

	select {
	case sub.ch <- f:
		in.addStat(func(s *Stats) { s.Emitted++ })
	default:
		// Another producer raced us and refilled the buffer; count this
		// frame as dropped rather than block the ingest worker.
		in.addStat(func(s *Stats) { s.Dropped++ })
	}
}

func (in *Ingest) addStat(mutate func(*Stats)) {
	in.statsMu.Lock()
	mutate(&in.stats)
	in.statsMu.Unlock()
}

// Stats returns a snapshot of the lifetime counters.
func (in *Ingest) Stats() Stats {
	in.statsMu.Lock()
	defer in.statsMu.Unlock()
	return in.stats
}
