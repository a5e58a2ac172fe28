// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package capture

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"sort"
	"time"

	"github.com/glasstokey/g2k"
)

type decodedFrame struct {
	timeSeconds float64
	frame       g2k.RawFrame
}

// Hooks are the engine-side callbacks a Replay session drives. The
// package itself owns no Engine reference, keeping capture free of an
// import cycle back to the root package.
type Hooks struct {
	Feed              func(g2k.RawFrame)
	ResetEngine       func()
	StopLiveIngest    func() error
	RestoreLiveIngest func() error
}

// Replay is the replay coordinator: it parses a .atpcap file eagerly,
// then exposes seek/play/pause controls that drive the engine through
// the same per-frame path as live ingest.
type Replay struct {
	active   bool
	playing  bool
	meta     Meta
	frames   []decodedFrame
	position int // index of the last frame fed, -1 before any feed.
	hooks    Hooks
}

// NewReplay creates an idle Replay.
func NewReplay() *Replay { return &Replay{position: -1} }

// Active reports whether a session is currently open.
func (r *Replay) Active() bool { return r.active }

// Meta returns the parsed meta record of the active session.
func (r *Replay) Meta() Meta { return r.meta }

// Duration returns the last frame's timestamp, or 0 for an empty replay.
func (r *Replay) Duration() float64 {
	if len(r.frames) == 0 {
		return 0
	}
	return r.frames[len(r.frames)-1].timeSeconds
}

// Position returns the index of the last frame fed to the engine.
func (r *Replay) Position() int { return r.position }

// BeginSession parses path eagerly, stops live ingest, resets the engine,
// and feeds frame 0. Returns ReplayAlreadyActiveError if a session is
// already open.
func (r *Replay) BeginSession(path string, hooks Hooks) error {
	if r.active {
		return &g2k.ReplayAlreadyActiveError{}
	}
	frames, meta, err := parseFile(path)
	if err != nil {
		return err
	}
	if hooks.StopLiveIngest != nil {
		if err := hooks.StopLiveIngest(); err != nil {
			return &g2k.UnableToStartFrameSourceError{Cause: err}
		}
	}
	r.frames = frames
	r.meta = meta
	r.hooks = hooks
	r.active = true
	r.position = -1

	if hooks.ResetEngine != nil {
		hooks.ResetEngine()
	}
	if len(frames) > 0 && hooks.Feed != nil {
		hooks.Feed(frames[0].frame)
		r.position = 0
	}
	return nil
}

// SetTime clamps t to [0, duration], resets the engine, and replays every
// frame up to and including the largest timestamp <= t. Only valid while
// paused.
func (r *Replay) SetTime(t float64) error {
	if !r.active {
		return &g2k.ReplayNotActiveError{}
	}
	if r.playing {
		return &g2k.ReplayPlaybackInProgressError{}
	}
	if t < 0 {
		t = 0
	}
	if d := r.Duration(); t > d {
		t = d
	}

	idx := sort.Search(len(r.frames), func(i int) bool { return r.frames[i].timeSeconds > t }) - 1
	if idx < 0 {
		idx = 0
	}

	if r.hooks.ResetEngine != nil {
		r.hooks.ResetEngine()
	}
	for i := 0; i <= idx && i < len(r.frames); i++ {
		if r.hooks.Feed != nil {
			r.hooks.Feed(r.frames[i].frame)
		}
	}
	r.position = idx
	return nil
}

// Step feeds the single next frame, if any, while paused.
func (r *Replay) Step() error {
	if !r.active {
		return &g2k.ReplayNotActiveError{}
	}
	if r.playing {
		return &g2k.ReplayPlaybackInProgressError{}
	}
	if r.position+1 >= len(r.frames) {
		return nil
	}
	r.position++
	if r.hooks.Feed != nil {
		r.hooks.Feed(r.frames[r.position].frame)
	}
	return nil
}

// Play feeds every remaining frame in order, sleeping between them for
// the gap implied by their relative timestamps, reporting position via
// onProgress. It returns early if ctx is cancelled, which is also how a
// host pauses playback; a later Play resumes from the current position.
// Only one Play may run at a time.
func (r *Replay) Play(ctx context.Context, onProgress func(position int, timeSeconds float64)) error {
	if !r.active {
		return &g2k.ReplayNotActiveError{}
	}
	if r.playing {
		return &g2k.ReplayPlaybackInProgressError{}
	}
	r.playing = true
	defer func() { r.playing = false }()

	for i := r.position + 1; i < len(r.frames); i++ {
		var wait time.Duration
		if r.position >= 0 {
			delta := r.frames[i].timeSeconds - r.frames[r.position].timeSeconds
			if delta > 0 {
				wait = time.Duration(delta * float64(time.Second))
			}
		}
		if wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		} else {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}

		if r.hooks.Feed != nil {
			r.hooks.Feed(r.frames[i].frame)
		}
		r.position = i
		if onProgress != nil {
			onProgress(r.position, r.frames[i].timeSeconds)
		}
	}
	return nil
}

// EndSession restores prior live-ingest state and closes the session.
func (r *Replay) EndSession() error {
	if !r.active {
		return &g2k.ReplayNotActiveError{}
	}
	r.active = false
	r.frames = nil
	r.position = -1
	if r.hooks.RestoreLiveIngest != nil {
		if err := r.hooks.RestoreLiveIngest(); err != nil {
			return &g2k.UnableToRestartAfterReplayError{Cause: err}
		}
	}
	return nil
}

// parseFile eagerly decodes every record in a .atpcap file, validating
// the meta-record-first invariant, monotonic arrival ticks, and
// strictly incrementing sequence numbers.
func parseFile(path string) ([]decodedFrame, Meta, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Meta{}, err
	}
	defer f.Close()
	br := bufio.NewReader(f)

	fh, err := ReadFileHeader(br)
	if err != nil {
		return nil, Meta{}, err
	}

	var meta Meta
	var frames []decodedFrame
	var lastTicks int64 = -1
	var lastSeq uint64
	first := true

	for {
		rh, err := readRecordHeader(br)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, Meta{}, err
		}
		payload := make([]byte, rh.PayloadLen)
		if _, err := io.ReadFull(br, payload); err != nil {
			return nil, Meta{}, err
		}

		if rh.IsMeta() {
			if !first {
				return nil, Meta{}, &g2k.InvalidCaptureError{Reason: "meta record must be first"}
			}
			meta, err = decodeMeta(payload)
			if err != nil {
				return nil, Meta{}, err
			}
			first = false
			continue
		}
		first = false

		if rh.ArrivalTicks < lastTicks {
			return nil, Meta{}, &g2k.InvalidCaptureError{Reason: "arrival_ticks is not monotonic"}
		}
		lastTicks = rh.ArrivalTicks

		frame, err := decodeFrame(payload, rh.DeviceIndex)
		if err != nil {
			return nil, Meta{}, err
		}
		if len(frames) == 0 {
			if frame.Sequence != 1 {
				return nil, Meta{}, &g2k.InvalidCaptureError{Reason: "first frame sequence must be 1"}
			}
		} else if frame.Sequence != lastSeq+1 {
			return nil, Meta{}, &g2k.InvalidCaptureError{Reason: "frame sequence must increment by 1"}
		}
		lastSeq = frame.Sequence

		freq := fh.TickFrequency
		if freq == 0 {
			freq = DefaultTickFrequency
		}
		frames = append(frames, decodedFrame{
			timeSeconds: float64(rh.ArrivalTicks) / float64(freq),
			frame:       frame,
		})
	}

	return frames, meta, nil
}
