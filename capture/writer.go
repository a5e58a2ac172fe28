// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package capture

import (
	"bufio"
	"os"
	"sync"
	"time"

	"github.com/glasstokey/g2k"
)

const defaultMaxBuffered = 200_000

// Writer observes the live Frame Ingest stream and accumulates frames for
// a later .atpcap write. It holds no lock across Observe and file I/O:
// Observe only ever appends to an in-memory buffer.
type Writer struct {
	mu          sync.Mutex
	recording   bool
	start       time.Time
	platform    string
	source      string
	maxBuffered int
	buffered    []bufferedFrame
	dropped     int64
}

type bufferedFrame struct {
	arrivalTicks int64
	frame        g2k.RawFrame
}

// NewWriter creates a Writer that retains up to maxBuffered frames
// (0 uses a generous default) before overflow starts dropping the
// oldest buffered frame.
func NewWriter(maxBuffered int, platform, source string) *Writer {
	if maxBuffered <= 0 {
		maxBuffered = defaultMaxBuffered
	}
	return &Writer{maxBuffered: maxBuffered, platform: platform, source: source}
}

// Start begins recording, discarding any previously buffered frames.
// Returns CaptureAlreadyRunningError if already recording.
func (w *Writer) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.recording {
		return &g2k.CaptureAlreadyRunningError{}
	}
	w.recording = true
	w.start = time.Now()
	w.buffered = w.buffered[:0]
	w.dropped = 0
	return nil
}

// Recording reports whether a capture is in progress.
func (w *Writer) Recording() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.recording
}

// Observe appends f to the buffer with arrival_ticks stamped relative to
// Start, if currently recording. It is a no-op otherwise.
func (w *Writer) Observe(f g2k.RawFrame) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.recording {
		return
	}
	ticks := time.Since(w.start).Nanoseconds()
	if len(w.buffered) >= w.maxBuffered {
		w.buffered = w.buffered[1:]
		w.dropped++
	}
	w.buffered = append(w.buffered, bufferedFrame{arrivalTicks: ticks, frame: f})
}

// Dropped returns the number of buffered frames evicted by overflow.
func (w *Writer) Dropped() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dropped
}

// Stop ends recording and writes every buffered frame to path as a .atpcap
// v3 file, in arrival order, preceded by a single meta record.
// Returns CaptureNotRunningError if not currently recording.
func (w *Writer) Stop(path, capturedAt string) error {
	w.mu.Lock()
	if !w.recording {
		w.mu.Unlock()
		return &g2k.CaptureNotRunningError{}
	}
	w.recording = false
	buffered := w.buffered
	w.buffered = nil
	w.mu.Unlock()

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := lockFile(f); err != nil {
		return err
	}
	defer unlockFile(f)
	bw := bufio.NewWriter(f)

	if err := WriteFileHeader(bw, FileHeader{
		Magic:         [8]byte([]byte(FileMagic)),
		Version:       FormatVersion,
		TickFrequency: DefaultTickFrequency,
	}); err != nil {
		return err
	}

	meta, err := encodeMeta(NewMeta(capturedAt, w.platform, w.source, len(buffered)))
	if err != nil {
		return err
	}
	if err := writeRecordHeader(bw, RecordHeader{PayloadLen: int32(len(meta)), DeviceIndex: metaDeviceIndex}); err != nil {
		return err
	}
	if _, err := bw.Write(meta); err != nil {
		return err
	}

	var rebaseOffset int64
	if len(buffered) > 0 {
		rebaseOffset = buffered[0].arrivalTicks
	}

	for i, b := range buffered {
		// File sequence numbers always start at 1, regardless of where in
		// the live session's global sequence the capture began.
		b.frame.Sequence = uint64(i + 1)
		payload, err := encodeFrame(b.frame)
		if err != nil {
			return err
		}
		deviceIndex := int32(b.frame.DeviceIndex)
		hdr := RecordHeader{
			PayloadLen:   int32(len(payload)),
			ArrivalTicks: b.arrivalTicks - rebaseOffset,
			DeviceIndex:  deviceIndex,
		}
		if err := writeRecordHeader(bw, hdr); err != nil {
			return err
		}
		if _, err := bw.Write(payload); err != nil {
			return err
		}
	}

	return bw.Flush()
}
