// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package g2k

import "fmt"

// errors.go holds the typed errors the engine surfaces at API boundaries.
// The hot path never constructs or returns these: frame processing only
// ever increments counters. These are compared with errors.As, not a
// sentinel table, in the fmt.Errorf-wrapped plain-struct style rather
// than a custom error package.

// InvalidCaptureError reports a malformed .atpcap file: missing or
// truncated header, bad magic, out-of-order sequence, an unrecognized
// contact state code, or a payload length mismatch.
type InvalidCaptureError struct {
	Reason string
}

func (e *InvalidCaptureError) Error() string {
	return fmt.Sprintf("g2k: invalid capture: %s", e.Reason)
}

// UnsupportedCaptureVersionError reports a capture file whose header
// version is not the one this engine implements (3).
type UnsupportedCaptureVersionError struct {
	Actual int32
}

func (e *UnsupportedCaptureVersionError) Error() string {
	return fmt.Sprintf("g2k: unsupported capture version %d, want 3", e.Actual)
}

// CaptureAlreadyRunningError is returned starting a capture while one is
// already in progress.
type CaptureAlreadyRunningError struct{}

func (e *CaptureAlreadyRunningError) Error() string { return "g2k: capture already running" }

// CaptureNotRunningError is returned stopping a capture when none is
// active.
type CaptureNotRunningError struct{}

func (e *CaptureNotRunningError) Error() string { return "g2k: capture not running" }

// ReplayAlreadyActiveError is returned starting a replay session while
// one is already active.
type ReplayAlreadyActiveError struct{}

func (e *ReplayAlreadyActiveError) Error() string { return "g2k: replay already active" }

// ReplayNotActiveError is returned operating on a replay session that
// has not been started.
type ReplayNotActiveError struct{}

func (e *ReplayNotActiveError) Error() string { return "g2k: replay not active" }

// ReplayPlaybackInProgressError is returned calling Play, Step, or
// SetTime while a previous Play has not yet finished or been cancelled.
type ReplayPlaybackInProgressError struct{}

func (e *ReplayPlaybackInProgressError) Error() string {
	return "g2k: replay playback already in progress"
}

// CaptureOrReplayConflictError is returned starting a capture while a
// replay is active, or vice versa: the two are mutually exclusive.
type CaptureOrReplayConflictError struct{}

func (e *CaptureOrReplayConflictError) Error() string {
	return "g2k: capture and replay are mutually exclusive"
}

// UnableToStartFrameSourceError wraps a failure bringing up the external
// frame source.
type UnableToStartFrameSourceError struct {
	Cause error
}

func (e *UnableToStartFrameSourceError) Error() string {
	return fmt.Sprintf("g2k: unable to start frame source: %v", e.Cause)
}

func (e *UnableToStartFrameSourceError) Unwrap() error { return e.Cause }

// UnableToRestartAfterReplayError wraps a failure resuming live ingest
// after a replay session ends.
type UnableToRestartAfterReplayError struct {
	Cause error
}

func (e *UnableToRestartAfterReplayError) Error() string {
	return fmt.Sprintf("g2k: unable to restart live ingest after replay: %v", e.Cause)
}

func (e *UnableToRestartAfterReplayError) Unwrap() error { return e.Cause }
