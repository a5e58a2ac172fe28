// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package capture

import "github.com/blang/semver/v4"

// SchemaVersion is the meta record's schema tag.
const SchemaVersion = "g2k-replay-v1"

// EngineVersion is the semver of this engine build, stamped into every
// capture's meta record so a future replay can detect a format or
// behavior drift against the capturing build.
var EngineVersion = semver.MustParse("1.0.0")

// Meta is the single JSON record every .atpcap file opens with.
type Meta struct {
	Type           string `json:"type"`
	Schema         string `json:"schema"`
	CapturedAt     string `json:"capturedAt"`
	Platform       string `json:"platform"`
	Source         string `json:"source"`
	FramesCaptured int    `json:"framesCaptured"`
	EngineVersion  string `json:"engineVersion,omitempty"`
}

// NewMeta builds a Meta record for a just-finished capture.
func NewMeta(capturedAt, platform, source string, framesCaptured int) Meta {
	return Meta{
		Type:           "meta",
		Schema:         SchemaVersion,
		CapturedAt:     capturedAt,
		Platform:       platform,
		Source:         source,
		FramesCaptured: framesCaptured,
		EngineVersion:  EngineVersion.String(),
	}
}

// ParsedEngineVersion returns the semver of the engine build that wrote
// this capture. ok is false for a legacy capture without the field or
// one carrying an unparseable version string.
func (m Meta) ParsedEngineVersion() (v semver.Version, ok bool) {
	if m.EngineVersion == "" {
		return semver.Version{}, false
	}
	v, err := semver.Parse(m.EngineVersion)
	if err != nil {
		return semver.Version{}, false
	}
	return v, true
}

// NewerThanEngine reports whether the capture was written by a newer
// engine build than this one, so a replay host can warn about possible
// behavior drift before trusting a transcript comparison.
func (m Meta) NewerThanEngine() bool {
	v, ok := m.ParsedEngineVersion()
	return ok && v.GT(EngineVersion)
}
