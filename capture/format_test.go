// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package capture

import (
	"testing"

	"github.com/glasstokey/g2k"
)

func TestEncodeDecodeFrameRoundTrip(t *testing.T) {
	frame := g2k.RawFrame{
		Sequence:        42,
		TimestampSecs:   1.5,
		DeviceNumericID: 0,
		Contacts: []g2k.RawContact{
			{ID: 1, X: 0.25, Y: 0.75, Pressure: 0.5, Total: 1, MajorAxis: 2, MinorAxis: 1, Angle: 0.1, Density: 0.9, State: g2k.StateTouching},
		},
	}

	payload, err := encodeFrame(frame)
	if err != nil {
		t.Fatalf("encodeFrame: %v", err)
	}

	got, err := decodeFrame(payload, 0)
	if err != nil {
		t.Fatalf("decodeFrame: %v", err)
	}

	if got.Sequence != frame.Sequence {
		t.Errorf("sequence: got %d, want %d", got.Sequence, frame.Sequence)
	}
	if len(got.Contacts) != 1 || got.Contacts[0].ID != 1 {
		t.Fatalf("expected 1 contact with id 1, got %+v", got.Contacts)
	}
	if got.Side != g2k.SideLeft {
		t.Errorf("expected device_index 0 to decode as SideLeft, got %v", got.Side)
	}
}

func TestDecodeFrameRejectsBadMagic(t *testing.T) {
	payload := make([]byte, 32)
	if _, err := decodeFrame(payload, 0); err == nil {
		t.Error("expected an error decoding a zeroed payload with no valid frame magic")
	}
}

func TestMetaRoundTrip(t *testing.T) {
	m := NewMeta("2026-01-01T00:00:00Z", "linux", "fixture", 10)
	payload, err := encodeMeta(m)
	if err != nil {
		t.Fatalf("encodeMeta: %v", err)
	}
	got, err := decodeMeta(payload)
	if err != nil {
		t.Fatalf("decodeMeta: %v", err)
	}
	if got.Schema != SchemaVersion || got.FramesCaptured != 10 {
		t.Errorf("unexpected decoded meta: %+v", got)
	}
	if v, ok := got.ParsedEngineVersion(); !ok || !v.EQ(EngineVersion) {
		t.Errorf("expected the round-tripped engine version %s, got %v ok=%v", EngineVersion, v, ok)
	}
}

func TestMetaNewerThanEngine(t *testing.T) {
	m := NewMeta("2026-01-01T00:00:00Z", "linux", "fixture", 0)
	if m.NewerThanEngine() {
		t.Error("a capture from this build must not read as newer")
	}

	newer := EngineVersion
	newer.Major++
	m.EngineVersion = newer.String()
	if !m.NewerThanEngine() {
		t.Error("expected a higher-major capture version to read as newer")
	}

	m.EngineVersion = "not-a-version"
	if m.NewerThanEngine() {
		t.Error("an unparseable capture version must not read as newer")
	}
	if _, ok := m.ParsedEngineVersion(); ok {
		t.Error("expected ParsedEngineVersion to reject an unparseable string")
	}

	m.EngineVersion = ""
	if m.NewerThanEngine() {
		t.Error("a legacy capture without the field must not read as newer")
	}
}
