// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package g2k, GlassToKey, turns a multi-touch trackpad surface into a
// split ortho-linear keyboard plus pointer/gesture dispatcher. The engine
// ingests canonical multi-touch frames, classifies user intent, resolves
// each contact against a layered key binding map, and emits a
// deterministic stream of keyboard/mouse/haptic dispatch events, along
// with render and status snapshots for any UI.
//
// Package g2k holds the shared data model every subsystem consumes: raw
// frames and contacts, the action catalog, layouts, keymaps, engine
// configuration, and the typed errors of the capture/replay surface.
// The subsystems themselves live in the subpackages:
//   - The serialized engine actor.          See package g2k/engine.
//   - Frame ingest and fan-out.             See package g2k/frame.
//   - Spatial key/button hit-testing.       See package g2k/binding.
//   - Per-contact lifecycle tracking.       See package g2k/contact.
//   - Global intent classification.         See package g2k/intent.
//   - Swipe/chord/tap gestures.             See package g2k/gesture.
//   - OS-directed dispatch events.          See package g2k/dispatch.
//   - Deterministic capture and replay.     See package g2k/capture.
//   - UI-facing render/status snapshots.    See package g2k/snapshot.
//
// Refer to cmd/g2kctl for a working host that wires the engine to a
// replay file or a live capture.
package g2k
