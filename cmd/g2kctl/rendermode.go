// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package main

import "os"

// renderMode controls whether the engine's render-snapshot publishing is
// active. "fast" (the default, also used whenever the environment
// variable is unset or unrecognized) leaves it off: only the fixed-cadence
// status snapshot publishes, the cheaper of the two. "detailed" turns on
// render-snapshot publishing for a host that wants live per-frame touch
// positions, at the cost of a snapshot copy every frame.
func renderModeDetailed() bool {
	return os.Getenv("ENGINE_RENDER_MODE") == "detailed"
}
