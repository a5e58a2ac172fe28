// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package main

import (
	"flag"
	"os"
)

// CLIOpts are g2kctl's flags. Exactly one of Replay/Capture is expected;
// main reports a usage error otherwise.
type CLIOpts struct {
	replay  string
	capture string
}

func parseCLIOpts() CLIOpts {
	var opt CLIOpts
	flag.StringVar(&opt.replay, "replay", "", "run a headless deterministic replay of the given .atpcap file")
	flag.StringVar(&opt.capture, "capture", "", "record a headless live capture to the given .atpcap file until terminated")
	flag.Parse()
	return opt
}

func usageExit() {
	flag.Usage()
	os.Exit(2)
}
