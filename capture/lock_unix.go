// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

//go:build unix

package capture

import (
	"os"

	"golang.org/x/sys/unix"
)

// lockFile takes an advisory, non-blocking exclusive flock on f, so two
// writers can never interleave records into the same .atpcap path.
func lockFile(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
}

func unlockFile(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_UN)
}
