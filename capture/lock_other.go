// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

//go:build !unix

package capture

import "os"

// lockFile is a no-op on platforms without flock; the file is still only
// ever opened exclusively by os.Create within a single Writer.
func lockFile(f *os.File) error { return nil }

func unlockFile(f *os.File) error { return nil }
