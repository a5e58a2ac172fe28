// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package main

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/glasstokey/g2k"
)

// stdinSource implements frame.Source over a stream of JSON-encoded
// g2k.RawFrame values, one per json.Decoder token, read from stdin. The
// engine and frame package never know or care how a frame arrived.
type stdinSource struct {
	dec *json.Decoder
	err error // set on a malformed decode that ended the stream early.
}

func newStdinSource(r io.Reader) *stdinSource {
	return &stdinSource{dec: json.NewDecoder(r)}
}

func (s *stdinSource) Next() (g2k.RawFrame, bool) {
	var f g2k.RawFrame
	if err := s.dec.Decode(&f); err != nil {
		if !errors.Is(err, io.EOF) {
			s.err = err
		}
		return g2k.RawFrame{}, false
	}
	return f, true
}

// Err returns the decode error that ended the stream, or nil for a clean
// end of stream.
func (s *stdinSource) Err() error { return s.err }
