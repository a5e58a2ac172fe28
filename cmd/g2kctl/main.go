// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Command g2kctl is a headless host for the g2k engine: it drives either
// a deterministic replay fingerprint check or a live capture-to-file
// session, reading raw frames as newline-delimited JSON from stdin.
package main

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"os"
	"time"

	"github.com/glasstokey/g2k/diag"
	"github.com/glasstokey/g2k/dispatch"
	"github.com/glasstokey/g2k/engine"
	"github.com/glasstokey/g2k/frame"
)

func main() {
	opt := parseCLIOpts()

	switch {
	case opt.replay != "" && opt.capture != "":
		fmt.Fprintln(os.Stderr, "g2kctl: --replay and --capture are mutually exclusive")
		usageExit()
	case opt.replay != "":
		os.Exit(runReplayCheck(opt.replay))
	case opt.capture != "":
		if err := runCapture(opt.capture); err != nil {
			fmt.Fprintln(os.Stderr, "g2kctl:", err)
			os.Exit(1)
		}
	default:
		usageExit()
	}
}

// runReplayCheck feeds path through two independent engine instances
// and exits 0 iff their dispatch and diagnostic transcripts fingerprint
// identically. Each pass uses Replay.SetTime to the capture's full
// duration rather than Play's real-time pacing: seeking feeds the same
// frames through the same path, producing the same transcript without
// waiting out real capture lengths.
func runReplayCheck(path string) int {
	first, err := runReplayPass(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "g2kctl: replay pass 1:", err)
		return 1
	}
	second, err := runReplayPass(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "g2kctl: replay pass 2:", err)
		return 1
	}
	if !bytes.Equal(first, second) {
		fmt.Fprintln(os.Stderr, "g2kctl: replay transcript fingerprint differs between passes")
		return 1
	}
	fmt.Printf("g2kctl: stable transcript fingerprint %x\n", first)
	return 0
}

func runReplayPass(path string) ([]byte, error) {
	eng := engine.New(hostConfig())
	applyHostLayout(eng)
	eng.Diagnostics().SetEnabled(true)
	eng.Snapshots().SetRecording(renderModeDetailed())

	if err := eng.BeginReplay(path); err != nil {
		return nil, err
	}
	if err := eng.Replay().SetTime(eng.Replay().Duration()); err != nil {
		return nil, err
	}
	if err := eng.Replay().EndSession(); err != nil {
		return nil, err
	}

	return fingerprint(eng.Queue().Drain(0), eng.Diagnostics().Snapshot()), nil
}

// fingerprint hashes the dispatch and diagnostic transcripts in emission
// order. Every field that participates in observable behavior is
// included; nothing about wall-clock time (which differs run to run) is.
func fingerprint(events []dispatch.Event, trace []diag.Event) []byte {
	var buf bytes.Buffer
	for _, e := range events {
		binary.Write(&buf, binary.LittleEndian, uint8(e.Kind))
		binary.Write(&buf, binary.LittleEndian, e.VK)
		binary.Write(&buf, binary.LittleEndian, uint8(e.Button))
		binary.Write(&buf, binary.LittleEndian, e.RepeatToken)
		binary.Write(&buf, binary.LittleEndian, uint8(e.Flags))
		binary.Write(&buf, binary.LittleEndian, uint8(e.Side))
		buf.WriteString(e.Label)
		buf.WriteByte(0)
	}
	for _, d := range trace {
		binary.Write(&buf, binary.LittleEndian, uint8(d.Kind))
		binary.Write(&buf, binary.LittleEndian, uint8(d.Side))
		binary.Write(&buf, binary.LittleEndian, int32(d.ContactID))
		buf.WriteString(d.Detail)
		buf.WriteByte(0)
	}
	sum := sha256.Sum256(buf.Bytes())
	return sum[:]
}

// runCapture routes stdin-delivered frames through the engine exactly
// the way live ingest would, recording every observed frame and writing
// path as a .atpcap v3 file once stdin reaches a clean end of stream.
func runCapture(path string) error {
	eng := engine.New(hostConfig())
	applyHostLayout(eng)
	eng.Snapshots().SetRecording(renderModeDetailed())
	writer := eng.CaptureWriter()
	if err := eng.StartCapture(); err != nil {
		return err
	}

	ingest := frame.NewIngest()
	sub := ingest.Subscribe(frame.SideAny)
	defer sub.Cancel()

	src := newStdinSource(os.Stdin)
	done := make(chan struct{})
	go func() {
		defer close(done)
		ingest.Run(src)
	}()

	for f := range sub.Frames {
		writer.Observe(f)
		eng.FeedFrame(f)
	}
	<-done

	if err := src.Err(); err != nil {
		return fmt.Errorf("stdin frame source: %w", err)
	}

	return eng.StopCapture(path, time.Now().UTC().Format(time.RFC3339))
}
