// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package capture implements the .atpcap v3 binary format and the
// capture writer / replay coordinator built on it.
package capture

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"io"

	"github.com/glasstokey/g2k"
)

// FileMagic is the 8-byte magic at the start of every .atpcap file.
const FileMagic = "ATPCAP01"

// FormatVersion is the only .atpcap version this package reads or writes.
const FormatVersion int32 = 3

// DefaultTickFrequency is the file header's tick_frequency when
// arrival_ticks are nanoseconds, the format's default.
const DefaultTickFrequency int64 = 1_000_000_000

// FrameMagic is the 4-byte magic at the start of a frame record's binary
// payload.
const FrameMagic uint32 = 0x52465633 // "RFV3" read big-endian; stored little-endian on disk.

// metaDeviceIndex marks a record as the single JSON meta record that must
// open every file.
const metaDeviceIndex int32 = -1

// FileHeader is the 20-byte file header.
type FileHeader struct {
	Magic         [8]byte
	Version       int32
	TickFrequency int64
}

// WriteFileHeader writes h to w in the wire's little-endian layout.
func WriteFileHeader(w io.Writer, h FileHeader) error {
	if err := binary.Write(w, binary.LittleEndian, h.Magic); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, h.Version); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, h.TickFrequency)
}

// ReadFileHeader reads and validates a FileHeader from r.
func ReadFileHeader(r io.Reader) (FileHeader, error) {
	var h FileHeader
	if err := binary.Read(r, binary.LittleEndian, &h.Magic); err != nil {
		return h, err
	}
	if string(h.Magic[:]) != FileMagic {
		return h, &g2k.InvalidCaptureError{Reason: "bad file magic"}
	}
	if err := binary.Read(r, binary.LittleEndian, &h.Version); err != nil {
		return h, err
	}
	if h.Version != FormatVersion {
		return h, &g2k.UnsupportedCaptureVersionError{Actual: h.Version}
	}
	if err := binary.Read(r, binary.LittleEndian, &h.TickFrequency); err != nil {
		return h, err
	}
	return h, nil
}

// RecordHeader is the 34-byte header preceding every record's payload.
type RecordHeader struct {
	PayloadLen     int32
	ArrivalTicks   int64
	DeviceIndex    int32
	DeviceHash     uint32
	VendorID       uint32
	ProductID      uint32
	UsagePage      uint16
	Usage          uint16
	SideHint       uint8
	DecoderProfile uint8
}

func writeRecordHeader(w io.Writer, h RecordHeader) error {
	fields := []any{
		h.PayloadLen, h.ArrivalTicks, h.DeviceIndex, h.DeviceHash,
		h.VendorID, h.ProductID, h.UsagePage, h.Usage, h.SideHint, h.DecoderProfile,
	}
	for _, f := range fields {
		if err := binary.Write(w, binary.LittleEndian, f); err != nil {
			return err
		}
	}
	return nil
}

func readRecordHeader(r io.Reader) (RecordHeader, error) {
	var h RecordHeader
	fields := []any{
		&h.PayloadLen, &h.ArrivalTicks, &h.DeviceIndex, &h.DeviceHash,
		&h.VendorID, &h.ProductID, &h.UsagePage, &h.Usage, &h.SideHint, &h.DecoderProfile,
	}
	for _, f := range fields {
		if err := binary.Read(r, binary.LittleEndian, f); err != nil {
			return h, err
		}
	}
	return h, nil
}

// frameHeaderFixed is the 32-byte frame payload header.
type frameHeaderFixed struct {
	Magic           uint32
	Sequence        uint64
	TimestampSecs   float64
	DeviceNumericID uint64
	ContactCount    uint16
	Reserved        uint16
}

// contactRecordFixed is one 40-byte contact entry following a frame header.
type contactRecordFixed struct {
	ID       int32
	X        float32
	Y        float32
	Total    float32
	Pressure float32
	Major    float32
	Minor    float32
	Angle    float32
	Density  float32
	State    uint8
	_        [3]byte // pad to the 40-byte record size; binary skips blanks.
}

// Record is one decoded file entry: either a Meta record (DeviceIndex ==
// -1) or a Frame record.
type Record struct {
	Header RecordHeader
	Meta   *Meta      // non-nil iff this is the meta record.
	Frame  *g2k.RawFrame
}

// IsMeta reports whether this record is the file's single meta record.
func (rh RecordHeader) IsMeta() bool { return rh.DeviceIndex == metaDeviceIndex }

// encodeFrame serializes a RawFrame into the 32-byte header plus
// 40-byte-per-contact binary payload the format specifies.
func encodeFrame(f g2k.RawFrame) ([]byte, error) {
	var buf bytes.Buffer
	fh := frameHeaderFixed{
		Magic:           FrameMagic,
		Sequence:        f.Sequence,
		TimestampSecs:   f.TimestampSecs,
		DeviceNumericID: f.DeviceNumericID,
		ContactCount:    uint16(len(f.Contacts)),
	}
	if err := binary.Write(&buf, binary.LittleEndian, fh); err != nil {
		return nil, err
	}
	for _, c := range f.Contacts {
		cr := contactRecordFixed{
			ID:       int32(c.ID),
			X:        float32(c.X),
			Y:        float32(c.Y),
			Total:    float32(c.Total),
			Pressure: float32(c.Pressure),
			Major:    float32(c.MajorAxis),
			Minor:    float32(c.MinorAxis),
			Angle:    float32(c.Angle),
			Density:  float32(c.Density),
			State:    uint8(c.State),
		}
		if err := binary.Write(&buf, binary.LittleEndian, cr); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// decodeFrame parses a frame record payload back into a RawFrame.
// deviceIndex comes from the enclosing RecordHeader, since the frame
// payload itself carries no side tag.
func decodeFrame(payload []byte, deviceIndex int32) (g2k.RawFrame, error) {
	r := bytes.NewReader(payload)
	var fh frameHeaderFixed
	if err := binary.Read(r, binary.LittleEndian, &fh); err != nil {
		return g2k.RawFrame{}, err
	}
	if fh.Magic != FrameMagic {
		return g2k.RawFrame{}, &g2k.InvalidCaptureError{Reason: "bad frame magic"}
	}

	frame := g2k.RawFrame{
		Sequence:        fh.Sequence,
		TimestampSecs:   fh.TimestampSecs,
		DeviceNumericID: fh.DeviceNumericID,
		DeviceIndex:     int(deviceIndex),
		Contacts:        make([]g2k.RawContact, 0, fh.ContactCount),
	}
	if deviceIndex == 0 {
		frame.Side = g2k.SideLeft
	} else if deviceIndex == 1 {
		frame.Side = g2k.SideRight
	}

	for i := 0; i < int(fh.ContactCount); i++ {
		var cr contactRecordFixed
		if err := binary.Read(r, binary.LittleEndian, &cr); err != nil {
			return g2k.RawFrame{}, err
		}
		if cr.State > uint8(g2k.StateLeaving) {
			return g2k.RawFrame{}, &g2k.InvalidCaptureError{Reason: "unrecognized contact state code"}
		}
		frame.Contacts = append(frame.Contacts, g2k.RawContact{
			ID:        int(cr.ID),
			X:         float64(cr.X),
			Y:         float64(cr.Y),
			Total:     float64(cr.Total),
			Pressure:  float64(cr.Pressure),
			MajorAxis: float64(cr.Major),
			MinorAxis: float64(cr.Minor),
			Angle:     float64(cr.Angle),
			Density:   float64(cr.Density),
			State:     g2k.ContactState(cr.State),
		})
	}
	return frame, nil
}

func encodeMeta(m Meta) ([]byte, error) {
	return json.Marshal(m)
}

func decodeMeta(payload []byte) (Meta, error) {
	var m Meta
	if err := json.Unmarshal(payload, &m); err != nil {
		return Meta{}, err
	}
	return m, nil
}
