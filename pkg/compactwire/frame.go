// Package compactwire wraps encoded messages in CRC checked frames.
//
// Every frame starts with the magic 0xFA 0xCE, a one byte frame type and a
// little-endian u32 length covering the whole frame, and ends with a
// little-endian CRC-32 (IEEE) of everything after the magic. The frame
// layouts are declared with pystructs codecs.
package compactwire

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/imgurbot12/pystructs"
)

// FrameType identifies the body layout of a frame.
type FrameType uint8

const (
	TypeData      FrameType = 0x01
	TypeError     FrameType = 0x02
	TypeHandshake FrameType = 0x03
)

func (t FrameType) String() string {
	switch t {
	case TypeData:
		return "data"
	case TypeError:
		return "error"
	case TypeHandshake:
		return "handshake"
	}
	return fmt.Sprintf("FrameType(%d)", uint8(t))
}

// FlagHasOffsetTable marks a data frame carrying an offset table.
const FlagHasOffsetTable byte = 0x01

var Magic = []byte{0xFA, 0xCE}

var (
	ErrCRCMismatch    = errors.New("crc mismatch")
	ErrLengthMismatch = errors.New("length mismatch")
	ErrFrameType      = errors.New("unexpected frame type")
)

type header struct {
	Magic  []byte    `pystructs:"const[face]"`
	Type   FrameType `pystructs:"u8"`
	Length uint32    `pystructs:"u32le"`
}

// DataFrame carries an opaque payload, usually an encoded pystructs message.
// Offsets optionally index positions inside Payload.
type DataFrame struct {
	Flags   byte
	Offsets []uint32
	Payload []byte
}

// ErrorFrame reports a failure to the peer.
type ErrorFrame struct {
	Code byte   `pystructs:"u8"`
	Data []byte `pystructs:"bytes[u16le]"`
}

// Handshake opens a session.
type Handshake struct {
	VersionMask uint16 `pystructs:"u16le"`
	MTU         uint16 `pystructs:"u16le"`
	TimeoutMS   uint32 `pystructs:"u32le"`
	AlgCodes    []byte `pystructs:"bytes[u16le]"`
}

var (
	headerCodec    = pystructs.MustBind(header{})
	errorCodec     = pystructs.MustBind(ErrorFrame{})
	handshakeCodec = pystructs.MustBind(Handshake{})

	flagsCodec   = pystructs.U8
	offsetsCodec = pystructs.SizedList{Hint: pystructs.U16.Little(), Elem: pystructs.U32.Little()}
	crcCodec     = pystructs.U32.Little()

	headerSize = headerCodec.Size()
	crcSize    = pystructs.FixedSize(crcCodec)
)

// Peek returns the type of the frame in data without validating it.
func Peek(data []byte) (FrameType, error) {
	var h header
	if err := pystructs.DecodeInto(pystructs.NewContext(), headerCodec, data, &h); err != nil {
		return 0, errors.Wrap(err, "frame header")
	}
	return h.Type, nil
}
