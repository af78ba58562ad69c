package compactwire

import (
	"hash/crc32"

	"github.com/pkg/errors"

	"github.com/imgurbot12/pystructs"
)

// DecodeDataFrame parses a data frame. Payload aliases data.
func DecodeDataFrame(data []byte) (DataFrame, error) {
	var d DataFrame
	ctx, body, err := open(data, TypeData)
	if err != nil {
		return d, err
	}
	flags, err := pystructs.DecodeAs[uint64](flagsCodec, ctx, body)
	if err != nil {
		return d, errors.Wrap(err, "data frame flags")
	}
	d.Flags = byte(flags)
	if d.Flags&FlagHasOffsetTable != 0 {
		if err := pystructs.DecodeInto(ctx, offsetsCodec, body, &d.Offsets); err != nil {
			return d, errors.Wrap(err, "data frame offsets")
		}
	}
	d.Payload = body[ctx.Index:]
	return d, nil
}

// DecodeErrorFrame parses an error frame.
func DecodeErrorFrame(data []byte) (ErrorFrame, error) {
	var e ErrorFrame
	ctx, body, err := open(data, TypeError)
	if err != nil {
		return e, err
	}
	if err := pystructs.DecodeInto(ctx, errorCodec, body, &e); err != nil {
		return e, errors.Wrap(err, "error frame")
	}
	if ctx.Index != len(body) {
		return e, errors.Wrapf(ErrLengthMismatch, "error frame has %d trailing bytes", len(body)-ctx.Index)
	}
	return e, nil
}

// DecodeHandshake parses a handshake frame.
func DecodeHandshake(data []byte) (Handshake, error) {
	var h Handshake
	ctx, body, err := open(data, TypeHandshake)
	if err != nil {
		return h, err
	}
	if err := pystructs.DecodeInto(ctx, handshakeCodec, body, &h); err != nil {
		return h, errors.Wrap(err, "handshake frame")
	}
	return h, nil
}

// open validates the header, length and CRC of a frame and returns a
// Context positioned at the start of the body together with data cut
// before the CRC.
func open(data []byte, want FrameType) (*pystructs.Context, []byte, error) {
	if len(data) < headerSize+crcSize {
		return nil, nil, errors.Wrapf(ErrLengthMismatch, "frame of %d bytes", len(data))
	}
	ctx := pystructs.NewContext()
	var h header
	if err := pystructs.DecodeInto(ctx, headerCodec, data, &h); err != nil {
		return nil, nil, errors.Wrap(err, "frame header")
	}
	if h.Type != want {
		return nil, nil, errors.Wrapf(ErrFrameType, "got %s, want %s", h.Type, want)
	}
	if int(h.Length) != len(data) {
		return nil, nil, errors.Wrapf(ErrLengthMismatch, "header says %d, got %d", h.Length, len(data))
	}
	end := len(data) - crcSize
	sum, err := pystructs.DecodeAs[uint64](crcCodec, &pystructs.Context{Index: end}, data)
	if err != nil {
		return nil, nil, errors.Wrap(err, "frame crc")
	}
	if got := crc32.ChecksumIEEE(data[len(Magic):end]); uint64(got) != sum {
		return nil, nil, errors.Wrapf(ErrCRCMismatch, "computed %08x, frame has %08x", got, sum)
	}
	return ctx, data[:end], nil
}
