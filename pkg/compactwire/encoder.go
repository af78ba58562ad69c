package compactwire

import (
	"hash/crc32"

	"github.com/pkg/errors"

	"github.com/imgurbot12/pystructs"
)

// EncodeDataFrame serializes a payload with an optional offset table. The
// table is written whenever offsets is non-empty or flags asks for it.
func EncodeDataFrame(payload []byte, flags byte, offsets []uint32) ([]byte, error) {
	if len(offsets) > 0 {
		flags |= FlagHasOffsetTable
	}
	ctx := &pystructs.Context{Index: headerSize}
	body, err := flagsCodec.Encode(ctx, flags)
	if err != nil {
		return nil, errors.Wrap(err, "data frame flags")
	}
	if flags&FlagHasOffsetTable != 0 {
		table, err := offsetsCodec.Encode(ctx, offsets)
		if err != nil {
			return nil, errors.Wrap(err, "data frame offsets")
		}
		body = append(body, table...)
	}
	body = append(body, payload...)
	return seal(TypeData, body)
}

// EncodeErrorFrame builds an error frame with code and custom data.
func EncodeErrorFrame(code byte, data []byte) ([]byte, error) {
	body, err := pystructs.Marshal(errorCodec, ErrorFrame{Code: code, Data: data})
	if err != nil {
		return nil, errors.Wrap(err, "error frame")
	}
	return seal(TypeError, body)
}

// EncodeHandshake builds a handshake frame.
func EncodeHandshake(h Handshake) ([]byte, error) {
	body, err := pystructs.Marshal(handshakeCodec, h)
	if err != nil {
		return nil, errors.Wrap(err, "handshake frame")
	}
	return seal(TypeHandshake, body)
}

// seal prepends the header and appends the CRC.
func seal(t FrameType, body []byte) ([]byte, error) {
	total := headerSize + len(body) + crcSize
	frame, err := pystructs.Marshal(headerCodec, header{Magic: Magic, Type: t, Length: uint32(total)})
	if err != nil {
		return nil, errors.Wrapf(err, "%s frame header", t)
	}
	frame = append(frame, body...)
	crc, err := pystructs.Marshal(crcCodec, crc32.ChecksumIEEE(frame[len(Magic):]))
	if err != nil {
		return nil, errors.Wrapf(err, "%s frame crc", t)
	}
	return append(frame, crc...), nil
}
