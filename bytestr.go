package pystructs

import (
	"bytes"
	"fmt"
	"reflect"
)

// SizedBytes is a byte string prefixed with its length.
type SizedBytes struct {
	Hint IntegerCodec
}

func (s SizedBytes) String() string { return fmt.Sprintf("bytes[%v]", s.Hint) }

func (s SizedBytes) Accepts(value any) bool {
	_, ok := toBytes(value)
	return ok
}

func (s SizedBytes) Encode(ctx *Context, value any) ([]byte, error) {
	content, ok := toBytes(value)
	if !ok {
		return nil, newError(KindTypeMismatch, value, "%s cannot encode %T", s, value)
	}
	hint, err := s.Hint.encodeLen(ctx, len(content))
	if err != nil {
		return nil, err
	}
	return append(hint, ctx.TrackBytes(content)...), nil
}

func (s SizedBytes) Decode(ctx *Context, raw []byte) (any, error) {
	n, err := s.Hint.decodeLen(ctx, raw)
	if err != nil {
		return nil, err
	}
	data := ctx.Slice(raw, n)
	if len(data) != n {
		return nil, shortBuffer(s.String(), n, len(data))
	}
	return bytes.Clone(data), nil
}

// StaticBytes is a byte string zero-padded to a fixed size.
//
// Trailing zero bytes are stripped on decode, so values that end in 0x00
// do not round-trip. This is part of the wire format.
type StaticBytes struct {
	Size int
}

func (s StaticBytes) String() string { return fmt.Sprintf("bytes[%d]", s.Size) }

func (s StaticBytes) FixedSize() int { return s.Size }

func (s StaticBytes) Accepts(value any) bool {
	_, ok := toBytes(value)
	return ok
}

func (s StaticBytes) Encode(ctx *Context, value any) ([]byte, error) {
	content, ok := toBytes(value)
	if !ok {
		return nil, newError(KindTypeMismatch, value, "%s cannot encode %T", s, value)
	}
	if len(content) > s.Size {
		return nil, newError(KindOverflow, value, "datalen=%d > %d bytes", len(content), s.Size)
	}
	buf := make([]byte, s.Size)
	copy(buf, content)
	return ctx.TrackBytes(buf), nil
}

func (s StaticBytes) Decode(ctx *Context, raw []byte) (any, error) {
	data := ctx.Slice(raw, s.Size)
	if len(data) != s.Size {
		return nil, shortBuffer(s.String(), s.Size, len(data))
	}
	return bytes.Clone(bytes.TrimRight(data, "\x00")), nil
}

// GreedyBytes takes every remaining byte on decode. It is only valid as
// the last field of a message.
type GreedyBytes struct{}

func (GreedyBytes) String() string { return "bytes" }

func (GreedyBytes) Accepts(value any) bool {
	_, ok := toBytes(value)
	return ok
}

func (g GreedyBytes) Encode(ctx *Context, value any) ([]byte, error) {
	content, ok := toBytes(value)
	if !ok {
		return nil, newError(KindTypeMismatch, value, "%s cannot encode %T", g, value)
	}
	return ctx.TrackBytes(bytes.Clone(content)), nil
}

func (GreedyBytes) Decode(ctx *Context, raw []byte) (any, error) {
	return bytes.Clone(ctx.Slice(raw, ctx.Remaining(raw))), nil
}

// toBytes accepts []byte, string and byte arrays, including named types.
func toBytes(value any) ([]byte, bool) {
	switch v := value.(type) {
	case []byte:
		return v, true
	case string:
		return []byte(v), true
	case nil:
		return nil, false
	}
	rv := reflect.ValueOf(value)
	switch {
	case rv.Kind() == reflect.String:
		return []byte(rv.String()), true
	case rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8:
		return rv.Bytes(), true
	case rv.Kind() == reflect.Array && rv.Type().Elem().Kind() == reflect.Uint8:
		buf := make([]byte, rv.Len())
		reflect.Copy(reflect.ValueOf(buf), rv)
		return buf, true
	}
	return nil, false
}
