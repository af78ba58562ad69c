// Package pystructs turns ordered, typed field declarations into exact byte
// layouts and back.
//
// Every wire shape is a Codec. Codecs are immutable values configured when
// they are constructed; all per-message state lives in a Context that is
// threaded through every Encode and Decode call of one pass:
//
//	header := pystructs.NewStruct("Header",
//		pystructs.Field{Name: "id", Codec: pystructs.U16},
//		pystructs.Field{Name: "name", Codec: pystructs.Domain{}},
//	)
//	raw, err := pystructs.Marshal(header, pystructs.Record{
//		{Name: "id", Value: 7},
//		{Name: "name", Value: "example.com"},
//	})
//
// Decoded values use a small set of Go types: int64/uint64 (or *big.Int above
// eight bytes) for integers, []byte for byte strings and domains, []any for
// lists, netip.Addr for IP addresses, string for MAC addresses and Record for
// structs.
package pystructs

// Codec encodes and decodes one wire shape.
type Codec interface {
	// Encode returns the wire bytes of value and advances ctx.Index by their length.
	Encode(ctx *Context, value any) ([]byte, error)
	// Decode reads one value from raw at ctx.Index and advances past it.
	Decode(ctx *Context, raw []byte) (any, error)
	// Accepts reports whether value has a Go type Encode can handle.
	Accepts(value any) bool
}

// IntegerCodec is a codec usable as a length or count prefix.
type IntegerCodec interface {
	Codec
	encodeLen(ctx *Context, n int) ([]byte, error)
	decodeLen(ctx *Context, raw []byte) (int, error)
}

// Sizer is implemented by codecs whose encoding always has the same length.
// FixedSize returns -1 when the length depends on the value.
type Sizer interface {
	FixedSize() int
}

// FixedSize returns the constant encoded size of c, or -1 if it varies.
func FixedSize(c Codec) int {
	if s, ok := c.(Sizer); ok {
		return s.FixedSize()
	}
	return -1
}

// Marshal encodes value with c using a fresh Context.
func Marshal(c Codec, value any) ([]byte, error) {
	if !c.Accepts(value) {
		return nil, newError(KindTypeMismatch, value, "%v cannot encode %T", c, value)
	}
	return c.Encode(NewContext(), value)
}

// Unmarshal decodes one value from raw with c using a fresh Context.
// Bytes left over after the value are ignored.
func Unmarshal(c Codec, raw []byte) (any, error) {
	return c.Decode(NewContext(), raw)
}

// UnmarshalStrict is Unmarshal but fails with KindOverflow when raw holds
// bytes beyond the decoded value.
func UnmarshalStrict(c Codec, raw []byte) (any, error) {
	ctx := NewContext()
	v, err := c.Decode(ctx, raw)
	if err != nil {
		return nil, err
	}
	if n := ctx.Remaining(raw); n > 0 {
		return nil, newError(KindOverflow, nil, "%d trailing bytes after %v", n, c)
	}
	return v, nil
}

// DecodeAs decodes with c and asserts the result to T.
func DecodeAs[T any](c Codec, ctx *Context, raw []byte) (T, error) {
	var zero T
	v, err := c.Decode(ctx, raw)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, newError(KindTypeMismatch, v, "%v decoded %T, not %T", c, v, zero)
	}
	return t, nil
}
