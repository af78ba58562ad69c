package pystructs

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"math/big"
	"reflect"
	"sort"
)

// Const is a fixed byte sequence such as a magic number. A Struct field
// using Const encodes the constant when the input has no value for it.
type Const struct {
	Value []byte
}

func (c Const) String() string { return "const[" + hex.EncodeToString(c.Value) + "]" }

func (c Const) FixedSize() int { return len(c.Value) }

func (c Const) Accepts(value any) bool {
	_, ok := toBytes(value)
	return ok
}

func (c Const) Encode(ctx *Context, value any) ([]byte, error) {
	content, ok := toBytes(value)
	if !ok {
		return nil, newError(KindTypeMismatch, value, "%s cannot encode %T", c, value)
	}
	if !bytes.Equal(content, c.Value) {
		return nil, newError(KindValueMismatch, value, "%s invalid value %x", c, content)
	}
	return ctx.TrackBytes(bytes.Clone(c.Value)), nil
}

func (c Const) Decode(ctx *Context, raw []byte) (any, error) {
	data := ctx.Slice(raw, len(c.Value))
	if len(data) != len(c.Value) {
		return nil, shortBuffer(c.String(), len(c.Value), len(data))
	}
	if !bytes.Equal(data, c.Value) {
		return nil, newError(KindValueMismatch, data, "%s invalid const %x", c, data)
	}
	return bytes.Clone(data), nil
}

// Wrap converts values on their way into and out of an inner codec.
// To maps a caller value to what Codec encodes; From maps a decoded value
// back. Either may be nil to pass values through unchanged.
type Wrap struct {
	Codec Codec
	Name  string
	To    func(any) (any, error)
	From  func(any) (any, error)
	// Accept overrides the default check, which runs To and asks Codec.
	Accept func(any) bool
}

func (w Wrap) String() string {
	if w.Name != "" {
		return w.Name
	}
	return fmt.Sprintf("wrap[%v]", w.Codec)
}

func (w Wrap) FixedSize() int { return FixedSize(w.Codec) }

func (w Wrap) Accepts(value any) bool {
	if w.Accept != nil {
		return w.Accept(value)
	}
	inner, err := w.to(value)
	return err == nil && w.Codec.Accepts(inner)
}

func (w Wrap) Encode(ctx *Context, value any) ([]byte, error) {
	inner, err := w.to(value)
	if err != nil {
		return nil, err
	}
	return w.Codec.Encode(ctx, inner)
}

func (w Wrap) Decode(ctx *Context, raw []byte) (any, error) {
	v, err := w.Codec.Decode(ctx, raw)
	if err != nil {
		return nil, err
	}
	if w.From == nil {
		return v, nil
	}
	out, err := w.From(v)
	if err != nil {
		return nil, asError(err, v)
	}
	return out, nil
}

func (w Wrap) to(value any) (any, error) {
	if w.To == nil {
		return value, nil
	}
	v, err := w.To(value)
	if err != nil {
		return nil, asError(err, value)
	}
	return v, nil
}

func asError(err error, value any) *Error {
	if e, ok := err.(*Error); ok {
		return e
	}
	return &Error{Kind: KindInvalidValue, Value: value, Detail: err.Error()}
}

// enumAccepts admits names and integers so that unknown names reach To
// and fail there with the member list.
func enumAccepts(v any) bool {
	switch reflect.ValueOf(v).Kind() {
	case reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	_, ok := v.(*big.Int)
	return ok
}

// Enum maps symbolic names onto integers written by inner. Encoding takes
// a name or a raw integer; decoding returns the name, or the integer when
// it has none.
func Enum(name string, inner IntegerCodec, values map[string]int64) Wrap {
	byValue := make(map[string]string, len(values))
	for k, v := range values {
		byValue[fmt.Sprint(v)] = k
	}
	names := make([]string, 0, len(values))
	for k := range values {
		names = append(names, k)
	}
	sort.Strings(names)
	return Wrap{
		Codec:  inner,
		Name:   name,
		Accept: enumAccepts,
		To: func(v any) (any, error) {
			s, ok := v.(string)
			if !ok && reflect.ValueOf(v).Kind() == reflect.String {
				s, ok = reflect.ValueOf(v).String(), true
			}
			if !ok {
				return v, nil
			}
			n, found := values[s]
			if !found {
				return nil, newError(KindInvalidValue, v, "%s has no member %q (have %v)", name, s, names)
			}
			return n, nil
		},
		From: func(v any) (any, error) {
			if k, ok := byValue[fmt.Sprint(v)]; ok {
				return k, nil
			}
			return v, nil
		},
	}
}
