package pystructs

import (
	"fmt"
	"reflect"
)

// SizedList is a list prefixed with its element count.
type SizedList struct {
	Hint IntegerCodec
	Elem Codec
}

func (l SizedList) String() string { return fmt.Sprintf("list[%v,%v]", l.Hint, l.Elem) }

func (l SizedList) Accepts(value any) bool { return isList(value) }

func (l SizedList) Encode(ctx *Context, value any) ([]byte, error) {
	items, ok := listValue(value)
	if !ok {
		return nil, newError(KindTypeMismatch, value, "%s cannot encode %T", l, value)
	}
	data, err := l.Hint.encodeLen(ctx, items.Len())
	if err != nil {
		return nil, err
	}
	return encodeItems(ctx, l.Elem, items, data)
}

func (l SizedList) Decode(ctx *Context, raw []byte) (any, error) {
	n, err := l.Hint.decodeLen(ctx, raw)
	if err != nil {
		return nil, err
	}
	return decodeItems(ctx, l.Elem, raw, n)
}

// StaticList is a list with a fixed number of elements and no prefix.
type StaticList struct {
	Size int
	Elem Codec
}

func (l StaticList) String() string { return fmt.Sprintf("list[%d,%v]", l.Size, l.Elem) }

func (l StaticList) FixedSize() int {
	if l.Size == 0 {
		return 0
	}
	if n := FixedSize(l.Elem); n >= 0 {
		return n * l.Size
	}
	return -1
}

func (l StaticList) Accepts(value any) bool { return isList(value) }

func (l StaticList) Encode(ctx *Context, value any) ([]byte, error) {
	items, ok := listValue(value)
	if !ok {
		return nil, newError(KindTypeMismatch, value, "%s cannot encode %T", l, value)
	}
	if items.Len() != l.Size {
		return nil, newError(KindOverflow, value, "arraylen=%d != %d", items.Len(), l.Size)
	}
	return encodeItems(ctx, l.Elem, items, nil)
}

func (l StaticList) Decode(ctx *Context, raw []byte) (any, error) {
	return decodeItems(ctx, l.Elem, raw, l.Size)
}

// GreedyList decodes elements until the buffer is exhausted. It is only
// valid as the last field of a message.
type GreedyList struct {
	Elem Codec
}

func (l GreedyList) String() string { return fmt.Sprintf("list[%v]", l.Elem) }

func (l GreedyList) Accepts(value any) bool { return isList(value) }

func (l GreedyList) Encode(ctx *Context, value any) ([]byte, error) {
	items, ok := listValue(value)
	if !ok {
		return nil, newError(KindTypeMismatch, value, "%s cannot encode %T", l, value)
	}
	return encodeItems(ctx, l.Elem, items, nil)
}

func (l GreedyList) Decode(ctx *Context, raw []byte) (any, error) {
	content := []any{}
	for ctx.Index < len(raw) {
		start := ctx.Index
		item, err := l.Elem.Decode(ctx, raw)
		if err != nil {
			return nil, withPath(err, fmt.Sprintf("[%d]", len(content)))
		}
		if ctx.Index == start {
			return nil, newError(KindInvalidValue, nil, "%v consumed no bytes", l.Elem)
		}
		content = append(content, item)
	}
	return content, nil
}

func encodeItems(ctx *Context, elem Codec, items reflect.Value, data []byte) ([]byte, error) {
	for i := range items.Len() {
		item := items.Index(i).Interface()
		if !elem.Accepts(item) {
			err := newError(KindTypeMismatch, item, "%v cannot encode %T", elem, item)
			return nil, withPath(err, fmt.Sprintf("[%d]", i))
		}
		b, err := elem.Encode(ctx, item)
		if err != nil {
			return nil, withPath(err, fmt.Sprintf("[%d]", i))
		}
		data = append(data, b...)
	}
	return data, nil
}

func decodeItems(ctx *Context, elem Codec, raw []byte, n int) ([]any, error) {
	// a corrupt count must not drive a huge allocation
	content := make([]any, 0, min(n, ctx.Remaining(raw)))
	for i := range n {
		item, err := elem.Decode(ctx, raw)
		if err != nil {
			return nil, withPath(err, fmt.Sprintf("[%d]", i))
		}
		content = append(content, item)
	}
	return content, nil
}

func isList(value any) bool {
	_, ok := listValue(value)
	return ok
}

func listValue(value any) (reflect.Value, bool) {
	if value == nil {
		return reflect.Value{}, false
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return rv, true
	}
	return reflect.Value{}, false
}
