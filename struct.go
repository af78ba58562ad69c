package pystructs

import (
	"reflect"
	"strings"

	"go.uber.org/zap"
)

// Field declares one member of a Struct. Fields are encoded in the order
// they appear in Struct.Fields.
type Field struct {
	Name  string
	Codec Codec
	// Default is encoded when the input has no value for the field.
	Default any
	// Optional fields are read from the wire but left out of the decoded Record.
	Optional bool

	// index locates the field in a bound Go struct type.
	index []int
}

// FieldValue is one decoded field.
type FieldValue struct {
	Name  string
	Value any
}

// Record holds decoded fields in wire order.
type Record []FieldValue

// Get returns the value of the named field.
func (r Record) Get(name string) (any, bool) {
	for _, fv := range r {
		if fv.Name == name {
			return fv.Value, true
		}
	}
	return nil, false
}

// Map copies the record into a map, nested records included.
func (r Record) Map() map[string]any {
	m := make(map[string]any, len(r))
	for _, fv := range r {
		m[fv.Name] = plain(fv.Value)
	}
	return m
}

func plain(v any) any {
	switch v := v.(type) {
	case Record:
		return v.Map()
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = plain(item)
		}
		return out
	}
	return v
}

// Struct is a sequence of fields encoded back to back with no header.
type Struct struct {
	Name   string
	Fields []Field

	goType reflect.Type
}

// NewStruct returns a Struct with the given fields in wire order.
func NewStruct(name string, fields ...Field) *Struct {
	return &Struct{Name: name, Fields: fields}
}

func (s *Struct) String() string { return s.Name }

// Size returns the encoded size when every field has a fixed width, else -1.
func (s *Struct) Size() int {
	total := 0
	for _, f := range s.Fields {
		n := FixedSize(f.Codec)
		if n < 0 {
			return -1
		}
		total += n
	}
	return total
}

func (s *Struct) FixedSize() int { return s.Size() }

func (s *Struct) Accepts(value any) bool {
	_, ok := s.accessor(value)
	return ok
}

func (s *Struct) Encode(ctx *Context, value any) ([]byte, error) {
	get, ok := s.accessor(value)
	if !ok {
		return nil, newError(KindTypeMismatch, value, "%s cannot encode %T", s.Name, value)
	}
	log := Logger()
	var out []byte
	for i := range s.Fields {
		f := &s.Fields[i]
		v, found := get(i, f)
		if !found {
			v = f.Default
			if c, isConst := f.Codec.(Const); v == nil && isConst {
				v = c.Value
			}
			if v == nil {
				err := newError(KindMissingField, nil, "no value for %s", f.Name)
				return nil, withPath(err, s.path(f))
			}
		}
		if !f.Codec.Accepts(v) {
			err := newError(KindTypeMismatch, v, "%v cannot encode %T", f.Codec, v)
			return nil, withPath(err, s.path(f))
		}
		if ce := log.Check(zap.DebugLevel, "encode field"); ce != nil {
			ce.Write(zap.String("struct", s.Name), zap.String("field", f.Name), zap.Int("offset", ctx.Index))
		}
		b, err := f.Codec.Encode(ctx, v)
		if err != nil {
			return nil, withPath(err, s.path(f))
		}
		out = append(out, b...)
	}
	return out, nil
}

func (s *Struct) Decode(ctx *Context, raw []byte) (any, error) {
	log := Logger()
	rec := make(Record, 0, len(s.Fields))
	for i := range s.Fields {
		f := &s.Fields[i]
		if ce := log.Check(zap.DebugLevel, "decode field"); ce != nil {
			ce.Write(zap.String("struct", s.Name), zap.String("field", f.Name), zap.Int("offset", ctx.Index))
		}
		v, err := f.Codec.Decode(ctx, raw)
		if err != nil {
			return nil, withPath(err, s.path(f))
		}
		if f.Optional {
			continue
		}
		rec = append(rec, FieldValue{Name: f.Name, Value: v})
	}
	return rec, nil
}

func (s *Struct) path(f *Field) string { return s.Name + "." + f.Name }

type fieldGetter func(i int, f *Field) (any, bool)

// accessor returns a lookup over the supported input shapes: Record,
// map[string]any, positional []any, or a Go struct (or pointer to one).
func (s *Struct) accessor(value any) (fieldGetter, bool) {
	switch v := value.(type) {
	case nil:
		return nil, false
	case Record:
		return func(_ int, f *Field) (any, bool) {
			x, ok := v.Get(f.Name)
			return x, ok && x != nil
		}, true
	case map[string]any:
		return func(_ int, f *Field) (any, bool) {
			x, ok := v[f.Name]
			return x, ok && x != nil
		}, true
	case []any:
		return func(i int, _ *Field) (any, bool) {
			if i >= len(v) || v[i] == nil {
				return nil, false
			}
			return v[i], true
		}, true
	}
	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, false
	}
	bound := s.goType != nil && rv.Type() == s.goType
	return func(_ int, f *Field) (any, bool) {
		var fv reflect.Value
		if bound && f.index != nil {
			fv = rv.FieldByIndex(f.index)
		} else {
			fv = rv.FieldByNameFunc(func(n string) bool { return strings.EqualFold(n, f.Name) })
			if !fv.IsValid() || !fv.CanInterface() {
				return nil, false
			}
		}
		switch fv.Kind() {
		case reflect.Pointer, reflect.Interface:
			if fv.IsNil() {
				return nil, false
			}
		}
		return fv.Interface(), true
	}, true
}
