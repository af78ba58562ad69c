package pystructs

import (
	"fmt"
	"math/big"
	"net"
	"net/netip"
	"reflect"
	"strings"
	"sync"
)

// TagName is the struct tag read by Bind.
//
//	type Header struct {
//		ID    uint16 `pystructs:"u16"`
//		Name  string `pystructs:"domain"`
//		Flags uint8  `pystructs:"u8,optional"`
//		Skip  int    `pystructs:"-"`
//	}
//
// Untagged fields get a codec inferred from their Go type. The expression
// "struct" refers to the field's own struct type, or its element type for
// slices and arrays, which makes recursive layouts possible.
const TagName = "pystructs"

type binder struct {
	mu    sync.RWMutex
	plans map[reflect.Type]*Struct
}

var bindings = &binder{plans: make(map[reflect.Type]*Struct)}

// Bind returns the Struct describing the Go struct type of v. v may be a
// struct, a pointer to one, or a reflect.Type. Results are cached per type
// and safe to share between goroutines.
func Bind(v any) (*Struct, error) {
	t, ok := v.(reflect.Type)
	if !ok {
		t = reflect.TypeOf(v)
	}
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, newError(KindTypeMismatch, v, "Bind needs a struct type, got %v", t)
	}
	return bindings.getPlan(t)
}

// MustBind is Bind but panics on error. It is meant for package level
// variables.
func MustBind(v any) *Struct {
	s, err := Bind(v)
	if err != nil {
		panic(err)
	}
	return s
}

func (b *binder) getPlan(t reflect.Type) (*Struct, error) {
	b.mu.RLock()
	if s, ok := b.plans[t]; ok {
		b.mu.RUnlock()
		return s, nil
	}
	b.mu.RUnlock()

	b.mu.Lock()
	defer b.mu.Unlock()

	if s, ok := b.plans[t]; ok {
		return s, nil
	}
	bs := &session{
		types: make(map[reflect.Type]*Struct),
		open:  make(map[*Struct]bool),
	}
	s, err := b.build(t, bs)
	if err != nil {
		return nil, err
	}
	for bt, st := range bs.types {
		b.plans[bt] = st
	}
	return s, nil
}

// session holds the structs created by one getPlan call. open marks the
// ones whose fields are still being built.
type session struct {
	types map[reflect.Type]*Struct
	open  map[*Struct]bool
}

// build requires b.mu to be held for writing.
func (b *binder) build(t reflect.Type, bs *session) (*Struct, error) {
	if s, ok := b.plans[t]; ok {
		return s, nil
	}
	if s, ok := bs.types[t]; ok {
		return s, nil
	}
	name := t.Name()
	if name == "" {
		name = t.String()
	}
	s := &Struct{Name: name, goType: t}
	bs.types[t] = s
	bs.open[s] = true
	defer delete(bs.open, s)

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		tag := sf.Tag.Get(TagName)
		if tag == "-" {
			continue
		}
		expr, optional := strings.CutSuffix(tag, ",optional")
		var (
			codec  Codec
			err    error
			nested error
		)
		if strings.TrimSpace(expr) == "" {
			codec, err = b.infer(sf.Type, bs)
		} else {
			codec, err = ParseCodec(expr, func(id string) (Codec, bool) {
				if !strings.EqualFold(id, "struct") {
					return nil, false
				}
				st := structElem(sf.Type)
				if st == nil {
					return nil, false
				}
				c, err := b.build(st, bs)
				nested = err
				return c, err == nil
			})
			if nested != nil {
				err = nested
			}
		}
		if err == nil {
			err = bs.checkInline(codec)
		}
		if err != nil {
			return nil, withPath(err, name+"."+sf.Name)
		}
		s.Fields = append(s.Fields, Field{
			Name:     sf.Name,
			Codec:    codec,
			Optional: optional,
			index:    sf.Index,
		})
	}
	return s, nil
}

var (
	bigIntType  = reflect.TypeOf(big.Int{})
	hwAddrType  = reflect.TypeOf(net.HardwareAddr{})
	netipAddrTy = reflect.TypeOf(netip.Addr{})
)

// infer picks a codec for an untagged field from its Go type.
func (b *binder) infer(t reflect.Type, bs *session) (Codec, error) {
	if t == hwAddrType {
		return MacAddr{}, nil
	}
	switch t.Kind() {
	case reflect.Int8:
		return I8, nil
	case reflect.Int16:
		return I16, nil
	case reflect.Int32:
		return I32, nil
	case reflect.Int, reflect.Int64:
		return I64, nil
	case reflect.Uint8:
		return U8, nil
	case reflect.Uint16:
		return U16, nil
	case reflect.Uint32:
		return U32, nil
	case reflect.Uint, reflect.Uint64:
		return U64, nil
	case reflect.String:
		return SizedBytes{Hint: VarUint}, nil
	case reflect.Pointer:
		return b.infer(t.Elem(), bs)
	case reflect.Struct:
		if t == bigIntType || t == netipAddrTy {
			break
		}
		return b.build(t, bs)
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return SizedBytes{Hint: VarUint}, nil
		}
		elem, err := b.infer(t.Elem(), bs)
		if err != nil {
			return nil, err
		}
		return SizedList{Hint: VarUint, Elem: elem}, nil
	case reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return StaticBytes{Size: t.Len()}, nil
		}
		elem, err := b.infer(t.Elem(), bs)
		if err != nil {
			return nil, err
		}
		return StaticList{Size: t.Len(), Elem: elem}, nil
	}
	return nil, newError(KindTypeMismatch, nil, "cannot infer codec for %s (add a %s tag)", t, TagName)
}

// checkInline rejects a codec that always contains a struct still being
// built, since that layout never ends. Sized and greedy lists may be empty
// and pass.
func (bs *session) checkInline(c Codec) error {
	switch c := c.(type) {
	case *Struct:
		if bs.open[c] {
			return newError(KindOverflow, nil, "%s contains itself", c.Name)
		}
	case StaticList:
		if c.Size > 0 {
			return bs.checkInline(c.Elem)
		}
	case Wrap:
		return bs.checkInline(c.Codec)
	}
	return nil
}

// structElem returns the struct type behind t, looking through pointers,
// slices and arrays.
func structElem(t reflect.Type) reflect.Type {
	for {
		switch t.Kind() {
		case reflect.Pointer, reflect.Slice, reflect.Array:
			t = t.Elem()
		case reflect.Struct:
			return t
		default:
			return nil
		}
	}
}

// Pack encodes the Go struct v with its bound layout.
func Pack(v any) ([]byte, error) {
	s, err := Bind(v)
	if err != nil {
		return nil, err
	}
	return Marshal(s, v)
}

// Unpack decodes raw into the struct pointed to by out.
func Unpack(raw []byte, out any) error {
	s, err := Bind(out)
	if err != nil {
		return err
	}
	return DecodeInto(NewContext(), s, raw, out)
}

// DecodeInto decodes one value with c and stores it in the value out
// points to, converting decoded shapes (Record, []any, int64, ...) into the
// destination's Go types.
func DecodeInto(ctx *Context, c Codec, raw []byte, out any) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return newError(KindTypeMismatch, out, "DecodeInto needs a non-nil pointer, got %T", out)
	}
	v, err := c.Decode(ctx, raw)
	if err != nil {
		return err
	}
	return assign(rv.Elem(), v)
}

func assign(dst reflect.Value, v any) error {
	if v == nil {
		return nil
	}
	dt := dst.Type()
	switch dt {
	case bigIntType:
		n, ok := toBigInt(v)
		if !ok {
			return mismatch(dt, v)
		}
		dst.Set(reflect.ValueOf(new(big.Int).Set(n)).Elem())
		return nil
	case reflect.PointerTo(bigIntType):
		n, ok := toBigInt(v)
		if !ok {
			return mismatch(dt, v)
		}
		dst.Set(reflect.ValueOf(new(big.Int).Set(n)))
		return nil
	case netipAddrTy:
		a, ok := v.(netip.Addr)
		if !ok {
			return mismatch(dt, v)
		}
		dst.Set(reflect.ValueOf(a))
		return nil
	case hwAddrType:
		s, ok := v.(string)
		if !ok {
			return mismatch(dt, v)
		}
		hw, err := net.ParseMAC(s)
		if err != nil {
			return newError(KindInvalidValue, v, "%v", err)
		}
		dst.SetBytes(hw)
		return nil
	}

	switch dst.Kind() {
	case reflect.Interface:
		rv := reflect.ValueOf(v)
		if !rv.Type().AssignableTo(dt) {
			return mismatch(dt, v)
		}
		dst.Set(rv)
		return nil
	case reflect.Pointer:
		if dst.IsNil() {
			dst.Set(reflect.New(dt.Elem()))
		}
		return assign(dst.Elem(), v)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, ok := toBigInt(v)
		if !ok {
			return mismatch(dt, v)
		}
		if !n.IsInt64() || dst.OverflowInt(n.Int64()) {
			return newError(KindOverflow, v, "%s does not fit %s", n, dt)
		}
		dst.SetInt(n.Int64())
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, ok := toBigInt(v)
		if !ok {
			return mismatch(dt, v)
		}
		if n.Sign() < 0 || !n.IsUint64() || dst.OverflowUint(n.Uint64()) {
			return newError(KindOverflow, v, "%s does not fit %s", n, dt)
		}
		dst.SetUint(n.Uint64())
		return nil
	case reflect.String:
		switch s := v.(type) {
		case string:
			dst.SetString(s)
		case []byte:
			dst.SetString(string(s))
		case netip.Addr:
			dst.SetString(s.String())
		default:
			return mismatch(dt, v)
		}
		return nil
	case reflect.Struct:
		rec, ok := v.(Record)
		if !ok {
			return mismatch(dt, v)
		}
		for _, fv := range rec {
			f := dst.FieldByNameFunc(func(n string) bool { return strings.EqualFold(n, fv.Name) })
			if !f.IsValid() || !f.CanSet() {
				continue
			}
			if err := assign(f, fv.Value); err != nil {
				return withPath(err, dt.Name()+"."+fv.Name)
			}
		}
		return nil
	case reflect.Slice:
		if dt.Elem().Kind() == reflect.Uint8 {
			b, ok := v.([]byte)
			if !ok {
				if a, isAddr := v.(netip.Addr); isAddr {
					b, ok = a.AsSlice(), true
				}
			}
			if !ok {
				return mismatch(dt, v)
			}
			dst.SetBytes(append([]byte(nil), b...))
			return nil
		}
		items, ok := v.([]any)
		if !ok {
			return mismatch(dt, v)
		}
		if len(items) == 0 {
			dst.Set(reflect.Zero(dt))
			return nil
		}
		out := reflect.MakeSlice(dt, len(items), len(items))
		for i, item := range items {
			if err := assign(out.Index(i), item); err != nil {
				return withPath(err, fmt.Sprintf("[%d]", i))
			}
		}
		dst.Set(out)
		return nil
	case reflect.Array:
		if b, ok := v.([]byte); ok && dt.Elem().Kind() == reflect.Uint8 {
			reflect.Copy(dst, reflect.ValueOf(b))
			return nil
		}
		items, ok := v.([]any)
		if !ok || len(items) > dst.Len() {
			return mismatch(dt, v)
		}
		for i, item := range items {
			if err := assign(dst.Index(i), item); err != nil {
				return withPath(err, fmt.Sprintf("[%d]", i))
			}
		}
		return nil
	}
	return mismatch(dt, v)
}

func mismatch(t reflect.Type, v any) *Error {
	return newError(KindTypeMismatch, v, "cannot store %T in %s", v, t)
}
