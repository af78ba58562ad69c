package pystructs

import (
	"bytes"
	"fmt"
	"math"
	"math/big"
	"reflect"

	"github.com/imgurbot12/pystructs/internal/common"
)

// Endian selects the byte order of an Integer.
type Endian uint8

const (
	BigEndian Endian = iota
	LittleEndian
)

// Integer is a fixed-width two's complement integer codec.
type Integer struct {
	Size   int
	Signed bool
	Order  Endian
}

var (
	I8   = Signed(1)
	I16  = Signed(2)
	I24  = Signed(3)
	I32  = Signed(4)
	I48  = Signed(6)
	I64  = Signed(8)
	I128 = Signed(16)

	U8   = Unsigned(1)
	U16  = Unsigned(2)
	U24  = Unsigned(3)
	U32  = Unsigned(4)
	U48  = Unsigned(6)
	U64  = Unsigned(8)
	U128 = Unsigned(16)
)

// Unsigned returns a big-endian unsigned Integer of size bytes.
func Unsigned(size int) Integer {
	if size <= 0 {
		panic(fmt.Sprintf("pystructs: invalid integer size %d", size))
	}
	return Integer{Size: size}
}

// Signed returns a big-endian signed Integer of size bytes.
func Signed(size int) Integer {
	i := Unsigned(size)
	i.Signed = true
	return i
}

// Little returns a copy of i using little-endian byte order.
func (i Integer) Little() Integer {
	i.Order = LittleEndian
	return i
}

func (i Integer) String() string {
	s := fmt.Sprintf("u%d", 8*i.Size)
	if i.Signed {
		s = fmt.Sprintf("i%d", 8*i.Size)
	}
	if i.Order == LittleEndian {
		s += "le"
	}
	return s
}

// Max returns the largest encodable value.
func (i Integer) Max() *big.Int {
	bits := uint(8 * i.Size)
	if i.Signed {
		bits--
	}
	m := new(big.Int).Lsh(big.NewInt(1), bits)
	return m.Sub(m, big.NewInt(1))
}

// Min returns the smallest encodable value.
func (i Integer) Min() *big.Int {
	if !i.Signed {
		return new(big.Int)
	}
	m := new(big.Int).Lsh(big.NewInt(1), uint(8*i.Size-1))
	return m.Neg(m)
}

func (i Integer) FixedSize() int { return i.Size }

func (i Integer) Accepts(value any) bool {
	_, ok := toBigInt(value)
	return ok
}

func (i Integer) Encode(ctx *Context, value any) ([]byte, error) {
	n, ok := toBigInt(value)
	if !ok {
		return nil, newError(KindTypeMismatch, value, "%s cannot encode %T", i, value)
	}
	if n.Cmp(i.Min()) < 0 {
		return nil, newError(KindOutOfRange, value, "%s %s too small", i, n)
	}
	if n.Cmp(i.Max()) > 0 {
		return nil, newError(KindOutOfRange, value, "%s %s too large", i, n)
	}
	buf := make([]byte, i.Size)
	switch {
	case i.Size <= 8 && n.Sign() < 0:
		common.PutUintBE(buf, uint64(n.Int64()))
	case i.Size <= 8:
		common.PutUintBE(buf, n.Uint64())
	case n.Sign() < 0:
		new(big.Int).Add(n, modulus(i.Size)).FillBytes(buf)
	default:
		n.FillBytes(buf)
	}
	if i.Order == LittleEndian {
		common.Reverse(buf)
	}
	return ctx.TrackBytes(buf), nil
}

func (i Integer) Decode(ctx *Context, raw []byte) (any, error) {
	data := ctx.Slice(raw, i.Size)
	if len(data) != i.Size {
		return nil, shortBuffer(i.String(), i.Size, len(data))
	}
	if i.Order == LittleEndian {
		data = common.Reverse(bytes.Clone(data))
	}
	if i.Size <= 8 {
		u := common.UintBE(data)
		if i.Signed {
			return common.SignExtend(u, i.Size), nil
		}
		return u, nil
	}
	n := new(big.Int).SetBytes(data)
	if i.Signed && data[0]&0x80 != 0 {
		n.Sub(n, modulus(i.Size))
	}
	return n, nil
}

func (i Integer) encodeLen(ctx *Context, n int) ([]byte, error) {
	return i.Encode(ctx, n)
}

func (i Integer) decodeLen(ctx *Context, raw []byte) (int, error) {
	v, err := i.Decode(ctx, raw)
	if err != nil {
		return 0, err
	}
	return toLength(i, v)
}

func modulus(size int) *big.Int {
	return new(big.Int).Lsh(big.NewInt(1), uint(8*size))
}

// toBigInt converts any Go integer kind, including named types, to a *big.Int.
func toBigInt(value any) (*big.Int, bool) {
	switch v := value.(type) {
	case nil:
		return nil, false
	case *big.Int:
		return v, v != nil
	case big.Int:
		return &v, true
	case int:
		return big.NewInt(int64(v)), true
	case int64:
		return big.NewInt(v), true
	case uint64:
		return new(big.Int).SetUint64(v), true
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return big.NewInt(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return new(big.Int).SetUint64(rv.Uint()), true
	}
	return nil, false
}

// toLength converts a decoded length or count prefix into an int.
func toLength(c Codec, v any) (int, error) {
	n, ok := toBigInt(v)
	if !ok {
		return 0, newError(KindTypeMismatch, v, "%v length prefix decoded %T", c, v)
	}
	if n.Sign() < 0 {
		return 0, newError(KindOutOfRange, v, "%v negative length %s", c, n)
	}
	if !n.IsInt64() || n.Int64() > math.MaxInt {
		return 0, newError(KindOverflow, v, "%v length %s exceeds int", c, n)
	}
	return int(n.Int64()), nil
}
