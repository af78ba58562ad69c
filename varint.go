package pystructs

import "github.com/imgurbot12/pystructs/internal/common"

// Varint is a LEB128 variable-length integer codec. Signed values are
// zigzag mapped before encoding.
type Varint struct {
	Signed bool
}

var (
	VarUint = Varint{}
	VarInt  = Varint{Signed: true}
)

func (v Varint) String() string {
	if v.Signed {
		return "varint"
	}
	return "varuint"
}

func (v Varint) Accepts(value any) bool {
	_, ok := toBigInt(value)
	return ok
}

func (v Varint) Encode(ctx *Context, value any) ([]byte, error) {
	n, ok := toBigInt(value)
	if !ok {
		return nil, newError(KindTypeMismatch, value, "%s cannot encode %T", v, value)
	}
	var u uint64
	switch {
	case v.Signed && !n.IsInt64():
		return nil, newError(KindOutOfRange, value, "%s %s does not fit 64 bits", v, n)
	case v.Signed:
		u = common.ZigZag(n.Int64())
	case n.Sign() < 0:
		return nil, newError(KindOutOfRange, value, "%s %s too small", v, n)
	case !n.IsUint64():
		return nil, newError(KindOutOfRange, value, "%s %s too large", v, n)
	default:
		u = n.Uint64()
	}
	return ctx.TrackBytes(common.WriteVarUint(nil, u)), nil
}

func (v Varint) Decode(ctx *Context, raw []byte) (any, error) {
	rest := raw[min(ctx.Index, len(raw)):]
	u, n := common.ReadVarUint(rest)
	switch {
	case n == 0:
		return nil, newError(KindShortBuffer, nil, "%s truncated after %d bytes", v, len(rest))
	case n < 0:
		return nil, newError(KindOverflow, nil, "%s exceeds 64 bits", v)
	}
	ctx.Slice(raw, n)
	if v.Signed {
		return common.UnZigZag(u), nil
	}
	return u, nil
}

func (v Varint) encodeLen(ctx *Context, n int) ([]byte, error) {
	return v.Encode(ctx, n)
}

func (v Varint) decodeLen(ctx *Context, raw []byte) (int, error) {
	d, err := v.Decode(ctx, raw)
	if err != nil {
		return 0, err
	}
	return toLength(v, d)
}
