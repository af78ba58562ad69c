package pystructs

import (
	"bytes"
)

const (
	maxLabelLen   = 63
	maxPointer    = 0x3FFF
	pointerPrefix = 0xC0
)

// Domain is a DNS style name: length prefixed labels closed by a zero byte.
//
// Every suffix written in a message is recorded in the Context. When a name
// (or its remainder) has already been written, a two byte pointer to the
// earlier copy replaces the rest of the labels. Decoding registers the same
// suffixes, so pointers emitted by any field of one message resolve.
type Domain struct{}

func (Domain) String() string { return "domain" }

func (Domain) Accepts(value any) bool {
	_, ok := toBytes(value)
	return ok
}

func (d Domain) Encode(ctx *Context, value any) ([]byte, error) {
	name, ok := toBytes(value)
	if !ok {
		return nil, newError(KindTypeMismatch, value, "%s cannot encode %T", d, value)
	}
	name = bytes.TrimSuffix(name, []byte{'.'})
	if err := checkLabels(name); err != nil {
		err.Value = value
		return nil, err
	}
	var out []byte
	for len(name) > 0 {
		if idx, ok := ctx.DomainToIndex[string(name)]; ok {
			ptr := []byte{byte(idx>>8) | pointerPrefix, byte(idx)}
			out = append(out, ctx.TrackBytes(ptr)...)
			return out, nil
		}
		if ctx.Index <= maxPointer {
			ctx.SaveDomain(bytes.Clone(name), ctx.Index)
		}
		label, rest, _ := bytes.Cut(name, []byte{'.'})
		out = append(out, byte(len(label)))
		out = append(out, label...)
		ctx.Index += 1 + len(label)
		name = rest
	}
	out = append(out, 0)
	ctx.Index++
	return out, nil
}

func (d Domain) Decode(ctx *Context, raw []byte) (any, error) {
	var (
		labels  [][]byte
		offsets []int
	)
	for {
		start := ctx.Index
		head := ctx.Slice(raw, 1)
		if len(head) != 1 {
			return nil, shortBuffer("domain label length", 1, 0)
		}
		length := int(head[0])
		if length == 0 {
			break
		}
		if length&pointerPrefix == pointerPrefix {
			low := ctx.Slice(raw, 1)
			if len(low) != 1 {
				return nil, shortBuffer("domain pointer", 1, 0)
			}
			idx := (length&^pointerPrefix)<<8 | int(low[0])
			suffix, ok := ctx.IndexToDomain[idx]
			if !ok {
				return nil, newError(KindInvalidPointer, idx, "no domain at offset %d", idx)
			}
			labels = append(labels, suffix)
			break
		}
		label := ctx.Slice(raw, length)
		if len(label) != length {
			return nil, shortBuffer("domain label", length, len(label))
		}
		labels = append(labels, label)
		offsets = append(offsets, start)
	}
	for i, off := range offsets {
		ctx.SaveDomain(bytes.Join(labels[i:], []byte{'.'}), off)
	}
	return bytes.Join(labels, []byte{'.'}), nil
}

// checkLabels rejects names that cannot be written as length prefixed labels.
func checkLabels(name []byte) *Error {
	if len(name) == 0 {
		return nil
	}
	for i, label := range bytes.Split(name, []byte{'.'}) {
		switch {
		case len(label) == 0:
			return newError(KindInvalidValue, nil, "empty label %d in %q", i, name)
		case len(label) > maxLabelLen:
			return newError(KindOverflow, nil, "label %q longer than %d bytes", label, maxLabelLen)
		}
	}
	return nil
}
