package pystructs

import (
	"encoding/hex"
	"strconv"
	"strings"
)

// Resolver looks up codecs for names ParseCodec does not know, such as
// other Struct declarations.
type Resolver func(name string) (Codec, bool)

var integerWidths = map[int]bool{8: true, 16: true, 24: true, 32: true, 48: true, 64: true, 128: true}

// ParseCodec builds a codec from a type expression like "u16le",
// "bytes[u8]", "list[4,ipv4]" or "list[varuint,Record]". Keywords are case
// insensitive and whitespace is ignored. Unknown identifiers are passed to
// resolve, which may be nil.
func ParseCodec(expr string, resolve Resolver) (Codec, error) {
	s := strings.Join(strings.Fields(expr), "")
	if s == "" {
		return nil, newError(KindInvalidValue, expr, "empty type expression")
	}
	return parseExpr(s, resolve)
}

func parseExpr(s string, resolve Resolver) (Codec, error) {
	head, args, err := splitCall(s)
	if err != nil {
		return nil, err
	}
	arity := func(n ...int) error {
		for _, want := range n {
			if len(args) == want {
				return nil
			}
		}
		return newError(KindInvalidValue, s, "%s takes %v arguments, got %d", head, n, len(args))
	}
	switch key := strings.ToLower(head); key {
	case "varuint", "varint", "ipv4", "ipv6", "mac", "domain":
		if err := arity(0); err != nil {
			return nil, err
		}
		return keyword(key), nil
	case "bytes":
		if err := arity(0, 1); err != nil {
			return nil, err
		}
		if len(args) == 0 {
			return GreedyBytes{}, nil
		}
		if n, ok := parseCount(args[0]); ok {
			return StaticBytes{Size: n}, nil
		}
		hint, err := parseHint(args[0], resolve)
		if err != nil {
			return nil, err
		}
		return SizedBytes{Hint: hint}, nil
	case "list":
		if err := arity(1, 2); err != nil {
			return nil, err
		}
		elem, err := parseExpr(args[len(args)-1], resolve)
		if err != nil {
			return nil, err
		}
		if len(args) == 1 {
			return GreedyList{Elem: elem}, nil
		}
		if n, ok := parseCount(args[0]); ok {
			return StaticList{Size: n, Elem: elem}, nil
		}
		hint, err := parseHint(args[0], resolve)
		if err != nil {
			return nil, err
		}
		return SizedList{Hint: hint, Elem: elem}, nil
	case "const":
		if err := arity(1); err != nil {
			return nil, err
		}
		value, err := hex.DecodeString(strings.TrimPrefix(strings.ToLower(args[0]), "0x"))
		if err != nil || len(value) == 0 {
			return nil, newError(KindInvalidValue, s, "const needs a hex value, got %q", args[0])
		}
		return Const{Value: value}, nil
	default:
		if len(args) == 0 {
			if i, ok := parseInteger(key); ok {
				return i, nil
			}
			if resolve != nil {
				if c, ok := resolve(head); ok {
					return c, nil
				}
			}
		}
		return nil, newError(KindInvalidValue, s, "unknown type %q", head)
	}
}

func keyword(key string) Codec {
	switch key {
	case "varuint":
		return VarUint
	case "varint":
		return VarInt
	case "ipv4":
		return IPv4{}
	case "ipv6":
		return IPv6{}
	case "mac":
		return MacAddr{}
	}
	return Domain{}
}

// parseInteger reads names like u8, i24 and u16le.
func parseInteger(key string) (Integer, bool) {
	if len(key) < 2 || (key[0] != 'u' && key[0] != 'i') {
		return Integer{}, false
	}
	little := strings.HasSuffix(key, "le")
	bits, err := strconv.Atoi(strings.TrimSuffix(key[1:], "le"))
	if err != nil || !integerWidths[bits] {
		return Integer{}, false
	}
	i := Unsigned(bits / 8)
	if key[0] == 'i' {
		i = Signed(bits / 8)
	}
	if little {
		i = i.Little()
	}
	return i, true
}

func parseHint(s string, resolve Resolver) (IntegerCodec, error) {
	c, err := parseExpr(s, resolve)
	if err != nil {
		return nil, err
	}
	hint, ok := c.(IntegerCodec)
	if !ok {
		return nil, newError(KindInvalidValue, s, "%v cannot be a length prefix", c)
	}
	return hint, nil
}

func parseCount(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	return n, err == nil && n >= 0
}

// splitCall splits "head[a,b[c,d]]" into head and its top level arguments.
func splitCall(s string) (string, []string, error) {
	open := strings.IndexByte(s, '[')
	if open < 0 {
		if strings.ContainsAny(s, "],") {
			return "", nil, newError(KindInvalidValue, s, "unbalanced expression %q", s)
		}
		return s, nil, nil
	}
	if open == 0 || s[len(s)-1] != ']' {
		return "", nil, newError(KindInvalidValue, s, "malformed expression %q", s)
	}
	var (
		args  []string
		depth int
		start = open + 1
	)
	for i := open + 1; i < len(s)-1; i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth < 0 {
				return "", nil, newError(KindInvalidValue, s, "unbalanced expression %q", s)
			}
		case ',':
			if depth == 0 {
				args = append(args, s[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return "", nil, newError(KindInvalidValue, s, "unbalanced expression %q", s)
	}
	args = append(args, s[start:len(s)-1])
	for _, a := range args {
		if a == "" {
			return "", nil, newError(KindInvalidValue, s, "empty argument in %q", s)
		}
	}
	return s[:open], args, nil
}
