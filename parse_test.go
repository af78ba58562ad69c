package pystructs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseCodec(t *testing.T) {
	cases := []struct {
		expr string
		want Codec
	}{
		{"u8", U8},
		{"U16LE", U16.Little()},
		{"i24", I24},
		{"u128", U128},
		{"varuint", VarUint},
		{"varint", VarInt},
		{"bytes", GreedyBytes{}},
		{"bytes[u8]", SizedBytes{Hint: U8}},
		{"bytes[ 4 ]", StaticBytes{Size: 4}},
		{"bytes[varuint]", SizedBytes{Hint: VarUint}},
		{"list[ipv4]", GreedyList{Elem: IPv4{}}},
		{"list[u8, ipv6]", SizedList{Hint: U8, Elem: IPv6{}}},
		{"list[2,list[varuint,u16le]]", StaticList{Size: 2, Elem: SizedList{Hint: VarUint, Elem: U16.Little()}}},
		{"list[u16,bytes[u8]]", SizedList{Hint: U16, Elem: SizedBytes{Hint: U8}}},
		{"mac", MacAddr{}},
		{"Domain", Domain{}},
		{"const[0xCAFE]", Const{Value: []byte{0xca, 0xfe}}},
	}
	for _, c := range cases {
		t.Run(c.expr, func(t *testing.T) {
			got, err := ParseCodec(c.expr, nil)
			require.NoError(t, err)
			require.Equal(t, c.want, got)
		})
	}
}

func TestParseCodecResolver(t *testing.T) {
	resolve := func(name string) (Codec, bool) {
		if name == "Header" {
			return testHeader, true
		}
		return nil, false
	}
	got, err := ParseCodec("list[u8,Header]", resolve)
	require.NoError(t, err)
	require.Equal(t, SizedList{Hint: U8, Elem: testHeader}, got)

	_, err = ParseCodec("list[u8,Footer]", resolve)
	require.ErrorIs(t, err, ErrInvalidValue)
}

func TestParseCodecErrors(t *testing.T) {
	for _, expr := range []string{
		"",
		"u12",
		"u8le8",
		"bytes[ipv4]",
		"bytes[u8,u8]",
		"list[u8",
		"list[]",
		"list[1,2,3]",
		"list[u8,]",
		"u8]",
		"[u8]",
		"ipv4[1]",
		"const[zz]",
		"Header",
	} {
		t.Run(expr, func(t *testing.T) {
			_, err := ParseCodec(expr, nil)
			require.ErrorIs(t, err, ErrInvalidValue)
		})
	}
}

func TestParseCodecString(t *testing.T) {
	for _, expr := range []string{"u16le", "bytes[varuint]", "list[4,ipv4]", "list[u8,bytes[u16]]", "const[cafe]"} {
		c, err := ParseCodec(expr, nil)
		require.NoError(t, err)
		require.Equal(t, expr, c.(interface{ String() string }).String())
	}
}
