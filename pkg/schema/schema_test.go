package schema

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/maxatome/go-testdeep/td"
	"github.com/stretchr/testify/require"

	"github.com/imgurbot12/pystructs"
)

func TestLoad(t *testing.T) {
	s, err := Load(filepath.Join("testdata", "dns.yaml"))
	require.NoError(t, err)
	require.Equal(t, "Message", s.Root())
	require.Equal(t, []string{"Header", "Message", "Question"}, s.Names())

	header, err := s.Struct("Header")
	require.NoError(t, err)
	require.Equal(t, 8, header.Size())

	msg, err := s.Struct("")
	require.NoError(t, err)
	require.Equal(t, "Message", msg.Name)
	require.Equal(t, -1, msg.Size())

	raw, err := pystructs.Marshal(msg, map[string]any{
		"header": map[string]any{"id": 0xbeef, "qdcount": 2},
		"questions": []any{
			map[string]any{"name": "example.com", "qtype": "A"},
			map[string]any{"name": "www.example.com", "qtype": "AAAA"},
		},
	})
	require.NoError(t, err)
	require.Equal(t, []byte{0xbe, 0xef, 0x01, 0x00, 0x00, 0x02, 0x00, 0x00}, raw[:8])
	require.Equal(t, []byte("\x03www\xc0\x08\x00\x1c\x00\x01"), raw[len(raw)-10:])

	got, err := pystructs.UnmarshalStrict(msg, raw)
	require.NoError(t, err)
	td.Cmp(t, got.(pystructs.Record).Map(), map[string]any{
		"header": map[string]any{
			"id":      uint64(0xbeef),
			"flags":   uint64(256),
			"qdcount": uint64(2),
			"ancount": uint64(0),
		},
		"questions": []any{
			map[string]any{"name": []byte("example.com"), "qtype": "A", "qclass": uint64(1)},
			map[string]any{"name": []byte("www.example.com"), "qtype": "AAAA", "qclass": uint64(1)},
		},
	})
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		msg  string
	}{
		{
			name: "forward reference",
			doc: `
structs:
  - name: A
    fields: [{name: b, type: B}]
  - name: B
    fields: [{name: x, type: u8}]
`,
			msg: `struct A: field b: invalid value: unknown type "B"`,
		},
		{
			name: "duplicate struct",
			doc: `
structs:
  - name: A
    fields: [{name: x, type: u8}]
  - name: A
    fields: [{name: x, type: u8}]
`,
			msg: "A declared twice",
		},
		{
			name: "duplicate field",
			doc: `
structs:
  - name: A
    fields: [{name: x, type: u8}, {name: x, type: u16}]
`,
			msg: "struct A: field x declared twice",
		},
		{
			name: "greedy not last",
			doc: `
structs:
  - name: A
    fields: [{name: rest, type: bytes}, {name: x, type: u8}]
`,
			msg: "struct A: greedy field rest must be last",
		},
		{
			name: "greedy nested struct not last",
			doc: `
structs:
  - name: Tail
    fields: [{name: n, type: u8}, {name: rest, type: "list[u8]"}]
  - name: A
    fields: [{name: tail, type: Tail}, {name: x, type: u8}]
`,
			msg: "struct A: greedy field tail must be last",
		},
		{
			name: "enum type",
			doc: `
enums:
  - name: E
    type: domain
    values: {X: 1}
`,
			msg: "enum E: domain is not an integer type",
		},
		{
			name: "missing root",
			doc: `
root: Nope
structs:
  - name: A
    fields: [{name: x, type: u8}]
`,
			msg: `root: unknown struct "Nope"`,
		},
		{
			name: "empty struct",
			doc: `
structs:
  - name: A
`,
			msg: "struct A has no fields",
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Parse([]byte(c.doc))
			require.EqualError(t, err, c.msg)
		})
	}
}

func TestGreedy(t *testing.T) {
	tail := pystructs.NewStruct("Tail",
		pystructs.Field{Name: "n", Codec: pystructs.U8},
		pystructs.Field{Name: "rest", Codec: pystructs.GreedyBytes{}},
	)
	cases := []struct {
		codec pystructs.Codec
		want  bool
	}{
		{pystructs.GreedyBytes{}, true},
		{pystructs.GreedyList{Elem: pystructs.U8}, true},
		{pystructs.Wrap{Codec: pystructs.GreedyBytes{}}, true},
		{tail, true},
		{pystructs.NewStruct("Outer", pystructs.Field{Name: "t", Codec: tail}), true},
		{pystructs.SizedBytes{Hint: pystructs.U8}, false},
		{pystructs.Wrap{Codec: pystructs.U8}, false},
		{pystructs.NewStruct("Empty"), false},
	}
	for _, c := range cases {
		t.Run(fmt.Sprint(c.codec), func(t *testing.T) {
			require.Equal(t, c.want, greedy(c.codec))
		})
	}
}

func TestParseUnknownKey(t *testing.T) {
	_, err := Parse([]byte("structs:\n  - name: A\n    feilds: []\n"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "parse schema")
}

func TestStructLookup(t *testing.T) {
	s, err := Parse([]byte(`
enums:
  - name: E
    type: u8
    values: {X: 1}
structs:
  - name: A
    fields: [{name: e, type: E}, {name: magic, type: "const[cafe]"}]
`))
	require.NoError(t, err)

	_, err = s.Struct("")
	require.Error(t, err)
	_, err = s.Struct("E")
	require.EqualError(t, err, "E is E, not a struct")

	a, err := s.Struct("A")
	require.NoError(t, err)
	raw, err := pystructs.Marshal(a, map[string]any{"e": "X"})
	require.NoError(t, err)
	require.Equal(t, []byte{1, 0xca, 0xfe}, raw)
}
