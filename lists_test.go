package pystructs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSizedList(t *testing.T) {
	codec := SizedList{Hint: U8, Elem: U16}
	raw, err := Marshal(codec, []int{1, 2})
	require.NoError(t, err)
	require.Equal(t, []byte{2, 0, 1, 0, 2}, raw)

	v, err := Unmarshal(codec, raw)
	require.NoError(t, err)
	require.Equal(t, []any{uint64(1), uint64(2)}, v)

	raw, err = Marshal(codec, [3]uint16{7, 8, 9})
	require.NoError(t, err)
	require.Equal(t, []byte{3, 0, 7, 0, 8, 0, 9}, raw)

	v, err = Unmarshal(codec, []byte{0})
	require.NoError(t, err)
	require.Equal(t, []any{}, v)
}

func TestSizedListCounts(t *testing.T) {
	codec := SizedList{Hint: U16, Elem: U8}
	cases := []struct {
		name  string
		items []any
		want  []byte
	}{
		{"empty", []any{}, []byte{0, 0}},
		{"one", []any{uint64(9)}, []byte{0, 1, 9}},
		{"many", []any{uint64(1), uint64(2), uint64(3), uint64(4), uint64(5)}, []byte{0, 5, 1, 2, 3, 4, 5}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			raw, err := Marshal(codec, c.items)
			require.NoError(t, err)
			require.Equal(t, c.want, raw)

			v, err := UnmarshalStrict(codec, raw)
			require.NoError(t, err)
			require.Equal(t, c.items, v)
		})
	}
}

func TestSizedListCorruptCount(t *testing.T) {
	_, err := Unmarshal(SizedList{Hint: U32, Elem: U8}, []byte{0xff, 0xff, 0xff, 0xff, 1})
	require.ErrorIs(t, err, ErrShortBuffer)
	require.EqualError(t, err, "[1]: short buffer: u8 needs 1 bytes, 0 remain")
}

func TestStaticList(t *testing.T) {
	codec := StaticList{Size: 2, Elem: U8}
	raw, err := Marshal(codec, []any{1, 2})
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2}, raw)
	require.Equal(t, 2, FixedSize(codec))

	_, err = Marshal(codec, []int{1, 2, 3})
	require.ErrorIs(t, err, ErrOverflow)

	v, err := Unmarshal(codec, []byte{5, 6, 7})
	require.NoError(t, err)
	require.Equal(t, []any{uint64(5), uint64(6)}, v)

	require.Equal(t, -1, FixedSize(StaticList{Size: 2, Elem: Domain{}}))
}

func TestGreedyList(t *testing.T) {
	codec := GreedyList{Elem: U16}
	v, err := Unmarshal(codec, []byte{0, 1, 0, 2})
	require.NoError(t, err)
	require.Equal(t, []any{uint64(1), uint64(2)}, v)

	_, err = Unmarshal(codec, []byte{0, 1, 0})
	require.ErrorIs(t, err, ErrShortBuffer)

	_, err = Unmarshal(GreedyList{Elem: StaticList{Size: 0, Elem: U8}}, []byte{1})
	require.ErrorIs(t, err, ErrInvalidValue)
}

func TestListElementPath(t *testing.T) {
	_, err := Marshal(SizedList{Hint: U8, Elem: U8}, []int{1, 300})
	require.ErrorIs(t, err, ErrOutOfRange)

	var e *Error
	require.True(t, errors.As(err, &e))
	require.Equal(t, []string{"[1]"}, e.Path)
	require.Equal(t, 300, e.Value)

	_, err = Marshal(GreedyList{Elem: U8}, []any{1, "x"})
	require.ErrorIs(t, err, ErrTypeMismatch)
	require.Contains(t, err.Error(), "[1]: type mismatch")
}

func TestListTypeMismatch(t *testing.T) {
	require.False(t, GreedyList{Elem: U8}.Accepts(5))
	require.False(t, GreedyList{Elem: U8}.Accepts(nil))
	_, err := GreedyList{Elem: U8}.Encode(NewContext(), 5)
	require.ErrorIs(t, err, ErrTypeMismatch)
}
