package pystructs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDomainCompression(t *testing.T) {
	ctx := NewContext()
	var raw []byte
	for _, name := range []string{"example.com", "www.example.com", "mail.com", "example.com"} {
		b, err := Domain{}.Encode(ctx, name)
		require.NoError(t, err)
		raw = append(raw, b...)
		require.Equal(t, len(raw), ctx.Index)
	}
	want := []byte("\x07example\x03com\x00" +
		"\x03www\xc0\x00" +
		"\x04mail\xc0\x08" +
		"\xc0\x00")
	require.Equal(t, want, raw)
	require.Equal(t, 8, ctx.DomainToIndex["com"])
	require.Equal(t, []byte("www.example.com"), ctx.IndexToDomain[13])

	ctx = NewContext()
	var got []string
	for ctx.Index < len(raw) {
		v, err := Domain{}.Decode(ctx, raw)
		require.NoError(t, err)
		got = append(got, string(v.([]byte)))
	}
	require.Equal(t, []string{"example.com", "www.example.com", "mail.com", "example.com"}, got)
	require.Equal(t, []byte("com"), ctx.IndexToDomain[8])
	require.Equal(t, []byte("mail.com"), ctx.IndexToDomain[19])
}

func TestDomainSharedSuffix(t *testing.T) {
	fresh, err := Marshal(Domain{}, "b.example.com")
	require.NoError(t, err)

	ctx := NewContext()
	first, err := Domain{}.Encode(ctx, "a.example.com")
	require.NoError(t, err)
	second, err := Domain{}.Encode(ctx, "b.example.com")
	require.NoError(t, err)
	require.Less(t, len(second), len(fresh))
	require.Equal(t, []byte("\x01b\xc0\x02"), second)

	raw := append(first, second...)
	ctx = NewContext()
	a, err := Domain{}.Decode(ctx, raw)
	require.NoError(t, err)
	b, err := Domain{}.Decode(ctx, raw)
	require.NoError(t, err)
	require.Equal(t, "a.example.com", string(a.([]byte)))
	require.Equal(t, "b.example.com", string(b.([]byte)))
	require.Equal(t, len(raw), ctx.Index)
}

func TestDomainTrailingDot(t *testing.T) {
	a, err := Marshal(Domain{}, "example.com.")
	require.NoError(t, err)
	b, err := Marshal(Domain{}, []byte("example.com"))
	require.NoError(t, err)
	require.Equal(t, b, a)
}

func TestDomainRoot(t *testing.T) {
	raw, err := Marshal(Domain{}, "")
	require.NoError(t, err)
	require.Equal(t, []byte{0}, raw)

	v, err := Unmarshal(Domain{}, raw)
	require.NoError(t, err)
	require.Equal(t, []byte{}, v)
}

func TestDomainInvalid(t *testing.T) {
	long := string(bytesOf('a', 64))
	cases := []struct {
		name string
		in   string
		err  error
	}{
		{"empty label", "a..b", ErrInvalidValue},
		{"leading dot", ".example.com", ErrInvalidValue},
		{"long label", long + ".com", ErrOverflow},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ctx := NewContext()
			raw, err := Domain{}.Encode(ctx, c.in)
			require.Nil(t, raw)
			require.ErrorIs(t, err, c.err)
			require.Zero(t, ctx.Index)
			require.Empty(t, ctx.DomainToIndex)
		})
	}

	_, err := Marshal(Domain{}, string(bytesOf('a', 63))+".com")
	require.NoError(t, err)
}

func TestDomainDecodeErrors(t *testing.T) {
	_, err := Unmarshal(Domain{}, []byte{0xc0, 0x05})
	require.ErrorIs(t, err, ErrInvalidPointer)
	require.EqualError(t, err, "invalid pointer: no domain at offset 5")

	_, err = Unmarshal(Domain{}, []byte{0x03, 'a'})
	require.ErrorIs(t, err, ErrShortBuffer)

	_, err = Unmarshal(Domain{}, []byte{0x01, 'a'})
	require.ErrorIs(t, err, ErrShortBuffer)

	_, err = Unmarshal(Domain{}, []byte{0xc0})
	require.ErrorIs(t, err, ErrShortBuffer)
}

func TestDomainPointerLimit(t *testing.T) {
	ctx := NewContext()
	ctx.Index = 0x4000
	_, err := Domain{}.Encode(ctx, "example.com")
	require.NoError(t, err)
	require.Empty(t, ctx.DomainToIndex)
}

func FuzzDomainDecode(f *testing.F) {
	f.Add([]byte("\x07example\x03com\x00\x03www\xc0\x00"))
	f.Add([]byte{0xc0, 0x00})
	f.Fuzz(func(t *testing.T, raw []byte) {
		ctx := NewContext()
		for ctx.Index < len(raw) {
			start := ctx.Index
			if _, err := (Domain{}).Decode(ctx, raw); err != nil {
				return
			}
			require.Greater(t, ctx.Index, start)
		}
	})
}
