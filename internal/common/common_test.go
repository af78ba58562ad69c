package common

import (
	"bytes"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVarUintRoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 127, 128, 255, 300, 1 << 21, 1<<35 + 7, math.MaxUint64}
	for _, c := range cases {
		t.Run(fmt.Sprint(c), func(t *testing.T) {
			buf := WriteVarUint(nil, c)
			got, n := ReadVarUint(buf)
			require.Equal(t, len(buf), n)
			require.Equal(t, c, got)
		})
	}
}

func TestReadVarUintTruncated(t *testing.T) {
	_, n := ReadVarUint([]byte{0x80, 0x80})
	require.Zero(t, n)
}

func TestReadVarUintOverflow(t *testing.T) {
	buf := []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x7F}
	_, n := ReadVarUint(buf)
	require.Less(t, n, 0)

	long := bytes.Repeat([]byte{0x80}, MaxVarintLen)
	_, n = ReadVarUint(long)
	require.Less(t, n, 0)
	_, n = ReadVarUint(long[:MaxVarintLen-1])
	require.Zero(t, n)
}

func TestUintBE(t *testing.T) {
	buf := make([]byte, 3)
	PutUintBE(buf, 0x010203)
	require.Equal(t, []byte{1, 2, 3}, buf)
	require.Equal(t, uint64(0x010203), UintBE(buf))
	require.Equal(t, []byte{3, 2, 1}, Reverse(buf))
}

func TestSignExtend(t *testing.T) {
	require.Equal(t, int64(-1), SignExtend(0xFFFFFF, 3))
	require.Equal(t, int64(-8388608), SignExtend(0x800000, 3))
	require.Equal(t, int64(8388607), SignExtend(0x7FFFFF, 3))
}

func TestZigZag(t *testing.T) {
	for _, v := range []int64{0, -1, 1, -64, 63, math.MinInt64, math.MaxInt64} {
		require.Equal(t, v, UnZigZag(ZigZag(v)))
	}
	require.Equal(t, uint64(1), ZigZag(-1))
	require.Equal(t, uint64(2), ZigZag(1))
}
