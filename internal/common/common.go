package common

// MaxVarintLen is the longest LEB128 encoding of a 64-bit value.
const MaxVarintLen = 10

// PutUintBE writes the low len(dst) bytes of x into dst, most significant byte first.
// dst must be at most 8 bytes long.
func PutUintBE(dst []byte, x uint64) {
	for i := len(dst) - 1; i >= 0; i-- {
		dst[i] = byte(x)
		x >>= 8
	}
}

// UintBE reads a big-endian unsigned integer of len(b) bytes (at most 8).
func UintBE(b []byte) uint64 {
	var x uint64
	for _, c := range b {
		x = x<<8 | uint64(c)
	}
	return x
}

// SignExtend interprets the low width bytes of x as a two's complement number.
func SignExtend(x uint64, width int) int64 {
	shift := uint(64 - 8*width)
	return int64(x<<shift) >> shift
}

// Reverse flips b in place and returns it.
func Reverse(b []byte) []byte {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return b
}

// WriteVarUint appends a varint to buf (allocating if needed).
func WriteVarUint(buf []byte, x uint64) []byte {
	for x >= 0x80 {
		buf = append(buf, byte(x)|0x80)
		x >>= 7
	}
	return append(buf, byte(x))
}

// ReadVarUint decodes a varint from b returning value and bytes consumed.
// n == 0 means b ended before the varint did; n < 0 means the value
// overflows 64 bits.
func ReadVarUint(b []byte) (uint64, int) {
	var x uint64
	var s uint
	for i, c := range b {
		if i == MaxVarintLen {
			return 0, -(i + 1)
		}
		if c < 0x80 {
			if i == MaxVarintLen-1 && c > 1 {
				return 0, -(i + 1)
			}
			return x | uint64(c)<<s, i + 1
		}
		if i == MaxVarintLen-1 {
			return 0, -(i + 1)
		}
		x |= uint64(c&0x7F) << s
		s += 7
	}
	return 0, 0
}

// ZigZag maps signed integers onto unsigned ones so small magnitudes stay small.
func ZigZag(x int64) uint64 {
	return uint64(x<<1) ^ uint64(x>>63)
}

// UnZigZag reverses ZigZag.
func UnZigZag(u uint64) int64 {
	return int64(u>>1) ^ -int64(u&1)
}
