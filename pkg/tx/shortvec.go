package tx

import (
	"errors"
	"math"
)

// ErrShortVec is returned when a compact-u16 value cannot be decoded.
var ErrShortVec = errors.New("invalid compact-u16 length")

// EncodeLength returns n in compact-u16 form: seven bits per byte, low
// group first, high bit set while more bytes follow.
func EncodeLength(n int) []byte {
	return appendLength(nil, n)
}

func appendLength(buf []byte, n int) []byte {
	v := uint32(n)
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v == 0 {
			return append(buf, b)
		}
		buf = append(buf, b|0x80)
	}
}

// DecodeLength reads a compact-u16 value from the start of b. It returns
// the value and the number of bytes consumed. Encodings longer than three
// bytes, non-minimal encodings and values above 65535 are rejected.
func DecodeLength(b []byte) (int, int, error) {
	var v uint32
	for i := 0; i < 3; i++ {
		if i >= len(b) {
			return 0, 0, ErrShortVec
		}
		c := b[i]
		if i > 0 && c == 0 {
			return 0, 0, ErrShortVec
		}
		v |= uint32(c&0x7f) << (7 * uint(i))
		if c&0x80 == 0 {
			if v > math.MaxUint16 {
				return 0, 0, ErrShortVec
			}
			return int(v), i + 1, nil
		}
	}
	return 0, 0, ErrShortVec
}
