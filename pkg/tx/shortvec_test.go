package tx

import (
	"bytes"
	"errors"
	"testing"
)

func TestEncodeLength(t *testing.T) {
	tests := []struct {
		n    int
		want []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{0x7f, []byte{0x7f}},
		{0x80, []byte{0x80, 0x01}},
		{0xff, []byte{0xff, 0x01}},
		{0x100, []byte{0x80, 0x02}},
		{0x3fff, []byte{0xff, 0x7f}},
		{0x4000, []byte{0x80, 0x80, 0x01}},
		{0xffff, []byte{0xff, 0xff, 0x03}},
	}
	for _, tt := range tests {
		got := EncodeLength(tt.n)
		if !bytes.Equal(got, tt.want) {
			t.Errorf("EncodeLength(%d) = %x, want %x", tt.n, got, tt.want)
		}
		n, size, err := DecodeLength(append(got, 0xaa))
		if err != nil {
			t.Fatalf("DecodeLength(%x) error: %v", got, err)
		}
		if n != tt.n || size != len(tt.want) {
			t.Errorf("DecodeLength(%x) = (%d, %d), want (%d, %d)", got, n, size, tt.n, len(tt.want))
		}
	}
}

func TestDecodeLength_Invalid(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
	}{
		{"empty", nil},
		{"unterminated", []byte{0x80}},
		{"non-minimal two bytes", []byte{0x80, 0x00}},
		{"non-minimal three bytes", []byte{0xff, 0x80, 0x00}},
		{"overflow", []byte{0x80, 0x80, 0x04}},
		{"four bytes", []byte{0x80, 0x80, 0x80, 0x01}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := DecodeLength(tt.in); !errors.Is(err, ErrShortVec) {
				t.Errorf("DecodeLength(%x) error = %v, want ErrShortVec", tt.in, err)
			}
		})
	}
}
