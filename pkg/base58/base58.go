// Package base58 encodes and decodes byte buffers with the Bitcoin Base58
// alphabet used for Solana addresses, keys and blockhashes.
package base58

import (
	"errors"
	"fmt"
	"strings"

	mrbase58 "github.com/mr-tron/base58"
)

// Alphabet is the Bitcoin Base58 alphabet (no 0, O, I or l).
const Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

// ErrInvalidCharacter is returned when a string contains a rune outside Alphabet.
var ErrInvalidCharacter = errors.New("invalid base58 character")

// ErrLength is returned by DecodeFixed when the decoded value does not fit.
var ErrLength = errors.New("invalid decoded length")

// Encode converts data to its Base58 form. Each leading zero byte becomes a
// leading '1'.
func Encode(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	return mrbase58.Encode(data)
}

// Decode converts a Base58 string back to bytes. Each leading '1' becomes a
// leading zero byte.
func Decode(s string) ([]byte, error) {
	if s == "" {
		return []byte{}, nil
	}
	for i, r := range s {
		if !strings.ContainsRune(Alphabet, r) {
			return nil, fmt.Errorf("%w %q at position %d", ErrInvalidCharacter, r, i)
		}
	}
	out, err := mrbase58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCharacter, err)
	}
	return out, nil
}

// DecodeFixed decodes s and returns exactly size bytes. Shorter values are
// left-padded with zero bytes, which keeps the big-endian value intact.
func DecodeFixed(s string, size int) ([]byte, error) {
	raw, err := Decode(s)
	if err != nil {
		return nil, err
	}
	if len(raw) > size {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrLength, len(raw), size)
	}
	if len(raw) == size {
		return raw, nil
	}
	out := make([]byte, size)
	copy(out[size-len(raw):], raw)
	return out, nil
}

// IsValid reports whether s decodes cleanly.
func IsValid(s string) bool {
	_, err := Decode(s)
	return err == nil
}
