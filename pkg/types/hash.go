// Package types defines the fixed-size value types shared by the wallet
// engine: public keys, blockhashes and signatures.
package types

import (
	"encoding/json"
	"fmt"

	"github.com/solwallet/solwallet/pkg/base58"
)

// HashSize is the length of a blockhash in bytes.
const HashSize = 32

// Hash represents a 256-bit blockhash.
type Hash [HashSize]byte

// IsZero returns true if the hash is all zeros.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// String returns the Base58-encoded hash.
func (h Hash) String() string {
	return base58.Encode(h[:])
}

// Bytes returns a copy of the hash as a byte slice.
func (h Hash) Bytes() []byte {
	b := make([]byte, HashSize)
	copy(b, h[:])
	return b
}

// MarshalJSON encodes the hash as a Base58 string.
func (h Hash) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.String())
}

// UnmarshalJSON decodes a Base58 string into a hash.
func (h *Hash) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*h = Hash{}
		return nil
	}
	parsed, err := HashFromBase58(s)
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// HashFromBase58 parses a Base58 blockhash. Values shorter than 32 bytes
// are left-padded with zeros.
func HashFromBase58(s string) (Hash, error) {
	b, err := base58.DecodeFixed(s, HashSize)
	if err != nil {
		return Hash{}, fmt.Errorf("invalid blockhash: %w", err)
	}
	var h Hash
	copy(h[:], b)
	return h, nil
}

// HashFromBytes copies a 32-byte slice into a Hash.
func HashFromBytes(b []byte) (Hash, error) {
	if len(b) != HashSize {
		return Hash{}, fmt.Errorf("hash must be %d bytes, got %d", HashSize, len(b))
	}
	var h Hash
	copy(h[:], b)
	return h, nil
}
