package types

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/solwallet/solwallet/pkg/base58"
)

// Key sizes for the ed25519 account convention.
const (
	PublicKeySize  = 32
	PrivateKeySize = 64
	SignatureSize  = 64
)

// ErrMalformedKey is returned when key material has the wrong length.
var ErrMalformedKey = errors.New("malformed key")

// PublicKey is a 32-byte ed25519 public key, which doubles as an account
// address.
type PublicKey [PublicKeySize]byte

// IsZero returns true if the key is all zeros (the system program id).
func (p PublicKey) IsZero() bool {
	return p == PublicKey{}
}

// String returns the Base58 address.
func (p PublicKey) String() string {
	return base58.Encode(p[:])
}

// Bytes returns a copy of the key as a byte slice.
func (p PublicKey) Bytes() []byte {
	b := make([]byte, PublicKeySize)
	copy(b, p[:])
	return b
}

// MarshalJSON encodes the key as a Base58 string.
func (p PublicKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON decodes a Base58 string into a key.
func (p *PublicKey) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := PublicKeyFromBase58(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// PublicKeyFromBytes copies a 32-byte slice into a PublicKey.
func PublicKeyFromBytes(b []byte) (PublicKey, error) {
	if len(b) != PublicKeySize {
		return PublicKey{}, fmt.Errorf("%w: public key must be %d bytes, got %d", ErrMalformedKey, PublicKeySize, len(b))
	}
	var p PublicKey
	copy(p[:], b)
	return p, nil
}

// PublicKeyFromBase58 parses a Base58 address. Short values are left-padded
// so that keys with leading zero bytes survive a decode.
func PublicKeyFromBase58(s string) (PublicKey, error) {
	if s == "" {
		return PublicKey{}, fmt.Errorf("%w: empty public key", ErrMalformedKey)
	}
	b, err := base58.DecodeFixed(s, PublicKeySize)
	if err != nil {
		if errors.Is(err, base58.ErrLength) {
			return PublicKey{}, fmt.Errorf("%w: %v", ErrMalformedKey, err)
		}
		return PublicKey{}, err
	}
	var p PublicKey
	copy(p[:], b)
	return p, nil
}

// MustPublicKey parses a Base58 address and panics on failure.
// Intended for well-known program ids.
func MustPublicKey(s string) PublicKey {
	p, err := PublicKeyFromBase58(s)
	if err != nil {
		panic(fmt.Sprintf("invalid public key %q: %v", s, err))
	}
	return p
}

// Signature is a 64-byte ed25519 signature.
type Signature [SignatureSize]byte

// String returns the Base58 signature (the transaction id form).
func (s Signature) String() string {
	return base58.Encode(s[:])
}

// SignatureFromBase58 parses a Base58 transaction signature.
func SignatureFromBase58(str string) (Signature, error) {
	b, err := base58.Decode(str)
	if err != nil {
		return Signature{}, err
	}
	if len(b) != SignatureSize {
		return Signature{}, fmt.Errorf("signature must be %d bytes, got %d", SignatureSize, len(b))
	}
	var s Signature
	copy(s[:], b)
	return s, nil
}
