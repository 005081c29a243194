package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"io"

	"github.com/solwallet/solwallet/pkg/types"
)

// SeedSize is the length of an ed25519 private seed.
const SeedSize = ed25519.SeedSize

// Signer signs messages with an ed25519 private key.
type Signer interface {
	// Sign produces a 64-byte ed25519 signature over message.
	Sign(message []byte) ([]byte, error)
	// PublicKey returns the 32-byte public key.
	PublicKey() types.PublicKey
}

// Verifier verifies ed25519 signatures.
type Verifier interface {
	// Verify checks a signature against a message and public key.
	Verify(publicKey, message, signature []byte) bool
}

// PrivateKey wraps an ed25519 private key (seed ‖ public key).
type PrivateKey struct {
	key ed25519.PrivateKey
}

// NewKeypairFromSeed expands a 32-byte seed into a keypair.
func NewKeypairFromSeed(seed []byte) (*PrivateKey, error) {
	if len(seed) != SeedSize {
		return nil, fmt.Errorf("%w: seed must be %d bytes, got %d", types.ErrMalformedKey, SeedSize, len(seed))
	}
	return &PrivateKey{key: ed25519.NewKeyFromSeed(seed)}, nil
}

// GenerateKey creates a keypair from r, or from crypto/rand when r is nil.
func GenerateKey(r io.Reader) (*PrivateKey, error) {
	if r == nil {
		r = rand.Reader
	}
	seed := make([]byte, SeedSize)
	defer func() {
		for i := range seed {
			seed[i] = 0
		}
	}()
	if _, err := io.ReadFull(r, seed); err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	return NewKeypairFromSeed(seed)
}

// PrivateKeyFromBytes loads a 64-byte seed ‖ public key secret. The embedded
// public key must match the one derived from the seed.
func PrivateKeyFromBytes(b []byte) (*PrivateKey, error) {
	if len(b) != types.PrivateKeySize {
		return nil, fmt.Errorf("%w: private key must be %d bytes, got %d", types.ErrMalformedKey, types.PrivateKeySize, len(b))
	}
	pk, err := NewKeypairFromSeed(b[:SeedSize])
	if err != nil {
		return nil, err
	}
	if !ed25519.PublicKey(b[SeedSize:]).Equal(pk.key.Public()) {
		pk.Zero()
		return nil, ErrKeyMismatch
	}
	return pk, nil
}

// Sign produces a 64-byte signature over message.
func (pk *PrivateKey) Sign(message []byte) ([]byte, error) {
	if len(pk.key) != ed25519.PrivateKeySize {
		return nil, ErrKeyCleared
	}
	return ed25519.Sign(pk.key, message), nil
}

// PublicKey returns the 32-byte public key.
func (pk *PrivateKey) PublicKey() types.PublicKey {
	var p types.PublicKey
	if len(pk.key) == ed25519.PrivateKeySize {
		copy(p[:], pk.key[SeedSize:])
	}
	return p
}

// Seed returns a copy of the 32-byte private seed, or nil once zeroed.
func (pk *PrivateKey) Seed() []byte {
	if len(pk.key) != ed25519.PrivateKeySize {
		return nil
	}
	return append([]byte(nil), pk.key[:SeedSize]...)
}

// Serialize returns a copy of the 64-byte seed ‖ public key secret.
func (pk *PrivateKey) Serialize() []byte {
	return append([]byte(nil), pk.key...)
}

// Zero securely zeroes the private key memory.
func (pk *PrivateKey) Zero() {
	for i := range pk.key {
		pk.key[i] = 0
	}
	pk.key = nil
}

// VerifySignature checks an ed25519 signature. Returns false on any
// malformed input.
func VerifySignature(publicKey, message, signature []byte) bool {
	if len(publicKey) != ed25519.PublicKeySize || len(signature) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(publicKey, message, signature)
}

// Ed25519Verifier implements the Verifier interface.
type Ed25519Verifier struct{}

// Verify checks an ed25519 signature against a message and public key.
func (v Ed25519Verifier) Verify(publicKey, message, signature []byte) bool {
	return VerifySignature(publicKey, message, signature)
}
