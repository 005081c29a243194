package wallet

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/solwallet/solwallet/pkg/base58"
	"github.com/solwallet/solwallet/pkg/crypto"
	"github.com/solwallet/solwallet/pkg/types"
)

// Account is a wallet account. Accounts imported from a public key alone
// are watch-only and cannot sign.
type Account struct {
	Name     string
	GenIndex int // -1 when not derived from the wallet mnemonic.
	Balance  Balance

	publicKey types.PublicKey
	key       *crypto.PrivateKey
}

// AccountFromSeed builds a signing account from a 32-byte ed25519 seed.
func AccountFromSeed(seed []byte) (*Account, error) {
	key, err := crypto.NewKeypairFromSeed(seed)
	if err != nil {
		return nil, err
	}
	return &Account{GenIndex: -1, publicKey: key.PublicKey(), key: key}, nil
}

// AccountFromPrivateKeyBytes loads a 64-byte seed ‖ public key secret. The
// public half is checked against the seed.
func AccountFromPrivateKeyBytes(b []byte) (*Account, error) {
	key, err := crypto.PrivateKeyFromBytes(b)
	if err != nil {
		return nil, err
	}
	return &Account{GenIndex: -1, publicKey: key.PublicKey(), key: key}, nil
}

// AccountFromPrivateKeyBase58 loads a Base58 64-byte secret.
func AccountFromPrivateKeyBase58(s string) (*Account, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("decode private key: %w", err)
	}
	defer zero(b)
	return AccountFromPrivateKeyBytes(b)
}

// AccountFromPublicKeyBytes builds a watch-only account.
func AccountFromPublicKeyBytes(b []byte) (*Account, error) {
	pub, err := types.PublicKeyFromBytes(b)
	if err != nil {
		return nil, err
	}
	return &Account{GenIndex: -1, publicKey: pub}, nil
}

// AccountFromPublicKeyBase58 builds a watch-only account from an address.
func AccountFromPublicKeyBase58(s string) (*Account, error) {
	pub, err := types.PublicKeyFromBase58(s)
	if err != nil {
		return nil, err
	}
	return &Account{GenIndex: -1, publicKey: pub}, nil
}

// PublicKey returns the account address.
func (a *Account) PublicKey() types.PublicKey {
	return a.publicKey
}

// PublicKeyBase58 returns the Base58 address.
func (a *Account) PublicKeyBase58() string {
	return a.publicKey.String()
}

// PrivateKeyBytes returns a copy of the 64-byte secret, or nil for
// watch-only accounts.
func (a *Account) PrivateKeyBytes() []byte {
	if a.key == nil {
		return nil
	}
	return a.key.Serialize()
}

// PrivateKeyBase58 returns the Base58 secret, or "" for watch-only accounts.
func (a *Account) PrivateKeyBase58() string {
	b := a.PrivateKeyBytes()
	if b == nil {
		return ""
	}
	defer zero(b)
	return base58.Encode(b)
}

// CanSign reports whether the account holds a private key.
func (a *Account) CanSign() bool {
	return a.key != nil
}

// Sign signs message with the account key.
func (a *Account) Sign(message []byte) ([]byte, error) {
	if a.key == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoPrivateKey, a.publicKey)
	}
	return a.key.Sign(message)
}

// Verify checks signature against message and this account's public key.
func (a *Account) Verify(message, signature []byte) bool {
	return Verify(message, signature, a.publicKey[:])
}

// Zero drops the private key, leaving a watch-only account.
func (a *Account) Zero() {
	if a.key != nil {
		a.key.Zero()
		a.key = nil
	}
}

// Verify checks an ed25519 signature over message against publicKey.
func Verify(message, signature, publicKey []byte) bool {
	return crypto.VerifySignature(publicKey, message, signature)
}

// ParsePrivateKey accepts a Base58 secret or a JSON byte array such as the
// keypair files written by the Solana CLI.
func ParsePrivateKey(s string) (*Account, error) {
	s = strings.Join(strings.Fields(s), "")
	if strings.HasPrefix(s, "[") {
		b, err := parseByteArray(s)
		if err != nil {
			return nil, err
		}
		defer zero(b)
		return AccountFromPrivateKeyBytes(b)
	}
	return AccountFromPrivateKeyBase58(s)
}

// IsBase58PrivateKey reports whether s decodes to a 64-byte secret.
func IsBase58PrivateKey(s string) bool {
	b, err := base58.Decode(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	defer zero(b)
	return len(b) == types.PrivateKeySize
}

// IsBytePrivateKey reports whether s is a JSON array of 64 bytes.
func IsBytePrivateKey(s string) bool {
	b, err := parseByteArray(strings.Join(strings.Fields(s), ""))
	if err != nil {
		return false
	}
	zero(b)
	return true
}

func parseByteArray(s string) ([]byte, error) {
	var ints []int
	if err := json.Unmarshal([]byte(s), &ints); err != nil {
		return nil, fmt.Errorf("%w: not a byte array", ErrMalformedKey)
	}
	if len(ints) != types.PrivateKeySize {
		return nil, fmt.Errorf("%w: byte array has %d entries, want %d", ErrMalformedKey, len(ints), types.PrivateKeySize)
	}
	out := make([]byte, len(ints))
	for i, v := range ints {
		if v < 0 || v > 255 {
			zero(out)
			return nil, fmt.Errorf("%w: entry %d out of range", ErrMalformedKey, i)
		}
		out[i] = byte(v)
		ints[i] = 0
	}
	return out, nil
}

// ShortPublicKey abbreviates an address for display, e.g. "AbCdEf...WxYz".
func ShortPublicKey(pub string, head, tail int) string {
	if head < 0 || tail < 0 || head+tail >= len(pub) {
		return pub
	}
	return pub[:head] + "..." + pub[len(pub)-tail:]
}
