package wallet

import (
	"fmt"

	"github.com/solwallet/solwallet/pkg/crypto"
)

const (
	// SeedSize is the length of a derived seed in bytes (512 bits).
	SeedSize = 64

	seedIterations = 2048
	seedSaltPrefix = "mnemonic"
)

// DeriveSeed stretches a sentence into a 64-byte seed with an empty
// passphrase. The sentence is not validated.
func DeriveSeed(sentence string) []byte {
	return deriveSeed(sentence, "")
}

// SeedFromMnemonic validates an English mnemonic and derives its seed using
// PBKDF2-HMAC-SHA512 with salt "mnemonic" + passphrase.
func SeedFromMnemonic(sentence, passphrase string) ([]byte, error) {
	if err := Validate(sentence, EnglishWordlist()); err != nil {
		return nil, fmt.Errorf("invalid mnemonic: %w", err)
	}
	return deriveSeed(sentence, passphrase), nil
}

func deriveSeed(sentence, passphrase string) []byte {
	return crypto.PBKDF2SHA512([]byte(sentence), []byte(seedSaltPrefix+passphrase), seedIterations, SeedSize)
}
