package wallet

import (
	"errors"

	"github.com/solwallet/solwallet/pkg/crypto"
	"github.com/solwallet/solwallet/pkg/types"
)

// Mnemonic errors.
var (
	ErrInvalidEntropyLength = errors.New("entropy must be 16, 20, 24, 28 or 32 bytes")
	ErrInvalidWordCount     = errors.New("mnemonic must have 12, 15, 18, 21 or 24 words")
	ErrInvalidWord          = errors.New("word not in wordlist")
	ErrChecksumMismatch     = errors.New("mnemonic checksum mismatch")
	ErrInvalidWordlist      = errors.New("wordlist must hold 2048 words")
)

// Key errors.
var (
	ErrMalformedKey = types.ErrMalformedKey
	ErrKeyMismatch  = crypto.ErrKeyMismatch
	ErrNoPrivateKey = errors.New("account has no private key")
)

// Session errors.
var (
	ErrWalletLocked    = errors.New("wallet is locked")
	ErrWrongPassword   = errors.New("wrong password")
	ErrNoMnemonic      = errors.New("wallet has no mnemonic")
	ErrMnemonicExists  = errors.New("wallet already has a mnemonic")
	ErrNoPassword      = errors.New("wallet password not set")
	ErrSlotNotFound    = errors.New("save slot not found")
	ErrAccountExists   = errors.New("account already in wallet")
	ErrAccountNotFound = errors.New("account not in wallet")
)
