// Package txutil assembles the common wallet transactions: SOL transfers
// and SPL token transfers.
package txutil

import (
	"errors"
	"fmt"
	"io"

	"github.com/solwallet/solwallet/pkg/crypto"
	"github.com/solwallet/solwallet/pkg/program"
	"github.com/solwallet/solwallet/pkg/tx"
	"github.com/solwallet/solwallet/pkg/types"
)

// ErrNoSigner is returned when a recipe is missing its signing account.
var ErrNoSigner = errors.New("no signing account")

// TransferSOL returns a signed transaction moving lamports from the
// signer's account to to. The signer pays the fee.
func TransferSOL(from crypto.Signer, to types.PublicKey, lamports uint64, blockhash types.Hash) ([]byte, error) {
	if from == nil {
		return nil, ErrNoSigner
	}
	t := tx.New(blockhash)
	t.AddInstruction(program.TransferLamports(from.PublicKey(), to, lamports))
	return t.Build(from)
}

// TokenTransfer describes an SPL token transfer.
type TokenTransfer struct {
	// Source is the sender's token account.
	Source types.PublicKey
	// Owner owns Source, signs and pays fees.
	Owner crypto.Signer
	// Recipient is the wallet that will own a newly created token account.
	// Ignored when Destination is set.
	Recipient types.PublicKey
	// Destination is an existing token account for Mint. When zero a new
	// token account is created for Recipient.
	Destination types.PublicKey
	Mint        types.PublicKey
	Amount      uint64
	Blockhash   types.Hash

	// Rand seeds the new token account keypair. Defaults to crypto/rand.
	Rand io.Reader
}

// TokenTransferResult is a signed token transfer.
type TokenTransferResult struct {
	Raw         []byte
	Destination types.PublicKey
	// Created is set when the transaction creates Destination.
	Created bool
}

// TransferToken returns a signed token transfer. Without a Destination a
// fresh keypair is generated for the recipient's token account, which is
// funded to the rent-exempt minimum by Owner, initialized for Mint, and
// co-signs the transaction.
func TransferToken(p TokenTransfer) (*TokenTransferResult, error) {
	if p.Owner == nil {
		return nil, ErrNoSigner
	}
	owner := p.Owner.PublicKey()
	t := tx.New(p.Blockhash)

	if !p.Destination.IsZero() {
		t.AddInstruction(program.TransferTokens(p.Source, p.Destination, owner, p.Amount))
		raw, err := t.Build(p.Owner)
		if err != nil {
			return nil, err
		}
		return &TokenTransferResult{Raw: raw, Destination: p.Destination}, nil
	}

	account, err := crypto.GenerateKey(p.Rand)
	if err != nil {
		return nil, fmt.Errorf("token account keypair: %w", err)
	}
	defer account.Zero()
	dest := account.PublicKey()

	t.AddInstructions(
		program.CreateAccount(owner, dest, program.TokenAccountRentExempt, program.TokenAccountSize, program.TokenProgramID),
		program.InitializeTokenAccount(dest, p.Mint, p.Recipient),
		program.TransferTokens(p.Source, dest, owner, p.Amount),
	)
	raw, err := t.Build(p.Owner, account)
	if err != nil {
		return nil, err
	}
	return &TokenTransferResult{Raw: raw, Destination: dest, Created: true}, nil
}
