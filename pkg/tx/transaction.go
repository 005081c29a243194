// Package tx assembles, signs and decodes legacy-format transactions.
package tx

import (
	"errors"
	"fmt"
	"sort"

	"github.com/solwallet/solwallet/pkg/crypto"
	"github.com/solwallet/solwallet/pkg/types"
)

// Build errors.
var (
	ErrEmptySignerList = errors.New("transaction needs at least one signer")
	ErrAccountNotFound = errors.New("account not in transaction account list")
	ErrTooManyAccounts = errors.New("too many accounts for u8 index")
	ErrSignature       = errors.New("signer returned malformed signature")
)

// MaxAccounts is the largest account table addressable by a u8 index.
const MaxAccounts = 256

// Header holds the message header counts.
type Header struct {
	RequiredSignatures uint8
	ReadonlySigned     uint8
	ReadonlyUnsigned   uint8
}

// Transaction accumulates instructions and their accounts. It is not safe
// for concurrent use.
type Transaction struct {
	Blockhash    types.Hash
	accounts     []AccountMeta
	instructions []Instruction
}

// New starts a transaction against a recent blockhash.
func New(blockhash types.Hash) *Transaction {
	return &Transaction{Blockhash: blockhash}
}

// NewFromBase58 starts a transaction from a Base58 blockhash.
func NewFromBase58(blockhash string) (*Transaction, error) {
	h, err := types.HashFromBase58(blockhash)
	if err != nil {
		return nil, err
	}
	return New(h), nil
}

// AddInstruction appends ix and merges its accounts, followed by its
// program id as a read-only non-signer. Accounts are unique by key and a
// writable reference upgrades an existing read-only entry.
func (t *Transaction) AddInstruction(ix Instruction) *Transaction {
	for _, m := range ix.Accounts {
		t.mergeAccount(m)
	}
	t.mergeAccount(ReadOnly(ix.ProgramID))
	t.instructions = append(t.instructions, ix)
	return t
}

// AddInstructions appends each instruction in order.
func (t *Transaction) AddInstructions(ixs ...Instruction) *Transaction {
	for _, ix := range ixs {
		t.AddInstruction(ix)
	}
	return t
}

func (t *Transaction) mergeAccount(m AccountMeta) {
	for i := range t.accounts {
		if t.accounts[i].PublicKey == m.PublicKey {
			if m.IsWritable {
				t.accounts[i].IsWritable = true
			}
			if m.IsSigner {
				t.accounts[i].IsSigner = true
			}
			return
		}
	}
	t.accounts = append(t.accounts, m)
}

// Instructions returns a copy of the instruction list.
func (t *Transaction) Instructions() []Instruction {
	return append([]Instruction(nil), t.instructions...)
}

// AccountList returns a copy of the merged account list in insertion order.
func (t *Transaction) AccountList() []AccountMeta {
	return append([]AccountMeta(nil), t.accounts...)
}

// compile produces the final account table for signers: signers first in
// the given order (signer, writable), then the remaining accounts with
// writable entries ahead of read-only ones.
func (t *Transaction) compile(signers []types.PublicKey) ([]AccountMeta, Header, error) {
	if len(signers) == 0 {
		return nil, Header{}, ErrEmptySignerList
	}

	isSigner := make(map[types.PublicKey]bool, len(signers))
	final := make([]AccountMeta, 0, len(t.accounts)+len(signers))
	for _, s := range signers {
		if isSigner[s] {
			continue
		}
		isSigner[s] = true
		final = append(final, SignerWritable(s))
	}

	rest := make([]AccountMeta, 0, len(t.accounts))
	for _, m := range t.accounts {
		if isSigner[m.PublicKey] {
			continue
		}
		// Only keys in the signer list sign.
		m.IsSigner = false
		rest = append(rest, m)
	}
	sort.SliceStable(rest, func(i, j int) bool {
		return rest[i].IsWritable && !rest[j].IsWritable
	})
	final = append(final, rest...)

	if len(final) > MaxAccounts {
		return nil, Header{}, fmt.Errorf("%w: %d accounts", ErrTooManyAccounts, len(final))
	}

	var h Header
	for _, m := range final {
		switch {
		case m.IsSigner:
			h.RequiredSignatures++
			if !m.IsWritable {
				h.ReadonlySigned++
			}
		case !m.IsWritable:
			h.ReadonlyUnsigned++
		}
	}
	return final, h, nil
}

// Header returns the header counts the message would carry for signers.
func (t *Transaction) Header(signers ...types.PublicKey) (Header, error) {
	_, h, err := t.compile(signers)
	return h, err
}

// Message serializes the unsigned message for signers.
func (t *Transaction) Message(signers ...types.PublicKey) ([]byte, error) {
	accounts, h, err := t.compile(signers)
	if err != nil {
		return nil, err
	}

	index := make(map[types.PublicKey]uint8, len(accounts))
	for i, m := range accounts {
		index[m.PublicKey] = uint8(i)
	}

	buf := make([]byte, 0, 3+3+32*len(accounts)+32+64*len(t.instructions))
	buf = append(buf, h.RequiredSignatures, h.ReadonlySigned, h.ReadonlyUnsigned)
	buf = appendLength(buf, len(accounts))
	for _, m := range accounts {
		buf = append(buf, m.PublicKey[:]...)
	}
	buf = append(buf, t.Blockhash[:]...)

	buf = appendLength(buf, len(t.instructions))
	for n, ix := range t.instructions {
		pid, ok := index[ix.ProgramID]
		if !ok {
			return nil, fmt.Errorf("%w: program %s (instruction %d)", ErrAccountNotFound, ix.ProgramID, n)
		}
		buf = append(buf, pid)
		buf = appendLength(buf, len(ix.Accounts))
		for _, m := range ix.Accounts {
			idx, ok := index[m.PublicKey]
			if !ok {
				return nil, fmt.Errorf("%w: %s (instruction %d)", ErrAccountNotFound, m.PublicKey, n)
			}
			buf = append(buf, idx)
		}
		buf = appendLength(buf, len(ix.Data))
		buf = append(buf, ix.Data...)
	}
	return buf, nil
}

// Build signs the message with every signer and returns the wire bytes:
// compact signature count, 64-byte signatures in signer order, message.
// The first signer pays the fee. Build leaves the transaction unchanged,
// so repeated calls with the same signers give identical bytes.
func (t *Transaction) Build(signers ...crypto.Signer) ([]byte, error) {
	if len(signers) == 0 {
		return nil, ErrEmptySignerList
	}

	seen := make(map[types.PublicKey]bool, len(signers))
	unique := make([]crypto.Signer, 0, len(signers))
	keys := make([]types.PublicKey, 0, len(signers))
	for _, s := range signers {
		pk := s.PublicKey()
		if seen[pk] {
			continue
		}
		seen[pk] = true
		unique = append(unique, s)
		keys = append(keys, pk)
	}

	msg, err := t.Message(keys...)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, 3+types.SignatureSize*len(unique)+len(msg))
	out = appendLength(out, len(unique))
	for i, s := range unique {
		sig, err := s.Sign(msg)
		if err != nil {
			return nil, fmt.Errorf("sign with %s: %w", keys[i], err)
		}
		if len(sig) != types.SignatureSize {
			return nil, fmt.Errorf("%w: %d bytes from %s", ErrSignature, len(sig), keys[i])
		}
		out = append(out, sig...)
	}
	return append(out, msg...), nil
}

func dedupKeys(keys []types.PublicKey) []types.PublicKey {
	seen := make(map[types.PublicKey]bool, len(keys))
	out := make([]types.PublicKey, 0, len(keys))
	for _, k := range keys {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}
