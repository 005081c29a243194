package tx

import (
	"errors"
	"fmt"
)

// MaxPacketSize is the largest serialized transaction the network accepts.
const MaxPacketSize = 1232

// Validation errors.
var (
	ErrTooLarge        = errors.New("transaction exceeds packet size")
	ErrNoSignatures    = errors.New("transaction requires no signatures")
	ErrBadHeader       = errors.New("header counts inconsistent with account table")
	ErrIndexOutOfRange = errors.New("instruction account index out of range")
	ErrPayerIsProgram  = errors.New("fee payer used as program id")
)

// Validate checks a decoded transaction's structure. It does not check
// signatures; see VerifySignatures.
func (d *Decoded) Validate() error {
	size := len(EncodeLength(len(d.Signatures))) + 64*len(d.Signatures) + len(d.Message)
	if size > MaxPacketSize {
		return fmt.Errorf("%w: %d bytes, max %d", ErrTooLarge, size, MaxPacketSize)
	}

	h := d.Header
	nkeys := len(d.AccountKeys)
	if h.RequiredSignatures == 0 {
		return ErrNoSignatures
	}
	if int(h.RequiredSignatures) > nkeys {
		return fmt.Errorf("%w: %d signers, %d accounts", ErrBadHeader, h.RequiredSignatures, nkeys)
	}
	if h.ReadonlySigned >= h.RequiredSignatures {
		return fmt.Errorf("%w: %d read-only signers of %d", ErrBadHeader, h.ReadonlySigned, h.RequiredSignatures)
	}
	if int(h.ReadonlyUnsigned) > nkeys-int(h.RequiredSignatures) {
		return fmt.Errorf("%w: %d read-only unsigned of %d unsigned",
			ErrBadHeader, h.ReadonlyUnsigned, nkeys-int(h.RequiredSignatures))
	}

	for i, ix := range d.Instructions {
		if int(ix.ProgramIDIndex) >= nkeys {
			return fmt.Errorf("instruction %d program: %w", i, ErrIndexOutOfRange)
		}
		if ix.ProgramIDIndex == 0 {
			return fmt.Errorf("instruction %d: %w", i, ErrPayerIsProgram)
		}
		for j, a := range ix.Accounts {
			if int(a) >= nkeys {
				return fmt.Errorf("instruction %d account %d: %w", i, j, ErrIndexOutOfRange)
			}
		}
	}
	return nil
}

// IsWritable reports whether the account at index i is writable under the
// message header rules.
func (d *Decoded) IsWritable(i int) bool {
	h := d.Header
	if i < 0 || i >= len(d.AccountKeys) {
		return false
	}
	if i < int(h.RequiredSignatures) {
		return i < int(h.RequiredSignatures)-int(h.ReadonlySigned)
	}
	return i < len(d.AccountKeys)-int(h.ReadonlyUnsigned)
}

// IsSigner reports whether the account at index i must sign.
func (d *Decoded) IsSigner(i int) bool {
	return i >= 0 && i < int(d.Header.RequiredSignatures) && i < len(d.AccountKeys)
}
