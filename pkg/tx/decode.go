package tx

import (
	"errors"
	"fmt"

	"github.com/solwallet/solwallet/pkg/crypto"
	"github.com/solwallet/solwallet/pkg/types"
)

// Decode errors.
var (
	ErrTruncated    = errors.New("transaction truncated")
	ErrTrailingData = errors.New("trailing bytes after message")
	ErrInvalidSig   = errors.New("invalid signature")
)

// Decoded is a parsed wire transaction.
type Decoded struct {
	Signatures   []types.Signature
	Header       Header
	AccountKeys  []types.PublicKey
	Blockhash    types.Hash
	Instructions []CompiledInstruction

	// Message holds the raw message bytes the signatures cover.
	Message []byte
}

type reader struct {
	b   []byte
	off int
}

func (r *reader) length(what string) (int, error) {
	n, size, err := DecodeLength(r.b[r.off:])
	if err != nil {
		return 0, fmt.Errorf("%s count at offset %d: %w", what, r.off, err)
	}
	r.off += size
	return n, nil
}

func (r *reader) take(n int, what string) ([]byte, error) {
	if n < 0 || len(r.b)-r.off < n {
		return nil, fmt.Errorf("%w: %s needs %d bytes at offset %d", ErrTruncated, what, n, r.off)
	}
	out := r.b[r.off : r.off+n]
	r.off += n
	return out, nil
}

// Decode parses raw wire bytes produced by Build (or any legacy-format
// transaction). Returned slices do not alias raw.
func Decode(raw []byte) (*Decoded, error) {
	r := &reader{b: raw}
	d := &Decoded{}

	nsig, err := r.length("signature")
	if err != nil {
		return nil, err
	}
	for i := 0; i < nsig; i++ {
		b, err := r.take(types.SignatureSize, "signature")
		if err != nil {
			return nil, err
		}
		var s types.Signature
		copy(s[:], b)
		d.Signatures = append(d.Signatures, s)
	}

	msgStart := r.off
	hdr, err := r.take(3, "header")
	if err != nil {
		return nil, err
	}
	d.Header = Header{RequiredSignatures: hdr[0], ReadonlySigned: hdr[1], ReadonlyUnsigned: hdr[2]}

	nkeys, err := r.length("account")
	if err != nil {
		return nil, err
	}
	for i := 0; i < nkeys; i++ {
		b, err := r.take(types.PublicKeySize, "account key")
		if err != nil {
			return nil, err
		}
		var pk types.PublicKey
		copy(pk[:], b)
		d.AccountKeys = append(d.AccountKeys, pk)
	}

	bh, err := r.take(32, "blockhash")
	if err != nil {
		return nil, err
	}
	copy(d.Blockhash[:], bh)

	nix, err := r.length("instruction")
	if err != nil {
		return nil, err
	}
	for i := 0; i < nix; i++ {
		pid, err := r.take(1, "program index")
		if err != nil {
			return nil, err
		}
		nacc, err := r.length("instruction account")
		if err != nil {
			return nil, err
		}
		accs, err := r.take(nacc, "instruction accounts")
		if err != nil {
			return nil, err
		}
		ndata, err := r.length("instruction data")
		if err != nil {
			return nil, err
		}
		data, err := r.take(ndata, "instruction data")
		if err != nil {
			return nil, err
		}
		d.Instructions = append(d.Instructions, CompiledInstruction{
			ProgramIDIndex: pid[0],
			Accounts:       append([]uint8{}, accs...),
			Data:           append([]byte{}, data...),
		})
	}

	if r.off != len(raw) {
		return nil, fmt.Errorf("%w: %d bytes", ErrTrailingData, len(raw)-r.off)
	}
	d.Message = append([]byte(nil), raw[msgStart:]...)
	return d, nil
}

// FeePayer returns the first account key, which pays the fee.
func (d *Decoded) FeePayer() (types.PublicKey, bool) {
	if len(d.AccountKeys) == 0 {
		return types.PublicKey{}, false
	}
	return d.AccountKeys[0], true
}

// VerifySignatures checks each signature against the signer key at the same
// position in the account table.
func (d *Decoded) VerifySignatures() error {
	if len(d.Signatures) != int(d.Header.RequiredSignatures) {
		return fmt.Errorf("%w: %d signatures, header requires %d",
			ErrInvalidSig, len(d.Signatures), d.Header.RequiredSignatures)
	}
	if len(d.Signatures) > len(d.AccountKeys) {
		return fmt.Errorf("%w: more signatures than accounts", ErrInvalidSig)
	}
	for i, sig := range d.Signatures {
		pk := d.AccountKeys[i]
		if !crypto.VerifySignature(pk[:], d.Message, sig[:]) {
			return fmt.Errorf("signature %d (%s): %w", i, pk, ErrInvalidSig)
		}
	}
	return nil
}

// VerifySignatures decodes raw and verifies every signature in it.
func VerifySignatures(raw []byte) error {
	d, err := Decode(raw)
	if err != nil {
		return err
	}
	return d.VerifySignatures()
}
