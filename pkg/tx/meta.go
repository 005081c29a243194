package tx

import "github.com/solwallet/solwallet/pkg/types"

// AccountMeta references an account from an instruction or from the
// transaction account table.
type AccountMeta struct {
	PublicKey  types.PublicKey `json:"pubkey"`
	IsSigner   bool            `json:"is_signer"`
	IsWritable bool            `json:"is_writable"`
}

// NewAccountMeta returns a meta with explicit flags.
func NewAccountMeta(pub types.PublicKey, signer, writable bool) AccountMeta {
	return AccountMeta{PublicKey: pub, IsSigner: signer, IsWritable: writable}
}

// Writable references an account the instruction may modify.
func Writable(pub types.PublicKey) AccountMeta {
	return AccountMeta{PublicKey: pub, IsWritable: true}
}

// ReadOnly references an account the instruction only reads.
func ReadOnly(pub types.PublicKey) AccountMeta {
	return AccountMeta{PublicKey: pub}
}

// SignerWritable references a signing account the instruction may modify.
func SignerWritable(pub types.PublicKey) AccountMeta {
	return AccountMeta{PublicKey: pub, IsSigner: true, IsWritable: true}
}

// SignerReadOnly references a signing account the instruction only reads.
func SignerReadOnly(pub types.PublicKey) AccountMeta {
	return AccountMeta{PublicKey: pub, IsSigner: true}
}
