package program

import (
	"encoding/binary"

	"github.com/solwallet/solwallet/pkg/tx"
	"github.com/solwallet/solwallet/pkg/types"
)

// Token program instruction indices (u8).
const (
	tokenInitializeAccount uint8 = 1
	tokenTransfer          uint8 = 3
)

// InitializeTokenAccount initializes a freshly created account as a token
// account holding mint for owner.
func InitializeTokenAccount(account, mint, owner types.PublicKey) tx.Instruction {
	return tx.Instruction{
		ProgramID: TokenProgramID,
		Accounts: []tx.AccountMeta{
			tx.Writable(account),
			tx.ReadOnly(mint),
			tx.ReadOnly(owner),
			tx.ReadOnly(SysvarRentID),
		},
		Data: []byte{tokenInitializeAccount},
	}
}

// TransferTokens moves amount base units between two token accounts of the
// same mint. owner must sign.
func TransferTokens(source, destination, owner types.PublicKey, amount uint64) tx.Instruction {
	data := make([]byte, 9) // 1 index + 8 amount
	data[0] = tokenTransfer
	binary.LittleEndian.PutUint64(data[1:9], amount)

	return tx.Instruction{
		ProgramID: TokenProgramID,
		Accounts: []tx.AccountMeta{
			tx.Writable(source),
			tx.Writable(destination),
			tx.SignerReadOnly(owner),
		},
		Data: data,
	}
}
