package program

import (
	"encoding/binary"

	"github.com/solwallet/solwallet/pkg/tx"
	"github.com/solwallet/solwallet/pkg/types"
)

// System program instruction indices (u32 little-endian).
const (
	systemCreateAccount uint32 = 0
	systemTransfer      uint32 = 2
)

// TransferLamports moves lamports from one system account to another.
// from must sign.
func TransferLamports(from, to types.PublicKey, lamports uint64) tx.Instruction {
	data := make([]byte, 12) // 4 index + 8 lamports
	binary.LittleEndian.PutUint32(data[0:4], systemTransfer)
	binary.LittleEndian.PutUint64(data[4:12], lamports)

	return tx.Instruction{
		ProgramID: SystemProgramID,
		Accounts: []tx.AccountMeta{
			tx.SignerWritable(from),
			tx.Writable(to),
		},
		Data: data,
	}
}

// CreateAccount funds newAccount with lamports, allocates space bytes and
// assigns it to owner. Both from and newAccount must sign.
func CreateAccount(from, newAccount types.PublicKey, lamports, space uint64, owner types.PublicKey) tx.Instruction {
	data := make([]byte, 52) // 4 index + 8 lamports + 8 space + 32 owner
	binary.LittleEndian.PutUint32(data[0:4], systemCreateAccount)
	binary.LittleEndian.PutUint64(data[4:12], lamports)
	binary.LittleEndian.PutUint64(data[12:20], space)
	copy(data[20:52], owner[:])

	return tx.Instruction{
		ProgramID: SystemProgramID,
		Accounts: []tx.AccountMeta{
			tx.SignerWritable(from),
			tx.SignerWritable(newAccount),
		},
		Data: data,
	}
}
