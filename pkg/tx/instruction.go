package tx

import "github.com/solwallet/solwallet/pkg/types"

// Instruction is a single program invocation. Data is opaque to the
// builder; each program defines its own layout.
type Instruction struct {
	ProgramID types.PublicKey
	Accounts  []AccountMeta
	Data      []byte
}

// CompiledInstruction is an instruction whose accounts are indices into the
// message account table.
type CompiledInstruction struct {
	ProgramIDIndex uint8
	Accounts       []uint8
	Data           []byte
}
