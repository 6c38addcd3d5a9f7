package ledger

import (
	"github.com/iov-one/timevault"
)

// AccountMeta describes how an instruction uses an account.
type AccountMeta struct {
	Address    timevault.Address
	IsSigner   bool
	IsWritable bool
}

// Writable returns a meta of an account the instruction modifies.
func Writable(addr timevault.Address, signer bool) AccountMeta {
	return AccountMeta{Address: addr, IsSigner: signer, IsWritable: true}
}

// ReadOnly returns a meta of an account the instruction only reads.
func ReadOnly(addr timevault.Address, signer bool) AccountMeta {
	return AccountMeta{Address: addr, IsSigner: signer}
}

// Instruction is a single call of a program.
type Instruction struct {
	ProgramID timevault.Address
	Accounts  []AccountMeta
	Data      []byte
}
