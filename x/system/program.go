package system

import (
	"context"
	"encoding/binary"

	"github.com/iov-one/timevault"
	"github.com/iov-one/timevault/errors"
	"github.com/iov-one/timevault/ledger"
)

// Instruction discriminators, encoded as 4 byte little endian numbers.
const (
	CreateAccountOp uint32 = 0
	TransferOp      uint32 = 2
)

const (
	createAccountSize = 4 + 8 + 8 + timevault.AddressLength
	transferSize      = 4 + 8
)

// Program exposes the system primitives as instructions so that clients
// can create accounts and move lamports.
type Program struct {
	ctrl BaseController
}

var _ ledger.Program = Program{}

// NewProgram returns the system program.
func NewProgram() Program {
	return Program{ctrl: NewController()}
}

// Process executes a system instruction.
//
// CreateAccount accounts: [payer (signer, writable), new (signer, writable)]
// Transfer accounts: [from (signer, writable), to (writable)]
func (p Program) Process(ctx context.Context, accounts []*ledger.AccountInfo, data []byte) error {
	if len(data) < 4 {
		return errors.Wrap(errors.ErrInvalidInstructionData, "missing discriminator")
	}
	switch op := binary.LittleEndian.Uint32(data); op {
	case CreateAccountOp:
		if len(data) != createAccountSize {
			return errors.Wrapf(errors.ErrInvalidInstructionData, "create account payload is %d bytes", len(data))
		}
		if len(accounts) < 2 {
			return errors.ErrNotEnoughAccountKeys
		}
		payerAuth, err := accounts[0].Signer()
		if err != nil {
			return err
		}
		accountAuth, err := accounts[1].Signer()
		if err != nil {
			return err
		}
		lamports := binary.LittleEndian.Uint64(data[4:])
		space := binary.LittleEndian.Uint64(data[12:])
		if space > MaxDataLength {
			return errors.Wrapf(errors.ErrInput, "space %d out of range", space)
		}
		var owner timevault.Address
		copy(owner[:], data[20:])
		return p.ctrl.CreateAccount(ctx, accounts[0], payerAuth, accounts[1], accountAuth, int(space), lamports, owner)
	case TransferOp:
		if len(data) != transferSize {
			return errors.Wrapf(errors.ErrInvalidInstructionData, "transfer payload is %d bytes", len(data))
		}
		if len(accounts) < 2 {
			return errors.ErrNotEnoughAccountKeys
		}
		auth, err := accounts[0].Signer()
		if err != nil {
			return err
		}
		return p.ctrl.Transfer(ctx, accounts[0], auth, accounts[1], binary.LittleEndian.Uint64(data[4:]))
	default:
		return errors.Wrapf(errors.ErrInvalidInstructionData, "unknown system instruction %d", op)
	}
}

// NewCreateAccountInstruction returns an instruction creating a new
// account. Both accounts must sign.
func NewCreateAccountInstruction(payer, account timevault.Address, lamports uint64, space uint64, owner timevault.Address) ledger.Instruction {
	data := make([]byte, createAccountSize)
	binary.LittleEndian.PutUint32(data, CreateAccountOp)
	binary.LittleEndian.PutUint64(data[4:], lamports)
	binary.LittleEndian.PutUint64(data[12:], space)
	copy(data[20:], owner[:])
	return ledger.Instruction{
		ProgramID: ProgramID,
		Accounts: []ledger.AccountMeta{
			ledger.Writable(payer, true),
			ledger.Writable(account, true),
		},
		Data: data,
	}
}

// NewTransferInstruction returns an instruction moving lamports.
func NewTransferInstruction(from, to timevault.Address, lamports uint64) ledger.Instruction {
	data := make([]byte, transferSize)
	binary.LittleEndian.PutUint32(data, TransferOp)
	binary.LittleEndian.PutUint64(data[4:], lamports)
	return ledger.Instruction{
		ProgramID: ProgramID,
		Accounts: []ledger.AccountMeta{
			ledger.Writable(from, true),
			ledger.Writable(to, false),
		},
		Data: data,
	}
}
