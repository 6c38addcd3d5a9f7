package token

import (
	"context"
	"encoding/binary"

	"github.com/iov-one/timevault"
	"github.com/iov-one/timevault/errors"
	"github.com/iov-one/timevault/ledger"
)

// Token program instructions. The first payload byte selects one.
const (
	InitializeMintOp  byte = 0
	MintToOp          byte = 7
	CloseAccountOp    byte = 9
	TransferCheckedOp byte = 12
)

// Associated token program instructions. An empty payload selects
// CreateAssociatedOp.
const (
	CreateAssociatedOp           byte = 0
	CreateAssociatedIdempotentOp byte = 1
)

// Program is the token program.
type Program struct {
	ctrl BaseController
}

var _ ledger.Program = Program{}

// NewProgram returns the token program using given controller.
func NewProgram(ctrl BaseController) Program {
	return Program{ctrl: ctrl}
}

// Process executes a token instruction.
func (p Program) Process(ctx context.Context, accounts []*ledger.AccountInfo, data []byte) error {
	if len(data) == 0 {
		return errors.Wrap(errors.ErrInvalidInstructionData, "missing opcode")
	}
	op, payload := data[0], data[1:]
	switch op {
	case InitializeMintOp:
		// accounts: [mint (writable)]
		if len(accounts) < 1 {
			return errors.ErrNotEnoughAccountKeys
		}
		if len(payload) != 1+32+1 && len(payload) != 1+32+1+32 {
			return errors.Wrapf(errors.ErrInvalidInstructionData, "initialize mint payload is %d bytes", len(payload))
		}
		var authority timevault.Address
		copy(authority[:], payload[1:33])
		var freeze *timevault.Address
		switch payload[33] {
		case 0:
		case 1:
			if len(payload) != 66 {
				return errors.Wrap(errors.ErrInvalidInstructionData, "missing freeze authority")
			}
			freeze = new(timevault.Address)
			copy(freeze[:], payload[34:])
		default:
			return errors.Wrapf(errors.ErrInvalidInstructionData, "freeze authority tag %d", payload[33])
		}
		return p.ctrl.InitializeMint(ctx, accounts[0], payload[0], authority, freeze)
	case MintToOp:
		// accounts: [mint (writable), destination (writable), authority (signer)]
		if len(accounts) < 3 {
			return errors.ErrNotEnoughAccountKeys
		}
		if len(payload) != 8 {
			return errors.Wrapf(errors.ErrInvalidInstructionData, "mint to payload is %d bytes", len(payload))
		}
		auth, err := accounts[2].Signer()
		if err != nil {
			return err
		}
		return p.ctrl.MintTo(ctx, accounts[0], accounts[1], auth, binary.LittleEndian.Uint64(payload))
	case CloseAccountOp:
		// accounts: [account (writable), destination (writable), owner (signer)]
		if len(accounts) < 3 {
			return errors.ErrNotEnoughAccountKeys
		}
		auth, err := accounts[2].Signer()
		if err != nil {
			return err
		}
		return p.ctrl.CloseAccount(ctx, accounts[0], accounts[1], auth)
	case TransferCheckedOp:
		// accounts: [source (writable), mint, destination (writable), owner (signer)]
		if len(accounts) < 4 {
			return errors.ErrNotEnoughAccountKeys
		}
		if len(payload) != 9 {
			return errors.Wrapf(errors.ErrInvalidInstructionData, "transfer payload is %d bytes", len(payload))
		}
		auth, err := accounts[3].Signer()
		if err != nil {
			return err
		}
		return p.ctrl.TransferChecked(ctx, accounts[0], accounts[1], accounts[2], auth, binary.LittleEndian.Uint64(payload), payload[8])
	default:
		return errors.Wrapf(errors.ErrInvalidInstructionData, "unknown token instruction %d", op)
	}
}

// AssociatedProgram creates associated token accounts.
type AssociatedProgram struct {
	ctrl     BaseController
	systemID timevault.Address
}

var _ ledger.Program = AssociatedProgram{}

// NewAssociatedProgram returns the associated token program. systemID is
// the address the system program is registered under.
func NewAssociatedProgram(ctrl BaseController, systemID timevault.Address) AssociatedProgram {
	return AssociatedProgram{ctrl: ctrl, systemID: systemID}
}

// Process creates the associated token account. The idempotent variant
// succeeds when the account already exists.
//
// accounts: [payer (signer, writable), account (writable), wallet, mint,
// system program, token program]
func (p AssociatedProgram) Process(ctx context.Context, accounts []*ledger.AccountInfo, data []byte) error {
	create := p.ctrl.CreateAssociatedAccount
	if len(data) > 0 {
		switch data[0] {
		case CreateAssociatedOp:
		case CreateAssociatedIdempotentOp:
			create = p.ctrl.CreateAssociatedAccountIdempotent
		default:
			return errors.Wrapf(errors.ErrInvalidInstructionData, "unknown associated token instruction %d", data[0])
		}
	}
	if len(accounts) < 6 {
		return errors.ErrNotEnoughAccountKeys
	}
	if accounts[4].Key() != p.systemID {
		return errors.Wrapf(errors.ErrIncorrectProgramID, "system program %s", accounts[4].Key())
	}
	if accounts[5].Key() != ProgramID {
		return errors.Wrapf(errors.ErrIncorrectProgramID, "token program %s", accounts[5].Key())
	}
	payerAuth, err := accounts[0].Signer()
	if err != nil {
		return err
	}
	return create(ctx, accounts[0], payerAuth, accounts[1], accounts[2].Key(), accounts[3])
}

// NewInitializeMintInstruction returns an instruction initializing an
// allocated mint account.
func NewInitializeMintInstruction(mint timevault.Address, decimals uint8, authority timevault.Address) ledger.Instruction {
	data := make([]byte, 0, 35)
	data = append(data, InitializeMintOp, decimals)
	data = append(data, authority[:]...)
	data = append(data, 0)
	return ledger.Instruction{
		ProgramID: ProgramID,
		Accounts:  []ledger.AccountMeta{ledger.Writable(mint, false)},
		Data:      data,
	}
}

// NewMintToInstruction returns an instruction issuing new tokens.
func NewMintToInstruction(mint, destination, authority timevault.Address, amount uint64) ledger.Instruction {
	data := make([]byte, 9)
	data[0] = MintToOp
	binary.LittleEndian.PutUint64(data[1:], amount)
	return ledger.Instruction{
		ProgramID: ProgramID,
		Accounts: []ledger.AccountMeta{
			ledger.Writable(mint, false),
			ledger.Writable(destination, false),
			ledger.ReadOnly(authority, true),
		},
		Data: data,
	}
}

// NewCloseAccountInstruction returns an instruction closing an empty
// token account.
func NewCloseAccountInstruction(account, destination, owner timevault.Address) ledger.Instruction {
	return ledger.Instruction{
		ProgramID: ProgramID,
		Accounts: []ledger.AccountMeta{
			ledger.Writable(account, false),
			ledger.Writable(destination, false),
			ledger.ReadOnly(owner, true),
		},
		Data: []byte{CloseAccountOp},
	}
}

// NewTransferCheckedInstruction returns an instruction moving tokens.
func NewTransferCheckedInstruction(source, mint, destination, owner timevault.Address, amount uint64, decimals uint8) ledger.Instruction {
	data := make([]byte, 10)
	data[0] = TransferCheckedOp
	binary.LittleEndian.PutUint64(data[1:], amount)
	data[9] = decimals
	return ledger.Instruction{
		ProgramID: ProgramID,
		Accounts: []ledger.AccountMeta{
			ledger.Writable(source, false),
			ledger.ReadOnly(mint, false),
			ledger.Writable(destination, false),
			ledger.ReadOnly(owner, true),
		},
		Data: data,
	}
}

// NewCreateAssociatedAccountInstruction returns an instruction creating
// the associated token account of the wallet.
func NewCreateAssociatedAccountInstruction(payer, wallet, mint, systemID timevault.Address) (ledger.Instruction, error) {
	return newCreateAssociated(CreateAssociatedOp, payer, wallet, mint, systemID)
}

// NewCreateAssociatedAccountIdempotentInstruction is like
// NewCreateAssociatedAccountInstruction but does not fail when the
// account already exists.
func NewCreateAssociatedAccountIdempotentInstruction(payer, wallet, mint, systemID timevault.Address) (ledger.Instruction, error) {
	return newCreateAssociated(CreateAssociatedIdempotentOp, payer, wallet, mint, systemID)
}

func newCreateAssociated(op byte, payer, wallet, mint, systemID timevault.Address) (ledger.Instruction, error) {
	account, _, err := AssociatedAddress(wallet, mint)
	if err != nil {
		return ledger.Instruction{}, err
	}
	return ledger.Instruction{
		ProgramID: AssociatedProgramID,
		Accounts: []ledger.AccountMeta{
			ledger.Writable(payer, true),
			ledger.Writable(account, false),
			ledger.ReadOnly(wallet, false),
			ledger.ReadOnly(mint, false),
			ledger.ReadOnly(systemID, false),
			ledger.ReadOnly(ProgramID, false),
		},
		Data: []byte{op},
	}, nil
}
