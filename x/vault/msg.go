package vault

import (
	"encoding/binary"

	"github.com/iov-one/timevault"
	"github.com/iov-one/timevault/errors"
	"github.com/iov-one/timevault/ledger"
	"github.com/iov-one/timevault/x/system"
	"github.com/iov-one/timevault/x/token"
)

// ProgramID is the address the vault program is deployed at.
var ProgramID = timevault.MustParseAddress("Ac9JwB8Wc4JB7WwNkVSAY1SESxNmLw5rxuh1okLjQpX")

// The first payload byte selects the operation.
const (
	InitNativeOp       byte = 0
	WithdrawNativeOp   byte = 1
	InitFungibleOp     byte = 2
	WithdrawFungibleOp byte = 3
)

const initParamsSize = 8 + 8 + 1

// InitParams is the payload of both init operations.
type InitParams struct {
	Amount     uint64
	UnlockTime timevault.UnixTime
	Bump       uint8
}

// Marshal serializes the params as amount_le8 | unlock_le8 | bump.
func (p *InitParams) Marshal() ([]byte, error) {
	raw := make([]byte, initParamsSize)
	binary.LittleEndian.PutUint64(raw[0:], p.Amount)
	binary.LittleEndian.PutUint64(raw[8:], uint64(p.UnlockTime))
	raw[16] = p.Bump
	return raw, nil
}

// Unmarshal is the inverse of Marshal. Any other length is rejected.
func (p *InitParams) Unmarshal(raw []byte) error {
	if len(raw) != initParamsSize {
		return errors.Wrapf(errors.ErrInvalidInstructionData, "init payload must be %d bytes, got %d", initParamsSize, len(raw))
	}
	p.Amount = binary.LittleEndian.Uint64(raw[0:])
	p.UnlockTime = timevault.UnixTime(binary.LittleEndian.Uint64(raw[8:]))
	p.Bump = raw[16]
	return nil
}

func initData(op byte, p *InitParams) []byte {
	raw, _ := p.Marshal()
	return append([]byte{op}, raw...)
}

// NewInitNativeInstruction returns an instruction locking lamports of the
// owner until given time. It returns the holding account address as well.
func NewInitNativeInstruction(owner timevault.Address, amount uint64, unlock timevault.UnixTime) (ledger.Instruction, timevault.Address, error) {
	addr, bump, err := FindVaultAddress(ProgramID, owner, nil, amount, unlock)
	if err != nil {
		return ledger.Instruction{}, addr, err
	}
	ix := ledger.Instruction{
		ProgramID: ProgramID,
		Accounts: []ledger.AccountMeta{
			ledger.Writable(owner, true),
			ledger.Writable(addr, false),
			ledger.ReadOnly(system.ProgramID, false),
		},
		Data: initData(InitNativeOp, &InitParams{Amount: amount, UnlockTime: unlock, Bump: bump}),
	}
	return ix, addr, nil
}

// NewWithdrawNativeInstruction returns an instruction releasing a native
// vault to its owner.
func NewWithdrawNativeInstruction(owner, vault timevault.Address) ledger.Instruction {
	return ledger.Instruction{
		ProgramID: ProgramID,
		Accounts: []ledger.AccountMeta{
			ledger.Writable(owner, true),
			ledger.Writable(vault, false),
		},
		Data: []byte{WithdrawNativeOp},
	}
}

// NewInitFungibleInstruction returns an instruction locking tokens of the
// owner until given time. The tokens are taken from the associated token
// account of the owner. It returns the holding account address as well.
func NewInitFungibleInstruction(owner, mint timevault.Address, amount uint64, unlock timevault.UnixTime) (ledger.Instruction, timevault.Address, error) {
	addr, bump, err := FindVaultAddress(ProgramID, owner, &mint, amount, unlock)
	if err != nil {
		return ledger.Instruction{}, addr, err
	}
	userToken, vaultToken, err := tokenAccounts(owner, addr, mint)
	if err != nil {
		return ledger.Instruction{}, addr, err
	}
	ix := ledger.Instruction{
		ProgramID: ProgramID,
		Accounts: []ledger.AccountMeta{
			ledger.Writable(owner, true),
			ledger.Writable(addr, false),
			ledger.ReadOnly(mint, false),
			ledger.Writable(userToken, false),
			ledger.Writable(vaultToken, false),
			ledger.ReadOnly(token.ProgramID, false),
			ledger.ReadOnly(token.AssociatedProgramID, false),
			ledger.ReadOnly(system.ProgramID, false),
		},
		Data: initData(InitFungibleOp, &InitParams{Amount: amount, UnlockTime: unlock, Bump: bump}),
	}
	return ix, addr, nil
}

// NewWithdrawFungibleInstruction returns an instruction releasing a token
// vault into the associated token account of its owner.
func NewWithdrawFungibleInstruction(owner, vault, mint timevault.Address) (ledger.Instruction, error) {
	userToken, vaultToken, err := tokenAccounts(owner, vault, mint)
	if err != nil {
		return ledger.Instruction{}, err
	}
	return ledger.Instruction{
		ProgramID: ProgramID,
		Accounts: []ledger.AccountMeta{
			ledger.Writable(owner, true),
			ledger.Writable(vault, false),
			ledger.ReadOnly(mint, false),
			ledger.Writable(userToken, false),
			ledger.Writable(vaultToken, false),
			ledger.ReadOnly(token.ProgramID, false),
		},
		Data: []byte{WithdrawFungibleOp},
	}, nil
}

func tokenAccounts(owner, vault, mint timevault.Address) (userToken, vaultToken timevault.Address, err error) {
	if userToken, _, err = token.AssociatedAddress(owner, mint); err != nil {
		return
	}
	vaultToken, _, err = token.AssociatedAddress(vault, mint)
	return
}
