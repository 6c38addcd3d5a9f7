package vault

import (
	"context"

	"github.com/iov-one/timevault"
	"github.com/iov-one/timevault/errors"
	"github.com/iov-one/timevault/ledger"
	"github.com/iov-one/timevault/x/system"
	"github.com/iov-one/timevault/x/token"
)

// Program dispatches vault instructions.
type Program struct {
	h     handler
	token TokenController
}

var _ ledger.Program = Program{}

// NewProgram returns the vault program using given controllers.
func NewProgram(sys SystemController, tok TokenController) Program {
	return Program{h: handler{system: sys}, token: tok}
}

// Process routes the instruction by its first payload byte.
func (p Program) Process(ctx context.Context, accounts []*ledger.AccountInfo, data []byte) error {
	if len(data) == 0 {
		return errors.Wrap(errors.ErrInvalidInstructionData, "missing opcode")
	}
	switch op, payload := data[0], data[1:]; op {
	case InitNativeOp:
		return p.initNative(ctx, accounts, payload)
	case WithdrawNativeOp:
		return p.withdrawNative(ctx, accounts)
	case InitFungibleOp:
		return p.initFungible(ctx, accounts, payload)
	case WithdrawFungibleOp:
		return p.withdrawFungible(ctx, accounts)
	default:
		return errors.Wrapf(errors.ErrInvalidInstructionData, "unknown opcode %d", op)
	}
}

// accounts: [signer, vault, system program]
func (p Program) initNative(ctx context.Context, accounts []*ledger.AccountInfo, payload []byte) error {
	if len(accounts) < 3 {
		return errors.ErrNotEnoughAccountKeys
	}
	signer, vault := accounts[0], accounts[1]
	signerAuth, err := checkInitAccounts(signer, vault)
	if err != nil {
		return err
	}
	if err := requireProgram(accounts[2], system.ProgramID); err != nil {
		return err
	}
	var params InitParams
	if err := params.Unmarshal(payload); err != nil {
		return err
	}
	a := &nativeAsset{
		system:     p.h.system,
		signer:     signer,
		signerAuth: signerAuth,
		vault:      vault,
	}
	return p.h.initVault(ctx, signer, signerAuth, vault, a, &params)
}

// accounts: [signer, vault]
func (p Program) withdrawNative(ctx context.Context, accounts []*ledger.AccountInfo) error {
	if len(accounts) < 2 {
		return errors.ErrNotEnoughAccountKeys
	}
	signer, vault := accounts[0], accounts[1]
	signerAuth, err := checkWithdrawAccounts(signer, vault)
	if err != nil {
		return err
	}
	a := &nativeAsset{
		system:     p.h.system,
		signer:     signer,
		signerAuth: signerAuth,
		vault:      vault,
	}
	return p.h.withdrawVault(ctx, signer, vault, a)
}

// accounts: [signer, vault, mint, user token, vault token, token program,
// associated token program, system program]
func (p Program) initFungible(ctx context.Context, accounts []*ledger.AccountInfo, payload []byte) error {
	if len(accounts) < 8 {
		return errors.ErrNotEnoughAccountKeys
	}
	signer, vault := accounts[0], accounts[1]
	signerAuth, err := checkInitAccounts(signer, vault)
	if err != nil {
		return err
	}
	if err := requireProgram(accounts[5], token.ProgramID); err != nil {
		return err
	}
	if err := requireProgram(accounts[6], token.AssociatedProgramID); err != nil {
		return err
	}
	if err := requireProgram(accounts[7], system.ProgramID); err != nil {
		return err
	}
	var params InitParams
	if err := params.Unmarshal(payload); err != nil {
		return err
	}
	a := &fungibleAsset{
		token:      p.token,
		signer:     signer,
		signerAuth: signerAuth,
		vault:      vault,
		mintAcc:    accounts[2],
		userToken:  accounts[3],
		vaultToken: accounts[4],
	}
	return p.h.initVault(ctx, signer, signerAuth, vault, a, &params)
}

// accounts: [signer, vault, mint, user token, vault token, token program]
func (p Program) withdrawFungible(ctx context.Context, accounts []*ledger.AccountInfo) error {
	if len(accounts) < 6 {
		return errors.ErrNotEnoughAccountKeys
	}
	signer, vault := accounts[0], accounts[1]
	signerAuth, err := checkWithdrawAccounts(signer, vault)
	if err != nil {
		return err
	}
	if err := requireProgram(accounts[5], token.ProgramID); err != nil {
		return err
	}
	a := &fungibleAsset{
		token:      p.token,
		signer:     signer,
		signerAuth: signerAuth,
		vault:      vault,
		mintAcc:    accounts[2],
		userToken:  accounts[3],
		vaultToken: accounts[4],
	}
	return p.h.withdrawVault(ctx, signer, vault, a)
}

func requireProgram(acc *ledger.AccountInfo, want timevault.Address) error {
	if acc.Key() != want {
		return errors.Wrapf(errors.ErrIncorrectProgramID, "want %s, got %s", want, acc.Key())
	}
	return nil
}
