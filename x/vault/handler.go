package vault

import (
	"context"

	"github.com/iov-one/timevault"
	"github.com/iov-one/timevault/errors"
	"github.com/iov-one/timevault/ledger"
)

// handler implements the init and withdraw flows shared by both asset
// kinds.
type handler struct {
	system SystemController
}

// checkInitAccounts validates the signer and the holding account to be
// created.
func checkInitAccounts(signer, vault *ledger.AccountInfo) (ledger.Authority, error) {
	auth, err := signer.Signer()
	if err != nil {
		return nil, err
	}
	if !vault.IsWritable() {
		return nil, errors.Wrapf(errors.ErrInvalidAccountData, "vault %s is not writable", vault.Key())
	}
	if !vault.DataIsEmpty() {
		return nil, errors.Wrapf(errors.ErrAccountAlreadyInitialized, "vault %s", vault.Key())
	}
	return auth, nil
}

// checkWithdrawAccounts validates the signer and the holding account to
// be released.
func checkWithdrawAccounts(signer, vault *ledger.AccountInfo) (ledger.Authority, error) {
	auth, err := signer.Signer()
	if err != nil {
		return nil, err
	}
	if !vault.IsWritable() {
		return nil, errors.Wrapf(errors.ErrInvalidAccountData, "vault %s is not writable", vault.Key())
	}
	if vault.DataIsEmpty() {
		return nil, errors.Wrapf(errors.ErrInvalidAccountData, "vault %s is empty", vault.Key())
	}
	return auth, nil
}

// initVault creates the holding account of the deposit and moves the
// amount into custody.
func (h handler) initVault(
	ctx context.Context,
	signer *ledger.AccountInfo,
	signerAuth ledger.Authority,
	vault *ledger.AccountInfo,
	a asset,
	params *InitParams,
) error {
	now, err := timevault.CurrentTime(ctx)
	if err != nil {
		return err
	}
	if params.UnlockTime <= now {
		return errors.Wrapf(ErrUnlockTimestampMustBeInFuture, "unlock at %s, now is %s", params.UnlockTime, now)
	}
	if params.Amount == 0 {
		return ErrAmountMustBeGreaterThanZero
	}

	program, ok := timevault.ProgramID(ctx)
	if !ok {
		return errors.Wrap(errors.ErrHuman, "no executing program in context")
	}
	record := Record{
		Owner:      signer.Key(),
		Amount:     params.Amount,
		Bump:       params.Bump,
		UnlockTime: params.UnlockTime,
		Mint:       a.mint(),
	}
	if err := ValidateAddress(program, vault.Key(), &record); err != nil {
		return err
	}
	vaultAuth, err := ledger.Authorize(ctx, ledger.DerivedAuthority{Seeds: record.Seeds(), Address: vault.Key()})
	if err != nil {
		return err
	}

	lamports := timevault.CurrentRent(ctx).MinimumBalance(RecordSize)
	if err := h.system.CreateAccount(ctx, signer, signerAuth, vault, vaultAuth, RecordSize, lamports, program); err != nil {
		return err
	}
	raw, err := record.Marshal()
	if err != nil {
		return err
	}
	if err := vault.SetData(0, raw); err != nil {
		return err
	}
	if err := a.deposit(ctx, params.Amount); err != nil {
		return err
	}

	timevault.GetLogger(ctx).Info("vault locked",
		"vault", vault.Key(),
		"owner", record.Owner,
		"amount", record.Amount,
		"unlock", record.UnlockTime)
	return nil
}

// withdrawVault hands the deposit back to its owner once matured and
// releases the holding account.
func (h handler) withdrawVault(
	ctx context.Context,
	signer *ledger.AccountInfo,
	vault *ledger.AccountInfo,
	a asset,
) error {
	program, ok := timevault.ProgramID(ctx)
	if !ok {
		return errors.Wrap(errors.ErrHuman, "no executing program in context")
	}
	if vault.Owner() != program {
		return errors.Wrapf(errors.ErrIncorrectProgramID, "vault %s is owned by %s", vault.Key(), vault.Owner())
	}
	now, err := timevault.CurrentTime(ctx)
	if err != nil {
		return err
	}
	var record Record
	if err := record.Unmarshal(vault.Data()); err != nil {
		return errors.Wrapf(err, "vault %s", vault.Key())
	}

	if record.Owner != signer.Key() {
		return errors.Wrapf(ErrUnauthorized, "vault %s", vault.Key())
	}
	if record.UnlockTime > now {
		return errors.Wrapf(ErrVaultLocking, "until %s", record.UnlockTime)
	}
	if !sameMint(record.Mint, a.mint()) {
		return errors.Wrapf(ErrInvalidVaultMint, "vault %s", vault.Key())
	}

	vaultAuth, err := ledger.Authorize(ctx, ledger.DerivedAuthority{Seeds: record.Seeds(), Address: vault.Key()})
	if err != nil {
		return err
	}
	if err := a.release(ctx, vaultAuth, record.Amount); err != nil {
		return err
	}

	if err := vault.SetData(0, []byte{tombstone}); err != nil {
		return err
	}
	if err := vault.Resize(1); err != nil {
		return err
	}
	lamports := vault.Lamports()
	if err := vault.SubLamports(lamports); err != nil {
		return err
	}
	if err := signer.AddLamports(lamports); err != nil {
		return err
	}
	if err := vault.Close(); err != nil {
		return err
	}

	timevault.GetLogger(ctx).Info("vault released",
		"vault", vault.Key(),
		"owner", record.Owner,
		"lamports", lamports)
	return nil
}

func sameMint(a, b *timevault.Address) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
