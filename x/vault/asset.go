package vault

import (
	"context"

	"github.com/iov-one/timevault"
	"github.com/iov-one/timevault/ledger"
)

// asset moves the deposit of a vault in and out of custody.
type asset interface {
	// mint is the token held, nil for lamports.
	mint() *timevault.Address
	// deposit moves the amount from the signer into the vault.
	deposit(ctx context.Context, amount uint64) error
	// release hands the amount back to the signer. The vault authority
	// was proven by derivation.
	release(ctx context.Context, vaultAuth ledger.Authority, amount uint64) error
}

// nativeAsset holds lamports directly in the holding account.
type nativeAsset struct {
	system     SystemController
	signer     *ledger.AccountInfo
	signerAuth ledger.Authority
	vault      *ledger.AccountInfo
}

var _ asset = (*nativeAsset)(nil)

func (a *nativeAsset) mint() *timevault.Address { return nil }

func (a *nativeAsset) deposit(ctx context.Context, amount uint64) error {
	return a.system.Transfer(ctx, a.signer, a.signerAuth, a.vault, amount)
}

// release is a noop, the lamports leave with the rest of the holding
// account balance when it is closed.
func (a *nativeAsset) release(ctx context.Context, vaultAuth ledger.Authority, amount uint64) error {
	return nil
}

// fungibleAsset holds tokens in the associated token account of the
// holding account.
type fungibleAsset struct {
	token      TokenController
	signer     *ledger.AccountInfo
	signerAuth ledger.Authority
	vault      *ledger.AccountInfo
	mintAcc    *ledger.AccountInfo
	userToken  *ledger.AccountInfo
	vaultToken *ledger.AccountInfo
}

var _ asset = (*fungibleAsset)(nil)

func (a *fungibleAsset) mint() *timevault.Address {
	m := a.mintAcc.Key()
	return &m
}

func (a *fungibleAsset) deposit(ctx context.Context, amount uint64) error {
	err := a.token.CreateAssociatedAccountIdempotent(ctx, a.signer, a.signerAuth, a.vaultToken, a.vault.Key(), a.mintAcc)
	if err != nil {
		return err
	}
	decimals, err := a.token.Decimals(a.mintAcc)
	if err != nil {
		return err
	}
	return a.token.TransferChecked(ctx, a.userToken, a.mintAcc, a.vaultToken, a.signerAuth, amount, decimals)
}

func (a *fungibleAsset) release(ctx context.Context, vaultAuth ledger.Authority, amount uint64) error {
	decimals, err := a.token.Decimals(a.mintAcc)
	if err != nil {
		return err
	}
	if err := a.token.TransferChecked(ctx, a.vaultToken, a.mintAcc, a.userToken, vaultAuth, amount, decimals); err != nil {
		return err
	}
	// Tokens sent to the vault token account by anyone else must not keep
	// it from being closed.
	rest, err := a.token.Balance(a.vaultToken)
	if err != nil {
		return err
	}
	if rest > 0 {
		if err := a.token.TransferChecked(ctx, a.vaultToken, a.mintAcc, a.userToken, vaultAuth, rest, decimals); err != nil {
			return err
		}
	}
	return a.token.CloseAccount(ctx, a.vaultToken, a.signer, vaultAuth)
}
