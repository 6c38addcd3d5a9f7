package vault

import (
	"context"

	"github.com/iov-one/timevault"
	"github.com/iov-one/timevault/ledger"
)

// SystemController creates accounts and moves lamports. It is satisfied
// by system.BaseController.
type SystemController interface {
	CreateAccount(
		ctx context.Context,
		payer *ledger.AccountInfo,
		payerAuth ledger.Authority,
		account *ledger.AccountInfo,
		accountAuth ledger.Authority,
		space int,
		lamports uint64,
		owner timevault.Address,
	) error
	Transfer(
		ctx context.Context,
		from *ledger.AccountInfo,
		fromAuth ledger.Authority,
		to *ledger.AccountInfo,
		lamports uint64,
	) error
}

// TokenController moves token balances. It is satisfied by
// token.BaseController.
type TokenController interface {
	Decimals(mint *ledger.AccountInfo) (uint8, error)
	Balance(account *ledger.AccountInfo) (uint64, error)
	CreateAssociatedAccountIdempotent(
		ctx context.Context,
		payer *ledger.AccountInfo,
		payerAuth ledger.Authority,
		account *ledger.AccountInfo,
		wallet timevault.Address,
		mint *ledger.AccountInfo,
	) error
	TransferChecked(
		ctx context.Context,
		source *ledger.AccountInfo,
		mint *ledger.AccountInfo,
		destination *ledger.AccountInfo,
		auth ledger.Authority,
		amount uint64,
		decimals uint8,
	) error
	CloseAccount(ctx context.Context, account, destination *ledger.AccountInfo, auth ledger.Authority) error
}
