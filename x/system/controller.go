package system

import (
	"context"

	"github.com/iov-one/timevault"
	"github.com/iov-one/timevault/errors"
	"github.com/iov-one/timevault/ledger"
)

// ProgramID is the address of the system program. Every account that
// was not assigned to another program is owned by it.
var ProgramID = timevault.ZeroAddress

// MaxDataLength is the maximum size of the data of a single account.
const MaxDataLength = 10 * 1024 * 1024

// BaseController implements the account creation and lamport transfer
// primitives other programs build on.
type BaseController struct{}

// NewController returns a controller for the system primitives.
func NewController() BaseController {
	return BaseController{}
}

// CreateAccount funds a new account with lamports taken from the payer,
// allocates space bytes of data and assigns it to the owner program. Both
// the payer and the new account must be authorized. The new account must
// not be in use.
func (BaseController) CreateAccount(
	ctx context.Context,
	payer *ledger.AccountInfo,
	payerAuth ledger.Authority,
	account *ledger.AccountInfo,
	accountAuth ledger.Authority,
	space int,
	lamports uint64,
	owner timevault.Address,
) error {
	if err := ledger.RequireAuthority(payerAuth, payer); err != nil {
		return errors.Wrap(err, "payer")
	}
	if err := ledger.RequireAuthority(accountAuth, account); err != nil {
		return errors.Wrap(err, "new account")
	}
	if account.Lamports() != 0 || !account.DataIsEmpty() || account.Owner() != ProgramID {
		return errors.Wrapf(errors.ErrAccountAlreadyInUse, "account %s", account.Key())
	}
	if space < 0 || space > MaxDataLength {
		return errors.Wrapf(errors.ErrInput, "space %d out of range", space)
	}
	if err := transfer(payer, account, lamports); err != nil {
		return err
	}
	if err := account.Resize(space); err != nil {
		return err
	}
	return account.Assign(owner)
}

// Transfer moves lamports between two accounts. The source must be
// authorized and must be a plain system account without data.
func (BaseController) Transfer(
	ctx context.Context,
	from *ledger.AccountInfo,
	fromAuth ledger.Authority,
	to *ledger.AccountInfo,
	lamports uint64,
) error {
	if err := ledger.RequireAuthority(fromAuth, from); err != nil {
		return errors.Wrap(err, "source")
	}
	return transfer(from, to, lamports)
}

func transfer(from, to *ledger.AccountInfo, lamports uint64) error {
	if from.Owner() != ProgramID || !from.DataIsEmpty() {
		return errors.Wrapf(errors.ErrInvalidAccountData, "source %s must be a system account without data", from.Key())
	}
	if err := from.SubLamports(lamports); err != nil {
		return err
	}
	return to.AddLamports(lamports)
}
