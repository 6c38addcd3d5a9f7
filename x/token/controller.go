package token

import (
	"context"

	"github.com/iov-one/timevault"
	"github.com/iov-one/timevault/errors"
	"github.com/iov-one/timevault/ledger"
)

var (
	// ProgramID is the address of the token program. It owns every mint
	// and token account.
	ProgramID = timevault.MustParseAddress("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")

	// AssociatedProgramID is the address of the program creating the
	// canonical token account of a wallet.
	AssociatedProgramID = timevault.MustParseAddress("ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL")
)

// AssociatedAddress returns the address of the canonical token account
// holding the mint tokens of given wallet.
func AssociatedAddress(wallet, mint timevault.Address) (timevault.Address, uint8, error) {
	return timevault.FindDerivedAddress(AssociatedProgramID, associatedSeeds(wallet, mint)...)
}

func associatedSeeds(wallet, mint timevault.Address) [][]byte {
	return [][]byte{wallet[:], ProgramID[:], mint[:]}
}

// SystemController creates accounts. It is satisfied by
// system.BaseController.
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
}

// BaseController implements the token operations other programs rely on.
type BaseController struct {
	system SystemController
}

// NewController returns a token controller creating accounts with given
// system controller.
func NewController(system SystemController) BaseController {
	return BaseController{system: system}
}

// LoadMint returns the state of an initialized mint.
func (BaseController) LoadMint(mint *ledger.AccountInfo) (*Mint, error) {
	if mint.Owner() != ProgramID {
		return nil, errors.Wrapf(errors.ErrIncorrectProgramID, "mint %s is owned by %s", mint.Key(), mint.Owner())
	}
	var m Mint
	if err := m.Unmarshal(mint.Data()); err != nil {
		return nil, errors.Wrapf(err, "mint %s", mint.Key())
	}
	if !m.IsInitialized {
		return nil, errors.Wrapf(ErrUninitializedState, "mint %s", mint.Key())
	}
	return &m, nil
}

// LoadAccount returns the state of an initialized token account.
func (BaseController) LoadAccount(account *ledger.AccountInfo) (*TokenAccount, error) {
	if account.Owner() != ProgramID {
		return nil, errors.Wrapf(errors.ErrIncorrectProgramID, "token account %s is owned by %s", account.Key(), account.Owner())
	}
	var a TokenAccount
	if err := a.Unmarshal(account.Data()); err != nil {
		return nil, errors.Wrapf(err, "token account %s", account.Key())
	}
	if a.State == Uninitialized {
		return nil, errors.Wrapf(ErrUninitializedState, "token account %s", account.Key())
	}
	return &a, nil
}

// Decimals returns the number of decimals of the mint.
func (c BaseController) Decimals(mint *ledger.AccountInfo) (uint8, error) {
	m, err := c.LoadMint(mint)
	if err != nil {
		return 0, err
	}
	return m.Decimals, nil
}

// InitializeMint turns an allocated, rent exempt account owned by the
// token program into a mint.
func (BaseController) InitializeMint(ctx context.Context, mint *ledger.AccountInfo, decimals uint8, authority timevault.Address, freeze *timevault.Address) error {
	if mint.Owner() != ProgramID {
		return errors.Wrapf(errors.ErrIncorrectProgramID, "mint %s is owned by %s", mint.Key(), mint.Owner())
	}
	var m Mint
	if err := m.Unmarshal(mint.Data()); err != nil {
		return errors.Wrapf(err, "mint %s", mint.Key())
	}
	if m.IsInitialized {
		return errors.Wrapf(errors.ErrAccountAlreadyInitialized, "mint %s", mint.Key())
	}
	if !timevault.CurrentRent(ctx).IsExempt(mint.Lamports(), MintSize) {
		return errors.Wrapf(errors.ErrInsufficientFunds, "mint %s is not rent exempt", mint.Key())
	}
	m = Mint{
		MintAuthority:   &authority,
		Decimals:        decimals,
		IsInitialized:   true,
		FreezeAuthority: freeze,
	}
	return save(mint, &m)
}

// MintTo issues new tokens into the destination account. The authority
// must be the mint authority.
func (c BaseController) MintTo(ctx context.Context, mint, destination *ledger.AccountInfo, auth ledger.Authority, amount uint64) error {
	m, err := c.LoadMint(mint)
	if err != nil {
		return err
	}
	if m.MintAuthority == nil {
		return errors.Wrapf(errors.ErrState, "mint %s has a fixed supply", mint.Key())
	}
	if auth == nil || auth.Address() != *m.MintAuthority {
		return errors.Wrapf(ErrOwnerMismatch, "mint authority of %s", mint.Key())
	}
	dst, err := c.LoadAccount(destination)
	if err != nil {
		return err
	}
	if dst.State == Frozen {
		return errors.Wrapf(ErrAccountFrozen, "token account %s", destination.Key())
	}
	if dst.Mint != mint.Key() {
		return errors.Wrapf(ErrMintMismatch, "token account %s", destination.Key())
	}
	if m.Supply+amount < m.Supply || dst.Amount+amount < dst.Amount {
		return errors.Wrapf(errors.ErrOverflow, "mint %s", mint.Key())
	}
	m.Supply += amount
	dst.Amount += amount
	if err := save(mint, m); err != nil {
		return err
	}
	return save(destination, dst)
}

// CreateAssociatedAccount creates and initializes the canonical token
// account of the wallet for the mint. The payer funds it with the rent
// exempt minimum.
func (c BaseController) CreateAssociatedAccount(
	ctx context.Context,
	payer *ledger.AccountInfo,
	payerAuth ledger.Authority,
	account *ledger.AccountInfo,
	wallet timevault.Address,
	mint *ledger.AccountInfo,
) error {
	addr, bump, err := AssociatedAddress(wallet, mint.Key())
	if err != nil {
		return err
	}
	if addr != account.Key() {
		return errors.Wrapf(errors.ErrInvalidSeeds, "associated account of %s is %s, not %s", wallet, addr, account.Key())
	}
	if _, err := c.LoadMint(mint); err != nil {
		return err
	}
	seeds := append(associatedSeeds(wallet, mint.Key()), []byte{bump})
	accountAuth, err := ledger.AuthorizeProgram(AssociatedProgramID, ledger.DerivedAuthority{Seeds: seeds, Address: addr})
	if err != nil {
		return err
	}
	lamports := timevault.CurrentRent(ctx).MinimumBalance(AccountSize)
	if err := c.system.CreateAccount(ctx, payer, payerAuth, account, accountAuth, AccountSize, lamports, ProgramID); err != nil {
		return err
	}
	return save(account, &TokenAccount{Mint: mint.Key(), Owner: wallet, State: Initialized})
}

// CreateAssociatedAccountIdempotent is CreateAssociatedAccount that
// accepts an already initialized associated account of the wallet for
// the mint. Any balance it holds is kept.
func (c BaseController) CreateAssociatedAccountIdempotent(
	ctx context.Context,
	payer *ledger.AccountInfo,
	payerAuth ledger.Authority,
	account *ledger.AccountInfo,
	wallet timevault.Address,
	mint *ledger.AccountInfo,
) error {
	if account.Owner() != ProgramID || account.DataIsEmpty() {
		return c.CreateAssociatedAccount(ctx, payer, payerAuth, account, wallet, mint)
	}
	addr, _, err := AssociatedAddress(wallet, mint.Key())
	if err != nil {
		return err
	}
	if addr != account.Key() {
		return errors.Wrapf(errors.ErrInvalidSeeds, "associated account of %s is %s, not %s", wallet, addr, account.Key())
	}
	existing, err := c.LoadAccount(account)
	if err != nil {
		return err
	}
	if existing.Mint != mint.Key() || existing.Owner != wallet {
		return errors.Wrapf(errors.ErrAccountAlreadyInUse, "token account %s", account.Key())
	}
	return nil
}

// Balance returns the amount held by the token account.
func (c BaseController) Balance(account *ledger.AccountInfo) (uint64, error) {
	acc, err := c.LoadAccount(account)
	if err != nil {
		return 0, err
	}
	return acc.Amount, nil
}

// TransferChecked moves tokens between two accounts of the mint. The
// caller must state the mint decimals and the authority must be the
// owner of the source account.
func (c BaseController) TransferChecked(
	ctx context.Context,
	source *ledger.AccountInfo,
	mint *ledger.AccountInfo,
	destination *ledger.AccountInfo,
	auth ledger.Authority,
	amount uint64,
	decimals uint8,
) error {
	src, err := c.LoadAccount(source)
	if err != nil {
		return err
	}
	dst, err := c.LoadAccount(destination)
	if err != nil {
		return err
	}
	if src.State == Frozen || dst.State == Frozen {
		return errors.Wrap(ErrAccountFrozen, "transfer")
	}
	if src.Mint != mint.Key() || dst.Mint != mint.Key() {
		return errors.Wrapf(ErrMintMismatch, "mint %s", mint.Key())
	}
	m, err := c.LoadMint(mint)
	if err != nil {
		return err
	}
	if m.Decimals != decimals {
		return errors.Wrapf(ErrMintDecimalsMismatch, "mint has %d decimals, got %d", m.Decimals, decimals)
	}
	if auth == nil || auth.Address() != src.Owner {
		return errors.Wrapf(ErrOwnerMismatch, "token account %s", source.Key())
	}
	if src.Amount < amount {
		return errors.Wrapf(errors.ErrInsufficientFunds, "token account %s holds %d, need %d", source.Key(), src.Amount, amount)
	}
	if source.Key() == destination.Key() {
		return nil
	}
	if dst.Amount+amount < dst.Amount {
		return errors.Wrapf(errors.ErrOverflow, "token account %s", destination.Key())
	}
	src.Amount -= amount
	dst.Amount += amount
	if err := save(source, src); err != nil {
		return err
	}
	return save(destination, dst)
}

// CloseAccount moves all lamports of an empty token account to the
// destination and releases the account.
func (c BaseController) CloseAccount(ctx context.Context, account, destination *ledger.AccountInfo, auth ledger.Authority) error {
	acc, err := c.LoadAccount(account)
	if err != nil {
		return err
	}
	if auth == nil || auth.Address() != acc.Owner {
		return errors.Wrapf(ErrOwnerMismatch, "token account %s", account.Key())
	}
	if acc.Amount != 0 {
		return errors.Wrapf(ErrNonNativeHasBalance, "token account %s holds %d", account.Key(), acc.Amount)
	}
	if account.Key() == destination.Key() {
		return errors.Wrap(errors.ErrInput, "cannot close into itself")
	}
	lamports := account.Lamports()
	if err := account.SubLamports(lamports); err != nil {
		return err
	}
	if err := destination.AddLamports(lamports); err != nil {
		return err
	}
	return account.Close()
}

type marshaler interface {
	Marshal() ([]byte, error)
}

func save(acc *ledger.AccountInfo, m marshaler) error {
	raw, err := m.Marshal()
	if err != nil {
		return err
	}
	return acc.SetData(0, raw)
}
