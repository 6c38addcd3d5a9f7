package ledger

import (
	"math"

	"github.com/iov-one/timevault"
	"github.com/iov-one/timevault/errors"
)

// AccountInfo is the handle a program receives for every account passed
// with an instruction. Handles of the same address passed more than once
// share their state.
type AccountInfo struct {
	key      timevault.Address
	signer   bool
	writable bool
	acc      *Account
}

// NewAccountInfo returns a handle over given account state. The ledger
// builds handles for programs, use this function only to call program
// functions directly, for example in tests.
func NewAccountInfo(key timevault.Address, signer, writable bool, acc *Account) *AccountInfo {
	if acc == nil {
		acc = &Account{}
	}
	return &AccountInfo{key: key, signer: signer, writable: writable, acc: acc}
}

// Key returns the address of the account.
func (a *AccountInfo) Key() timevault.Address { return a.key }

// IsSigner returns true if the transaction was signed by this account.
func (a *AccountInfo) IsSigner() bool { return a.signer }

// IsWritable returns true if the instruction may modify this account.
func (a *AccountInfo) IsWritable() bool { return a.writable }

// Lamports returns the native balance.
func (a *AccountInfo) Lamports() uint64 { return a.acc.Lamports }

// Owner returns the program that owns this account.
func (a *AccountInfo) Owner() timevault.Address { return a.acc.Owner }

// Executable returns true if this account is a program.
func (a *AccountInfo) Executable() bool { return a.acc.Executable }

// Data returns the data of the account. The slice can be modified in
// place if the account is writable.
func (a *AccountInfo) Data() []byte { return a.acc.Data }

// DataIsEmpty returns true if the account holds no data.
func (a *AccountInfo) DataIsEmpty() bool { return len(a.acc.Data) == 0 }

func (a *AccountInfo) requireWritable() error {
	if !a.writable {
		return errors.Wrapf(errors.ErrReadonlyModified, "account %s", a.key)
	}
	return nil
}

// AddLamports credits the account.
func (a *AccountInfo) AddLamports(n uint64) error {
	if err := a.requireWritable(); err != nil {
		return err
	}
	if a.acc.Lamports > math.MaxUint64-n {
		return errors.Wrapf(errors.ErrOverflow, "account %s", a.key)
	}
	a.acc.Lamports += n
	return nil
}

// SubLamports debits the account.
func (a *AccountInfo) SubLamports(n uint64) error {
	if err := a.requireWritable(); err != nil {
		return err
	}
	if a.acc.Lamports < n {
		return errors.Wrapf(errors.ErrInsufficientFunds, "account %s holds %d, need %d", a.key, a.acc.Lamports, n)
	}
	a.acc.Lamports -= n
	return nil
}

// Resize changes the size of the data. New bytes are zeroed.
func (a *AccountInfo) Resize(size int) error {
	if err := a.requireWritable(); err != nil {
		return err
	}
	if size < 0 {
		return errors.Wrapf(errors.ErrInput, "negative size %d", size)
	}
	if size <= len(a.acc.Data) {
		a.acc.Data = a.acc.Data[:size:size]
		return nil
	}
	data := make([]byte, size)
	copy(data, a.acc.Data)
	a.acc.Data = data
	return nil
}

// Assign transfers the ownership of the account to given program.
func (a *AccountInfo) Assign(owner timevault.Address) error {
	if err := a.requireWritable(); err != nil {
		return err
	}
	a.acc.Owner = owner
	return nil
}

// Close returns the account to its initial state: no data and owned by the
// system program. The balance must be moved out first.
func (a *AccountInfo) Close() error {
	if err := a.requireWritable(); err != nil {
		return err
	}
	if a.acc.Lamports != 0 {
		return errors.Wrapf(errors.ErrState, "account %s still holds %d lamports", a.key, a.acc.Lamports)
	}
	a.acc.Data = nil
	a.acc.Owner = timevault.ZeroAddress
	return nil
}

// Signer returns the authority of this account if it signed the
// transaction.
func (a *AccountInfo) Signer() (Authority, error) {
	if !a.signer {
		return nil, errors.Wrapf(errors.ErrMissingRequiredSignature, "account %s", a.key)
	}
	return signerAuthority{addr: a.key}, nil
}

// SetData copies raw into the account data. The account must already have
// room for it, use Resize to grow it first.
func (a *AccountInfo) SetData(offset int, raw []byte) error {
	if err := a.requireWritable(); err != nil {
		return err
	}
	if offset < 0 || offset+len(raw) > len(a.acc.Data) {
		return errors.Wrapf(errors.ErrInvalidAccountData, "cannot write %d bytes at %d into %d", len(raw), offset, len(a.acc.Data))
	}
	copy(a.acc.Data[offset:], raw)
	return nil
}
