package ledger

import (
	"context"

	"github.com/iov-one/timevault"
	"github.com/iov-one/timevault/errors"
)

// Authority is a proof that the caller may act on behalf of an address.
// It is obtained either from an account that signed the transaction or by
// authorizing a DerivedAuthority. Only this package can create it.
type Authority interface {
	// Address returns the address this authority acts for.
	Address() timevault.Address

	authority()
}

type signerAuthority struct {
	addr timevault.Address
}

func (s signerAuthority) Address() timevault.Address { return s.addr }
func (signerAuthority) authority()                   {}

type programAuthority struct {
	addr timevault.Address
}

func (p programAuthority) Address() timevault.Address { return p.addr }
func (programAuthority) authority()                   {}

// DerivedAuthority is a request to act on behalf of a derived address.
// The seeds must reproduce Address for the executing program.
type DerivedAuthority struct {
	Seeds   [][]byte
	Address timevault.Address
}

// Authorize re-derives the address from the seeds using the program that
// is executing the current instruction. On success, the returned authority
// may be used to move funds out of the derived address.
func Authorize(ctx context.Context, d DerivedAuthority) (Authority, error) {
	program, ok := timevault.ProgramID(ctx)
	if !ok {
		return nil, errors.Wrap(errors.ErrHuman, "no executing program in context")
	}
	return AuthorizeProgram(program, d)
}

// AuthorizeProgram is like Authorize but derives the address with given
// program id. Controllers of a program use it to act for their own derived
// addresses while they are called by another program.
func AuthorizeProgram(program timevault.Address, d DerivedAuthority) (Authority, error) {
	addr, err := timevault.CreateDerivedAddress(program, d.Seeds...)
	if err != nil {
		return nil, err
	}
	if addr != d.Address {
		return nil, errors.Wrapf(errors.ErrInvalidSeeds, "seeds derive %s, not %s", addr, d.Address)
	}
	return programAuthority{addr: addr}, nil
}

// RequireAuthority checks that given authority may act for the account.
func RequireAuthority(auth Authority, acc *AccountInfo) error {
	if auth == nil {
		return errors.Wrapf(errors.ErrMissingRequiredSignature, "no authority for %s", acc.Key())
	}
	if auth.Address() != acc.Key() {
		return errors.Wrapf(errors.ErrMissingRequiredSignature, "authority for %s cannot act for %s", auth.Address(), acc.Key())
	}
	return nil
}
