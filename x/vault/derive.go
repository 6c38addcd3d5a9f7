package vault

import (
	"encoding/binary"

	"github.com/iov-one/timevault"
	"github.com/iov-one/timevault/errors"
)

// SeedTag is the first seed of every holding account address.
const SeedTag = "vault"

// seeds returns the derivation seeds without the bump:
//
//	"vault" | owner | [mint] | amount_le | unlock_le
func seeds(owner timevault.Address, mint *timevault.Address, amount uint64, unlock timevault.UnixTime) [][]byte {
	amountLE := make([]byte, 8)
	binary.LittleEndian.PutUint64(amountLE, amount)
	unlockLE := make([]byte, 8)
	binary.LittleEndian.PutUint64(unlockLE, uint64(unlock))

	s := [][]byte{[]byte(SeedTag), owner[:]}
	if mint != nil {
		s = append(s, mint[:])
	}
	return append(s, amountLE, unlockLE)
}

// Seeds returns the full seed list, bump included, that derives the
// holding account of the record.
func (r *Record) Seeds() [][]byte {
	return append(seeds(r.Owner, r.Mint, r.Amount, r.UnlockTime), []byte{r.Bump})
}

// FindVaultAddress returns the holding account address and its bump for
// given deposit parameters.
func FindVaultAddress(program, owner timevault.Address, mint *timevault.Address, amount uint64, unlock timevault.UnixTime) (timevault.Address, uint8, error) {
	return timevault.FindDerivedAddress(program, seeds(owner, mint, amount, unlock)...)
}

// ValidateAddress recomputes the holding account address from the record
// and compares it with the candidate. A mismatch is reported as invalid
// account data, seeds that cannot produce an address as invalid seeds.
func ValidateAddress(program, candidate timevault.Address, r *Record) error {
	addr, err := timevault.CreateDerivedAddress(program, r.Seeds()...)
	if err != nil {
		return err
	}
	if addr != candidate {
		return errors.Wrapf(errors.ErrInvalidAccountData, "vault address is %s, got %s", addr, candidate)
	}
	return nil
}
