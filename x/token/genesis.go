package token

import (
	"github.com/iov-one/timevault"
	"github.com/iov-one/timevault/errors"
	"github.com/iov-one/timevault/ledger"
)

// GenesisMint declares a mint and the initial token balances.
type GenesisMint struct {
	Address   timevault.Address  `json:"address"`
	Decimals  uint8              `json:"decimals"`
	Authority *timevault.Address `json:"authority,omitempty"`
	Balances  []GenesisBalance   `json:"balances"`
}

// GenesisBalance is held in the associated token account of the owner.
type GenesisBalance struct {
	Owner  timevault.Address `json:"owner"`
	Amount uint64            `json:"amount"`
}

// Initializer creates the mints declared under the "mints" key.
type Initializer struct{}

var _ ledger.Initializer = Initializer{}

// FromGenesis creates every declared mint with its associated token
// accounts. All accounts are funded with the rent exempt minimum.
func (Initializer) FromGenesis(opts timevault.Options, l *ledger.Ledger) error {
	var mints []GenesisMint
	if err := opts.ReadOptions("mints", &mints); err != nil {
		return errors.Wrap(err, "mints")
	}
	rent, err := l.Rent()
	if err != nil {
		return err
	}
	for _, gm := range mints {
		m := Mint{
			MintAuthority: gm.Authority,
			Decimals:      gm.Decimals,
			IsInitialized: true,
		}
		for _, b := range gm.Balances {
			if m.Supply+b.Amount < m.Supply {
				return errors.Wrapf(errors.ErrOverflow, "supply of mint %s", gm.Address)
			}
			m.Supply += b.Amount

			addr, _, err := AssociatedAddress(b.Owner, gm.Address)
			if err != nil {
				return err
			}
			ta := TokenAccount{Mint: gm.Address, Owner: b.Owner, Amount: b.Amount, State: Initialized}
			if err := setAccount(l, addr, &ta, rent.MinimumBalance(AccountSize)); err != nil {
				return errors.Wrapf(err, "token account of %s", b.Owner)
			}
		}
		if err := setAccount(l, gm.Address, &m, rent.MinimumBalance(MintSize)); err != nil {
			return errors.Wrapf(err, "mint %s", gm.Address)
		}
	}
	return nil
}

func setAccount(l *ledger.Ledger, addr timevault.Address, m marshaler, lamports uint64) error {
	raw, err := m.Marshal()
	if err != nil {
		return err
	}
	return l.SetAccount(addr, &ledger.Account{Lamports: lamports, Owner: ProgramID, Data: raw})
}
