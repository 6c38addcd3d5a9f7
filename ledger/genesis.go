package ledger

import (
	"github.com/iov-one/timevault"
	"github.com/iov-one/timevault/errors"
	"github.com/iov-one/timevault/gconf"
)

// GenesisAccount is the initial state of an account as declared in the
// genesis file. Data is base64 encoded.
type GenesisAccount struct {
	Address    timevault.Address `json:"address"`
	Lamports   uint64            `json:"lamports"`
	Owner      timevault.Address `json:"owner"`
	Executable bool              `json:"executable"`
	Data       []byte            `json:"data"`
}

// Initializer implementations are used to initialize programs from genesis
// file contents.
type Initializer interface {
	FromGenesis(opts timevault.Options, l *Ledger) error
}

// InitGenesis loads the rent configuration and the accounts from the
// genesis options and then runs all initializers.
//
//	{
//	  "conf": {"rent": {"lamports_per_byte_year": 3480, "exemption_years": 2, "storage_overhead": 128}},
//	  "accounts": [{"address": "...", "lamports": 1000000000}]
//	}
func (l *Ledger) InitGenesis(opts timevault.Options, inits ...Initializer) error {
	if err := l.initRent(opts); err != nil {
		return err
	}

	var accounts []GenesisAccount
	if err := opts.ReadOptions("accounts", &accounts); err != nil {
		return errors.Wrap(err, "accounts")
	}
	for i, a := range accounts {
		acc := &Account{
			Lamports:   a.Lamports,
			Owner:      a.Owner,
			Executable: a.Executable,
			Data:       a.Data,
		}
		if err := l.SetAccount(a.Address, acc); err != nil {
			return errors.Wrapf(err, "account %d", i)
		}
	}

	for _, init := range inits {
		if err := init.FromGenesis(opts, l); err != nil {
			return err
		}
	}
	return nil
}

func (l *Ledger) initRent(opts timevault.Options) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var rent timevault.Rent
	err := gconf.InitConfig(l.state, opts, rentConfigPkg, &rent)
	if errors.ErrNotFound.Is(err) {
		err = gconf.Save(l.state, rentConfigPkg, timevault.DefaultRent())
	}
	return errors.Wrap(err, "rent")
}
