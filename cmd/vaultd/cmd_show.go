package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/iov-one/timevault"
	"github.com/iov-one/timevault/x/token"
	"github.com/iov-one/timevault/x/vault"
	amino "github.com/tendermint/go-amino"
)

var cdc = amino.NewCodec()

// accountView is the printed form of an account. Program owned data is
// decoded when the owner is known.
type accountView struct {
	Address    string     `json:"address"`
	Lamports   uint64     `json:"lamports"`
	Owner      string     `json:"owner"`
	Executable bool       `json:"executable"`
	DataLength int64      `json:"data_length"`
	Vault      *vaultView `json:"vault,omitempty"`
	Mint       *mintView  `json:"mint,omitempty"`
	Token      *tokenView `json:"token_account,omitempty"`
}

type vaultView struct {
	Owner      string `json:"owner"`
	Amount     string `json:"amount"`
	Mint       string `json:"mint,omitempty"`
	UnlockTime string `json:"unlock_time"`
	Status     string `json:"status"`
}

type mintView struct {
	Supply   string `json:"supply"`
	Decimals uint8  `json:"decimals"`
}

type tokenView struct {
	Mint   string `json:"mint"`
	Owner  string `json:"owner"`
	Amount uint64 `json:"amount"`
	State  uint8  `json:"state"`
}

func cmdShow(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Print the state of an account as JSON. Vaults, token mints and token
accounts are decoded. The vault status is computed against the current
clock reading.
`)
		fl.PrintDefaults()
	}
	var (
		conf      = nodeFlags(fl)
		addressFl = flAddress(fl, "address", "", "Address of the account.")
	)
	fl.Parse(args)

	n, err := openNode(conf, false)
	if err != nil {
		return err
	}
	defer n.Close()

	view, err := showAccount(n, *addressFl)
	if err != nil {
		return err
	}
	raw, err := cdc.MarshalJSONIndent(view, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot serialize: %s", err)
	}
	_, err = fmt.Fprintln(output, string(raw))
	return err
}

func showAccount(n *node, addr timevault.Address) (*accountView, error) {
	acc, err := n.ledger.Account(addr)
	if err != nil {
		return nil, err
	}
	view := &accountView{
		Address:    addr.String(),
		Lamports:   acc.Lamports,
		Owner:      acc.Owner.String(),
		Executable: acc.Executable,
		DataLength: int64(len(acc.Data)),
	}

	switch acc.Owner {
	case vault.ProgramID:
		rec, err := vault.Decode(acc.Data)
		if err != nil {
			// Tombstoned or foreign data is shown raw.
			break
		}
		v := &vaultView{
			Owner:      rec.Owner.String(),
			Amount:     amountOf(n, rec),
			UnlockTime: rec.UnlockTime.String(),
			Status:     rec.Status(n.ledger.Clock().Now()).String(),
		}
		if rec.IsFungible() {
			v.Mint = rec.Mint.String()
		}
		view.Vault = v
	case token.ProgramID:
		switch len(acc.Data) {
		case token.MintSize:
			var m token.Mint
			if err := m.Unmarshal(acc.Data); err == nil {
				view.Mint = &mintView{
					Supply:   token.FormatAmount(m.Supply, m.Decimals),
					Decimals: m.Decimals,
				}
			}
		case token.AccountSize:
			var a token.TokenAccount
			if err := a.Unmarshal(acc.Data); err == nil {
				view.Token = &tokenView{
					Mint:   a.Mint.String(),
					Owner:  a.Owner.String(),
					Amount: a.Amount,
					State:  uint8(a.State),
				}
			}
		}
	}
	return view, nil
}
