package main

import (
	"flag"
	"fmt"
	"io"
	"strconv"

	"github.com/iov-one/timevault"
	"github.com/iov-one/timevault/errors"
	"github.com/iov-one/timevault/ledger"
	"github.com/iov-one/timevault/x/token"
	"github.com/iov-one/timevault/x/vault"
)

func cmdLock(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Lock funds of the key owner in a new vault and print the vault address.

Without -mint the amount is in lamports. With -mint the amount is in
tokens of that mint, for example 1.25, and is moved from the associated
token account of the key owner.

The unlock time is either an absolute time (unix seconds or RFC3339) or a
duration relative to the current time prefixed with a plus sign, for
example +72h.
`)
		fl.PrintDefaults()
	}
	var (
		conf      = nodeFlags(fl)
		keyPathFl = keyFlag(fl)
		mintFl    = flAddress(fl, "mint", "", "Address of the token mint. Lamports are locked if not set.")
		amountFl  = fl.String("amount", "", "Amount to lock.")
		unlockFl  = fl.String("unlock", "", "Unlock time.")
		metricsFl = fl.Bool("metrics", false, "Print collected metrics after the transaction.")
	)
	fl.Parse(args)

	if *amountFl == "" {
		flagDie("-amount is required")
	}
	if *unlockFl == "" {
		flagDie("-unlock is required")
	}

	key, err := loadKey(*keyPathFl)
	if err != nil {
		return err
	}
	n, err := openNode(conf, false)
	if err != nil {
		return err
	}
	defer n.Close()

	unlock, err := parseUnlock(*unlockFl, n.ledger.Clock().Now())
	if err != nil {
		return err
	}

	var (
		ix        ledger.Instruction
		vaultAddr timevault.Address
	)
	if mintFl.IsZero() {
		amount, err := strconv.ParseUint(*amountFl, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid lamports amount %q: %s", *amountFl, err)
		}
		ix, vaultAddr, err = vault.NewInitNativeInstruction(key.Address(), amount, unlock)
		if err != nil {
			return err
		}
	} else {
		mint, err := loadMint(n, *mintFl)
		if err != nil {
			return err
		}
		amount, err := token.ParseAmount(*amountFl, mint.Decimals)
		if err != nil {
			return err
		}
		ix, vaultAddr, err = vault.NewInitFungibleInstruction(key.Address(), *mintFl, amount, unlock)
		if err != nil {
			return err
		}
	}

	if err := n.submit(key, ix); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(output, vaultAddr); err != nil {
		return err
	}
	if *metricsFl {
		return n.dumpMetrics(output)
	}
	return nil
}

func cmdWithdraw(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Release the funds of a matured vault to the key owner. The vault account
is closed.
`)
		fl.PrintDefaults()
	}
	var (
		conf      = nodeFlags(fl)
		keyPathFl = keyFlag(fl)
		vaultFl   = flAddress(fl, "vault", "", "Address of the vault.")
		metricsFl = fl.Bool("metrics", false, "Print collected metrics after the transaction.")
	)
	fl.Parse(args)

	if vaultFl.IsZero() {
		flagDie("-vault is required")
	}

	key, err := loadKey(*keyPathFl)
	if err != nil {
		return err
	}
	n, err := openNode(conf, false)
	if err != nil {
		return err
	}
	defer n.Close()

	acc, err := n.ledger.Account(*vaultFl)
	if err != nil {
		return err
	}
	rec, err := vault.Decode(acc.Data)
	if err != nil {
		return errors.Wrapf(err, "vault %s", vaultFl)
	}

	var ix ledger.Instruction
	if rec.IsFungible() {
		ix, err = vault.NewWithdrawFungibleInstruction(key.Address(), *vaultFl, *rec.Mint)
		if err != nil {
			return err
		}
	} else {
		ix = vault.NewWithdrawNativeInstruction(key.Address(), *vaultFl)
	}

	if err := n.submit(key, ix); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(output, "released %s\n", amountOf(n, rec)); err != nil {
		return err
	}
	if *metricsFl {
		return n.dumpMetrics(output)
	}
	return nil
}

func loadMint(n *node, addr timevault.Address) (*token.Mint, error) {
	acc, err := n.ledger.Account(addr)
	if err != nil {
		return nil, err
	}
	if acc.Owner != token.ProgramID {
		return nil, errors.Wrapf(errors.ErrNotFound, "no mint at %s", addr)
	}
	var m token.Mint
	if err := m.Unmarshal(acc.Data); err != nil {
		return nil, errors.Wrapf(err, "mint %s", addr)
	}
	return &m, nil
}

// amountOf returns the human readable amount held by the vault.
func amountOf(n *node, rec *vault.Record) string {
	if !rec.IsFungible() {
		return fmt.Sprintf("%d lamports", rec.Amount)
	}
	mint, err := loadMint(n, *rec.Mint)
	if err != nil {
		return fmt.Sprintf("%d base units of %s", rec.Amount, rec.Mint)
	}
	return fmt.Sprintf("%s of %s", token.FormatAmount(rec.Amount, mint.Decimals), rec.Mint)
}
