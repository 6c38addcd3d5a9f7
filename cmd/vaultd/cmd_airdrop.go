package main

import (
	"flag"
	"fmt"
	"io"
)

func cmdAirdrop(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Credit lamports to an account out of thin air. Only available on a local
ledger.
`)
		fl.PrintDefaults()
	}
	var (
		conf       = nodeFlags(fl)
		toFl       = flAddress(fl, "to", "", "Address of the account to credit.")
		lamportsFl = fl.Uint64("lamports", 0, "Number of lamports to credit.")
	)
	fl.Parse(args)

	if toFl.IsZero() {
		flagDie("-to is required")
	}
	if *lamportsFl == 0 {
		flagDie("-lamports must be greater than zero")
	}

	n, err := openNode(conf, false)
	if err != nil {
		return err
	}
	defer n.Close()

	if err := n.ledger.Airdrop(*toFl, *lamportsFl); err != nil {
		return err
	}
	if _, err := n.ledger.Commit(); err != nil {
		return err
	}
	acc, err := n.ledger.Account(*toFl)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(output, "%s %d\n", toFl, acc.Lamports)
	return err
}
