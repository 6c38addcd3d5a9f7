package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"io/ioutil"

	"github.com/iov-one/timevault"
	"github.com/iov-one/timevault/x/token"
)

func cmdInit(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a new ledger in the home directory from a genesis file.

The genesis file is a JSON object that may declare the rent configuration,
accounts and token mints. Without a genesis file the ledger starts empty
with the default rent configuration. This command fails if the ledger was
already initialized.
`)
		fl.PrintDefaults()
	}
	var (
		conf      = nodeFlags(fl)
		genesisFl = fl.String("genesis", "", "Path to the genesis file.")
	)
	fl.Parse(args)

	opts := make(timevault.Options)
	if *genesisFl != "" {
		raw, err := ioutil.ReadFile(*genesisFl)
		if err != nil {
			return fmt.Errorf("cannot read genesis file: %s", err)
		}
		if err := json.Unmarshal(raw, &opts); err != nil {
			return fmt.Errorf("cannot parse genesis file: %s", err)
		}
	}

	n, err := openNode(conf, true)
	if err != nil {
		return err
	}
	defer n.Close()

	latest, err := n.store.LatestVersion()
	if err != nil {
		return err
	}
	if latest.Version != 0 {
		return fmt.Errorf("ledger in %q already initialized at version %d", *conf.home, latest.Version)
	}

	if err := n.ledger.InitGenesis(opts, token.Initializer{}); err != nil {
		return fmt.Errorf("cannot initialize genesis: %+v", err)
	}
	id, err := n.ledger.Commit()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(output, "initialized %s at version %d\n", *conf.home, id.Version)
	return err
}
