package main

import (
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/iov-one/timevault/crypto"
)

// seedSize is the length of the private key seed stored in a key file.
const seedSize = 32

func keyFlag(fl *flag.FlagSet) *string {
	return fl.String("key", env("VAULTD_PRIV_KEY", filepath.Join(os.Getenv("HOME"), ".vaultd.priv.key")),
		"Path to the private key file that transactions are signed with. You can use VAULTD_PRIV_KEY environment variable to set it.")
}

func cmdKeys(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Derive a new private key and print its address.

The key is derived from a hex encoded master seed following the given
hardened derivation path. If no seed is provided a random one is used.
This command fails if the private key file already exists.
`)
		fl.PrintDefaults()
	}
	var (
		keyPathFl = keyFlag(fl)
		seedFl    = fl.String("seed", "", "Hex encoded master seed. Random if not provided.")
		pathFl    = fl.String("path", crypto.DefaultDerivationPath, "Hardened derivation path.")
	)
	fl.Parse(args)

	if _, err := os.Stat(*keyPathFl); !os.IsNotExist(err) {
		// Refuse to overwrite an existing key. The user must delete it
		// manually.
		return fmt.Errorf("private key file %q already exists, delete this file and try again", *keyPathFl)
	}

	var seed []byte
	if *seedFl == "" {
		seed = make([]byte, 64)
		if _, err := rand.Read(seed); err != nil {
			return fmt.Errorf("cannot generate seed: %s", err)
		}
	} else {
		var err error
		if seed, err = hex.DecodeString(*seedFl); err != nil {
			return fmt.Errorf("invalid seed: %s", err)
		}
	}

	key, err := crypto.DeriveKey(seed, *pathFl)
	if err != nil {
		return err
	}

	fd, err := os.OpenFile(*keyPathFl, os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("cannot create private key file: %s", err)
	}
	defer fd.Close()

	if _, err := fd.Write(key.Seed()); err != nil {
		return fmt.Errorf("cannot write private key: %s", err)
	}
	if err := fd.Close(); err != nil {
		return fmt.Errorf("cannot close private key file: %s", err)
	}
	_, err = fmt.Fprintln(output, key.Address())
	return err
}

func cmdKeyaddr(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Print out the address associated with your private key.
`)
		fl.PrintDefaults()
	}
	keyPathFl := keyFlag(fl)
	fl.Parse(args)

	key, err := loadKey(*keyPathFl)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(output, key.Address())
	return err
}

func loadKey(path string) (*crypto.PrivateKey, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read private key file: %s", err)
	}
	if len(raw) != seedSize {
		return nil, fmt.Errorf("invalid private key length: %d", len(raw))
	}
	return crypto.PrivateKeyFromSeed(raw)
}
