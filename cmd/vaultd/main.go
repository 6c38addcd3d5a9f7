package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/iov-one/timevault"
)

// commands is a register of all available commands. The name is used to
// match with the first argument given.
//
// A command function is given stdin, stdout and the command line arguments
// without the program name and the command name. It is responsible for
// parsing its own flags. Every command that touches the ledger opens the
// store kept in the -home directory and closes it before returning, so
// commands can be chained in a shell script:
//
//	$ vaultd init -genesis genesis.json
//	$ vaultd keys -key alice.key
//	$ vaultd lock -key alice.key -amount 1000000000 -unlock +1h
//	$ vaultd withdraw -key alice.key -vault <address>
var commands = map[string]func(input io.Reader, output io.Writer, args []string) error{
	"airdrop":  cmdAirdrop,
	"init":     cmdInit,
	"keyaddr":  cmdKeyaddr,
	"keys":     cmdKeys,
	"lock":     cmdLock,
	"show":     cmdShow,
	"version":  cmdVersion,
	"withdraw": cmdWithdraw,
}

func main() {
	if len(os.Args) == 1 {
		fmt.Fprintf(os.Stderr, "%s runs the time vault ledger locally.\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Usage: %s <command> [<flags>]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nAvailable commands are:\n\t%s\n", strings.Join(availableCmds(), "\n\t"))
		fmt.Fprintf(os.Stderr, "Run '%s <command> -help' to learn more about each command.\n", os.Args[0])
		os.Exit(2)
	}
	run, ok := commands[os.Args[1]]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "\nAvailable commands are:\n\t%s\n", strings.Join(availableCmds(), "\n\t"))
		os.Exit(2)
	}

	if err := run(os.Stdin, os.Stdout, os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func availableCmds() []string {
	available := make([]string, 0, len(commands))
	for name := range commands {
		available = append(available, name)
	}
	sort.Strings(available)
	return available
}

func cmdVersion(in io.Reader, out io.Writer, args []string) error {
	_, err := fmt.Fprintln(out, timevault.Version())
	return err
}
