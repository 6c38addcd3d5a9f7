package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/iov-one/timevault"
	"github.com/iov-one/timevault/crypto"
	"github.com/iov-one/timevault/errors"
	"github.com/iov-one/timevault/ledger"
	"github.com/iov-one/timevault/store/iavl"
	"github.com/iov-one/timevault/x/system"
	"github.com/iov-one/timevault/x/token"
	"github.com/iov-one/timevault/x/utils"
	"github.com/iov-one/timevault/x/vault"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/tendermint/tendermint/libs/log"
)

// dbName is the name of the database directory created in the home
// directory.
const dbName = "ledger"

// nodeConfig holds the flags shared by all commands working on the ledger.
type nodeConfig struct {
	home     *string
	logLevel *string
	now      *string
}

func nodeFlags(fl *flag.FlagSet) *nodeConfig {
	return &nodeConfig{
		home: fl.String("home", env("VAULTD_HOME", filepath.Join(os.Getenv("HOME"), ".vaultd")),
			"Directory the ledger state is kept in. You can use VAULTD_HOME environment variable to set it."),
		logLevel: fl.String("log-level", env("VAULTD_LOG_LEVEL", "error"),
			"Log level, one of debug, info, error or none."),
		now: fl.String("now", "",
			"Override the clock reading, as unix seconds or RFC3339. System time is used if not set."),
	}
}

// node is an opened ledger with all programs registered.
type node struct {
	store   iavl.CommitStore
	ledger  *ledger.Ledger
	logger  log.Logger
	metrics *prometheus.Registry
	// debug exposes the details of internal errors.
	debug bool
}

// openNode loads the ledger kept in the home directory. The ledger must
// have been initialized unless create is set.
func openNode(conf *nodeConfig, create bool) (*node, error) {
	logger, err := newLogger(os.Stderr, *conf.logLevel)
	if err != nil {
		return nil, err
	}
	clock, err := newClock(*conf.now)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(filepath.Join(*conf.home, dbName+".db")); os.IsNotExist(err) && !create {
		return nil, fmt.Errorf("no ledger in %q, run init first", *conf.home)
	}
	if err := os.MkdirAll(*conf.home, 0755); err != nil {
		return nil, fmt.Errorf("cannot create home directory: %s", err)
	}
	db, err := iavl.NewCommitStore(*conf.home, dbName)
	if err != nil {
		return nil, err
	}

	metrics := prometheus.NewRegistry()
	m, err := utils.NewMetrics(metrics)
	if err != nil {
		db.Close()
		return nil, err
	}
	chain := ledger.ChainDecorators(
		utils.NewLogging(),
		utils.NewRecovery(),
		m,
	)

	l := ledger.New(db, clock, logger.With("module", "ledger"))
	sys := system.NewController()
	tok := token.NewController(sys)
	l.Register(system.ProgramID, chain.WithProgram(system.NewProgram()))
	l.Register(token.ProgramID, chain.WithProgram(token.NewProgram(tok)))
	l.Register(token.AssociatedProgramID, chain.WithProgram(token.NewAssociatedProgram(tok, system.ProgramID)))
	l.Register(vault.ProgramID, chain.WithProgram(vault.NewProgram(sys, tok)))

	return &node{
		store:   db,
		ledger:  l,
		logger:  logger,
		metrics: metrics,
		debug:   *conf.logLevel == "debug",
	}, nil
}

func (n *node) Close() {
	n.store.Close()
}

func (n *node) context() context.Context {
	return timevault.WithLogger(context.Background(), n.logger.With("module", "vaultd"))
}

// submit signs and executes the instructions and commits the result.
func (n *node) submit(key *crypto.PrivateKey, ixs ...ledger.Instruction) error {
	tx := ledger.NewTransaction(ixs...)
	tx.Sign(key)
	if err := n.ledger.Submit(n.context(), tx); err != nil {
		return rejected(n.logger, err, n.debug)
	}
	_, err := n.ledger.Commit()
	return err
}

// rejected logs the outcome code of a failed transaction and returns the
// error as it can be shown to the user. Errors that were not registered
// are reported as an internal error unless debug is set.
func rejected(logger log.Logger, err error, debug bool) error {
	code, msg := errors.Info(err, debug)
	logger.Info("transaction rejected", "code", code, "err", msg)
	return errors.Redact(errors.Wrap(err, "submit"), debug)
}

// dumpMetrics writes all gathered metric families, one per line.
func (n *node) dumpMetrics(w io.Writer) error {
	families, err := n.metrics.Gather()
	if err != nil {
		return fmt.Errorf("cannot gather metrics: %s", err)
	}
	for _, f := range families {
		if _, err := fmt.Fprintln(w, f.String()); err != nil {
			return err
		}
	}
	return nil
}

func newLogger(w io.Writer, level string) (log.Logger, error) {
	allow, err := log.AllowLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %s", err)
	}
	return log.NewFilter(log.NewTMLogger(log.NewSyncWriter(w)), allow), nil
}

func newClock(now string) (ledger.Clock, error) {
	if now == "" {
		return ledger.SystemClock{}, nil
	}
	t, err := parseTime(now)
	if err != nil {
		return nil, err
	}
	return ledger.NewManualClock(t), nil
}

// parseTime accepts unix seconds or an RFC3339 formatted time.
func parseTime(raw string) (timevault.UnixTime, error) {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return timevault.UnixTime(n), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: expected unix seconds or RFC3339", raw)
	}
	return timevault.AsUnixTime(t), nil
}

// parseUnlock accepts an absolute time or a duration relative to now
// prefixed with a plus sign, for example +72h.
func parseUnlock(raw string, now timevault.UnixTime) (timevault.UnixTime, error) {
	if strings.HasPrefix(raw, "+") {
		d, err := time.ParseDuration(raw[1:])
		if err != nil {
			return 0, fmt.Errorf("invalid unlock duration %q: %s", raw, err)
		}
		return now.Add(d), nil
	}
	return parseTime(raw)
}
