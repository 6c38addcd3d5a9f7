package vaulttest

import (
	"context"
	"testing"

	"github.com/iov-one/timevault"
	"github.com/iov-one/timevault/ledger"
	"github.com/iov-one/timevault/store/iavl"
	"github.com/iov-one/timevault/x/system"
	"github.com/iov-one/timevault/x/token"
)

// GenesisTime is the clock reading of every new Env.
const GenesisTime timevault.UnixTime = 1757633343

// Env is an in memory ledger running the system and the token programs.
type Env struct {
	Ledger *ledger.Ledger
	Clock  *ledger.ManualClock
	System system.BaseController
	Token  token.BaseController

	chain ledger.Decorators
}

// NewEnv returns a ready ledger. All programs registered through the
// environment are wrapped with given decorators.
func NewEnv(t testing.TB, decorators ...ledger.Decorator) *Env {
	t.Helper()
	clock := ledger.NewManualClock(GenesisTime)
	e := &Env{
		Ledger: ledger.New(iavl.MockCommitStore(), clock, nil),
		Clock:  clock,
		System: system.NewController(),
		chain:  ledger.ChainDecorators(decorators...),
	}
	e.Token = token.NewController(e.System)
	e.Register(system.ProgramID, system.NewProgram())
	e.Register(token.ProgramID, token.NewProgram(e.Token))
	e.Register(token.AssociatedProgramID, token.NewAssociatedProgram(e.Token, system.ProgramID))
	return e
}

// Register adds a program to the ledger.
func (e *Env) Register(id timevault.Address, p ledger.Program) {
	e.Ledger.Register(id, e.chain.WithProgram(p))
}

// Rent returns the rent configuration of the ledger.
func (e *Env) Rent(t testing.TB) timevault.Rent {
	t.Helper()
	r, err := e.Ledger.Rent()
	if err != nil {
		t.Fatalf("cannot read rent: %+v", err)
	}
	return r
}

// Fund credits the account with lamports.
func (e *Env) Fund(t testing.TB, addr timevault.Address, lamports uint64) {
	t.Helper()
	if err := e.Ledger.Airdrop(addr, lamports); err != nil {
		t.Fatalf("cannot fund %s: %+v", addr, err)
	}
}

// Lamports returns the balance of the account.
func (e *Env) Lamports(t testing.TB, addr timevault.Address) uint64 {
	t.Helper()
	return e.Account(t, addr).Lamports
}

// Account returns the state of the account.
func (e *Env) Account(t testing.TB, addr timevault.Address) *ledger.Account {
	t.Helper()
	acc, err := e.Ledger.Account(addr)
	if err != nil {
		t.Fatalf("cannot load %s: %+v", addr, err)
	}
	return acc
}

// NewMint creates a mint through the ledger. The authority pays for it and
// may issue tokens.
func (e *Env) NewMint(t testing.TB, authority timevault.Address, decimals uint8) timevault.Address {
	t.Helper()
	mint := NewAddress()
	rent := e.Rent(t)
	e.Fund(t, authority, rent.MinimumBalance(token.MintSize))
	err := e.Ledger.Process(context.Background(),
		system.NewCreateAccountInstruction(authority, mint, rent.MinimumBalance(token.MintSize), token.MintSize, token.ProgramID),
		token.NewInitializeMintInstruction(mint, decimals, authority),
	)
	if err != nil {
		t.Fatalf("cannot create mint: %+v", err)
	}
	return mint
}

// MintTo issues tokens into the associated token account of the owner,
// creating it if needed. It returns the token account address.
func (e *Env) MintTo(t testing.TB, mint, authority, owner timevault.Address, amount uint64) timevault.Address {
	t.Helper()
	addr, _, err := token.AssociatedAddress(owner, mint)
	if err != nil {
		t.Fatalf("cannot derive token account: %+v", err)
	}
	var ixs []ledger.Instruction
	if e.Account(t, addr).IsEmpty() {
		e.Fund(t, authority, e.Rent(t).MinimumBalance(token.AccountSize))
		create, err := token.NewCreateAssociatedAccountInstruction(authority, owner, mint, system.ProgramID)
		if err != nil {
			t.Fatalf("cannot build instruction: %+v", err)
		}
		ixs = append(ixs, create)
	}
	ixs = append(ixs, token.NewMintToInstruction(mint, addr, authority, amount))
	if err := e.Ledger.Process(context.Background(), ixs...); err != nil {
		t.Fatalf("cannot mint: %+v", err)
	}
	return addr
}

// TokenBalance returns the tokens held by the token account. An empty
// account holds none.
func (e *Env) TokenBalance(t testing.TB, addr timevault.Address) uint64 {
	t.Helper()
	acc := e.Account(t, addr)
	if acc.IsEmpty() {
		return 0
	}
	var ta token.TokenAccount
	if err := ta.Unmarshal(acc.Data); err != nil {
		t.Fatalf("cannot decode token account %s: %+v", addr, err)
	}
	return ta.Amount
}
