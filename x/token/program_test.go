package token

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/iov-one/timevault"
	"github.com/iov-one/timevault/crypto"
	"github.com/iov-one/timevault/errors"
	"github.com/iov-one/timevault/ledger"
	"github.com/iov-one/timevault/store/iavl"
	"github.com/iov-one/timevault/x/system"
	. "github.com/smartystreets/goconvey/convey"
)

func newTokenLedger() *ledger.Ledger {
	l := ledger.New(iavl.MockCommitStore(), ledger.NewManualClock(1757633343), nil)
	ctrl := NewController(system.NewController())
	l.Register(system.ProgramID, system.NewProgram())
	l.Register(ProgramID, NewProgram(ctrl))
	l.Register(AssociatedProgramID, NewAssociatedProgram(ctrl, system.ProgramID))
	return l
}

func TestTokenProgram(t *testing.T) {
	Convey("Given a mint with a funded holder", t, func() {
		ctx := context.Background()
		alice := crypto.GenPrivateKey().Address()
		bob := crypto.GenPrivateKey().Address()
		mint := crypto.GenPrivateKey().Address()

		genesis := fmt.Sprintf(`
		{
			"accounts": [{"address": %q, "lamports": 1000000000}],
			"mints": [
				{"address": %q, "decimals": 6, "authority": %q, "balances": [{"owner": %q, "amount": 5000000}]}
			]
		}`, alice, mint, alice, alice)
		var opts timevault.Options
		So(json.Unmarshal([]byte(genesis), &opts), ShouldBeNil)

		l := newTokenLedger()
		So(l.InitGenesis(opts, Initializer{}), ShouldBeNil)
		rent, err := l.Rent()
		So(err, ShouldBeNil)

		aliceATA, _, err := AssociatedAddress(alice, mint)
		So(err, ShouldBeNil)
		bobATA, _, err := AssociatedAddress(bob, mint)
		So(err, ShouldBeNil)

		create, err := NewCreateAssociatedAccountInstruction(alice, bob, mint, system.ProgramID)
		So(err, ShouldBeNil)
		So(l.Process(ctx, create), ShouldBeNil)

		balance := func(addr timevault.Address) uint64 {
			acc, err := l.Account(addr)
			So(err, ShouldBeNil)
			var ta TokenAccount
			So(ta.Unmarshal(acc.Data), ShouldBeNil)
			return ta.Amount
		}

		Convey("the associated account is funded by the payer", func() {
			acc, err := l.Account(bobATA)
			So(err, ShouldBeNil)
			So(acc.Lamports, ShouldEqual, rent.MinimumBalance(AccountSize))
			So(acc.Owner, ShouldResemble, ProgramID)
			So(balance(bobATA), ShouldEqual, uint64(0))

			payer, err := l.Account(alice)
			So(err, ShouldBeNil)
			So(payer.Lamports, ShouldEqual, 1000000000-rent.MinimumBalance(AccountSize))
		})

		Convey("the associated account cannot be created twice", func() {
			err := l.Process(ctx, create)
			So(errors.ErrAccountAlreadyInUse.Is(err), ShouldBeTrue)
		})

		Convey("only the associated address can be created", func() {
			ix := create
			ix.Accounts = append([]ledger.AccountMeta(nil), create.Accounts...)
			ix.Accounts[1] = ledger.Writable(crypto.GenPrivateKey().Address(), false)
			err := l.Process(ctx, ix)
			So(errors.ErrInvalidSeeds.Is(err), ShouldBeTrue)
		})

		Convey("an idempotent create keeps the existing account", func() {
			So(l.Process(ctx, NewTransferCheckedInstruction(aliceATA, mint, bobATA, alice, 7, 6)), ShouldBeNil)
			again, err := NewCreateAssociatedAccountIdempotentInstruction(alice, bob, mint, system.ProgramID)
			So(err, ShouldBeNil)
			So(l.Process(ctx, again), ShouldBeNil)
			So(balance(bobATA), ShouldEqual, uint64(7))

			payer, err := l.Account(alice)
			So(err, ShouldBeNil)
			So(payer.Lamports, ShouldEqual, 1000000000-rent.MinimumBalance(AccountSize))
		})

		Convey("an idempotent create rejects an account of another wallet", func() {
			raw, err := (&TokenAccount{Mint: mint, Owner: alice, State: Initialized}).Marshal()
			So(err, ShouldBeNil)
			So(l.SetAccount(bobATA, &ledger.Account{Lamports: rent.MinimumBalance(AccountSize), Owner: ProgramID, Data: raw}), ShouldBeNil)
			again, err := NewCreateAssociatedAccountIdempotentInstruction(alice, bob, mint, system.ProgramID)
			So(err, ShouldBeNil)
			err = l.Process(ctx, again)
			So(errors.ErrAccountAlreadyInUse.Is(err), ShouldBeTrue)
		})

		Convey("an unknown associated account operation fails", func() {
			ix := create
			ix.Data = []byte{9}
			err := l.Process(ctx, ix)
			So(errors.ErrInvalidInstructionData.Is(err), ShouldBeTrue)
		})

		Convey("tokens move with a checked transfer", func() {
			ix := NewTransferCheckedInstruction(aliceATA, mint, bobATA, alice, 1500000, 6)
			So(l.Process(ctx, ix), ShouldBeNil)
			So(balance(aliceATA), ShouldEqual, uint64(3500000))
			So(balance(bobATA), ShouldEqual, uint64(1500000))
			So(FormatAmount(balance(bobATA), 6), ShouldEqual, "1.500000")
		})

		Convey("a transfer stating wrong decimals fails", func() {
			ix := NewTransferCheckedInstruction(aliceATA, mint, bobATA, alice, 1, 9)
			So(ErrMintDecimalsMismatch.Is(l.Process(ctx, ix)), ShouldBeTrue)
		})

		Convey("only the owner may move tokens", func() {
			ix := NewTransferCheckedInstruction(aliceATA, mint, bobATA, bob, 1, 6)
			So(ErrOwnerMismatch.Is(l.Process(ctx, ix)), ShouldBeTrue)
			So(balance(aliceATA), ShouldEqual, uint64(5000000))
		})

		Convey("a transfer above the balance fails", func() {
			ix := NewTransferCheckedInstruction(aliceATA, mint, bobATA, alice, 5000001, 6)
			So(errors.ErrInsufficientFunds.Is(l.Process(ctx, ix)), ShouldBeTrue)
		})

		Convey("a transfer of another mint fails", func() {
			other := crypto.GenPrivateKey().Address()
			ix := NewTransferCheckedInstruction(aliceATA, other, bobATA, alice, 1, 6)
			So(ErrMintMismatch.Is(l.Process(ctx, ix)), ShouldBeTrue)
		})

		Convey("an account holding tokens cannot be closed", func() {
			ix := NewCloseAccountInstruction(aliceATA, alice, alice)
			So(ErrNonNativeHasBalance.Is(l.Process(ctx, ix)), ShouldBeTrue)
		})

		Convey("an empty account is closed into the destination", func() {
			ix := NewCloseAccountInstruction(bobATA, alice, bob)
			So(l.Process(ctx, ix), ShouldBeNil)

			acc, err := l.Account(bobATA)
			So(err, ShouldBeNil)
			So(acc.IsEmpty(), ShouldBeTrue)

			payer, err := l.Account(alice)
			So(err, ShouldBeNil)
			So(payer.Lamports, ShouldEqual, uint64(1000000000))
		})

		Convey("the mint authority issues new tokens", func() {
			So(l.Process(ctx, NewMintToInstruction(mint, bobATA, alice, 10)), ShouldBeNil)
			So(balance(bobATA), ShouldEqual, uint64(10))

			acc, err := l.Account(mint)
			So(err, ShouldBeNil)
			var m Mint
			So(m.Unmarshal(acc.Data), ShouldBeNil)
			So(m.Supply, ShouldEqual, uint64(5000010))
		})

		Convey("nobody else issues tokens", func() {
			err := l.Process(ctx, NewMintToInstruction(mint, bobATA, bob, 10))
			So(ErrOwnerMismatch.Is(err), ShouldBeTrue)
		})
	})
}

func TestInitializeMint(t *testing.T) {
	Convey("Given an account allocated for a mint", t, func() {
		ctx := context.Background()
		payer := crypto.GenPrivateKey().Address()
		mint := crypto.GenPrivateKey().Address()

		l := newTokenLedger()
		So(l.Airdrop(payer, 1000000000), ShouldBeNil)
		rent, err := l.Rent()
		So(err, ShouldBeNil)

		alloc := system.NewCreateAccountInstruction(payer, mint, rent.MinimumBalance(MintSize), MintSize, ProgramID)
		So(l.Process(ctx, alloc), ShouldBeNil)

		Convey("it is initialized once", func() {
			ix := NewInitializeMintInstruction(mint, 2, payer)
			So(l.Process(ctx, ix), ShouldBeNil)

			acc, err := l.Account(mint)
			So(err, ShouldBeNil)
			var m Mint
			So(m.Unmarshal(acc.Data), ShouldBeNil)
			So(m.IsInitialized, ShouldBeTrue)
			So(m.Decimals, ShouldEqual, uint8(2))
			So(*m.MintAuthority, ShouldResemble, payer)
			So(m.FreezeAuthority, ShouldBeNil)

			err = l.Process(ctx, ix)
			So(errors.ErrAccountAlreadyInitialized.Is(err), ShouldBeTrue)
		})

		Convey("an account owned by another program is rejected", func() {
			other := crypto.GenPrivateKey().Address()
			So(l.SetAccount(other, &ledger.Account{Lamports: 1, Data: make([]byte, MintSize)}), ShouldBeNil)
			err := l.Process(ctx, NewInitializeMintInstruction(other, 2, payer))
			So(errors.ErrIncorrectProgramID.Is(err), ShouldBeTrue)
		})
	})
}
