package ledger

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"sync"
	"testing"

	"github.com/iov-one/timevault"
	"github.com/iov-one/timevault/crypto"
	"github.com/iov-one/timevault/errors"
	"github.com/iov-one/timevault/store/iavl"
	"github.com/iov-one/timevault/vaulttest/assert"
)

var testProgram = timevault.MustParseAddress("Ac9JwB8Wc4JB7WwNkVSAY1SESxNmLw5rxuh1okLjQpX")

// moveProgram moves the lamports amount given in the payload from the
// first account to the second. The first account must be authorized by a
// signature or, if the payload carries a seed, by derivation.
func moveProgram(ctx context.Context, accounts []*AccountInfo, data []byte) error {
	if len(accounts) < 2 {
		return errors.ErrNotEnoughAccountKeys
	}
	if len(data) < 8 {
		return errors.ErrInvalidInstructionData
	}
	amount := binary.LittleEndian.Uint64(data)

	var auth Authority
	var err error
	if seed := data[8:]; len(seed) > 0 {
		addr, bump, derr := timevault.FindDerivedAddress(testProgram, seed)
		if derr != nil {
			return derr
		}
		auth, err = Authorize(ctx, DerivedAuthority{Seeds: [][]byte{seed, {bump}}, Address: addr})
	} else {
		auth, err = accounts[0].Signer()
	}
	if err != nil {
		return err
	}
	if err := RequireAuthority(auth, accounts[0]); err != nil {
		return err
	}
	if err := accounts[0].SubLamports(amount); err != nil {
		return err
	}
	return accounts[1].AddLamports(amount)
}

func moveData(amount uint64, seed string) []byte {
	raw := make([]byte, 8, 8+len(seed))
	binary.LittleEndian.PutUint64(raw, amount)
	return append(raw, seed...)
}

func newTestLedger(t testing.TB) *Ledger {
	t.Helper()
	l := New(iavl.MockCommitStore(), NewManualClock(1757633343), nil)
	l.Register(testProgram, ProgramFunc(moveProgram))
	return l
}

func TestProcessMovesLamports(t *testing.T) {
	l := newTestLedger(t)
	alice := crypto.GenPrivateKey().Address()
	bob := crypto.GenPrivateKey().Address()
	assert.Nil(t, l.Airdrop(alice, 1000))

	ix := Instruction{
		ProgramID: testProgram,
		Accounts:  []AccountMeta{Writable(alice, true), Writable(bob, false)},
		Data:      moveData(400, ""),
	}
	assert.Nil(t, l.Process(context.Background(), ix))

	assertLamports(t, l, alice, 600)
	assertLamports(t, l, bob, 400)
}

func TestProcessFailures(t *testing.T) {
	alice := crypto.GenPrivateKey().Address()
	bob := crypto.GenPrivateKey().Address()
	derived, _, err := timevault.FindDerivedAddress(testProgram, []byte("pool"))
	assert.Nil(t, err)

	cases := map[string]struct {
		ix      Instruction
		wantErr *errors.Error
	}{
		"unknown program": {
			ix: Instruction{
				ProgramID: bob,
				Accounts:  []AccountMeta{Writable(alice, true), Writable(bob, false)},
				Data:      moveData(1, ""),
			},
			wantErr: errors.ErrUnknownProgram,
		},
		"missing signature": {
			ix: Instruction{
				ProgramID: testProgram,
				Accounts:  []AccountMeta{Writable(alice, false), Writable(bob, false)},
				Data:      moveData(1, ""),
			},
			wantErr: errors.ErrMissingRequiredSignature,
		},
		"insufficient funds": {
			ix: Instruction{
				ProgramID: testProgram,
				Accounts:  []AccountMeta{Writable(alice, true), Writable(bob, false)},
				Data:      moveData(1001, ""),
			},
			wantErr: errors.ErrInsufficientFunds,
		},
		"read-only destination": {
			ix: Instruction{
				ProgramID: testProgram,
				Accounts:  []AccountMeta{Writable(alice, true), ReadOnly(bob, false)},
				Data:      moveData(1, ""),
			},
			wantErr: errors.ErrReadonlyModified,
		},
		"derived authority for another address": {
			ix: Instruction{
				ProgramID: testProgram,
				Accounts:  []AccountMeta{Writable(alice, false), Writable(bob, false)},
				Data:      moveData(1, "pool"),
			},
			wantErr: errors.ErrMissingRequiredSignature,
		},
		"derived authority moves funds": {
			ix: Instruction{
				ProgramID: testProgram,
				Accounts:  []AccountMeta{Writable(derived, false), Writable(bob, false)},
				Data:      moveData(1, "pool"),
			},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			l := newTestLedger(t)
			assert.Nil(t, l.Airdrop(alice, 1000))
			assert.Nil(t, l.Airdrop(derived, 1000))

			err := l.Process(context.Background(), tc.ix)
			assert.IsErr(t, tc.wantErr, err)
			if tc.wantErr != nil {
				assertLamports(t, l, alice, 1000)
				assertLamports(t, l, bob, 0)
			}
		})
	}
}

func TestPostConditions(t *testing.T) {
	alice := crypto.GenPrivateKey().Address()
	bob := crypto.GenPrivateKey().Address()

	cases := map[string]struct {
		program ProgramFunc
		wantErr *errors.Error
	}{
		"lamports created": {
			program: func(ctx context.Context, accounts []*AccountInfo, data []byte) error {
				return accounts[1].AddLamports(1)
			},
			wantErr: errors.ErrUnbalanced,
		},
		"read-only data changed in place": {
			program: func(ctx context.Context, accounts []*AccountInfo, data []byte) error {
				accounts[0].Data()[0] = 0xff
				return nil
			},
			wantErr: errors.ErrReadonlyModified,
		},
		"recovered panic fails the instruction": {
			program: func(ctx context.Context, accounts []*AccountInfo, data []byte) (err error) {
				defer errors.Recover(&err)
				panic("boom")
			},
			wantErr: errors.ErrPanic,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			l := newTestLedger(t)
			l.Register(bob, tc.program)
			assert.Nil(t, l.SetAccount(alice, &Account{Lamports: 5, Data: []byte{1, 2, 3}}))

			ix := Instruction{
				ProgramID: bob,
				Accounts:  []AccountMeta{ReadOnly(alice, false), Writable(bob, false)},
			}
			assert.IsErr(t, tc.wantErr, l.Process(context.Background(), ix))

			acc, err := l.Account(alice)
			assert.Nil(t, err)
			assert.Equal(t, []byte{1, 2, 3}, acc.Data)
			assertLamports(t, l, bob, 0)
		})
	}
}

func TestTransactionIsAtomic(t *testing.T) {
	l := newTestLedger(t)
	alice := crypto.GenPrivateKey()
	bob := crypto.GenPrivateKey().Address()
	assert.Nil(t, l.Airdrop(alice.Address(), 1000))

	good := Instruction{
		ProgramID: testProgram,
		Accounts:  []AccountMeta{Writable(alice.Address(), true), Writable(bob, false)},
		Data:      moveData(600, ""),
	}
	tx := NewTransaction(good, good)
	tx.Sign(alice)

	err := l.Submit(context.Background(), tx)
	assert.IsErr(t, errors.ErrInsufficientFunds, err)
	assertLamports(t, l, alice.Address(), 1000)
	assertLamports(t, l, bob, 0)

	tx = NewTransaction(good)
	tx.Sign(alice)
	assert.Nil(t, l.Submit(context.Background(), tx))
	assertLamports(t, l, alice.Address(), 400)
	assertLamports(t, l, bob, 600)
}

func TestSubmitVerifiesSignatures(t *testing.T) {
	l := newTestLedger(t)
	alice := crypto.GenPrivateKey()
	mallory := crypto.GenPrivateKey()
	bob := crypto.GenPrivateKey().Address()
	assert.Nil(t, l.Airdrop(alice.Address(), 1000))

	ix := Instruction{
		ProgramID: testProgram,
		Accounts:  []AccountMeta{Writable(alice.Address(), true), Writable(bob, false)},
		Data:      moveData(1, ""),
	}

	tx := NewTransaction(ix)
	tx.Sign(mallory)
	assert.IsErr(t, errors.ErrMissingRequiredSignature, l.Submit(context.Background(), tx))

	tx = NewTransaction(ix)
	tx.Sign(alice)
	tx.Instructions[0].Data = moveData(999, "")
	assert.IsErr(t, errors.ErrUnauthorized, l.Submit(context.Background(), tx))

	assertLamports(t, l, alice.Address(), 1000)
}

func TestConcurrentProcessing(t *testing.T) {
	l := newTestLedger(t)
	alice := crypto.GenPrivateKey().Address()
	bob := crypto.GenPrivateKey().Address()
	assert.Nil(t, l.Airdrop(alice, 1000))

	ix := Instruction{
		ProgramID: testProgram,
		Accounts:  []AccountMeta{Writable(alice, true), Writable(bob, false)},
		Data:      moveData(1, ""),
	}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := l.Process(context.Background(), ix); err != nil {
				t.Errorf("cannot process: %s", err)
			}
		}()
	}
	wg.Wait()

	assertLamports(t, l, alice, 950)
	assertLamports(t, l, bob, 50)
}

func TestCommitAndGenesis(t *testing.T) {
	l := newTestLedger(t)
	alice := crypto.GenPrivateKey().Address()

	raw := `{
		"conf": {"rent": {"lamports_per_byte_year": 10, "exemption_years": 1}},
		"accounts": [{"address": "` + alice.String() + `", "lamports": 77, "data": "AQID"}]
	}`
	var opts timevault.Options
	assert.Nil(t, json.Unmarshal([]byte(raw), &opts))
	assert.Nil(t, l.InitGenesis(opts))

	rent, err := l.Rent()
	assert.Nil(t, err)
	assert.Equal(t, timevault.Rent{LamportsPerByteYear: 10, ExemptionYears: 1}, rent)

	first, err := l.Commit()
	assert.Nil(t, err)
	assert.Equal(t, int64(1), first.Version)

	var seen []timevault.Address
	err = l.ForEachAccount(func(addr timevault.Address, acc *Account) error {
		seen = append(seen, addr)
		assert.Equal(t, &Account{Lamports: 77, Data: []byte{1, 2, 3}}, acc)
		return nil
	})
	assert.Nil(t, err)
	assert.Equal(t, []timevault.Address{alice}, seen)

	// An account without lamports and data is dropped.
	assert.Nil(t, l.SetAccount(alice, &Account{}))
	second, err := l.Commit()
	assert.Nil(t, err)
	assert.Equal(t, int64(2), second.Version)
	err = l.ForEachAccount(func(addr timevault.Address, acc *Account) error {
		t.Fatalf("unexpected account %s", addr)
		return nil
	})
	assert.Nil(t, err)
}

func assertLamports(t testing.TB, l *Ledger, addr timevault.Address, want uint64) {
	t.Helper()
	acc, err := l.Account(addr)
	assert.Nil(t, err)
	if acc.Lamports != want {
		t.Fatalf("want %d lamports on %s, got %d", want, addr, acc.Lamports)
	}
}
