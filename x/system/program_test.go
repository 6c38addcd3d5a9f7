package system

import (
	"context"
	"testing"

	"github.com/iov-one/timevault"
	"github.com/iov-one/timevault/crypto"
	"github.com/iov-one/timevault/errors"
	"github.com/iov-one/timevault/ledger"
	"github.com/iov-one/timevault/store/iavl"
	"github.com/iov-one/timevault/vaulttest/assert"
)

var someProgram = timevault.MustParseAddress("Ac9JwB8Wc4JB7WwNkVSAY1SESxNmLw5rxuh1okLjQpX")

func newLedger(t testing.TB) *ledger.Ledger {
	t.Helper()
	l := ledger.New(iavl.MockCommitStore(), ledger.NewManualClock(1757633343), nil)
	l.Register(ProgramID, NewProgram())
	return l
}

func TestCreateAccount(t *testing.T) {
	payerKey := crypto.GenPrivateKey()
	payer := payerKey.Address()

	cases := map[string]struct {
		existing *ledger.Account
		ix       func(account timevault.Address) ledger.Instruction
		wantErr  *errors.Error
	}{
		"fresh account": {
			ix: func(account timevault.Address) ledger.Instruction {
				return NewCreateAccountInstruction(payer, account, 1000, 82, someProgram)
			},
		},
		"account holding lamports": {
			existing: &ledger.Account{Lamports: 1},
			ix: func(account timevault.Address) ledger.Instruction {
				return NewCreateAccountInstruction(payer, account, 1000, 82, someProgram)
			},
			wantErr: errors.ErrAccountAlreadyInUse,
		},
		"account holding data": {
			existing: &ledger.Account{Data: []byte{1}},
			ix: func(account timevault.Address) ledger.Instruction {
				return NewCreateAccountInstruction(payer, account, 1000, 82, someProgram)
			},
			wantErr: errors.ErrAccountAlreadyInUse,
		},
		"not enough lamports": {
			ix: func(account timevault.Address) ledger.Instruction {
				return NewCreateAccountInstruction(payer, account, 1e12, 82, someProgram)
			},
			wantErr: errors.ErrInsufficientFunds,
		},
		"new account did not sign": {
			ix: func(account timevault.Address) ledger.Instruction {
				ix := NewCreateAccountInstruction(payer, account, 1000, 82, someProgram)
				ix.Accounts[1].IsSigner = false
				return ix
			},
			wantErr: errors.ErrMissingRequiredSignature,
		},
		"space too big": {
			ix: func(account timevault.Address) ledger.Instruction {
				return NewCreateAccountInstruction(payer, account, 1000, MaxDataLength+1, someProgram)
			},
			wantErr: errors.ErrInput,
		},
		"truncated payload": {
			ix: func(account timevault.Address) ledger.Instruction {
				ix := NewCreateAccountInstruction(payer, account, 1000, 82, someProgram)
				ix.Data = ix.Data[:12]
				return ix
			},
			wantErr: errors.ErrInvalidInstructionData,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			l := newLedger(t)
			assert.Nil(t, l.Airdrop(payer, 5000))

			account := crypto.GenPrivateKey().Address()
			if tc.existing != nil {
				assert.Nil(t, l.SetAccount(account, tc.existing))
			}

			err := l.Process(context.Background(), tc.ix(account))
			assert.IsErr(t, tc.wantErr, err)
			if tc.wantErr != nil {
				return
			}

			acc, err := l.Account(account)
			assert.Nil(t, err)
			assert.Equal(t, uint64(1000), acc.Lamports)
			assert.Equal(t, someProgram, acc.Owner)
			assert.Equal(t, 82, len(acc.Data))

			p, err := l.Account(payer)
			assert.Nil(t, err)
			assert.Equal(t, uint64(4000), p.Lamports)
		})
	}
}

func TestTransfer(t *testing.T) {
	from := crypto.GenPrivateKey().Address()
	to := crypto.GenPrivateKey().Address()

	cases := map[string]struct {
		source   *ledger.Account
		ix       ledger.Instruction
		wantFrom uint64
		wantTo   uint64
		wantErr  *errors.Error
	}{
		"plain transfer": {
			source:   &ledger.Account{Lamports: 100},
			ix:       NewTransferInstruction(from, to, 40),
			wantFrom: 60,
			wantTo:   40,
		},
		"whole balance": {
			source: &ledger.Account{Lamports: 100},
			ix:     NewTransferInstruction(from, to, 100),
			wantTo: 100,
		},
		"insufficient funds": {
			source:  &ledger.Account{Lamports: 100},
			ix:      NewTransferInstruction(from, to, 101),
			wantErr: errors.ErrInsufficientFunds,
		},
		"source carries data": {
			source:  &ledger.Account{Lamports: 100, Data: []byte{1}},
			ix:      NewTransferInstruction(from, to, 1),
			wantErr: errors.ErrInvalidAccountData,
		},
		"source owned by a program": {
			source:  &ledger.Account{Lamports: 100, Owner: someProgram},
			ix:      NewTransferInstruction(from, to, 1),
			wantErr: errors.ErrInvalidAccountData,
		},
		"unknown instruction": {
			source: &ledger.Account{Lamports: 100},
			ix: ledger.Instruction{
				ProgramID: ProgramID,
				Accounts:  []ledger.AccountMeta{ledger.Writable(from, true)},
				Data:      []byte{9, 0, 0, 0},
			},
			wantErr: errors.ErrInvalidInstructionData,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			l := newLedger(t)
			assert.Nil(t, l.SetAccount(from, tc.source))

			err := l.Process(context.Background(), tc.ix)
			assert.IsErr(t, tc.wantErr, err)
			if tc.wantErr != nil {
				return
			}
			f, err := l.Account(from)
			assert.Nil(t, err)
			assert.Equal(t, tc.wantFrom, f.Lamports)
			dst, err := l.Account(to)
			assert.Nil(t, err)
			assert.Equal(t, tc.wantTo, dst.Lamports)
		})
	}
}

func TestControllerRequiresAuthority(t *testing.T) {
	ctrl := NewController()
	from := ledger.NewAccountInfo(crypto.GenPrivateKey().Address(), true, true, &ledger.Account{Lamports: 10})
	other := ledger.NewAccountInfo(crypto.GenPrivateKey().Address(), true, true, &ledger.Account{})

	// Authority of a different account must not move funds.
	auth, err := other.Signer()
	assert.Nil(t, err)
	err = ctrl.Transfer(context.Background(), from, auth, other, 5)
	assert.IsErr(t, errors.ErrMissingRequiredSignature, err)

	err = ctrl.Transfer(context.Background(), from, nil, other, 5)
	assert.IsErr(t, errors.ErrMissingRequiredSignature, err)
	assert.Equal(t, uint64(10), from.Lamports())
}
