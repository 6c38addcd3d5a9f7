package utils

import (
	"bytes"
	"context"
	"testing"

	"github.com/iov-one/timevault"
	"github.com/iov-one/timevault/errors"
	"github.com/iov-one/timevault/ledger"
	"github.com/stretchr/testify/assert"
	"github.com/tendermint/tendermint/libs/log"
)

func TestRecovery(t *testing.T) {
	p := ledger.ProgramFunc(func(context.Context, []*ledger.AccountInfo, []byte) error {
		panic("program panic")
	})
	var logs bytes.Buffer
	ctx := timevault.WithLogger(context.Background(), log.NewTMLogger(&logs))

	assert.Panics(t, func() { _ = p.Process(ctx, nil, nil) })

	err := NewRecovery().Process(ctx, nil, nil, p)
	assert.True(t, errors.ErrPanic.Is(err))
	assert.Contains(t, logs.String(), "program panic")
}

func TestRecoveryPassesErrors(t *testing.T) {
	p := ledger.ProgramFunc(func(context.Context, []*ledger.AccountInfo, []byte) error {
		return errors.ErrInsufficientFunds
	})
	var logs bytes.Buffer
	ctx := timevault.WithLogger(context.Background(), log.NewTMLogger(&logs))

	err := NewRecovery().Process(ctx, nil, nil, p)
	assert.True(t, errors.ErrInsufficientFunds.Is(err))
	assert.Empty(t, logs.String())
}
