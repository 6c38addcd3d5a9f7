package utils

import (
	"context"

	"github.com/iov-one/timevault"
	"github.com/iov-one/timevault/errors"
	"github.com/iov-one/timevault/ledger"
)

// Recovery converts a panic raised while processing an instruction into an
// ErrPanic error. The ledger then discards the effects of the instruction
// like for any other failure.
type Recovery struct{}

var _ ledger.Decorator = Recovery{}

// NewRecovery creates a Recovery decorator
func NewRecovery() Recovery {
	return Recovery{}
}

// Process calls the next program and logs recovered panics.
func (Recovery) Process(ctx context.Context, accounts []*ledger.AccountInfo, data []byte, next ledger.Program) (err error) {
	defer func() {
		if errors.ErrPanic.Is(err) {
			program, _ := timevault.ProgramID(ctx)
			timevault.GetLogger(ctx).Error("program panic", "program", program.String(), "err", err)
		}
	}()
	defer errors.Recover(&err)
	return next.Process(ctx, accounts, data)
}
