package utils

import (
	"context"
	"strconv"
	"time"

	"github.com/iov-one/timevault"
	"github.com/iov-one/timevault/ledger"
)

// Logging is a decorator to log instructions as they pass through
type Logging struct{}

var _ ledger.Decorator = Logging{}

// NewLogging creates a Logging decorator
func NewLogging() Logging {
	return Logging{}
}

// Process logs error -> error, success -> debug
func (Logging) Process(ctx context.Context, accounts []*ledger.AccountInfo, data []byte, next ledger.Program) error {
	start := time.Now()
	err := next.Process(ctx, accounts, data)

	logger := timevault.GetLogger(ctx).With(
		"opcode", opcode(data),
		"accounts", len(accounts),
		"duration", time.Since(start)/time.Microsecond,
	)
	if err != nil {
		logger.Error("instruction failed", "err", err)
	} else {
		logger.Debug("instruction processed")
	}
	return err
}

// opcode returns the label of the instruction, which is the first payload
// byte for every program.
func opcode(data []byte) string {
	if len(data) == 0 {
		return "none"
	}
	return opcodeLabels[data[0]]
}

var opcodeLabels [256]string

func init() {
	for i := range opcodeLabels {
		opcodeLabels[i] = strconv.Itoa(i)
	}
}
