package vaulttest

import (
	"context"

	"github.com/iov-one/timevault/ledger"
)

// Program is a mock implementation of the ledger.Program interface.
//
// Set Err to force an error response. Each call is counted.
type Program struct {
	calls int
	Err   error
}

var _ ledger.Program = (*Program)(nil)

func (p *Program) Process(ctx context.Context, accounts []*ledger.AccountInfo, data []byte) error {
	p.calls++
	return p.Err
}

func (p *Program) CallCount() int {
	return p.calls
}

// Decorator is a mock implementation of the ledger.Decorator interface.
//
// Set Err to force an error response before the wrapped program is
// called. Regardless of the result, each call is counted.
type Decorator struct {
	calls int
	Err   error
}

var _ ledger.Decorator = (*Decorator)(nil)

func (d *Decorator) Process(ctx context.Context, accounts []*ledger.AccountInfo, data []byte, next ledger.Program) error {
	d.calls++
	if d.Err != nil {
		return d.Err
	}
	return next.Process(ctx, accounts, data)
}

func (d *Decorator) CallCount() int {
	return d.calls
}
