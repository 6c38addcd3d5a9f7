package ledger

import (
	"context"
	"reflect"
)

// Program executes instructions addressed to it. The accounts are passed
// in the order of the instruction account metas.
type Program interface {
	Process(ctx context.Context, accounts []*AccountInfo, data []byte) error
}

// ProgramFunc allows to use a function as a Program.
type ProgramFunc func(ctx context.Context, accounts []*AccountInfo, data []byte) error

// Process calls the function.
func (fn ProgramFunc) Process(ctx context.Context, accounts []*AccountInfo, data []byte) error {
	return fn(ctx, accounts, data)
}

// Decorator wraps a Program to provide common functionality like logging,
// metrics or panic recovery.
type Decorator interface {
	Process(ctx context.Context, accounts []*AccountInfo, data []byte, next Program) error
}

// Decorators holds a chain of decorators, not yet resolved by a Program.
type Decorators struct {
	chain []Decorator
}

/*
ChainDecorators takes a chain of decorators, and upon adding a final
Program returns a Program that will execute this whole stack.

	ledger.ChainDecorators(
	  utils.NewLogging(),
	  utils.NewRecovery(),
	).WithProgram(
	  vault.NewProgram(sys, tokens),
	)
*/
func ChainDecorators(chain ...Decorator) Decorators {
	return Decorators{}.Chain(chain...)
}

// Chain allows us to keep adding more Decorators to the chain.
func (d Decorators) Chain(chain ...Decorator) Decorators {
	next := make([]Decorator, 0, len(d.chain)+len(chain))
	next = append(next, d.chain...)
	for _, c := range chain {
		if c == nil {
			continue
		}
		if v := reflect.ValueOf(c); v.Kind() == reflect.Ptr && v.IsNil() {
			continue
		}
		next = append(next, c)
	}
	return Decorators{chain: next}
}

// WithProgram resolves the stack and returns a concrete Program that will
// pass through the chain of decorators before calling the final Program.
func (d Decorators) WithProgram(p Program) Program {
	// The top of the chain is executed first, so wrap starting from the
	// last decorator.
	for i := len(d.chain) - 1; i >= 0; i-- {
		p = step{d: d.chain[i], next: p}
	}
	return p
}

// step captures one step executing a decorator around a specific Program.
type step struct {
	d    Decorator
	next Program
}

func (s step) Process(ctx context.Context, accounts []*AccountInfo, data []byte) error {
	return s.d.Process(ctx, accounts, data, s.next)
}
