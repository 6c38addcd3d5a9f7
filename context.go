/*
Package timevault defines the types shared by the ledger and every program
running on it: addresses, derived addresses, time, rent and the values
passed through the context.

We pass context through context.Context between the ledger, decorators
and programs. For every value XYZ of type T that we want to support in the
context there should exist two functions:

	WithXYZ(Context, T) Context
	XYZ(Context) (val T, ok bool)

WithXYZ panics if the value was previously set to avoid lower-level
modules overwriting it.
*/
package timevault

import (
	"context"

	"github.com/iov-one/timevault/errors"
	"github.com/tendermint/tendermint/libs/log"
)

type contextKey int

const (
	contextKeyLogger contextKey = iota
	contextKeyProgram
	contextKeyNow
	contextKeyRent
)

// DefaultLogger is used for all contexts that have not set anything
// themselves.
var DefaultLogger = log.NewNopLogger()

// WithLogger sets the logger for this context.
func WithLogger(ctx context.Context, logger log.Logger) context.Context {
	return context.WithValue(ctx, contextKeyLogger, logger)
}

// WithLogInfo accepts keyvalue pairs, and returns another context like this,
// after passing all the keyvals to the Logger.
func WithLogInfo(ctx context.Context, keyvals ...interface{}) context.Context {
	logger := GetLogger(ctx).With(keyvals...)
	return WithLogger(ctx, logger)
}

// GetLogger returns the currently set logger, or DefaultLogger if none was
// set.
func GetLogger(ctx context.Context) log.Logger {
	if l, ok := ctx.Value(contextKeyLogger).(log.Logger); ok {
		return l
	}
	return DefaultLogger
}

// WithProgramID sets the address of the program that is executing the
// current instruction. Derived authorities are verified against it.
func WithProgramID(ctx context.Context, program Address) context.Context {
	if _, ok := ctx.Value(contextKeyProgram).(Address); ok {
		panic("program id already set")
	}
	return context.WithValue(ctx, contextKeyProgram, program)
}

// ProgramID returns the address of the executing program.
func ProgramID(ctx context.Context) (Address, bool) {
	a, ok := ctx.Value(contextKeyProgram).(Address)
	return a, ok
}

// WithNow sets the clock reading of the current invocation. The whole
// invocation observes the same time.
func WithNow(ctx context.Context, now UnixTime) context.Context {
	if _, ok := ctx.Value(contextKeyNow).(UnixTime); ok {
		panic("now already set")
	}
	return context.WithValue(ctx, contextKeyNow, now)
}

// Now returns the clock reading of the current invocation.
func Now(ctx context.Context) (UnixTime, bool) {
	t, ok := ctx.Value(contextKeyNow).(UnixTime)
	return t, ok
}

// CurrentTime returns the clock reading of the current invocation. It fails
// if the invocation was not given a time, which is a setup error.
func CurrentTime(ctx context.Context) (UnixTime, error) {
	if t, ok := Now(ctx); ok {
		return t, nil
	}
	return 0, errors.Wrap(errors.ErrHuman, "clock reading not present in context")
}

// WithRent sets the rent configuration in force for the current
// invocation.
func WithRent(ctx context.Context, r Rent) context.Context {
	return context.WithValue(ctx, contextKeyRent, r)
}

// CurrentRent returns the rent configuration of the current invocation or
// DefaultRent if none was set.
func CurrentRent(ctx context.Context) Rent {
	if r, ok := ctx.Value(contextKeyRent).(Rent); ok {
		return r
	}
	return DefaultRent()
}
