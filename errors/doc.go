/*
Package errors implements the error kinds used across the ledger, its
builtin programs and the vault program.

Reuse the root errors declared in this package where possible and register
custom ones only when a program needs its own outcome code:

	var ErrVaultLocking = errors.Register(1103, "vault is locked")

Create instances with ErrXyz.New("...") or errors.Wrap(err, "...") at the
point of creation so that a stacktrace is attached. Only the innermost wrap
records the stacktrace.

Every error maps to a single outcome code (Code). Errors that do not wrap
a registered root error are internal and are redacted before they reach a
client (Redact, Info).

Once you have an error, you can use `fmt.Printf/Sprintf` to get more context

	%s is just the error message
	%+v is the message followed by the stack trace
*/
package errors
