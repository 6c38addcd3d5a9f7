package token

import "github.com/iov-one/timevault/errors"

// Token program errors take 1000-1099.
var (
	ErrOwnerMismatch        = errors.Register(1000, "owner does not match")
	ErrMintMismatch         = errors.Register(1001, "account not associated with this mint")
	ErrMintDecimalsMismatch = errors.Register(1002, "mint decimals mismatch")
	ErrNonNativeHasBalance  = errors.Register(1003, "account can only be closed if its balance is zero")
	ErrUninitializedState   = errors.Register(1004, "state is uninitialized")
	ErrAccountFrozen        = errors.Register(1005, "account is frozen")
)
