package vault

import "github.com/iov-one/timevault/errors"

// Vault errors take 1100-1199, in the order the program has always
// numbered them.
var (
	ErrUnlockTimestampMustBeInFuture = errors.Register(1100, "unlock timestamp must be in the future")
	ErrAmountMustBeGreaterThanZero   = errors.Register(1101, "amount must be greater than zero")
	ErrUnauthorized                  = errors.Register(1102, "signer is not the vault owner")
	ErrVaultLocking                  = errors.Register(1103, "vault is locked")
	ErrInvalidVaultMint              = errors.Register(1104, "mint does not match the vault")
)
