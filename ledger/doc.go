/*
Package ledger is an in-process host for programs. It keeps accounts,
routes instructions to registered programs and applies their effects
atomically.

Every account is identified by an address and holds a lamport balance,
an owner program and a data area. An instruction names the program to
run, the accounts it uses and an opaque payload. Accounts are marked as
writable and as signers. A signer is an account that signed the
transaction, which grants an Authority that programs require before
moving funds out of it. Programs can also act for addresses derived from
their own id, see Authorize.

Instructions touching the same account are serialized. Writable accounts
are locked exclusively and read-only accounts are locked in shared mode.
If any instruction of a transaction fails, none of its effects are
applied.
*/
package ledger
