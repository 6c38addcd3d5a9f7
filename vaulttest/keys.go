package vaulttest

import (
	"crypto/sha256"

	"github.com/iov-one/timevault"
	"github.com/iov-one/timevault/crypto"
)

// NewKey returns a random private key.
func NewKey() *crypto.PrivateKey {
	return crypto.GenPrivateKey()
}

// NewAddress returns the address of a random key.
func NewAddress() timevault.Address {
	return NewKey().Address()
}

// Key returns a private key derived from given name. The same name always
// returns the same key.
func Key(name string) *crypto.PrivateKey {
	seed := sha256.Sum256([]byte(name))
	key, err := crypto.PrivateKeyFromSeed(seed[:])
	if err != nil {
		panic(err)
	}
	return key
}
