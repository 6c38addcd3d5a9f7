/*
Package crypto provides the ed25519 keys that sign ledger transactions. A
public key is used directly as an account address.
*/
package crypto

import (
	"crypto/rand"

	"github.com/iov-one/timevault"
	"github.com/iov-one/timevault/errors"
	"golang.org/x/crypto/ed25519"
)

// SignatureSize is the length of an ed25519 signature.
const SignatureSize = ed25519.SignatureSize

// PrivateKey signs messages on behalf of the address of its public key.
type PrivateKey struct {
	key ed25519.PrivateKey
}

// GenPrivateKey returns a random new private key.
func GenPrivateKey() *PrivateKey {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		panic(err)
	}
	return &PrivateKey{key: priv}
}

// PrivateKeyFromSeed will deterministically generate a private key from a
// given 32 byte seed. Use if you have a strong source of external
// randomness, or for deterministic keys in test cases.
func PrivateKeyFromSeed(seed []byte) (*PrivateKey, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, errors.Wrapf(errors.ErrInput, "seed must be %d bytes", ed25519.SeedSize)
	}
	return &PrivateKey{key: ed25519.NewKeyFromSeed(seed)}, nil
}

// Sign returns a matching signature for this private key.
func (p *PrivateKey) Sign(message []byte) []byte {
	return ed25519.Sign(p.key, message)
}

// PublicKey returns the corresponding PublicKey.
func (p *PrivateKey) PublicKey() PublicKey {
	var pub PublicKey
	copy(pub[:], p.key.Public().(ed25519.PublicKey))
	return pub
}

// Address returns the account address controlled by this key.
func (p *PrivateKey) Address() timevault.Address {
	return p.PublicKey().Address()
}

// Seed returns the 32 byte seed this key was created from.
func (p *PrivateKey) Seed() []byte {
	return p.key.Seed()
}

// PublicKey is an ed25519 public key.
type PublicKey [ed25519.PublicKeySize]byte

// Verify returns true if the signature was created with this message and
// the matching private key.
func (p PublicKey) Verify(message, sig []byte) bool {
	if len(sig) != SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(p[:]), message, sig)
}

// Address returns the account address of this key.
func (p PublicKey) Address() timevault.Address {
	return timevault.Address(p)
}
