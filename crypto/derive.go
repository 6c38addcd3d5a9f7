package crypto

import (
	"github.com/iov-one/timevault/errors"
	"github.com/stellar/go/exp/crypto/derivation"
)

// DefaultDerivationPath is the hardened path wallets use for the first
// account.
const DefaultDerivationPath = "m/44'/501'/0'/0'"

// DeriveKey derives a private key from a master seed (usually the 64 byte
// output of a mnemonic) following SLIP-0010. All path segments must be
// hardened. An empty path means DefaultDerivationPath.
func DeriveKey(seed []byte, path string) (*PrivateKey, error) {
	if path == "" {
		path = DefaultDerivationPath
	}
	k, err := derivation.DeriveForPath(path, seed)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "derive %q: %s", path, err)
	}
	return PrivateKeyFromSeed(k.Key)
}
