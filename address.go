package timevault

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/iov-one/timevault/crypto/bech32"
	"github.com/iov-one/timevault/errors"
	"github.com/mr-tron/base58"
)

// AddressLength is the length of all addresses. An address is either an
// ed25519 public key or a derived address that has no private key.
const AddressLength = 32

// Bech32Prefix is the human readable part used when an address is encoded
// in the bech32 format.
const Bech32Prefix = "tv"

// Address identifies an account on the ledger.
type Address [AddressLength]byte

// ZeroAddress is the address of the system program. Closed accounts are
// assigned back to it.
var ZeroAddress Address

// NewAddress copies given bytes into an address. It fails if the length is
// not AddressLength.
func NewAddress(raw []byte) (Address, error) {
	var a Address
	if len(raw) != AddressLength {
		return a, errors.Wrapf(errors.ErrInput, "address must be %d bytes, got %d", AddressLength, len(raw))
	}
	copy(a[:], raw)
	return a, nil
}

// MustParseAddress is like ParseAddress but panics on error. Use it only
// for constants.
func MustParseAddress(encoded string) Address {
	a, err := ParseAddress(encoded)
	if err != nil {
		panic(err)
	}
	return a
}

// ParseAddress decodes a human readable address. Base58 is the default
// encoding. A "hex:" or "bech32:" prefix selects another format.
func ParseAddress(encoded string) (Address, error) {
	chunks := strings.SplitN(encoded, ":", 2)
	format := "base58"
	if len(chunks) == 2 {
		format, encoded = chunks[0], chunks[1]
	}

	var (
		raw []byte
		err error
	)
	switch format {
	case "base58":
		raw, err = base58.Decode(encoded)
		if err != nil {
			return ZeroAddress, errors.Wrap(errors.ErrInput, "cannot decode base58")
		}
	case "hex":
		raw, err = hex.DecodeString(encoded)
		if err != nil {
			return ZeroAddress, errors.Wrap(errors.ErrInput, "cannot decode hex")
		}
	case "bech32":
		raw, err = bech32.DecodePrefixed(encoded, Bech32Prefix)
		if err != nil {
			return ZeroAddress, err
		}
	default:
		return ZeroAddress, errors.Wrapf(errors.ErrType, "unknown format %q", format)
	}
	return NewAddress(raw)
}

// Equals checks if two addresses are the same.
func (a Address) Equals(b Address) bool {
	return a == b
}

// IsZero returns true if this is the zero address.
func (a Address) IsZero() bool {
	return a == ZeroAddress
}

// Bytes returns a copy of the address as a byte slice.
func (a Address) Bytes() []byte {
	return append([]byte(nil), a[:]...)
}

// Less orders addresses byte-wise.
func (a Address) Less(b Address) bool {
	return bytes.Compare(a[:], b[:]) < 0
}

// String returns the base58 representation.
func (a Address) String() string {
	return base58.Encode(a[:])
}

// Bech32 returns the bech32 representation using Bech32Prefix.
func (a Address) Bech32() string {
	s, err := bech32.Encode(Bech32Prefix, a[:])
	if err != nil {
		// Encoding of a fixed size payload with a valid prefix
		// cannot fail.
		panic(err)
	}
	return s
}

// MarshalJSON encodes the address as a base58 string.
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts any format supported by ParseAddress.
func (a *Address) UnmarshalJSON(raw []byte) error {
	var enc string
	if err := json.Unmarshal(raw, &enc); err != nil {
		return errors.Wrap(err, "cannot decode json")
	}
	addr, err := ParseAddress(enc)
	if err != nil {
		return err
	}
	*a = addr
	return nil
}

// Set updates the address from its string form. It implements the
// flag.Value interface.
func (a *Address) Set(raw string) error {
	addr, err := ParseAddress(raw)
	if err != nil {
		return err
	}
	*a = addr
	return nil
}
