package timevault

import (
	"crypto/sha256"

	"filippo.io/edwards25519"
	"github.com/iov-one/timevault/errors"
)

const (
	// MaxSeeds is the maximum number of seeds a derived address can be
	// created from.
	MaxSeeds = 16

	// MaxSeedLength is the maximum length of a single seed.
	MaxSeedLength = 32

	derivedAddressMarker = "ProgramDerivedAddress"
)

// CreateDerivedAddress returns the address derived from given seeds for the
// given program. A derived address is guaranteed to not be a valid ed25519
// public key, so that no private key exists for it and only the program can
// act on its behalf.
//
// This function fails with ErrInvalidSeeds if seeds are too long or too
// many, or if the result happens to be on the curve. In the last case the
// caller is expected to retry with a different bump seed, see
// FindDerivedAddress.
func CreateDerivedAddress(program Address, seeds ...[]byte) (Address, error) {
	if len(seeds) > MaxSeeds {
		return ZeroAddress, errors.Wrapf(errors.ErrInvalidSeeds, "%d seeds, max %d", len(seeds), MaxSeeds)
	}
	h := sha256.New()
	for i, s := range seeds {
		if len(s) > MaxSeedLength {
			return ZeroAddress, errors.Wrapf(errors.ErrInvalidSeeds, "seed %d is %d bytes long, max %d", i, len(s), MaxSeedLength)
		}
		h.Write(s)
	}
	h.Write(program[:])
	h.Write([]byte(derivedAddressMarker))

	var a Address
	copy(a[:], h.Sum(nil))
	if IsOnCurve(a) {
		return ZeroAddress, errors.Wrap(errors.ErrInvalidSeeds, "address on curve")
	}
	return a, nil
}

// FindDerivedAddress searches for a bump seed that, appended to given seeds,
// produces a valid derived address. The search starts at 255 and goes down.
// The first match is returned together with the bump that produced it.
func FindDerivedAddress(program Address, seeds ...[]byte) (Address, uint8, error) {
	if len(seeds) >= MaxSeeds {
		return ZeroAddress, 0, errors.Wrapf(errors.ErrInvalidSeeds, "%d seeds, no room for bump", len(seeds))
	}
	for i, s := range seeds {
		if len(s) > MaxSeedLength {
			return ZeroAddress, 0, errors.Wrapf(errors.ErrInvalidSeeds, "seed %d is %d bytes long, max %d", i, len(s), MaxSeedLength)
		}
	}

	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)
	for bump := 255; bump >= 0; bump-- {
		withBump[len(seeds)] = []byte{uint8(bump)}
		// With valid seeds the only possible failure is an address on
		// the curve.
		if a, err := CreateDerivedAddress(program, withBump...); err == nil {
			return a, uint8(bump), nil
		}
	}
	return ZeroAddress, 0, errors.Wrap(errors.ErrInvalidSeeds, "no viable bump")
}

// IsOnCurve returns true if given address is a valid compressed ed25519
// point.
func IsOnCurve(a Address) bool {
	_, err := new(edwards25519.Point).SetBytes(a[:])
	return err == nil
}
