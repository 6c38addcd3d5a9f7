package timevault

import (
	"encoding/binary"

	"github.com/iov-one/timevault/errors"
)

// Default rent parameters.
const (
	DefaultLamportsPerByteYear = 3480
	DefaultExemptionYears      = 2
	DefaultStorageOverhead     = 128
)

// Rent describes how many lamports an account must hold to be exempt from
// rent collection. Programs use it to fund the accounts they create.
type Rent struct {
	LamportsPerByteYear uint64 `json:"lamports_per_byte_year"`
	ExemptionYears      uint64 `json:"exemption_years"`
	// StorageOverhead is the number of bytes accounted for every
	// account, in addition to its data.
	StorageOverhead uint64 `json:"storage_overhead"`
}

// DefaultRent returns the rent configuration used when none is provided.
func DefaultRent() Rent {
	return Rent{
		LamportsPerByteYear: DefaultLamportsPerByteYear,
		ExemptionYears:      DefaultExemptionYears,
		StorageOverhead:     DefaultStorageOverhead,
	}
}

// MinimumBalance returns the lamports an account holding size bytes of data
// must own to be rent exempt.
func (r Rent) MinimumBalance(size int) uint64 {
	return (r.StorageOverhead + uint64(size)) * r.LamportsPerByteYear * r.ExemptionYears
}

// IsExempt returns true if given balance is enough for an account of given
// size.
func (r Rent) IsExempt(lamports uint64, size int) bool {
	return lamports >= r.MinimumBalance(size)
}

// Validate returns an error if the configuration is not usable.
func (r Rent) Validate() error {
	var errs error
	if r.LamportsPerByteYear == 0 {
		errs = errors.AppendField(errs, "LamportsPerByteYear", errors.ErrAmount)
	}
	if r.ExemptionYears == 0 {
		errs = errors.AppendField(errs, "ExemptionYears", errors.ErrAmount)
	}
	return errs
}

const rentSize = 24

// Marshal serializes the configuration as three little endian numbers.
func (r Rent) Marshal() ([]byte, error) {
	raw := make([]byte, rentSize)
	binary.LittleEndian.PutUint64(raw[0:], r.LamportsPerByteYear)
	binary.LittleEndian.PutUint64(raw[8:], r.ExemptionYears)
	binary.LittleEndian.PutUint64(raw[16:], r.StorageOverhead)
	return raw, nil
}

// Unmarshal is the inverse of Marshal.
func (r *Rent) Unmarshal(raw []byte) error {
	if len(raw) != rentSize {
		return errors.Wrapf(errors.ErrInput, "rent must be %d bytes, got %d", rentSize, len(raw))
	}
	r.LamportsPerByteYear = binary.LittleEndian.Uint64(raw[0:])
	r.ExemptionYears = binary.LittleEndian.Uint64(raw[8:])
	r.StorageOverhead = binary.LittleEndian.Uint64(raw[16:])
	return nil
}
