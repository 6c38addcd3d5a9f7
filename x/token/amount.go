package token

import (
	"math/big"

	"github.com/iov-one/timevault/errors"
	"github.com/shopspring/decimal"
)

// FormatAmount returns the amount of base units as a decimal number of
// whole tokens, for example 1500000 with 6 decimals is "1.500000".
func FormatAmount(amount uint64, decimals uint8) string {
	d := decimal.NewFromBigInt(new(big.Int).SetUint64(amount), -int32(decimals))
	return d.StringFixed(int32(decimals))
}

// ParseAmount converts a decimal number of whole tokens into base units.
// It fails if the value is negative, more precise than the mint allows or
// does not fit.
func ParseAmount(s string, decimals uint8) (uint64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, errors.Wrapf(errors.ErrAmount, "%q: %s", s, err)
	}
	if d.IsNegative() {
		return 0, errors.Wrapf(errors.ErrAmount, "%q is negative", s)
	}
	units := d.Shift(int32(decimals))
	if !units.Equal(units.Truncate(0)) {
		return 0, errors.Wrapf(errors.ErrAmount, "%q has more than %d decimals", s, decimals)
	}
	n := units.BigInt()
	if !n.IsUint64() {
		return 0, errors.Wrapf(errors.ErrOverflow, "%q", s)
	}
	return n.Uint64(), nil
}
