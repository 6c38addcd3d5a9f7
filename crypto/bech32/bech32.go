// Package bech32 converts byte payloads to and from the bech32 text form.
package bech32

import (
	"github.com/btcsuite/btcutil/bech32"
	"github.com/iov-one/timevault/errors"
)

// Decode returns the human readable part and the payload of a bech32
// string.
func Decode(raw string) (string, []byte, error) {
	hrp, data, err := bech32.Decode(raw)
	if err != nil {
		return "", nil, errors.Wrapf(errors.ErrInput, "bech32: %s", err)
	}
	payload, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return "", nil, errors.Wrapf(errors.ErrInput, "bech32 payload: %s", err)
	}
	return hrp, payload, nil
}

// DecodePrefixed is Decode that rejects any human readable part other than
// hrp.
func DecodePrefixed(raw, hrp string) ([]byte, error) {
	got, payload, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	if got != hrp {
		return nil, errors.Wrapf(errors.ErrInput, "bech32 prefix %q, want %q", got, hrp)
	}
	return payload, nil
}

// Encode returns the bech32 form of the payload.
func Encode(hrp string, payload []byte) (string, error) {
	data, err := bech32.ConvertBits(payload, 8, 5, true)
	if err != nil {
		return "", errors.Wrapf(errors.ErrInput, "bech32 payload: %s", err)
	}
	s, err := bech32.Encode(hrp, data)
	if err != nil {
		return "", errors.Wrapf(errors.ErrInput, "bech32: %s", err)
	}
	return s, nil
}
