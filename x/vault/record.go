package vault

import (
	"encoding/binary"

	"github.com/iov-one/timevault"
	"github.com/iov-one/timevault/errors"
)

// RecordSize is the size of the data of a holding account.
const RecordSize = 82

// tombstone is written over the first byte of a record before the
// holding account is released.
const tombstone = 0xff

// Record is stored in the holding account. It is written once by the
// init operation and never changes afterwards.
type Record struct {
	Owner      timevault.Address  `json:"owner"`
	Amount     uint64             `json:"amount"`
	Bump       uint8              `json:"bump"`
	UnlockTime timevault.UnixTime `json:"unlock_time"`
	// Mint is the token held by the vault. Nil for a native vault.
	Mint *timevault.Address `json:"mint,omitempty"`
}

// Marshal serializes the record:
//
//	owner 32 | amount 8 | bump 1 | unlock_time 8 | mint tag 1 | mint 32
func (r *Record) Marshal() ([]byte, error) {
	raw := make([]byte, RecordSize)
	copy(raw[0:32], r.Owner[:])
	binary.LittleEndian.PutUint64(raw[32:40], r.Amount)
	raw[40] = r.Bump
	binary.LittleEndian.PutUint64(raw[41:49], uint64(r.UnlockTime))
	if r.Mint != nil {
		raw[49] = 1
		copy(raw[50:82], r.Mint[:])
	}
	return raw, nil
}

// Unmarshal is the inverse of Marshal. The buffer must be exactly
// RecordSize bytes and carry a valid mint tag.
func (r *Record) Unmarshal(raw []byte) error {
	if len(raw) != RecordSize {
		return errors.Wrapf(errors.ErrInvalidAccountData, "record must be %d bytes, got %d", RecordSize, len(raw))
	}
	var mint *timevault.Address
	switch raw[49] {
	case 0:
	case 1:
		mint = new(timevault.Address)
		copy(mint[:], raw[50:82])
	default:
		return errors.Wrapf(errors.ErrInvalidAccountData, "mint tag %d", raw[49])
	}
	copy(r.Owner[:], raw[0:32])
	r.Amount = binary.LittleEndian.Uint64(raw[32:40])
	r.Bump = raw[40]
	r.UnlockTime = timevault.UnixTime(binary.LittleEndian.Uint64(raw[41:49]))
	r.Mint = mint
	return nil
}

// IsFungible returns true if the vault holds tokens.
func (r *Record) IsFungible() bool {
	return r.Mint != nil
}

// Status is the state of a vault at a given time.
type Status int

const (
	Locked Status = iota
	Matured
)

func (s Status) String() string {
	switch s {
	case Locked:
		return "locked"
	case Matured:
		return "matured"
	default:
		return "unknown"
	}
}

// Status returns Matured once the unlock time is reached.
func (r *Record) Status(now timevault.UnixTime) Status {
	if now < r.UnlockTime {
		return Locked
	}
	return Matured
}

// Decode reads the record of a holding account for inspection. Released
// holding accounts return ErrNotFound.
func Decode(data []byte) (*Record, error) {
	if len(data) == 0 {
		return nil, errors.Wrap(errors.ErrNotFound, "empty account")
	}
	if len(data) == 1 && data[0] == tombstone {
		return nil, errors.Wrap(errors.ErrNotFound, "released vault")
	}
	var r Record
	if err := r.Unmarshal(data); err != nil {
		return nil, err
	}
	return &r, nil
}
