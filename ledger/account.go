package ledger

import (
	"bytes"
	"encoding/binary"

	"github.com/iov-one/timevault"
	"github.com/iov-one/timevault/errors"
)

// Account is the state the ledger keeps for every address.
type Account struct {
	Lamports uint64
	// Owner is the program allowed to modify the data. New accounts are
	// owned by the system program.
	Owner      timevault.Address
	Executable bool
	Data       []byte
}

const accountHeaderSize = 8 + timevault.AddressLength + 1 + 4

// Marshal serializes the account with a fixed size header followed by the
// data.
func (a *Account) Marshal() ([]byte, error) {
	raw := make([]byte, accountHeaderSize+len(a.Data))
	binary.LittleEndian.PutUint64(raw[0:], a.Lamports)
	copy(raw[8:], a.Owner[:])
	if a.Executable {
		raw[40] = 1
	}
	binary.LittleEndian.PutUint32(raw[41:], uint32(len(a.Data)))
	copy(raw[accountHeaderSize:], a.Data)
	return raw, nil
}

// Unmarshal is the inverse of Marshal.
func (a *Account) Unmarshal(raw []byte) error {
	if len(raw) < accountHeaderSize {
		return errors.Wrapf(errors.ErrInput, "account header too short: %d", len(raw))
	}
	size := binary.LittleEndian.Uint32(raw[41:])
	if uint64(len(raw)-accountHeaderSize) != uint64(size) {
		return errors.Wrapf(errors.ErrInput, "want %d bytes of data, got %d", size, len(raw)-accountHeaderSize)
	}
	if raw[40] > 1 {
		return errors.Wrapf(errors.ErrInput, "invalid executable flag %d", raw[40])
	}
	a.Lamports = binary.LittleEndian.Uint64(raw[0:])
	copy(a.Owner[:], raw[8:40])
	a.Executable = raw[40] == 1
	a.Data = nil
	if size > 0 {
		a.Data = append([]byte(nil), raw[accountHeaderSize:]...)
	}
	return nil
}

// Clone returns a deep copy.
func (a *Account) Clone() *Account {
	c := *a
	if a.Data != nil {
		c.Data = append([]byte(nil), a.Data...)
	}
	return &c
}

// Equals returns true if both accounts hold the same state.
func (a *Account) Equals(b *Account) bool {
	return a.Lamports == b.Lamports &&
		a.Owner == b.Owner &&
		a.Executable == b.Executable &&
		bytes.Equal(a.Data, b.Data)
}

// IsEmpty returns true for accounts that can be dropped from the state.
func (a *Account) IsEmpty() bool {
	return a.Lamports == 0 && len(a.Data) == 0 && !a.Executable
}

func accountKey(addr timevault.Address) []byte {
	return append([]byte(accountPrefix), addr[:]...)
}

const accountPrefix = "acct:"
