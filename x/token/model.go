package token

import (
	"encoding/binary"

	"github.com/iov-one/timevault"
	"github.com/iov-one/timevault/errors"
)

const (
	// MintSize is the size of the mint account data.
	MintSize = 82
	// AccountSize is the size of the token account data.
	AccountSize = 165
)

// Mint describes a token type.
type Mint struct {
	// MintAuthority may issue new tokens. Nil means the supply is fixed.
	MintAuthority   *timevault.Address
	Supply          uint64
	Decimals        uint8
	IsInitialized   bool
	FreezeAuthority *timevault.Address
}

// Marshal serializes the mint into its fixed layout:
//
//	mint_authority 4+32 | supply 8 | decimals 1 | is_initialized 1 | freeze_authority 4+32
func (m *Mint) Marshal() ([]byte, error) {
	raw := make([]byte, MintSize)
	putOptionalAddress(raw[0:36], m.MintAuthority)
	binary.LittleEndian.PutUint64(raw[36:], m.Supply)
	raw[44] = m.Decimals
	if m.IsInitialized {
		raw[45] = 1
	}
	putOptionalAddress(raw[46:82], m.FreezeAuthority)
	return raw, nil
}

// Unmarshal is the inverse of Marshal.
func (m *Mint) Unmarshal(raw []byte) error {
	if len(raw) != MintSize {
		return errors.Wrapf(errors.ErrInvalidAccountData, "mint must be %d bytes, got %d", MintSize, len(raw))
	}
	var err error
	if m.MintAuthority, err = optionalAddress(raw[0:36]); err != nil {
		return errors.Wrap(err, "mint authority")
	}
	m.Supply = binary.LittleEndian.Uint64(raw[36:])
	m.Decimals = raw[44]
	switch raw[45] {
	case 0:
		m.IsInitialized = false
	case 1:
		m.IsInitialized = true
	default:
		return errors.Wrapf(errors.ErrInvalidAccountData, "is_initialized %d", raw[45])
	}
	if m.FreezeAuthority, err = optionalAddress(raw[46:82]); err != nil {
		return errors.Wrap(err, "freeze authority")
	}
	return nil
}

// AccountState is the state of a token account.
type AccountState uint8

const (
	Uninitialized AccountState = iota
	Initialized
	Frozen
)

// TokenAccount holds a balance of a single mint for its owner.
type TokenAccount struct {
	Mint   timevault.Address
	Owner  timevault.Address
	Amount uint64
	State  AccountState
}

// Marshal serializes the account. Delegation, native wrapping and close
// authority are not supported and always written as absent.
//
//	mint 32 | owner 32 | amount 8 | delegate 4+32 | state 1 |
//	is_native 4+8 | delegated_amount 8 | close_authority 4+32
func (a *TokenAccount) Marshal() ([]byte, error) {
	raw := make([]byte, AccountSize)
	copy(raw[0:], a.Mint[:])
	copy(raw[32:], a.Owner[:])
	binary.LittleEndian.PutUint64(raw[64:], a.Amount)
	raw[108] = byte(a.State)
	return raw, nil
}

// Unmarshal is the inverse of Marshal.
func (a *TokenAccount) Unmarshal(raw []byte) error {
	if len(raw) != AccountSize {
		return errors.Wrapf(errors.ErrInvalidAccountData, "token account must be %d bytes, got %d", AccountSize, len(raw))
	}
	copy(a.Mint[:], raw[0:32])
	copy(a.Owner[:], raw[32:64])
	a.Amount = binary.LittleEndian.Uint64(raw[64:])
	a.State = AccountState(raw[108])
	if a.State > Frozen {
		return errors.Wrapf(errors.ErrInvalidAccountData, "state %d", a.State)
	}
	return nil
}

func putOptionalAddress(raw []byte, a *timevault.Address) {
	if a == nil {
		return
	}
	binary.LittleEndian.PutUint32(raw, 1)
	copy(raw[4:], a[:])
}

func optionalAddress(raw []byte) (*timevault.Address, error) {
	switch tag := binary.LittleEndian.Uint32(raw); tag {
	case 0:
		return nil, nil
	case 1:
		var a timevault.Address
		copy(a[:], raw[4:36])
		return &a, nil
	default:
		return nil, errors.Wrapf(errors.ErrInvalidAccountData, "option tag %d", tag)
	}
}
