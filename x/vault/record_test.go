package vault

import (
	"bytes"
	"testing"

	"github.com/iov-one/timevault"
	"github.com/iov-one/timevault/errors"
	"github.com/stretchr/testify/require"
)

func TestRecordLayout(t *testing.T) {
	mint := timevault.Address{}
	copy(mint[:], bytes.Repeat([]byte{2}, 32))
	r := Record{
		Owner:      timevault.MustParseAddress("4vJ9JU1bJJE96FWSJKvHsmmFADCg4gpZQff4P3bkLKi"),
		Amount:     1000000000,
		Bump:       254,
		UnlockTime: 1757633343 + 3600,
		Mint:       &mint,
	}
	raw, err := r.Marshal()
	require.NoError(t, err)
	require.Len(t, raw, RecordSize)

	require.Equal(t, bytes.Repeat([]byte{1}, 32), raw[0:32])
	require.Equal(t, []byte{0x00, 0xca, 0x9a, 0x3b, 0, 0, 0, 0}, raw[32:40])
	require.Equal(t, byte(254), raw[40])
	require.Equal(t, []byte{0x4f, 0x69, 0xc3, 0x68, 0, 0, 0, 0}, raw[41:49])
	require.Equal(t, byte(1), raw[49])
	require.Equal(t, mint[:], raw[50:82])

	var got Record
	require.NoError(t, got.Unmarshal(raw))
	require.Equal(t, r, got)

	native := Record{Owner: r.Owner, Amount: 1, UnlockTime: 5}
	raw, err = native.Marshal()
	require.NoError(t, err)
	require.Equal(t, make([]byte, 33), raw[49:])
	require.NoError(t, got.Unmarshal(raw))
	require.Nil(t, got.Mint)
	require.False(t, got.IsFungible())
}

func TestRecordUnmarshalRejectsMalformedData(t *testing.T) {
	valid, err := (&Record{Amount: 1}).Marshal()
	require.NoError(t, err)

	badTag := append([]byte(nil), valid...)
	badTag[49] = 2

	cases := map[string][]byte{
		"empty":     nil,
		"too short": valid[:RecordSize-1],
		"too long":  append(append([]byte(nil), valid...), 0),
		"tombstone": {tombstone},
		"bad tag":   badTag,
	}
	for testName, raw := range cases {
		t.Run(testName, func(t *testing.T) {
			var r Record
			err := r.Unmarshal(raw)
			require.True(t, errors.ErrInvalidAccountData.Is(err), "got %v", err)
		})
	}
}

func TestDecode(t *testing.T) {
	_, err := Decode(nil)
	require.True(t, errors.ErrNotFound.Is(err))
	_, err = Decode([]byte{tombstone})
	require.True(t, errors.ErrNotFound.Is(err))
	_, err = Decode([]byte{1, 2, 3})
	require.True(t, errors.ErrInvalidAccountData.Is(err))

	raw, err := (&Record{Amount: 7, UnlockTime: 100}).Marshal()
	require.NoError(t, err)
	r, err := Decode(raw)
	require.NoError(t, err)
	require.Equal(t, uint64(7), r.Amount)

	require.Equal(t, Locked, r.Status(99))
	require.Equal(t, Matured, r.Status(100))
	require.Equal(t, "matured", r.Status(101).String())
}
