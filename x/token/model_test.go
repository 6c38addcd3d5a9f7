package token

import (
	"testing"

	"github.com/iov-one/timevault"
	"github.com/iov-one/timevault/errors"
	"github.com/stretchr/testify/require"
)

func TestMintLayout(t *testing.T) {
	authority := timevault.MustParseAddress("Ac9JwB8Wc4JB7WwNkVSAY1SESxNmLw5rxuh1okLjQpX")
	m := Mint{MintAuthority: &authority, Supply: 7, Decimals: 9, IsInitialized: true}
	raw, err := m.Marshal()
	require.NoError(t, err)
	require.Len(t, raw, MintSize)
	require.Equal(t, []byte{1, 0, 0, 0}, raw[:4])
	require.Equal(t, byte(9), raw[44])

	var got Mint
	require.NoError(t, got.Unmarshal(raw))
	require.Equal(t, m, got)

	require.True(t, errors.ErrInvalidAccountData.Is(got.Unmarshal(raw[:MintSize-1])))
	raw[45] = 2
	require.True(t, errors.ErrInvalidAccountData.Is(got.Unmarshal(raw)))
	raw[45] = 1
	raw[0] = 3
	require.True(t, errors.ErrInvalidAccountData.Is(got.Unmarshal(raw)))
}

func TestTokenAccountLayout(t *testing.T) {
	a := TokenAccount{
		Mint:   timevault.MustParseAddress("Ac9JwB8Wc4JB7WwNkVSAY1SESxNmLw5rxuh1okLjQpX"),
		Owner:  timevault.MustParseAddress("4vJ9JU1bJJE96FWSJKvHsmmFADCg4gpZQff4P3bkLKi"),
		Amount: 42,
		State:  Initialized,
	}
	raw, err := a.Marshal()
	require.NoError(t, err)
	require.Len(t, raw, AccountSize)
	require.Equal(t, byte(42), raw[64])
	require.Equal(t, byte(1), raw[108])

	var got TokenAccount
	require.NoError(t, got.Unmarshal(raw))
	require.Equal(t, a, got)

	raw[108] = 3
	require.True(t, errors.ErrInvalidAccountData.Is(got.Unmarshal(raw)))
	require.True(t, errors.ErrInvalidAccountData.Is(got.Unmarshal(raw[:100])))
}

func TestAmounts(t *testing.T) {
	cases := map[string]struct {
		text     string
		decimals uint8
		want     uint64
		wantErr  *errors.Error
	}{
		"whole tokens":         {text: "12", decimals: 6, want: 12000000},
		"fraction":             {text: "0.5", decimals: 6, want: 500000},
		"no decimals":          {text: "7", decimals: 0, want: 7},
		"too precise":          {text: "0.0000001", decimals: 6, wantErr: errors.ErrAmount},
		"negative":             {text: "-1", decimals: 6, wantErr: errors.ErrAmount},
		"not a number":         {text: "ten", decimals: 6, wantErr: errors.ErrAmount},
		"does not fit":         {text: "18446744073709551616", decimals: 0, wantErr: errors.ErrOverflow},
		"largest value":        {text: "18446744073709551615", decimals: 0, want: 18446744073709551615},
		"trailing zero digits": {text: "1.500000000", decimals: 6, want: 1500000},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			got, err := ParseAmount(tc.text, tc.decimals)
			if tc.wantErr != nil {
				require.True(t, tc.wantErr.Is(err), "got %v", err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}

	require.Equal(t, "1.500000", FormatAmount(1500000, 6))
	require.Equal(t, "0.000001", FormatAmount(1, 6))
	require.Equal(t, "42", FormatAmount(42, 0))
}
