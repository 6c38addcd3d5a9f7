package ledger

import (
	"testing"

	"github.com/iov-one/timevault"
	"github.com/iov-one/timevault/errors"
	"github.com/stretchr/testify/require"
)

func TestAccountSerialization(t *testing.T) {
	owner := timevault.MustParseAddress("Ac9JwB8Wc4JB7WwNkVSAY1SESxNmLw5rxuh1okLjQpX")
	cases := map[string]*Account{
		"empty":      {},
		"with data":  {Lamports: 1461600, Owner: owner, Data: make([]byte, 82)},
		"executable": {Lamports: 1, Executable: true},
	}
	for testName, acc := range cases {
		t.Run(testName, func(t *testing.T) {
			raw, err := acc.Marshal()
			require.NoError(t, err)
			var got Account
			require.NoError(t, got.Unmarshal(raw))
			require.True(t, acc.Equals(&got))
		})
	}

	var acc Account
	require.True(t, errors.ErrInput.Is(acc.Unmarshal(make([]byte, 10))))
	raw, _ := (&Account{Data: []byte{1}}).Marshal()
	require.True(t, errors.ErrInput.Is(acc.Unmarshal(raw[:len(raw)-1])))
}

func TestAccountInfo(t *testing.T) {
	addr := timevault.MustParseAddress("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")

	ro := NewAccountInfo(addr, false, false, &Account{Lamports: 10})
	require.True(t, errors.ErrReadonlyModified.Is(ro.AddLamports(1)))
	require.True(t, errors.ErrReadonlyModified.Is(ro.Resize(1)))
	_, err := ro.Signer()
	require.True(t, errors.ErrMissingRequiredSignature.Is(err))

	acc := &Account{Lamports: 10}
	w := NewAccountInfo(addr, true, true, acc)
	// Handles of the same address share state.
	dup := NewAccountInfo(addr, true, true, acc)

	require.True(t, errors.ErrInsufficientFunds.Is(w.SubLamports(11)))
	require.True(t, errors.ErrOverflow.Is(w.AddLamports(^uint64(0))))
	require.NoError(t, w.Resize(82))
	require.Len(t, dup.Data(), 82)
	require.NoError(t, w.SetData(80, []byte{7, 8}))
	require.Equal(t, []byte{7, 8}, dup.Data()[80:])
	require.True(t, errors.ErrInvalidAccountData.Is(w.SetData(81, []byte{1, 2})))
	require.True(t, errors.ErrReadonlyModified.Is(ro.SetData(0, nil)))
	require.NoError(t, w.Assign(addr))
	require.Equal(t, addr, dup.Owner())

	require.True(t, errors.ErrState.Is(w.Close()))
	require.NoError(t, w.SubLamports(10))
	require.NoError(t, w.Resize(1))
	require.NoError(t, dup.Close())
	require.True(t, w.DataIsEmpty())
	require.Equal(t, timevault.ZeroAddress, w.Owner())

	auth, err := w.Signer()
	require.NoError(t, err)
	require.NoError(t, RequireAuthority(auth, dup))
	require.True(t, errors.ErrMissingRequiredSignature.Is(RequireAuthority(nil, dup)))
}
