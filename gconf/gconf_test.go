package gconf

import (
	"encoding/json"
	"testing"

	"github.com/iov-one/timevault"
	"github.com/iov-one/timevault/errors"
	"github.com/iov-one/timevault/store"
	"github.com/iov-one/timevault/vaulttest/assert"
)

func TestSaveLoad(t *testing.T) {
	cases := map[string]struct {
		Conf        timevault.Rent
		WantSaveErr *errors.Error
	}{
		"default rent": {
			Conf: timevault.DefaultRent(),
		},
		"free storage overhead": {
			Conf: timevault.Rent{LamportsPerByteYear: 10, ExemptionYears: 1},
		},
		"invalid rent cannot be saved": {
			Conf:        timevault.Rent{LamportsPerByteYear: 10},
			WantSaveErr: errors.ErrAmount,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			if err := Save(db, "rent", tc.Conf); !tc.WantSaveErr.Is(err) {
				t.Fatalf("unexpected save error: %s", err)
			}
			if tc.WantSaveErr != nil {
				return
			}

			var got timevault.Rent
			assert.Nil(t, Load(db, "rent", &got))
			assert.Equal(t, tc.Conf, got)
		})
	}
}

func TestLoadMissing(t *testing.T) {
	var got timevault.Rent
	err := Load(store.MemStore(), "rent", &got)
	assert.IsErr(t, errors.ErrNotFound, err)
}

func TestInitConfig(t *testing.T) {
	raw := `{"conf": {"rent": {"lamports_per_byte_year": 7, "exemption_years": 3}}}`
	var opts timevault.Options
	assert.Nil(t, json.Unmarshal([]byte(raw), &opts))

	db := store.MemStore()
	var conf timevault.Rent
	assert.Nil(t, InitConfig(db, opts, "rent", &conf))

	var got timevault.Rent
	assert.Nil(t, Load(db, "rent", &got))
	assert.Equal(t, timevault.Rent{LamportsPerByteYear: 7, ExemptionYears: 3}, got)

	err := InitConfig(db, opts, "token", &conf)
	assert.IsErr(t, errors.ErrNotFound, err)
}
