package timevault

import (
	"bytes"
	"crypto/rand"
	"encoding/binary"
	"testing"

	"github.com/iov-one/timevault/errors"
	"golang.org/x/crypto/ed25519"
)

func TestFindDerivedAddress(t *testing.T) {
	program := MustParseAddress("Ac9JwB8Wc4JB7WwNkVSAY1SESxNmLw5rxuh1okLjQpX")

	amount := make([]byte, 8)
	binary.LittleEndian.PutUint64(amount, 1000000000)
	unlock := make([]byte, 8)
	binary.LittleEndian.PutUint64(unlock, 1757633343+3600)

	cases := map[string]struct {
		owner    []byte
		wantAddr string
		wantBump uint8
	}{
		"first bump is off curve": {
			owner:    bytes.Repeat([]byte{1}, 32),
			wantAddr: "2xL29w9KrYNnQR87Xma4jjryikFiVB3dcmqwQrK2QLVG",
			wantBump: 255,
		},
		"first bump is on curve": {
			owner:    bytes.Repeat([]byte{4}, 32),
			wantAddr: "3jEYqRXQCkTaY1u9QcQVysBaeX42Kma8XDJvz534iw1j",
			wantBump: 254,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			seeds := [][]byte{[]byte("vault"), tc.owner, amount, unlock}
			addr, bump, err := FindDerivedAddress(program, seeds...)
			if err != nil {
				t.Fatalf("cannot find address: %s", err)
			}
			if bump != tc.wantBump {
				t.Fatalf("want %d bump, got %d", tc.wantBump, bump)
			}
			if got := addr.String(); got != tc.wantAddr {
				t.Fatalf("want %s address, got %s", tc.wantAddr, got)
			}
			if IsOnCurve(addr) {
				t.Fatal("derived address must be off curve")
			}

			again, err := CreateDerivedAddress(program, append(seeds, []byte{bump})...)
			if err != nil {
				t.Fatalf("cannot recreate address: %s", err)
			}
			if again != addr {
				t.Fatalf("recreated address %s differs from %s", again, addr)
			}

			if bump < 255 {
				_, err := CreateDerivedAddress(program, append(seeds, []byte{255})...)
				if !errors.ErrInvalidSeeds.Is(err) {
					t.Fatalf("want invalid seeds error for an on curve bump, got %v", err)
				}
			}
		})
	}
}

func TestCreateDerivedAddressSeedLimits(t *testing.T) {
	program := MustParseAddress("Ac9JwB8Wc4JB7WwNkVSAY1SESxNmLw5rxuh1okLjQpX")

	cases := map[string]struct {
		seeds   [][]byte
		wantErr *errors.Error
	}{
		"no seeds": {
			seeds: nil,
		},
		"longest seed": {
			seeds: [][]byte{make([]byte, MaxSeedLength)},
		},
		"seed too long": {
			seeds:   [][]byte{make([]byte, MaxSeedLength+1)},
			wantErr: errors.ErrInvalidSeeds,
		},
		"too many seeds": {
			seeds:   make([][]byte, MaxSeeds+1),
			wantErr: errors.ErrInvalidSeeds,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			_, _, err := FindDerivedAddress(program, tc.seeds...)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}

	if _, _, err := FindDerivedAddress(program, make([][]byte, MaxSeeds)...); !errors.ErrInvalidSeeds.Is(err) {
		t.Fatalf("no room for the bump seed, got %v", err)
	}
}

func TestIsOnCurve(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("cannot generate key: %s", err)
	}
	var a Address
	copy(a[:], pub)
	if !IsOnCurve(a) {
		t.Fatal("public key must be on curve")
	}
}
