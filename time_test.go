package timevault

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/iov-one/timevault/errors"
)

func TestUnixTimeUnmarshal(t *testing.T) {
	cases := map[string]struct {
		raw      string
		wantTime UnixTime
		wantErr  *errors.Error
	}{
		"zero time as number": {
			raw:      "0",
			wantTime: 0,
		},
		"a time as string": {
			raw:      `"2025-09-11T23:29:03Z"`,
			wantTime: 1757633343,
		},
		"a time as number": {
			raw:      "1757633343",
			wantTime: 1757633343,
		},
		"negative number is allowed": {
			raw:      "-1",
			wantTime: -1,
		},
		"invalid string": {
			raw:     `"not a time string"`,
			wantErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var got UnixTime
			err := json.Unmarshal([]byte(tc.raw), &got)
			if !tc.wantErr.Is(err) {
				t.Fatalf("unexpected error: %s", err)
			}
			if got != tc.wantTime {
				t.Fatalf("want %d time, got %d", tc.wantTime, got)
			}
		})
	}
}

func TestUnixTimeAdd(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Hour + 4*time.Second)

	unow := AsUnixTime(now)
	ufuture := unow.Add(time.Hour + 4*time.Second)

	if future.Unix() != int64(ufuture) {
		t.Fatalf("want %d, got %d", future.Unix(), ufuture)
	}
	if got := UnixTime(1757633343).String(); got != "2025-09-11T23:29:03Z" {
		t.Fatalf("unexpected string representation: %s", got)
	}
}
