package chrono

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDateKey(t *testing.T) {
	la, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		now    time.Time
		expect string
	}{
		{now: time.Date(2025, time.January, 2, 0, 0, 0, 0, time.UTC), expect: "2025-01-02"},
		{now: time.Date(2025, time.January, 2, 23, 59, 59, 0, time.UTC), expect: "2025-01-02"},
		{now: time.Date(2025, time.January, 2, 23, 0, 0, 0, la), expect: "2025-01-02"},
	}

	for _, test := range cases {
		require.Equal(t, test.expect, DateKey(test.now))
	}
}

func TestISOTimestamp(t *testing.T) {
	la, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2025, time.January, 1, 20, 30, 15, 123_000_000, la)
	require.Equal(t, "2025-01-02T04:30:15.123Z", ISOTimestamp(now))
}

func TestStandardTimeLocation(t *testing.T) {
	clock, err := NewStandardTime("")
	require.NoError(t, err)
	require.Equal(t, time.UTC, clock.Now().Location())

	_, err = NewStandardTime("Not/AZone")
	require.Error(t, err)
}
