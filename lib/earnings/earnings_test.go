package earnings

import (
	"math"
	"testing"
	"time"

	"mturk-extractor/lib/scrapers/mturk"

	"github.com/stretchr/testify/require"
)

func entriesOf(earnings ...float64) []mturk.DailyEntry {
	entries := make([]mturk.DailyEntry, len(earnings))
	for i, e := range earnings {
		entries[i] = mturk.DailyEntry{
			Date:     time.Date(2025, time.January, 31-i, 0, 0, 0, 0, time.UTC).Format(time.DateOnly),
			Earnings: e,
		}
	}
	return entries
}

func TestEmptyTable(t *testing.T) {
	todays, projected := Project(nil, time.Date(2025, time.January, 2, 12, 0, 0, 0, time.UTC))
	require.Equal(t, "$0.00", todays)
	require.Equal(t, "$0.00", projected)

	todays, projected = Project([]mturk.DailyEntry{}, time.Now())
	require.Equal(t, "$0.00", todays)
	require.Equal(t, "$0.00", projected)
}

func TestToday(t *testing.T) {
	entries := []mturk.DailyEntry{
		{Date: "2025-01-01", Earnings: 10},
		{Date: "2025-01-02", Earnings: 20},
	}

	cases := []struct {
		today  string
		expect string
	}{
		{today: "2025-01-02", expect: "$20.00"},
		{today: "2025-01-01", expect: "$10.00"},
		{today: "2025-01-03", expect: "$0.00"},
	}
	for _, test := range cases {
		require.Equal(t, test.expect, Today(entries, test.today), test.today)
	}

	require.Equal(t, "$1.13", Today([]mturk.DailyEntry{
		{Date: "2025-01-02", Earnings: 1.125},
	}, "2025-01-02"))

	// the date only has to contain today
	require.Equal(t, "$3.50", Today([]mturk.DailyEntry{
		{Date: "2025-01-02T00:00:00.000Z", Earnings: 3.5},
	}, "2025-01-02"))
}

func TestProjected(t *testing.T) {
	cases := []struct {
		name     string
		earnings []float64
		expect   string
	}{
		{name: "seven days", earnings: []float64{7, 7, 7, 7, 7, 7, 7}, expect: "$210.00"},
		{name: "fewer than seven", earnings: []float64{1, 2}, expect: "$45.00"},
		{name: "only the newest seven count", earnings: []float64{7, 7, 7, 7, 7, 7, 7, 1000, 1000}, expect: "$210.00"},
		{name: "missing earnings are zero", earnings: []float64{14, 0}, expect: "$210.00"},
		{name: "rounding", earnings: []float64{0.01, 0.02, 0.04}, expect: "$0.70"},
		{name: "half cent rounds up", earnings: []float64{0.15, 0, 0, 0}, expect: "$1.13"},
		{name: "half cent rounds up again", earnings: []float64{1.35, 0, 0, 0}, expect: "$10.13"},
	}

	for _, test := range cases {
		t.Run(test.name, func(t *testing.T) {
			require.Equal(t, test.expect, Projected(entriesOf(test.earnings...)))
		})
	}
}

func TestProjectedIsOrderSensitive(t *testing.T) {
	newestFirst := entriesOf(1, 1, 1, 1, 1, 1, 1, 50)
	oldestFirst := entriesOf(50, 1, 1, 1, 1, 1, 1, 1)
	require.NotEqual(t, Projected(newestFirst), Projected(oldestFirst))
	require.Equal(t, "$30.00", Projected(newestFirst))
}

func TestFormatDollars(t *testing.T) {
	require.Equal(t, "$1234.50", FormatDollars(1234.5))
	require.Equal(t, "$0.00", FormatDollars(math.NaN()))
	require.Equal(t, "$0.00", FormatDollars(math.Inf(1)))

	cases := []struct {
		value  float64
		expect string
	}{
		{value: 1.125, expect: "$1.13"},
		{value: 0.005, expect: "$0.01"},
		{value: 2.675, expect: "$2.67"},
		{value: 1.005, expect: "$1.00"},
		{value: 0, expect: "$0.00"},
		{value: 99.999, expect: "$100.00"},
		{value: -1.125, expect: "$-1.13"},
	}
	for _, test := range cases {
		require.Equal(t, test.expect, FormatDollars(test.value), test.value)
	}
}
