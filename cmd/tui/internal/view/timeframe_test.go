package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/pennywise/internal/transaction"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestRangeFor(t *testing.T) {
	now := time.Date(2024, time.March, 15, 18, 30, 0, 0, time.UTC)

	type testCase struct {
		tf        Timeframe
		wantStart time.Time
		wantEnd   time.Time
	}

	tests := []testCase{
		{tf: TimeframeThisMonth, wantStart: date(2024, 3, 1), wantEnd: date(2024, 3, 15)},
		{tf: TimeframeLastMonth, wantStart: date(2024, 2, 1), wantEnd: date(2024, 2, 29)},
		{tf: TimeframeLast90Days, wantStart: date(2023, 12, 17), wantEnd: date(2024, 3, 15)},
		{tf: TimeframeThisYear, wantStart: date(2024, 1, 1), wantEnd: date(2024, 3, 15)},
	}

	for _, tt := range tests {
		t.Run(tt.tf.String(), func(t *testing.T) {
			r := rangeFor(tt.tf, now)
			require.NotNil(t, r.Start)
			require.NotNil(t, r.End)
			assert.Equal(t, tt.wantStart, *r.Start)
			assert.Equal(t, tt.wantEnd, *r.End)
		})
	}

	t.Run("AllTimeIsOpen", func(t *testing.T) {
		r := rangeFor(TimeframeAll, now)
		assert.Nil(t, r.Start)
		assert.Nil(t, r.End)
		assert.Equal(t, "all time", r.String())
	})
}

func TestParseCustomRange(t *testing.T) {
	type testCase struct {
		name    string
		start   string
		end     string
		want    string
		wantErr bool
	}

	tests := []testCase{
		{name: "Both", start: "2024-01-01", end: "2024-01-31", want: "2024-01-01 .. 2024-01-31"},
		{name: "OpenEnd", start: "2024-01-01", want: "2024-01-01 .. "},
		{name: "OpenStart", end: "2024-01-31", want: " .. 2024-01-31"},
		{name: "BadStart", start: "01/01/2024", wantErr: true},
		{name: "Reversed", start: "2024-02-01", end: "2024-01-01", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := parseCustomRange(tt.start, tt.end)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, r.String())
		})
	}
}

func TestDateRange_Apply(t *testing.T) {
	start := date(2024, 1, 1)

	var f transaction.ListFilter
	DateRange{Start: &start}.Apply(&f)

	assert.Equal(t, &start, f.StartDate)
	assert.Nil(t, f.EndDate)
}
