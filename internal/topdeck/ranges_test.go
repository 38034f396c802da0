package topdeck

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeeklyRangesContiguous(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	ranges := WeeklyRanges(start, end)
	require.NotEmpty(t, ranges)

	assert.Equal(t, start.Unix(), ranges[0].Start)
	assert.Equal(t, end.Unix(), ranges[len(ranges)-1].End)

	for i := 1; i < len(ranges); i++ {
		assert.Equal(t, ranges[i-1].End, ranges[i].Start, "window %d not contiguous", i)
	}
	for _, r := range ranges {
		assert.Less(t, r.Start, r.End)
		assert.LessOrEqual(t, r.End-r.Start, int64(7*24*3600))
	}
}

func TestWeeklyRangesClipsFinalWindow(t *testing.T) {
	start := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	end := start.Add(10 * 24 * time.Hour)

	ranges := WeeklyRanges(start, end)
	require.Len(t, ranges, 2)
	assert.Equal(t, int64(7*24*3600), ranges[0].End-ranges[0].Start)
	assert.Equal(t, int64(3*24*3600), ranges[1].End-ranges[1].Start)
}

func TestWeeklyRangesEmpty(t *testing.T) {
	now := time.Now()
	assert.Nil(t, WeeklyRanges(now, now))
	assert.Nil(t, WeeklyRanges(now, now.Add(-time.Hour)))
}

func TestWeekStart(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			"wednesday maps to its monday",
			time.Date(2025, 6, 11, 15, 30, 0, 0, time.UTC),
			time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC),
		},
		{
			"monday maps to itself at midnight",
			time.Date(2025, 6, 9, 23, 59, 59, 0, time.UTC),
			time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC),
		},
		{
			"sunday belongs to the previous monday",
			time.Date(2025, 6, 15, 1, 0, 0, 0, time.UTC),
			time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WeekStart(tt.in))
		})
	}
}
