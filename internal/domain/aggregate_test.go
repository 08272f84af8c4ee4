package domain

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeSeries builds a classified series of consecutive daily records
// starting at start, with IndexValue taken from value(dayOffset).
func makeSeries(start time.Time, days int, value func(i int) float64) []ClassifiedRecord {
	series := make([]ClassifiedRecord, days)
	for i := 0; i < days; i++ {
		v := value(i)
		series[i] = ClassifiedRecord{
			DailyRecord: DailyRecord{Date: start.AddDate(0, 0, i)},
			IndexValue:  v,
			Category:    Classify(v),
		}
	}
	return series
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSelectGranularity(t *testing.T) {
	tests := []struct {
		days     int
		expected Granularity
	}{
		{1, GranularityDaily},
		{15, GranularityDaily},
		{16, GranularityFiveDay},
		{90, GranularityFiveDay},
		{91, GranularityMonthly},
		{364, GranularityMonthly},
		{365, GranularityClimatology},
		{1000, GranularityClimatology},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.expected, SelectGranularity(tc.days), "days=%d", tc.days)
	}
}

func TestAggregate_Daily(t *testing.T) {
	start := day(2024, time.April, 1)
	end := day(2024, time.April, 10)
	series := makeSeries(start, 10, func(i int) float64 { return 60 + float64(i) })

	points, title, err := Aggregate(series, start, end)
	require.NoError(t, err)

	assert.Equal(t, "Daily Index", title)
	require.Len(t, points, 10)
	assert.Equal(t, "01/04", points[0].Label)
	assert.Equal(t, "10/04", points[9].Label)
	assert.InDelta(t, 60.0, points[0].IndexValue, 1e-9)
	assert.InDelta(t, 69.0, points[9].IndexValue, 1e-9)
}

func TestAggregate_FiveDay(t *testing.T) {
	start := day(2024, time.January, 1)
	end := day(2024, time.February, 19) // 50 days

	t.Run("full windows", func(t *testing.T) {
		series := makeSeries(start, 50, func(i int) float64 { return 70 })

		points, title, err := Aggregate(series, start, end)
		require.NoError(t, err)

		assert.Equal(t, "Index (5-day mean)", title)
		require.Len(t, points, 10)
		assert.Equal(t, "01/01", points[0].Label)
		assert.Equal(t, "06/01", points[1].Label)
		assert.Equal(t, "15/02", points[9].Label)
	})

	t.Run("window means and partial last window", func(t *testing.T) {
		// 7 records: window one holds 1..5, window two holds 6,7.
		series := makeSeries(start, 7, func(i int) float64 { return float64(i + 1) })

		points, _, err := Aggregate(series, start, end)
		require.NoError(t, err)

		require.Len(t, points, 2)
		assert.InDelta(t, 3.0, points[0].IndexValue, 1e-9)
		assert.InDelta(t, 6.5, points[1].IndexValue, 1e-9)
	})

	t.Run("gap produces no window point", func(t *testing.T) {
		// Records only on days 0 and 12: windows 0 and 2, nothing for window 1.
		series := []ClassifiedRecord{
			{DailyRecord: DailyRecord{Date: start}, IndexValue: 65},
			{DailyRecord: DailyRecord{Date: start.AddDate(0, 0, 12)}, IndexValue: 75},
		}

		points, _, err := Aggregate(series, start, end)
		require.NoError(t, err)

		require.Len(t, points, 2)
		assert.Equal(t, "01/01", points[0].Label)
		assert.Equal(t, "11/01", points[1].Label)
	})
}

func TestAggregate_Monthly(t *testing.T) {
	start := day(2023, time.January, 1)
	end := day(2023, time.July, 19) // 200 days

	series := makeSeries(start, 200, func(i int) float64 { return 72 })

	points, title, err := Aggregate(series, start, end)
	require.NoError(t, err)

	assert.Equal(t, "Monthly Mean Index", title)
	require.Len(t, points, 7)
	assert.Equal(t, "Jan/2023", points[0].Label)
	assert.Equal(t, "Jul/2023", points[6].Label)
	for _, p := range points {
		assert.InDelta(t, 72.0, p.IndexValue, 1e-9)
	}
}

func TestAggregate_Climatology(t *testing.T) {
	start := day(2022, time.January, 1)
	end := day(2023, time.February, 4) // 400 days

	t.Run("twelve points in calendar order", func(t *testing.T) {
		series := makeSeries(start, 400, func(i int) float64 { return 68 })

		points, title, err := Aggregate(series, start, end)
		require.NoError(t, err)

		assert.Equal(t, "Monthly Mean Index (averaged across all years)", title)
		require.Len(t, points, 12)
		assert.Equal(t, "Jan", points[0].Label)
		assert.Equal(t, "Dec", points[11].Label)
	})

	t.Run("merges the same month across years", func(t *testing.T) {
		// One January record per year with different values: the single
		// January point is their mean regardless of year.
		series := []ClassifiedRecord{
			{DailyRecord: DailyRecord{Date: day(2022, time.January, 10)}, IndexValue: 60},
			{DailyRecord: DailyRecord{Date: day(2023, time.January, 20)}, IndexValue: 80},
			{DailyRecord: DailyRecord{Date: day(2022, time.June, 1)}, IndexValue: 75},
		}

		points, _, err := Aggregate(series, start, end)
		require.NoError(t, err)

		require.Len(t, points, 2)
		assert.Equal(t, "Jan", points[0].Label)
		assert.InDelta(t, 70.0, points[0].IndexValue, 1e-9)
		assert.Equal(t, "Jun", points[1].Label)
	})

	t.Run("months without data are absent, not zero", func(t *testing.T) {
		series := []ClassifiedRecord{
			{DailyRecord: DailyRecord{Date: day(2022, time.March, 5)}, IndexValue: 71},
		}

		points, _, err := Aggregate(series, start, end)
		require.NoError(t, err)

		require.Len(t, points, 1)
		assert.Equal(t, "Mar", points[0].Label)
	})
}

func TestAggregate_EmptySeries(t *testing.T) {
	tests := []struct {
		name          string
		start, end    time.Time
		expectedTitle string
	}{
		{"daily branch", day(2024, time.April, 1), day(2024, time.April, 10), "Daily Index"},
		{"climatology branch", day(2020, time.January, 1), day(2022, time.December, 31), "Monthly Mean Index (averaged across all years)"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			points, title, err := Aggregate(nil, tc.start, tc.end)
			require.NoError(t, err)
			assert.Empty(t, points)
			assert.Equal(t, tc.expectedTitle, title)
		})
	}
}

func TestAggregate_InvalidRange(t *testing.T) {
	_, _, err := Aggregate(nil, day(2024, time.April, 10), day(2024, time.April, 1))
	require.ErrorIs(t, err, ErrInvalidRange)
}

func TestAggregate_Idempotent(t *testing.T) {
	start := day(2024, time.January, 1)
	end := day(2024, time.February, 19)
	series := makeSeries(start, 50, func(i int) float64 { return 60 + float64(i%10) })

	first, title1, err := Aggregate(series, start, end)
	require.NoError(t, err)
	second, title2, err := Aggregate(series, start, end)
	require.NoError(t, err)

	assert.Equal(t, title1, title2)
	assert.Empty(t, cmp.Diff(first, second))
}
