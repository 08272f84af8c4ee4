package domain

import (
	"sort"
	"time"
)

// Granularity selects how a period's daily series buckets into chart points.
type Granularity int

const (
	GranularityDaily Granularity = iota
	GranularityFiveDay
	GranularityMonthly
	GranularityClimatology
)

// Title returns the chart title for the granularity.
func (g Granularity) Title() string {
	switch g {
	case GranularityDaily:
		return "Daily Index"
	case GranularityFiveDay:
		return "Index (5-day mean)"
	case GranularityMonthly:
		return "Monthly Mean Index"
	default:
		return "Monthly Mean Index (averaged across all years)"
	}
}

// PeriodDays returns the inclusive length of [start, end] in days.
// Dates are UTC midnights, so the division is exact.
func PeriodDays(start, end time.Time) int {
	return int(end.Sub(start)/(24*time.Hour)) + 1
}

// SelectGranularity picks the bucketing rule for a period length in days.
// First match wins: ≤15 daily, ≤90 five-day windows, <365 calendar months,
// otherwise the 12-month climatology.
func SelectGranularity(days int) Granularity {
	switch {
	case days <= 15:
		return GranularityDaily
	case days <= 90:
		return GranularityFiveDay
	case days < 365:
		return GranularityMonthly
	default:
		return GranularityClimatology
	}
}

// bucketers dispatches each granularity to its bucketing rule, keeping the
// rules independently testable.
var bucketers = map[Granularity]func(series []ClassifiedRecord, periodStart time.Time) []AggregatedPoint{
	GranularityDaily:       bucketDaily,
	GranularityFiveDay:     bucketFiveDay,
	GranularityMonthly:     bucketMonthly,
	GranularityClimatology: bucketClimatology,
}

// Aggregate buckets a classified series into chart points for the period
// [periodStart, periodEnd] and returns them with the chart title. An empty
// series yields no points but still the title of the matched granularity.
// Returns ErrInvalidRange when periodEnd precedes periodStart. The input
// series is not modified; repeated calls yield identical output.
func Aggregate(series []ClassifiedRecord, periodStart, periodEnd time.Time) ([]AggregatedPoint, string, error) {
	if periodEnd.Before(periodStart) {
		return nil, "", ErrInvalidRange
	}

	g := SelectGranularity(PeriodDays(periodStart, periodEnd))
	return bucketers[g](series, periodStart), g.Title(), nil
}

func bucketDaily(series []ClassifiedRecord, _ time.Time) []AggregatedPoint {
	points := make([]AggregatedPoint, 0, len(series))
	for _, rec := range series {
		points = append(points, AggregatedPoint{
			Label:      rec.Date.Format("02/01"),
			IndexValue: rec.IndexValue,
		})
	}
	return points
}

// bucketFiveDay groups records into consecutive non-overlapping 5-day
// windows anchored at the period start. Labels carry the window start date.
func bucketFiveDay(series []ClassifiedRecord, periodStart time.Time) []AggregatedPoint {
	type acc struct {
		sum   float64
		count int
	}
	windows := make(map[int]*acc)
	for _, rec := range series {
		w := int(rec.Date.Sub(periodStart)/(24*time.Hour)) / 5
		a, ok := windows[w]
		if !ok {
			a = &acc{}
			windows[w] = a
		}
		a.sum += rec.IndexValue
		a.count++
	}

	keys := make([]int, 0, len(windows))
	for w := range windows {
		keys = append(keys, w)
	}
	sort.Ints(keys)

	points := make([]AggregatedPoint, 0, len(keys))
	for _, w := range keys {
		a := windows[w]
		points = append(points, AggregatedPoint{
			Label:      periodStart.AddDate(0, 0, w*5).Format("02/01"),
			IndexValue: a.sum / float64(a.count),
		})
	}
	return points
}

// bucketMonthly groups records by calendar month, keyed on year and month
// so the same month of different years stays separate.
func bucketMonthly(series []ClassifiedRecord, _ time.Time) []AggregatedPoint {
	type acc struct {
		sum   float64
		count int
	}
	months := make(map[int]*acc)
	for _, rec := range series {
		key := rec.Date.Year()*100 + int(rec.Date.Month())
		a, ok := months[key]
		if !ok {
			a = &acc{}
			months[key] = a
		}
		a.sum += rec.IndexValue
		a.count++
	}

	keys := make([]int, 0, len(months))
	for key := range months {
		keys = append(keys, key)
	}
	sort.Ints(keys)

	points := make([]AggregatedPoint, 0, len(keys))
	for _, key := range keys {
		a := months[key]
		label := time.Date(key/100, time.Month(key%100), 1, 0, 0, 0, 0, time.UTC).Format("Jan/2006")
		points = append(points, AggregatedPoint{
			Label:      label,
			IndexValue: a.sum / float64(a.count),
		})
	}
	return points
}

// bucketClimatology merges records by calendar month across all years,
// emitting at most 12 points in calendar order. Months with no data are
// absent from the output, never zero-filled.
func bucketClimatology(series []ClassifiedRecord, _ time.Time) []AggregatedPoint {
	var sums [13]float64
	var counts [13]int
	for _, rec := range series {
		m := int(rec.Date.Month())
		sums[m] += rec.IndexValue
		counts[m]++
	}

	points := make([]AggregatedPoint, 0, 12)
	for m := 1; m <= 12; m++ {
		if counts[m] == 0 {
			continue
		}
		points = append(points, AggregatedPoint{
			Label:      time.Date(2000, time.Month(m), 1, 0, 0, 0, 0, time.UTC).Format("Jan"),
			IndexValue: sums[m] / float64(counts[m]),
		})
	}
	return points
}
