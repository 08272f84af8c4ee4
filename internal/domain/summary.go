package domain

import "fmt"

// Summarize computes the period-level statistics for a full classified
// series: the mean THI, the share of days in each at-risk band, and a
// narrative diagnosis. The mean classifies with the same thresholds as a
// single day. Returns ErrEmptySeries for a series with no records; callers
// must guard before use.
func Summarize(series []ClassifiedRecord) (PeriodSummary, error) {
	if len(series) == 0 {
		return PeriodSummary{}, ErrEmptySeries
	}

	var sum float64
	counts := make(map[Category]int, 4)
	for _, rec := range series {
		sum += rec.IndexValue
		counts[rec.Category]++
	}

	total := float64(len(series))
	mean := sum / total
	percentages := map[Category]float64{
		CategoryAlert:     float64(counts[CategoryAlert]) / total * 100,
		CategoryDanger:    float64(counts[CategoryDanger]) / total * 100,
		CategoryEmergency: float64(counts[CategoryEmergency]) / total * 100,
	}
	meanCategory := Classify(mean)

	return PeriodSummary{
		MeanIndex:           mean,
		MeanCategory:        meanCategory,
		CategoryPercentages: percentages,
		DiagnosisText:       diagnose(mean, meanCategory, percentages),
	}, nil
}

// diagnose formats the band-specific narrative. Each at-risk band
// interpolates its own percentage; the normal band interpolates only the
// mean.
func diagnose(mean float64, meanCategory Category, percentages map[Category]float64) string {
	switch meanCategory {
	case CategoryNormal:
		return fmt.Sprintf(
			"Overall the period stayed within thermal comfort (mean THI %.1f). Keep ensuring water and shade all the same.",
			mean)
	case CategoryAlert:
		return fmt.Sprintf(
			"The period reached alert levels (mean THI %.1f). %.1f%% of days were in alert. Reinforce shade and water.",
			mean, percentages[CategoryAlert])
	case CategoryDanger:
		return fmt.Sprintf(
			"The period carried a high risk of heat stress (mean THI %.1f). %.1f%% of days were in danger. Step up cooling and avoid handling animals in the heat.",
			mean, percentages[CategoryDanger])
	default:
		return fmt.Sprintf(
			"The period was critical (mean THI %.1f). %.1f%% of days were in emergency. Prioritize immediate and continuous cooling.",
			mean, percentages[CategoryEmergency])
	}
}
