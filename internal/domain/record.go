package domain

import (
	"errors"
	"time"
)

// Sentinel errors surfaced by the aggregation and summary operations.
var (
	// ErrEmptySeries reports summarization of a series with zero records.
	ErrEmptySeries = errors.New("series contains no records")
	// ErrInvalidRange reports a period whose end precedes its start.
	ErrInvalidRange = errors.New("period end before period start")
)

// DailyRecord is one day of raw weather input: daily mean air temperature
// in °C and relative humidity in percent. Records arrive date-ascending
// with no duplicates; the retrieval adapter has already dropped entries
// with unparseable or fill-value fields.
type DailyRecord struct {
	Date        time.Time `json:"date"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
}

// ClassifiedRecord is a DailyRecord with its computed THI and risk band.
// One-to-one with the input record, never mutated after creation.
type ClassifiedRecord struct {
	DailyRecord
	IndexValue float64  `json:"index_value"`
	Category   Category `json:"category"`
}

// AggregatedPoint is one chart bar: a bucket label and the mean THI of the
// records inside the bucket.
type AggregatedPoint struct {
	Label      string  `json:"label"`
	IndexValue float64 `json:"index_value"`
}

// PeriodSummary holds the period-level statistics derived once from the
// full classified series.
type PeriodSummary struct {
	MeanIndex           float64              `json:"mean_index"`
	MeanCategory        Category             `json:"mean_category"`
	CategoryPercentages map[Category]float64 `json:"category_percentages"`
	DiagnosisText       string               `json:"diagnosis"`
}

// BuildSeries computes and classifies the THI for every daily record.
// The input slice is not modified.
func BuildSeries(records []DailyRecord) []ClassifiedRecord {
	series := make([]ClassifiedRecord, len(records))
	for i, rec := range records {
		index := ComputeIndex(rec.Temperature, rec.Humidity)
		series[i] = ClassifiedRecord{
			DailyRecord: rec,
			IndexValue:  index,
			Category:    Classify(index),
		}
	}
	return series
}

// LatestAvailableDate returns the most recent calendar date the weather
// source can serve, given its publication lag in days. NASA POWER runs
// roughly four days behind real time.
func LatestAvailableDate(lagDays int) time.Time {
	now := clock.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return today.AddDate(0, 0, -lagDays)
}
