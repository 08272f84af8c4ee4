package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// AssessmentEvent is the compact integration record describing a completed
// period assessment, published for downstream consumers. It carries final
// values only; consumers never recompute.
type AssessmentEvent struct {
	ID                  string               `json:"id"`
	LocationName        string               `json:"location_name,omitempty"`
	Lat                 float64              `json:"lat"`
	Lon                 float64              `json:"lon"`
	PeriodStart         string               `json:"period_start"`
	PeriodEnd           string               `json:"period_end"`
	Days                int                  `json:"days"`
	MeanIndex           float64              `json:"mean_index"`
	MeanCategory        Category             `json:"mean_category"`
	CategoryPercentages map[Category]float64 `json:"category_percentages"`
	GeneratedAt         time.Time            `json:"generated_at"`
}

// NewAssessmentEventID produces a deterministic ID from the assessment's
// key fields. Re-running the same assessment publishes the same ID, so
// downstream consumers can dedupe replays.
func NewAssessmentEventID(lat, lon float64, start, end time.Time) string {
	input := fmt.Sprintf("%.4f|%.4f|%s|%s", lat, lon, start.Format("20060102"), end.Format("20060102"))
	hash := sha256.Sum256([]byte(input))
	return "thi-" + hex.EncodeToString(hash[:8])
}
