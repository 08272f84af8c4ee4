package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/cattlecomfort/thi-service/internal/assessment"
	"github.com/cattlecomfort/thi-service/internal/domain"
)

const dateLayout = "2006-01-02"

// assessmentRequest is the JSON body shared by the assess, chart, and
// report endpoints.
type assessmentRequest struct {
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	LocationName string  `json:"location_name"`
	StartDate    string  `json:"start_date"`
	EndDate      string  `json:"end_date"`
}

type indexResponse struct {
	IndexValue     float64 `json:"index_value"`
	Category       string  `json:"category"`
	Color          string  `json:"color"`
	Recommendation string  `json:"recommendation"`
}

type pointResponse struct {
	Label      string  `json:"label"`
	IndexValue float64 `json:"index_value"`
	Category   string  `json:"category"`
	Color      string  `json:"color"`
}

type assessmentResponse struct {
	LocationName        string             `json:"location_name,omitempty"`
	Latitude            float64            `json:"latitude"`
	Longitude           float64            `json:"longitude"`
	StartDate           string             `json:"start_date"`
	EndDate             string             `json:"end_date"`
	Days                int                `json:"days"`
	MeanIndex           float64            `json:"mean_index"`
	MeanCategory        string             `json:"mean_category"`
	Color               string             `json:"color"`
	Recommendation      string             `json:"recommendation"`
	Diagnosis           string             `json:"diagnosis"`
	CategoryPercentages map[string]float64 `json:"category_percentages"`
	ChartTitle          string             `json:"chart_title"`
	Points              []pointResponse    `json:"points"`
}

// decodeAssessmentRequest parses and validates the request body, writing
// the error response itself on failure.
func (s *Server) decodeAssessmentRequest(w http.ResponseWriter, r *http.Request) (assessment.Request, bool) {
	var body assessmentRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return assessment.Request{}, false
	}

	if body.Latitude < -90 || body.Latitude > 90 {
		writeError(w, http.StatusBadRequest, "latitude must be between -90 and 90")
		return assessment.Request{}, false
	}
	if body.Longitude < -180 || body.Longitude > 180 {
		writeError(w, http.StatusBadRequest, "longitude must be between -180 and 180")
		return assessment.Request{}, false
	}

	start, err := time.ParseInLocation(dateLayout, body.StartDate, time.UTC)
	if err != nil {
		writeError(w, http.StatusBadRequest, "start_date must be YYYY-MM-DD")
		return assessment.Request{}, false
	}
	end, err := time.ParseInLocation(dateLayout, body.EndDate, time.UTC)
	if err != nil {
		writeError(w, http.StatusBadRequest, "end_date must be YYYY-MM-DD")
		return assessment.Request{}, false
	}

	return assessment.Request{
		Lat:          body.Latitude,
		Lon:          body.Longitude,
		LocationName: body.LocationName,
		Start:        start,
		End:          end,
	}, true
}

// newAssessmentResponse maps a service result to the wire shape. Per-point
// colors use the same classification and color table as the chart and the
// report, so every output agrees.
func newAssessmentResponse(result *assessment.Result) assessmentResponse {
	points := make([]pointResponse, len(result.Points))
	for i, p := range result.Points {
		category := domain.Classify(p.IndexValue)
		points[i] = pointResponse{
			Label:      p.Label,
			IndexValue: p.IndexValue,
			Category:   category.String(),
			Color:      domain.ColorFor(category),
		}
	}

	percentages := make(map[string]float64, len(result.Summary.CategoryPercentages))
	for category, pct := range result.Summary.CategoryPercentages {
		percentages[category.String()] = pct
	}

	req := result.Request
	return assessmentResponse{
		LocationName:        req.LocationName,
		Latitude:            req.Lat,
		Longitude:           req.Lon,
		StartDate:           req.Start.Format(dateLayout),
		EndDate:             req.End.Format(dateLayout),
		Days:                domain.PeriodDays(req.Start, req.End),
		MeanIndex:           result.Summary.MeanIndex,
		MeanCategory:        result.Summary.MeanCategory.String(),
		Color:               domain.ColorFor(result.Summary.MeanCategory),
		Recommendation:      domain.RecommendationFor(result.Summary.MeanCategory),
		Diagnosis:           result.Summary.DiagnosisText,
		CategoryPercentages: percentages,
		ChartTitle:          result.ChartTitle,
		Points:              points,
	}
}

func parseFloatParam(w http.ResponseWriter, r *http.Request, name string) (float64, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("missing query parameter %q", name))
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid %s: %q", name, raw))
		return 0, false
	}
	return v, true
}
