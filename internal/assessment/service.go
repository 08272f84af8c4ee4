// Package assessment orchestrates one thermal-comfort evaluation: validate
// the requested period, fetch the daily weather series, classify it,
// aggregate it for charting, summarize it, and optionally publish the
// outcome. Collaborators sit behind small interfaces so tests substitute
// fakes.
package assessment

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/cattlecomfort/thi-service/internal/adapter/report"
	"github.com/cattlecomfort/thi-service/internal/domain"
	"github.com/cattlecomfort/thi-service/internal/observability"
)

// Errors surfaced by Assess beyond the domain sentinels.
var (
	// ErrNoData reports that the source has no usable records for the
	// requested location and period.
	ErrNoData = errors.New("no weather data for the requested location and period")
	// ErrDataNotYetAvailable reports a period end beyond what the source
	// has published.
	ErrDataNotYetAvailable = errors.New("period end beyond the latest available source date")
)

// Fetcher retrieves the daily weather series for a coordinate and range.
type Fetcher interface {
	FetchDaily(ctx context.Context, lat, lon float64, start, end time.Time) ([]domain.DailyRecord, error)
}

// ChartRenderer draws aggregated points as a PNG bar chart.
type ChartRenderer interface {
	Render(points []domain.AggregatedPoint, title string, w io.Writer) error
}

// ReportExporter writes the period report as a PDF.
type ReportExporter interface {
	Export(in report.Input, w io.Writer) error
}

// Publisher emits assessment-completed events. Optional; nil disables it.
type Publisher interface {
	Publish(ctx context.Context, event domain.AssessmentEvent) error
}

// Request identifies a location and inclusive period to assess.
type Request struct {
	Lat          float64
	Lon          float64
	LocationName string
	Start        time.Time
	End          time.Time
}

// Result is the complete outcome of one assessment. Derived once per
// request; nothing here is persisted.
type Result struct {
	Request    Request
	Series     []domain.ClassifiedRecord
	Points     []domain.AggregatedPoint
	ChartTitle string
	Summary    domain.PeriodSummary
}

// Service runs assessments against the configured collaborators.
type Service struct {
	fetcher   Fetcher
	chart     ChartRenderer
	report    ReportExporter
	publisher Publisher
	lagDays   int
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// New creates a Service. Pass a nil publisher to disable event publishing.
func New(fetcher Fetcher, chart ChartRenderer, reportExporter ReportExporter, publisher Publisher, lagDays int, logger *slog.Logger, metrics *observability.Metrics) *Service {
	return &Service{
		fetcher:   fetcher,
		chart:     chart,
		report:    reportExporter,
		publisher: publisher,
		lagDays:   lagDays,
		logger:    logger,
		metrics:   metrics,
	}
}

// CheckReadiness reports whether the service can serve traffic. The
// computation is stateless, so readiness holds once wiring succeeded.
func (s *Service) CheckReadiness(_ context.Context) error {
	return nil
}

// Assess runs the full evaluation for one request.
func (s *Service) Assess(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	if req.End.Before(req.Start) {
		s.metrics.AssessmentsTotal.WithLabelValues("invalid").Inc()
		return nil, domain.ErrInvalidRange
	}
	if latest := domain.LatestAvailableDate(s.lagDays); req.End.After(latest) {
		s.metrics.AssessmentsTotal.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("%w: latest is %s", ErrDataNotYetAvailable, latest.Format("2006-01-02"))
	}

	records, err := s.fetcher.FetchDaily(ctx, req.Lat, req.Lon, req.Start, req.End)
	if err != nil {
		s.metrics.AssessmentsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("fetch daily records: %w", err)
	}
	if len(records) == 0 {
		s.metrics.AssessmentsTotal.WithLabelValues("no_data").Inc()
		return nil, ErrNoData
	}

	series := domain.BuildSeries(records)

	points, title, err := domain.Aggregate(series, req.Start, req.End)
	if err != nil {
		s.metrics.AssessmentsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	summary, err := domain.Summarize(series)
	if err != nil {
		s.metrics.AssessmentsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	result := &Result{
		Request:    req,
		Series:     series,
		Points:     points,
		ChartTitle: title,
		Summary:    summary,
	}

	s.publish(ctx, result)

	s.metrics.AssessmentsTotal.WithLabelValues("success").Inc()
	s.metrics.AssessmentDuration.Observe(time.Since(start).Seconds())
	s.logger.Info("assessment completed",
		"lat", req.Lat,
		"lon", req.Lon,
		"days", domain.PeriodDays(req.Start, req.End),
		"records", len(series),
		"mean_index", summary.MeanIndex,
		"mean_category", summary.MeanCategory.String(),
	)
	return result, nil
}

// publish emits the assessment event when publishing is enabled. A publish
// failure is logged but never fails the assessment itself.
func (s *Service) publish(ctx context.Context, result *Result) {
	if s.publisher == nil {
		return
	}

	req := result.Request
	event := domain.AssessmentEvent{
		ID:                  domain.NewAssessmentEventID(req.Lat, req.Lon, req.Start, req.End),
		LocationName:        req.LocationName,
		Lat:                 req.Lat,
		Lon:                 req.Lon,
		PeriodStart:         req.Start.Format("2006-01-02"),
		PeriodEnd:           req.End.Format("2006-01-02"),
		Days:                domain.PeriodDays(req.Start, req.End),
		MeanIndex:           result.Summary.MeanIndex,
		MeanCategory:        result.Summary.MeanCategory,
		CategoryPercentages: result.Summary.CategoryPercentages,
		GeneratedAt:         time.Now().UTC(),
	}

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("assessment event publish failed", "error", err, "event_id", event.ID)
	}
}

// RenderChart writes the result's bar chart as a PNG.
func (s *Service) RenderChart(result *Result, w io.Writer) error {
	if err := s.chart.Render(result.Points, result.ChartTitle, w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	s.metrics.ReportsRendered.WithLabelValues("chart").Inc()
	return nil
}

// ExportReport writes the result's PDF report, embedding the chart when
// the aggregation produced points.
func (s *Service) ExportReport(result *Result, w io.Writer) error {
	var chartPNG []byte
	if len(result.Points) > 0 {
		var buf bytes.Buffer
		if err := s.chart.Render(result.Points, result.ChartTitle, &buf); err != nil {
			return fmt.Errorf("render chart for report: %w", err)
		}
		chartPNG = buf.Bytes()
	}

	in := report.Input{
		LocationName: result.Request.LocationName,
		Lat:          result.Request.Lat,
		Lon:          result.Request.Lon,
		PeriodStart:  result.Request.Start,
		PeriodEnd:    result.Request.End,
		Summary:      result.Summary,
		ChartPNG:     chartPNG,
	}
	if err := s.report.Export(in, w); err != nil {
		return fmt.Errorf("export report: %w", err)
	}
	s.metrics.ReportsRendered.WithLabelValues("pdf").Inc()
	return nil
}
