// Command assess runs a single thermal-comfort assessment from the command
// line: it fetches the daily weather series for a coordinate and period,
// prints the summary as JSON, and optionally writes the chart PNG and the
// PDF report to files.
//
// Usage:
//
//	go run ./cmd/assess \
//	  -lat -5.08 -lon -42.80 -name "Fazenda Boa Vista" \
//	  -start 2024-03-01 -end 2024-03-31 \
//	  -chart-out chart.png -report-out report.pdf
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/cattlecomfort/thi-service/internal/adapter/chart"
	"github.com/cattlecomfort/thi-service/internal/adapter/power"
	"github.com/cattlecomfort/thi-service/internal/adapter/report"
	"github.com/cattlecomfort/thi-service/internal/assessment"
	"github.com/cattlecomfort/thi-service/internal/config"
	"github.com/cattlecomfort/thi-service/internal/domain"
	"github.com/cattlecomfort/thi-service/internal/observability"
)

const dateLayout = "2006-01-02"

func main() {
	lat := flag.Float64("lat", 0, "latitude in decimal degrees")
	lon := flag.Float64("lon", 0, "longitude in decimal degrees")
	name := flag.String("name", "", "location name for the report (optional)")
	start := flag.String("start", "", "period start, YYYY-MM-DD")
	end := flag.String("end", "", "period end, YYYY-MM-DD")
	chartOut := flag.String("chart-out", "", "write the chart PNG to this path (optional)")
	reportOut := flag.String("report-out", "", "write the PDF report to this path (optional)")
	flag.Parse()

	if *start == "" || *end == "" {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(*lat, *lon, *name, *start, *end, *chartOut, *reportOut); err != nil {
		fmt.Fprintf(os.Stderr, "assess: %v\n", err)
		os.Exit(1)
	}
}

func run(lat, lon float64, name, startRaw, endRaw, chartOut, reportOut string) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	startDate, err := time.ParseInLocation(dateLayout, startRaw, time.UTC)
	if err != nil {
		return fmt.Errorf("invalid -start %q: must be YYYY-MM-DD", startRaw)
	}
	endDate, err := time.ParseInLocation(dateLayout, endRaw, time.UTC)
	if err != nil {
		return fmt.Errorf("invalid -end %q: must be YYYY-MM-DD", endRaw)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	client := power.NewClient(cfg.PowerBaseURL, cfg.PowerTimeout, metrics, logger)
	fetcher := power.NewCachedFetcher(client, cfg.PowerCacheSize, metrics)

	svc := assessment.New(fetcher, chart.NewRenderer(), report.NewExporter(),
		nil, cfg.DataLagDays, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := svc.Assess(ctx, assessment.Request{
		Lat:          lat,
		Lon:          lon,
		LocationName: name,
		Start:        startDate,
		End:          endDate,
	})
	if err != nil {
		return err
	}

	if chartOut != "" {
		if err := writeArtifact(chartOut, func(f *os.File) error {
			return svc.RenderChart(result, f)
		}); err != nil {
			return fmt.Errorf("write chart: %w", err)
		}
		fmt.Fprintf(os.Stderr, "chart written to %s\n", chartOut)
	}

	if reportOut != "" {
		if err := writeArtifact(reportOut, func(f *os.File) error {
			return svc.ExportReport(result, f)
		}); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		fmt.Fprintf(os.Stderr, "report written to %s\n", reportOut)
	}

	return printSummary(result)
}

func writeArtifact(path string, render func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// printSummary writes the assessment outcome as indented JSON on stdout.
func printSummary(result *assessment.Result) error {
	percentages := make(map[string]float64, len(result.Summary.CategoryPercentages))
	for category, pct := range result.Summary.CategoryPercentages {
		percentages[category.String()] = pct
	}

	out := struct {
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
	}{
		LocationName:        result.Request.LocationName,
		Latitude:            result.Request.Lat,
		Longitude:           result.Request.Lon,
		StartDate:           result.Request.Start.Format(dateLayout),
		EndDate:             result.Request.End.Format(dateLayout),
		Days:                domain.PeriodDays(result.Request.Start, result.Request.End),
		MeanIndex:           result.Summary.MeanIndex,
		MeanCategory:        result.Summary.MeanCategory.String(),
		Color:               domain.ColorFor(result.Summary.MeanCategory),
		Recommendation:      domain.RecommendationFor(result.Summary.MeanCategory),
		Diagnosis:           result.Summary.DiagnosisText,
		CategoryPercentages: percentages,
		ChartTitle:          result.ChartTitle,
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
