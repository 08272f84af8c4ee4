// Package report renders the period assessment as a downloadable PDF. It
// consumes values already computed by the domain layer plus the rendered
// chart image; the only domain calls are the shared band lookups, which is
// what keeps its colors and advisory texts identical to the chart's.
package report

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/cattlecomfort/thi-service/internal/domain"
)

const description = "This report evaluates the thermal comfort of dairy cattle from the " +
	"temperature-humidity index (THI), computed over daily NASA POWER weather data for " +
	"the selected location and period. It supports producers and technicians in managing " +
	"heat stress: under hot and humid conditions cows struggle to shed body heat, which " +
	"reduces feed intake and milk yield."

// Input carries everything the report consumes. No recomputation happens
// in this package.
type Input struct {
	LocationName string
	Lat          float64
	Lon          float64
	PeriodStart  time.Time
	PeriodEnd    time.Time
	Summary      domain.PeriodSummary
	ChartPNG     []byte // optional rendered chart, embedded on a second page
}

// Exporter writes assessment reports as A4 PDFs.
type Exporter struct{}

// NewExporter creates a PDF exporter.
func NewExporter() *Exporter {
	return &Exporter{}
}

// Export renders the report to w.
func (e *Exporter) Export(in Input, w io.Writer) error {
	location := in.LocationName
	if location == "" {
		location = "Location not provided"
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Thermal Comfort Report", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "Thermal Comfort Report (Dairy Cattle)", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, 5, description, "", "L", false)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("%s  (lat %.4f, lon %.4f)", location, in.Lat, in.Lon), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Period: %s to %s",
		in.PeriodStart.Format("02/01/2006"), in.PeriodEnd.Format("02/01/2006")), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	// Result card with the band color as accent.
	r, g, b := hexToRGB(domain.ColorFor(in.Summary.MeanCategory))
	pdf.SetFillColor(r, g, b)
	pdf.Rect(10, pdf.GetY(), 3, 16, "F")
	pdf.SetX(16)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, fmt.Sprintf("Mean THI for the period: %.1f", in.Summary.MeanIndex), "", 1, "L", false, 0, "")
	pdf.SetX(16)
	pdf.CellFormat(0, 8, fmt.Sprintf("Classification: %s", in.Summary.MeanCategory), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 6, "Period diagnosis:", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 5, in.Summary.DiagnosisText, "", "L", false)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 6, "Days at risk:", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	for _, cat := range []domain.Category{domain.CategoryAlert, domain.CategoryDanger, domain.CategoryEmergency} {
		pdf.CellFormat(0, 5, fmt.Sprintf("%s: %.1f%% of days",
			cat, in.Summary.CategoryPercentages[cat]), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 6, "Main recommendation:", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 5, domain.RecommendationFor(in.Summary.MeanCategory), "", "L", false)

	if len(in.ChartPNG) > 0 {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "B", 14)
		pdf.CellFormat(0, 10, "THI chart (same colors as the application)", "", 1, "L", false, 0, "")

		opts := fpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("thi-chart", opts, bytes.NewReader(in.ChartPNG))
		pdf.ImageOptions("thi-chart", 15, 35, 180, 0, false, opts, 0, "")
	}

	pdf.SetY(-30)
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 4, "Data source: NASA POWER (daily data; ~4 day lag; ~55 km resolution).", "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 4, "THI formula: THI = 0.8xTa + RH(Ta-14.3)/100 + 46.3  |  Ta (degC), RH (%).", "", 1, "L", false, 0, "")

	return pdf.Output(w)
}

// hexToRGB parses a "#RRGGBB" color into its components.
func hexToRGB(hex string) (int, int, int) {
	if len(hex) != 7 || hex[0] != '#' {
		return 0, 0, 0
	}
	r, _ := strconv.ParseInt(hex[1:3], 16, 0)
	g, _ := strconv.ParseInt(hex[3:5], 16, 0)
	b, _ := strconv.ParseInt(hex[5:7], 16, 0)
	return int(r), int(g), int(b)
}
