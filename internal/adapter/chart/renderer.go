// Package chart renders the aggregated THI series as a PNG bar chart. Bar
// colors come from the domain band table, so the chart matches the PDF
// report and every other output for the same values.
package chart

import (
	"errors"
	"io"
	"strings"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/cattlecomfort/thi-service/internal/domain"
)

// ErrNoPoints reports a render request with an empty point series.
var ErrNoPoints = errors.New("no points to render")

// Renderer draws aggregated points as a bar chart.
type Renderer struct {
	width  int
	height int
}

// NewRenderer creates a Renderer with the default canvas size.
func NewRenderer() *Renderer {
	return &Renderer{width: 1024, height: 480}
}

// Render writes a PNG bar chart for the aggregated points to w. One bar
// per point, colored by the risk band of the point's value, with dashed
// reference lines at the 70/78/82 thresholds.
func (r *Renderer) Render(points []domain.AggregatedPoint, title string, w io.Writer) error {
	if len(points) == 0 {
		return ErrNoPoints
	}

	bars := make([]gochart.Value, len(points))
	for i, p := range points {
		color := bandColor(p.IndexValue)
		bars[i] = gochart.Value{
			Label: p.Label,
			Value: p.IndexValue,
			Style: gochart.Style{
				FillColor:   color,
				StrokeColor: color,
			},
		}
	}

	thresholdStyle := gochart.Style{
		StrokeColor:     drawing.Color{R: 120, G: 120, B: 120, A: 255},
		StrokeWidth:     1.0,
		StrokeDashArray: []float64{5.0, 5.0},
	}

	bar := gochart.BarChart{
		Title:    title,
		Width:    r.width,
		Height:   r.height,
		BarWidth: barWidth(r.width, len(points)),
		XAxis: gochart.Style{
			TextRotationDegrees: 0,
		},
		YAxis: gochart.YAxis{
			Range: &gochart.ContinuousRange{Min: 0, Max: 100},
			GridLines: []gochart.GridLine{
				{Value: 70, Style: thresholdStyle},
				{Value: 78, Style: thresholdStyle},
				{Value: 82, Style: thresholdStyle},
			},
		},
		Bars: bars,
	}

	return bar.Render(gochart.PNG, w)
}

// barWidth sizes bars to fill the canvas without crowding the labels.
func barWidth(canvasWidth, count int) int {
	width := canvasWidth / (count + 2)
	if width > 60 {
		return 60
	}
	if width < 12 {
		return 12
	}
	return width
}

// bandColor converts the band's hex color into a drawing color.
func bandColor(index float64) drawing.Color {
	hex := strings.TrimPrefix(domain.ColorFor(domain.Classify(index)), "#")
	return drawing.ColorFromHex(hex)
}
