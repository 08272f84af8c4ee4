package chart

import (
	"bytes"
	"testing"

	"github.com/cattlecomfort/thi-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var pngMagic = []byte("\x89PNG")

func TestRenderer_Render(t *testing.T) {
	points := []domain.AggregatedPoint{
		{Label: "01/04", IndexValue: 65.2},
		{Label: "02/04", IndexValue: 74.8},
		{Label: "03/04", IndexValue: 80.1},
		{Label: "04/04", IndexValue: 86.3},
	}

	var buf bytes.Buffer
	err := NewRenderer().Render(points, "Daily Index", &buf)
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic), "output should be a PNG")
	assert.Greater(t, buf.Len(), 1000)
}

func TestRenderer_Render_EmptySeries(t *testing.T) {
	var buf bytes.Buffer
	err := NewRenderer().Render(nil, "Daily Index", &buf)
	require.ErrorIs(t, err, ErrNoPoints)
	assert.Zero(t, buf.Len())
}

func TestBandColor_MatchesDomainTable(t *testing.T) {
	tests := []struct {
		index    float64
		expected string
	}{
		{60, "2E7D32"},  // normal
		{75, "F9A825"},  // alert
		{80, "EF6C00"},  // danger
		{90, "C62828"},  // emergency
	}

	for _, tc := range tests {
		assert.Equal(t, drawing.ColorFromHex(tc.expected), bandColor(tc.index), "index %v", tc.index)
	}
}

func TestBarWidth(t *testing.T) {
	assert.Equal(t, 60, barWidth(1024, 5))
	assert.Equal(t, 12, barWidth(1024, 100))
	assert.Equal(t, 51, barWidth(1024, 18))
}
