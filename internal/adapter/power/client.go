// Package power retrieves daily weather records from the NASA POWER
// temporal API. POWER serves global daily data at ~55 km resolution with a
// publication lag of roughly four days, using -999 as the fill value for
// missing readings.
package power

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/cattlecomfort/thi-service/internal/domain"
	"github.com/cattlecomfort/thi-service/internal/observability"
)

// fillValue is the POWER sentinel for a missing daily reading.
const fillValue = -999.0

// Client fetches daily T2M/RH2M records from the NASA POWER API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	community  string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a POWER API client.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		community:  "AG",
		metrics:    metrics,
		logger:     logger,
	}
}

// FetchDaily retrieves the daily records for a coordinate and inclusive
// date range, date-ascending. Records whose temperature or humidity is the
// POWER fill value, or whose date fails to parse, are dropped rather than
// returned.
func (c *Client) FetchDaily(ctx context.Context, lat, lon float64, start, end time.Time) ([]domain.DailyRecord, error) {
	params := url.Values{
		"parameters": {"T2M,RH2M"},
		"community":  {c.community},
		"latitude":   {fmt.Sprintf("%.4f", lat)},
		"longitude":  {fmt.Sprintf("%.4f", lon)},
		"start":      {start.Format("20060102")},
		"end":        {end.Format("20060102")},
		"format":     {"JSON"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	reqStart := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.PowerRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("power request: %w", err)
	}
	defer resp.Body.Close()
	c.metrics.PowerAPIDuration.Observe(time.Since(reqStart).Seconds())

	if resp.StatusCode != http.StatusOK {
		c.metrics.PowerRequests.WithLabelValues("error").Inc()
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("power API error: status %d: %s", resp.StatusCode, body)
	}

	var powerResp response
	if err := json.NewDecoder(resp.Body).Decode(&powerResp); err != nil {
		c.metrics.PowerRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("decode response: %w", err)
	}

	records := c.buildRecords(powerResp.Properties.Parameter.T2M, powerResp.Properties.Parameter.RH2M)
	if len(records) == 0 {
		c.metrics.PowerRequests.WithLabelValues("empty").Inc()
		return records, nil
	}

	c.metrics.PowerRequests.WithLabelValues("success").Inc()
	return records, nil
}

// buildRecords joins the per-date temperature and humidity maps into
// date-ascending daily records, dropping fill values and bad dates.
func (c *Client) buildRecords(t2m, rh2m map[string]float64) []domain.DailyRecord {
	dates := make([]string, 0, len(t2m))
	for date := range t2m {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	records := make([]domain.DailyRecord, 0, len(dates))
	for _, date := range dates {
		temp := t2m[date]
		humidity, ok := rh2m[date]
		if !ok || temp == fillValue || humidity == fillValue {
			c.metrics.RecordsDropped.Inc()
			c.logger.Debug("dropping record", "date", date, "temperature", temp)
			continue
		}

		parsed, err := time.ParseInLocation("20060102", date, time.UTC)
		if err != nil {
			c.metrics.RecordsDropped.Inc()
			c.logger.Debug("dropping record with bad date", "date", date)
			continue
		}

		records = append(records, domain.DailyRecord{
			Date:        parsed,
			Temperature: temp,
			Humidity:    humidity,
		})
	}
	return records
}

// POWER API response types.

type response struct {
	Properties properties `json:"properties"`
}

type properties struct {
	Parameter parameter `json:"parameter"`
}

type parameter struct {
	T2M  map[string]float64 `json:"T2M"`
	RH2M map[string]float64 `json:"RH2M"`
}
