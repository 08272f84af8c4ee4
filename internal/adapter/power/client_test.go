package power

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cattlecomfort/thi-service/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    baseURL,
		community:  "AG",
		metrics:    observability.NewMetricsForTesting(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func powerDates() (time.Time, time.Time) {
	return time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.January, 3, 0, 0, 0, 0, time.UTC)
}

func TestClient_FetchDaily_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "T2M,RH2M", r.URL.Query().Get("parameters"))
		assert.Equal(t, "AG", r.URL.Query().Get("community"))
		assert.Equal(t, "-5.0000", r.URL.Query().Get("latitude"))
		assert.Equal(t, "-45.0000", r.URL.Query().Get("longitude"))
		assert.Equal(t, "20240101", r.URL.Query().Get("start"))
		assert.Equal(t, "20240103", r.URL.Query().Get("end"))
		assert.Equal(t, "JSON", r.URL.Query().Get("format"))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"properties":{"parameter":{
			"T2M":{"20240102":28.5,"20240101":27.1,"20240103":30.2},
			"RH2M":{"20240102":65.0,"20240101":70.2,"20240103":55.1}
		}}}`)
	}))
	defer srv.Close()

	start, end := powerDates()
	records, err := testClient(srv.URL).FetchDaily(context.Background(), -5.0, -45.0, start, end)
	require.NoError(t, err)

	require.Len(t, records, 3)
	// Date-ascending regardless of map ordering in the response.
	assert.Equal(t, start, records[0].Date)
	assert.Equal(t, 27.1, records[0].Temperature)
	assert.Equal(t, 70.2, records[0].Humidity)
	assert.Equal(t, end, records[2].Date)
	assert.Equal(t, 30.2, records[2].Temperature)
}

func TestClient_FetchDaily_DropsFillValues(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, `{"properties":{"parameter":{
			"T2M":{"20240101":-999,"20240102":28.5,"20240103":30.2,"20240104":25.0},
			"RH2M":{"20240101":70.2,"20240102":-999,"20240103":55.1}
		}}}`)
	}))
	defer srv.Close()

	start, end := powerDates()
	records, err := testClient(srv.URL).FetchDaily(context.Background(), -5.0, -45.0, start, end)
	require.NoError(t, err)

	// Day 1 has fill temperature, day 2 fill humidity, day 4 no humidity at all.
	require.Len(t, records, 1)
	assert.Equal(t, time.Date(2024, time.January, 3, 0, 0, 0, 0, time.UTC), records[0].Date)
}

func TestClient_FetchDaily_DropsBadDates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, `{"properties":{"parameter":{
			"T2M":{"not-a-date":28.5,"20240101":27.1},
			"RH2M":{"not-a-date":65.0,"20240101":70.2}
		}}}`)
	}))
	defer srv.Close()

	start, end := powerDates()
	records, err := testClient(srv.URL).FetchDaily(context.Background(), -5.0, -45.0, start, end)
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestClient_FetchDaily_EmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, `{"properties":{"parameter":{"T2M":{},"RH2M":{}}}}`)
	}))
	defer srv.Close()

	start, end := powerDates()
	records, err := testClient(srv.URL).FetchDaily(context.Background(), -5.0, -45.0, start, end)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestClient_FetchDaily_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	}))
	defer srv.Close()

	start, end := powerDates()
	_, err := testClient(srv.URL).FetchDaily(context.Background(), -5.0, -45.0, start, end)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

func TestClient_FetchDaily_MalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, `{"properties":`)
	}))
	defer srv.Close()

	start, end := powerDates()
	_, err := testClient(srv.URL).FetchDaily(context.Background(), -5.0, -45.0, start, end)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}
