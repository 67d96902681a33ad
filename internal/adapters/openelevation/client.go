package openelevation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/aritzolea/peaksight/internal/core/domain"
	"github.com/aritzolea/peaksight/internal/pkg/metrics"
)

// DefaultURL is the public Open-Elevation lookup endpoint.
const DefaultURL = "https://api.open-elevation.com/api/v1/lookup"

// Client fetches terrain elevations from an Open-Elevation compatible API.
type Client struct {
	httpClient *http.Client
	url        string
	chunkSize  int
}

// NewClient creates a client. chunkSize caps the number of locations per
// request; the public instance rejects oversized payloads.
func NewClient(url string, chunkSize int) *Client {
	if url == "" {
		url = DefaultURL
	}
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		url:        url,
		chunkSize:  chunkSize,
	}
}

type lookupRequest struct {
	Locations []location `json:"locations"`
}

type location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type lookupResponse struct {
	Results []struct {
		Elevation float64 `json:"elevation"`
	} `json:"results"`
}

// LookupBatch fetches elevations for the given coordinates, in order. The
// call is fail-soft: a chunk that errors or times out yields zeros for its
// coordinates and the batch carries on, so prefetch runs survive flaky
// upstream behaviour. The returned slice always matches len(coords).
func (c *Client) LookupBatch(ctx context.Context, coords []domain.GeoPoint) []float64 {
	elevations := make([]float64, 0, len(coords))

	for start := 0; start < len(coords); start += c.chunkSize {
		end := start + c.chunkSize
		if end > len(coords) {
			end = len(coords)
		}
		chunk := coords[start:end]

		fetched, err := c.lookupChunk(ctx, chunk)
		if err != nil {
			metrics.PrefetchErrors.WithLabelValues("open-elevation").Inc()
			fetched = make([]float64, len(chunk))
		}
		elevations = append(elevations, fetched...)
	}

	return elevations
}

func (c *Client) lookupChunk(ctx context.Context, chunk []domain.GeoPoint) ([]float64, error) {
	start := time.Now()
	defer func() {
		metrics.PrefetchDuration.WithLabelValues("open-elevation").Observe(time.Since(start).Seconds())
	}()

	req := lookupRequest{Locations: make([]location, len(chunk))}
	for i, p := range chunk {
		req.Locations[i] = location{Latitude: p.Lat, Longitude: p.Lon}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, c.url)
	}

	var parsed lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Results) != len(chunk) {
		return nil, fmt.Errorf("expected %d results, got %d", len(chunk), len(parsed.Results))
	}

	elevations := make([]float64, len(parsed.Results))
	for i, r := range parsed.Results {
		elevations[i] = r.Elevation
	}
	return elevations, nil
}
