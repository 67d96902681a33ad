package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aritzolea/peaksight/internal/core/domain"
	"github.com/aritzolea/peaksight/internal/pkg/metrics"
)

// DefaultURL is the public Overpass API interpreter endpoint.
const DefaultURL = "https://overpass-api.de/api/interpreter"

// Client fetches OpenStreetMap peak nodes through the Overpass API.
type Client struct {
	httpClient *http.Client
	url        string
}

// NewClient creates an Overpass client.
func NewClient(apiURL string) *Client {
	if apiURL == "" {
		apiURL = DefaultURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: 90 * time.Second},
		url:        apiURL,
	}
}

type overpassResponse struct {
	Elements []struct {
		ID   int64             `json:"id"`
		Lat  float64           `json:"lat"`
		Lon  float64           `json:"lon"`
		Tags map[string]string `json:"tags"`
	} `json:"elements"`
}

// FetchPeaks returns every natural=peak node inside the bounds that carries a
// parseable elevation tag at or above the floor. Nameless nodes get a
// synthetic name from their OSM id. Nodes with missing or malformed ele tags
// are skipped, not failed.
func (c *Client) FetchPeaks(ctx context.Context, bounds domain.Bounds, minElevationM float64) ([]domain.Peak, error) {
	query := fmt.Sprintf(`
[out:json][timeout:60];
(
  node["natural"="peak"](%f,%f,%f,%f);
);
out body;
`, bounds.MinLat, bounds.MinLon, bounds.MaxLat, bounds.MaxLon)

	start := time.Now()
	defer func() {
		metrics.PrefetchDuration.WithLabelValues("overpass").Observe(time.Since(start).Seconds())
	}()

	form := url.Values{"data": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.PrefetchErrors.WithLabelValues("overpass").Inc()
		return nil, fmt.Errorf("overpass query: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.PrefetchErrors.WithLabelValues("overpass").Inc()
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, c.url)
	}

	var parsed overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	var peaks []domain.Peak
	for _, el := range parsed.Elements {
		if !bounds.Contains(domain.GeoPoint{Lat: el.Lat, Lon: el.Lon}) {
			continue
		}
		ele, ok := el.Tags["ele"]
		if !ok {
			continue
		}
		elevationM, err := strconv.ParseFloat(ele, 64)
		if err != nil || elevationM < minElevationM {
			continue
		}

		name := el.Tags["name"]
		if name == "" {
			name = fmt.Sprintf("Peak_%d", el.ID)
		}

		peaks = append(peaks, domain.Peak{
			Name:       name,
			Location:   domain.GeoPoint{Lat: el.Lat, Lon: el.Lon},
			ElevationM: elevationM,
			Source:     "osm",
		})
	}

	return peaks, nil
}
