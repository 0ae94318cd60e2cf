package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// FREDObservation is one raw observation from the macro data provider.
// Value is a string on the wire; missing data is the literal ".".
type FREDObservation struct {
	Date  string `json:"date"`
	Value string `json:"value"`
}

type FREDObservationsResponse struct {
	Observations []FREDObservation `json:"observations"`
}

// FREDClient fetches observation series from the macro data provider.
type FREDClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewFREDClient(apiKey, baseURL string) *FREDClient {
	return &FREDClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Observations fetches a series' observations. start and end are
// YYYY-MM-DD and optional.
func (c *FREDClient) Observations(ctx context.Context, seriesID, start, end string) ([]FREDObservation, error) {
	params := url.Values{}
	params.Set("series_id", seriesID)
	params.Set("api_key", c.apiKey)
	params.Set("file_type", "json")
	if start != "" {
		params.Set("observation_start", start)
	}
	if end != "" {
		params.Set("observation_end", end)
	}

	fullURL := fmt.Sprintf("%s/series/observations?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("FRED error: status %d", resp.StatusCode)
	}

	var observations FREDObservationsResponse
	if err := json.NewDecoder(resp.Body).Decode(&observations); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return observations.Observations, nil
}
