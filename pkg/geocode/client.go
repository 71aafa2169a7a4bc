package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Client resolves coordinates to a display address using a Nominatim-style
// reverse geocoding endpoint.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a reverse geocoding client with a bounded request timeout.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

type reverseResponse struct {
	DisplayName string `json:"display_name"`
}

// Resolve returns a human-readable address for the coordinates, or nil when
// the collaborator has no answer. Transport errors are returned to the caller,
// who is expected to treat them as non-fatal.
func (c *Client) Resolve(ctx context.Context, lat, lon float64) (*string, error) {
	endpoint := fmt.Sprintf("%s/reverse?%s", c.baseURL, url.Values{
		"lat":    []string{fmt.Sprintf("%f", lat)},
		"lon":    []string{fmt.Sprintf("%f", lon)},
		"format": []string{"jsonv2"},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("geocode: create request: %w", err)
	}
	req.Header.Set("User-Agent", "presensi-api")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("geocode: unexpected status %d", resp.StatusCode)
	}

	var parsed reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("geocode: decode response: %w", err)
	}
	if parsed.DisplayName == "" {
		return nil, nil
	}
	return &parsed.DisplayName, nil
}
