package geocoder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/konturio/insights-llm-api/internal/errors"
)

// Client queries a Nominatim-compatible geocoding endpoint.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
}

// NewClient creates a geocoder client.
func NewClient(baseURL, userAgent string) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		http:      &http.Client{Timeout: 30 * time.Second},
	}
}

// Query builds the provider request path for a search. The same path is
// hashed into the cache fingerprint, so its shape must stay stable.
func (c *Client) Query(query, lang string) string {
	path := "search?q=" + url.QueryEscape(query) + "&format=geojson&polygon_geojson=1"
	if lang != "" {
		path += "&accept-language=" + url.QueryEscape(lang)
	}
	return path
}

// Search performs the geocoding request and returns the raw GeoJSON
// response.
func (c *Client) Search(ctx context.Context, path string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+path, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build geocoder request")
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Upstream("nominatim", http.StatusBadGateway, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Upstream("nominatim", http.StatusBadGateway, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Upstream("nominatim", resp.StatusCode,
			fmt.Errorf("%s", strings.TrimSpace(string(raw))))
	}
	return raw, nil
}
