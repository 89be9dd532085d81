// Package geocode talks to a Nominatim compatible geocoding service to turn
// addresses into coordinates and back.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ETTyler/football/model"
)

const (
	NominatimURL = "https://nominatim.openstreetmap.org"
	userAgent    = "matchhub/1.0"

	// Queries shorter than this are not sent to the geocoder.
	MinQueryLength = 3
	searchLimit    = 5
)

type Client interface {
	Search(ctx context.Context, query string) ([]model.Location, error)
	Reverse(ctx context.Context, lat, lon float64) (string, error)
}

type client struct {
	url        string
	httpClient *http.Client
}

func New(baseURL string) Client {
	if baseURL == "" {
		baseURL = NominatimURL
	}
	return &client{
		url: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type searchResult struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

type reverseResult struct {
	DisplayName string `json:"display_name"`
	Error       string `json:"error"`
}

func (c *client) Search(ctx context.Context, query string) ([]model.Location, error) {
	query = strings.TrimSpace(query)
	if len(query) < MinQueryLength {
		return []model.Location{}, nil
	}

	params := url.Values{}
	params.Set("format", "json")
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(searchLimit))
	params.Set("addressdetails", "1")

	var parsed []searchResult
	if err := c.get(ctx, "/search", params, &parsed); err != nil {
		return nil, err
	}

	result := make([]model.Location, 0, len(parsed))
	for _, r := range parsed {
		lat, err := strconv.ParseFloat(r.Lat, 64)
		if err != nil {
			continue
		}
		lon, err := strconv.ParseFloat(r.Lon, 64)
		if err != nil {
			continue
		}
		result = append(result, model.Location{DisplayName: r.DisplayName, Latitude: lat, Longitude: lon})
		if len(result) == searchLimit {
			break
		}
	}
	return result, nil
}

func (c *client) Reverse(ctx context.Context, lat, lon float64) (string, error) {
	params := url.Values{}
	params.Set("format", "json")
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))

	var parsed reverseResult
	if err := c.get(ctx, "/reverse", params, &parsed); err != nil {
		return "", err
	}
	if parsed.Error != "" {
		return "", fmt.Errorf("geocoder error: %s", parsed.Error)
	}
	return parsed.DisplayName, nil
}

func (c *client) get(ctx context.Context, path string, params url.Values, v any) error {
	u := fmt.Sprintf("%s%s?%s", c.url, path, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("error creating http request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error sending http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("error parsing response from geocoder: %w", err)
	}
	return nil
}
