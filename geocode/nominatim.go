package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ErrNoMatch means the service answered but found nothing for the address.
// It is distinct from transport/service failures, which are returned as
// ordinary wrapped errors.
var ErrNoMatch = errors.New("geocode: no match for address")

// Point is a longitude/latitude pair.
type Point struct {
	Longitude float64
	Latitude  float64
}

// Geocoder resolves a free-text address into coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (Point, error)
}

const defaultBaseURL = "https://nominatim.openstreetmap.org/search"

// NominatimClient is a Geocoder backed by the OpenStreetMap Nominatim
// search endpoint.
type NominatimClient struct {
	baseURL string
	client  *http.Client
}

func NewNominatimClient(baseURL string) *NominatimClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &NominatimClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *NominatimClient) Geocode(ctx context.Context, address string) (Point, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return Point{}, fmt.Errorf("geocode: bad base URL: %w", err)
	}
	q := u.Query()
	q.Set("q", address)
	q.Set("format", "json")
	q.Set("limit", "1")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Point{}, fmt.Errorf("geocode: build request: %w", err)
	}
	// Nominatim's usage policy requires an identifying User-Agent.
	req.Header.Set("User-Agent", "wanderlust/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return Point{}, fmt.Errorf("geocode: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Point{}, fmt.Errorf("geocode: unexpected status %d", resp.StatusCode)
	}

	// Nominatim returns coordinates as strings.
	var results []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return Point{}, fmt.Errorf("geocode: decode response: %w", err)
	}
	if len(results) == 0 {
		return Point{}, ErrNoMatch
	}

	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return Point{}, fmt.Errorf("geocode: bad longitude %q: %w", results[0].Lon, err)
	}
	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return Point{}, fmt.Errorf("geocode: bad latitude %q: %w", results[0].Lat, err)
	}
	return Point{Longitude: lon, Latitude: lat}, nil
}
