package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/i474232898/weather-dashboard/internal/weather"
	"github.com/sony/gobreaker"
)

const (
	DefaultMeteosourceHost = "ai-weather-by-meteosource.p.rapidapi.com"

	findPlacesPath = "find_places"
	language       = "en"
)

// MeteosourceClient implements weather.Client for the Meteosource API served
// through RapidAPI. Every call is a single attempt.
type MeteosourceClient struct {
	name    string
	apiKey  string
	host    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// MeteosourceConfig configures a MeteosourceClient. An empty BaseURL defaults
// to https://Host.
type MeteosourceConfig struct {
	APIKey  string
	Host    string
	BaseURL string
	Breaker BreakerConfig
}

func NewMeteosourceClient(client *http.Client, cfg MeteosourceConfig) *MeteosourceClient {
	host := cfg.Host
	if host == "" {
		host = DefaultMeteosourceHost
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://" + host
	}

	return &MeteosourceClient{
		name:    "meteosource",
		apiKey:  cfg.APIKey,
		host:    host,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpCfg: HTTPClientConfig{Client: client},
		circuit: newBreaker("meteosource", cfg.Breaker),
	}
}

// Name identifies the provider in logs.
func (c *MeteosourceClient) Name() string {
	return c.name
}

// FetchWeather retrieves one weather section for a place.
func (c *MeteosourceClient) FetchWeather(ctx context.Context, endpoint weather.Endpoint, placeID string, system weather.MeasurementSystem) (*weather.Response, error) {
	op := string(endpoint)
	if c.apiKey == "" {
		log.Printf("ERROR: %s: api key is missing, check WEATHER_API_KEY", c.name)
		return nil, &weather.Error{Kind: weather.KindConfiguration, Op: op}
	}
	if !endpoint.Valid() {
		return nil, &weather.Error{Kind: weather.KindUnknown, Op: op, Err: fmt.Errorf("unsupported endpoint %q", endpoint)}
	}
	if placeID == "" {
		return nil, &weather.Error{Kind: weather.KindUnknown, Op: op, Err: fmt.Errorf("place id is required")}
	}

	values := url.Values{}
	values.Set("place_id", placeID)
	values.Set("language", language)
	values.Set("units", string(system))

	log.Printf("DEBUG: %s: fetching %s data for place_id %s", c.name, endpoint, placeID)

	body, err := doRequest(ctx, c.httpCfg, c.circuit, op, c.buildRequest(op, values))
	if err != nil {
		log.Printf("ERROR: %s: fetching %s data failed: %v", c.name, endpoint, err)
		return nil, err
	}
	if isEmptyBody(body) {
		return nil, &weather.Error{Kind: weather.KindEmptyResponse, Op: op, Err: fmt.Errorf("no data received for %s", endpoint)}
	}

	var payload weather.Response
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &weather.Error{Kind: weather.KindUnknown, Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return &payload, nil
}

// SearchPlaces looks up places matching free text.
func (c *MeteosourceClient) SearchPlaces(ctx context.Context, text string) ([]weather.Place, error) {
	op := findPlacesPath
	if c.apiKey == "" {
		log.Printf("ERROR: %s: api key is missing, check WEATHER_API_KEY", c.name)
		return nil, &weather.Error{Kind: weather.KindConfiguration, Op: op}
	}

	values := url.Values{}
	values.Set("text", text)
	values.Set("language", language)

	log.Printf("DEBUG: %s: searching for places matching %q", c.name, text)

	body, err := doRequest(ctx, c.httpCfg, c.circuit, op, c.buildRequest(op, values))
	if err != nil {
		log.Printf("ERROR: %s: place search failed: %v", c.name, err)
		return nil, err
	}
	if isEmptyBody(body) {
		return nil, &weather.Error{Kind: weather.KindEmptyResponse, Op: op, Err: fmt.Errorf("no places found")}
	}

	var places []weather.Place
	if err := json.Unmarshal(body, &places); err != nil {
		return nil, &weather.Error{Kind: weather.KindUnknown, Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	if places == nil {
		places = []weather.Place{}
	}
	return places, nil
}

func (c *MeteosourceClient) buildRequest(path string, values url.Values) func() (*http.Request, error) {
	return func() (*http.Request, error) {
		u := fmt.Sprintf("%s/%s?%s", c.baseURL, path, values.Encode())
		req, err := http.NewRequest(http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("x-rapidapi-key", c.apiKey)
		req.Header.Set("x-rapidapi-host", c.host)
		req.Header.Set("Accept", "application/json")
		return req, nil
	}
}

func isEmptyBody(body []byte) bool {
	body = bytes.TrimSpace(body)
	return len(body) == 0 || bytes.Equal(body, []byte("null"))
}
