// Package gmaps talks to the Google Distance Matrix API.
package gmaps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const DefaultBaseURL = "https://maps.googleapis.com/maps/api/distancematrix/json"

var (
	ErrZeroResults       = errors.New("gmaps: no results returned")
	ErrQuotaExceeded     = errors.New("gmaps: query quota exceeded")
	ErrRequestDenied     = errors.New("gmaps: request denied")
	ErrInvalidRequest    = errors.New("gmaps: invalid request")
	ErrUnknown           = errors.New("gmaps: unknown error")
	ErrMalformedResponse = errors.New("gmaps: malformed response")
)

// DrivingInfo is the distance/time pair for one origin/destination pair.
type DrivingInfo struct {
	Destination  string
	Distance     int // meters
	DistanceText string
	Time         int // seconds
	TimeText     string
	// OK is false when the service could not route to this destination.
	OK bool
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// QueryParams builds the single batched query: one origin, pipe-joined
// destinations, imperial units.
func QueryParams(origin string, destinations []string, apiKey string) url.Values {
	q := url.Values{}
	q.Set("origins", origin)
	q.Set("destinations", strings.Join(destinations, "|"))
	q.Set("units", "imperial")
	if apiKey != "" {
		q.Set("key", apiKey)
	}
	return q
}

type matrixResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Rows         []struct {
		Elements []matrixElement `json:"elements"`
	} `json:"rows"`
}

type matrixElement struct {
	Status   string `json:"status"`
	Distance struct {
		Text  string `json:"text"`
		Value int    `json:"value"`
	} `json:"distance"`
	Duration struct {
		Text  string `json:"text"`
		Value int    `json:"value"`
	} `json:"duration"`
}

// DrivingInfo returns one entry per destination, in submission order.
func (c *Client) DrivingInfo(ctx context.Context, origin string, destinations []string) ([]DrivingInfo, error) {
	if len(destinations) == 0 {
		return nil, fmt.Errorf("%w: no destinations", ErrInvalidRequest)
	}

	endpoint := c.baseURL + "?" + QueryParams(origin, destinations, c.apiKey).Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build distance matrix request: %w", err)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		// The URL holds the API key and the caller's address.
		var ue *url.Error
		if errors.As(err, &ue) {
			err = ue.Err
		}
		return nil, fmt.Errorf("distance matrix request: %w", err)
	}
	defer res.Body.Close()

	raw, _ := io.ReadAll(res.Body)
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("distance matrix: http %d: %s", res.StatusCode, truncate(string(raw), 300))
	}

	return ParseResponse(raw, destinations)
}

// ParseResponse decodes a Distance Matrix body for a single origin.
func ParseResponse(raw []byte, destinations []string) ([]DrivingInfo, error) {
	var out matrixResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if err := statusError(out.Status); err != nil {
		if out.ErrorMessage != "" {
			return nil, fmt.Errorf("%w: %s", err, out.ErrorMessage)
		}
		return nil, err
	}
	if len(out.Rows) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrMalformedResponse)
	}
	elems := out.Rows[0].Elements
	if len(elems) != len(destinations) {
		return nil, fmt.Errorf("%w: %d elements for %d destinations", ErrMalformedResponse, len(elems), len(destinations))
	}

	infos := make([]DrivingInfo, len(destinations))
	for i, e := range elems {
		infos[i] = DrivingInfo{
			Destination:  destinations[i],
			Distance:     e.Distance.Value,
			DistanceText: e.Distance.Text,
			Time:         e.Duration.Value,
			TimeText:     e.Duration.Text,
			OK:           e.Status == "OK",
		}
	}
	return infos, nil
}

func statusError(status string) error {
	switch status {
	case "OK":
		return nil
	case "ZERO_RESULTS", "NOT_FOUND":
		return ErrZeroResults
	case "OVER_QUERY_LIMIT", "OVER_DAILY_LIMIT", "MAX_ELEMENTS_EXCEEDED", "MAX_DIMENSIONS_EXCEEDED":
		return ErrQuotaExceeded
	case "REQUEST_DENIED":
		return ErrRequestDenied
	case "INVALID_REQUEST":
		return ErrInvalidRequest
	default:
		return fmt.Errorf("%w: status %q", ErrUnknown, status)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
