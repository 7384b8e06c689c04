package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dawe014/web-service-integration-assignment/internal/apperr"
)

const (
	// DefaultBaseURL is the OpenWeatherMap 2.5 API root.
	DefaultBaseURL = "https://api.openweathermap.org/data/2.5"
	// DefaultTimeout bounds a single upstream lookup.
	DefaultTimeout = 8000 * time.Millisecond
)

// Messages for upstream failures. Every one of them is reported as 502.
const (
	msgNotResponding = "Weather API is not responding"
	msgFetchFailed   = "Failed to fetch weather data"
	msgInvalidKey    = "Invalid API key"
)

// Client fetches current weather for a city from OpenWeatherMap and
// translates every failure into a BadGateway apperr.Error.
type Client struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	client  *http.Client
	log     *slog.Logger
}

// NewClient constructs a Client. A non-positive timeout falls back to DefaultTimeout.
func NewClient(baseURL, apiKey string, timeout time.Duration, log *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		timeout: timeout,
		client:  &http.Client{},
		log:     log,
	}
}

// FetchByCity retrieves and normalizes the current weather for city.
// The lookup is bounded by the client timeout only; cancellation of ctx by the
// caller does not abort a call already in flight.
func (c *Client) FetchByCity(ctx context.Context, city string) (*Record, error) {
	c.log.Info("fetching weather", "city", city)

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	defer cancel()

	rec, err := c.fetch(ctx, city)
	if err != nil {
		c.log.Error("weather fetch failed", "city", city, "err", err)
		return nil, err
	}

	c.log.Info("weather fetched", "city", city)
	return rec, nil
}

func (c *Client) fetch(ctx context.Context, city string) (*Record, error) {
	req, err := c.newRequest(ctx, city)
	if err != nil {
		return nil, &apperr.Error{Kind: apperr.KindBadGateway, Message: msgFetchFailed, Operational: true, Err: err}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &apperr.Error{Kind: apperr.KindBadGateway, Message: msgNotResponding, Operational: true, Err: stripURL(err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &apperr.Error{Kind: apperr.KindBadGateway, Message: msgNotResponding, Operational: true, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(city, resp.StatusCode, body)
	}

	var raw owmResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &apperr.Error{
			Kind:        apperr.KindBadGateway,
			Message:     msgFetchFailed,
			Operational: true,
			Err:         fmt.Errorf("decoding weather response: %w", err),
		}
	}

	rec, ok := raw.toRecord()
	if !ok {
		return nil, &apperr.Error{
			Kind:        apperr.KindBadGateway,
			Message:     msgFetchFailed,
			Operational: true,
			Err:         errors.New("weather response has no observation time"),
		}
	}

	return rec, nil
}

// newRequest builds GET <base>/weather?appid=<key>&q=<city>.
func (c *Client) newRequest(ctx context.Context, city string) (*http.Request, error) {
	endpoint, err := url.Parse(c.baseURL + "/weather")
	if err != nil {
		return nil, fmt.Errorf("parsing weather endpoint: %w", err)
	}

	q := endpoint.Query()
	q.Set("appid", c.apiKey)
	q.Set("q", city)
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating weather request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// statusError maps a non-2xx upstream status to a BadGateway error.
func statusError(city string, status int, body []byte) *apperr.Error {
	switch status {
	case http.StatusNotFound:
		return apperr.BadGateway(fmt.Sprintf("City '%s' not found", city))
	case http.StatusUnauthorized:
		return apperr.BadGateway(msgInvalidKey)
	}

	var payload owmError
	msg := fmt.Sprintf("Request failed with status code %d", status)
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		msg = payload.Message
	}
	return apperr.BadGateway("Weather API error: " + msg)
}

// stripURL drops the request URL from transport errors so the API key in the
// query string never reaches the logs.
func stripURL(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return fmt.Errorf("%s weather endpoint: %w", ue.Op, ue.Err)
	}
	return err
}
