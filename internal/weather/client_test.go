package weather_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dawe014/web-service-integration-assignment/internal/apperr"
	"github.com/dawe014/web-service-integration-assignment/internal/weather"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func parisPayload() map[string]any {
	return map[string]any{
		"name":  "Paris",
		"sys":   map[string]any{"country": "FR"},
		"coord": map[string]any{"lat": 48.8534, "lon": 2.3488},
		"main": map[string]any{
			"temp":       293.7,
			"feels_like": 293.2,
			"temp_min":   292.04,
			"temp_max":   295.37,
			"humidity":   64,
			"pressure":   1012,
		},
		"weather":    []map[string]any{{"main": "Clouds", "description": "broken clouds", "icon": "04d"}},
		"wind":       map[string]any{"speed": 4.12, "deg": 250},
		"visibility": 10000,
		"clouds":     map[string]any{"all": 75},
		"dt":         1700000000,
	}
}

func jsonHandler(status int, body any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
}

func newTestClient(t *testing.T, h http.Handler) *weather.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return weather.NewClient(srv.URL, "test-key", time.Second, discardLogger())
}

func requireBadGateway(t *testing.T, err error, message string) {
	t.Helper()
	require.Error(t, err)
	ae := apperr.From(err)
	assert.Equal(t, apperr.KindBadGateway, ae.Kind)
	assert.Equal(t, message, ae.Message)
}

func TestFetchByCity_Success(t *testing.T) {
	var gotPath, gotCity, gotKey string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotCity = r.URL.Query().Get("q")
		gotKey = r.URL.Query().Get("appid")
		jsonHandler(http.StatusOK, parisPayload())(w, r)
	}))

	rec, err := c.FetchByCity(context.Background(), "Paris")
	require.NoError(t, err)

	assert.Equal(t, "/weather", gotPath)
	assert.Equal(t, "Paris", gotCity)
	assert.Equal(t, "test-key", gotKey)

	assert.Equal(t, "Paris", rec.City)
	assert.Equal(t, "FR", rec.Country)
	require.NotNil(t, rec.Coordinates.Lat)
	assert.Equal(t, 48.8534, *rec.Coordinates.Lat)
	assert.Equal(t, "20.55", rec.Temperature.Current)
	assert.Equal(t, "20.05", rec.Temperature.FeelsLike)
	assert.Equal(t, "18.89", rec.Temperature.Min)
	assert.Equal(t, "22.22", rec.Temperature.Max)
	assert.Equal(t, "celsius", rec.Temperature.Unit)
	assert.Equal(t, weather.Condition{Main: "Clouds", Description: "broken clouds", Icon: "04d"}, rec.Weather)
	require.NotNil(t, rec.Wind.Speed)
	assert.Equal(t, 4.12, *rec.Wind.Speed)
	assert.Equal(t, "m/s", rec.Wind.Unit)
	require.NotNil(t, rec.Humidity)
	assert.Equal(t, float64(64), *rec.Humidity)
	require.NotNil(t, rec.Clouds)
	assert.Equal(t, float64(75), *rec.Clouds)
	assert.Equal(t, "2023-11-14T22:13:20.000Z", rec.Timestamp)
}

func TestFetchByCity_EscapesCity(t *testing.T) {
	var gotCity string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCity = r.URL.Query().Get("q")
		jsonHandler(http.StatusOK, parisPayload())(w, r)
	}))

	_, err := c.FetchByCity(context.Background(), "São Paulo&appid=evil")
	require.NoError(t, err)
	assert.Equal(t, "São Paulo&appid=evil", gotCity)
}

func TestFetchByCity_MissingTemperatureIsNaN(t *testing.T) {
	payload := parisPayload()
	delete(payload["main"].(map[string]any), "temp")
	c := newTestClient(t, jsonHandler(http.StatusOK, payload))

	rec, err := c.FetchByCity(context.Background(), "Paris")
	require.NoError(t, err)
	assert.Equal(t, weather.NotANumber, rec.Temperature.Current)
	assert.Equal(t, "20.05", rec.Temperature.FeelsLike)
}

func TestFetchByCity_NotFound(t *testing.T) {
	c := newTestClient(t, jsonHandler(http.StatusNotFound, map[string]any{"cod": "404", "message": "city not found"}))

	_, err := c.FetchByCity(context.Background(), "Nowhereville")
	requireBadGateway(t, err, "City 'Nowhereville' not found")
	assert.Equal(t, http.StatusBadGateway, apperr.From(err).Status())
}

func TestFetchByCity_InvalidKey(t *testing.T) {
	c := newTestClient(t, jsonHandler(http.StatusUnauthorized, map[string]any{"cod": 401, "message": "Invalid API key."}))

	_, err := c.FetchByCity(context.Background(), "Paris")
	requireBadGateway(t, err, "Invalid API key")
}

func TestFetchByCity_OtherStatusUsesUpstreamMessage(t *testing.T) {
	c := newTestClient(t, jsonHandler(http.StatusTooManyRequests, map[string]any{"cod": 429, "message": "quota exceeded"}))

	_, err := c.FetchByCity(context.Background(), "Paris")
	requireBadGateway(t, err, "Weather API error: quota exceeded")
}

func TestFetchByCity_OtherStatusWithoutMessage(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("<html>oops</html>"))
	}))

	_, err := c.FetchByCity(context.Background(), "Paris")
	requireBadGateway(t, err, "Weather API error: Request failed with status code 500")
}

func TestFetchByCity_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	c := weather.NewClient(srv.URL, "test-key", 50*time.Millisecond, discardLogger())

	start := time.Now()
	_, err := c.FetchByCity(context.Background(), "Paris")
	requireBadGateway(t, err, "Weather API is not responding")
	assert.Less(t, time.Since(start), time.Second)
}

func TestFetchByCity_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := weather.NewClient(url, "test-key", time.Second, discardLogger())

	_, err := c.FetchByCity(context.Background(), "Paris")
	requireBadGateway(t, err, "Weather API is not responding")
	assert.NotContains(t, err.Error(), "test-key")
}

func TestFetchByCity_BadBaseURL(t *testing.T) {
	c := weather.NewClient("://not-a-url", "test-key", time.Second, discardLogger())

	_, err := c.FetchByCity(context.Background(), "Paris")
	requireBadGateway(t, err, "Failed to fetch weather data")
}

func TestFetchByCity_UndecodableBody(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))

	_, err := c.FetchByCity(context.Background(), "Paris")
	requireBadGateway(t, err, "Failed to fetch weather data")
}

func TestFetchByCity_MissingObservationTime(t *testing.T) {
	payload := parisPayload()
	delete(payload, "dt")
	c := newTestClient(t, jsonHandler(http.StatusOK, payload))

	_, err := c.FetchByCity(context.Background(), "Paris")
	requireBadGateway(t, err, "Failed to fetch weather data")
}

func TestFetchByCity_CallerCancellationDoesNotAbort(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(20 * time.Millisecond)
		jsonHandler(http.StatusOK, parisPayload())(w, r)
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec, err := c.FetchByCity(ctx, "Paris")
	require.NoError(t, err)
	assert.Equal(t, "Paris", rec.City)
}
