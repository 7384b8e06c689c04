package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dawe014/web-service-integration-assignment/internal/apperr"
	"github.com/dawe014/web-service-integration-assignment/internal/auth"
	"github.com/dawe014/web-service-integration-assignment/internal/validate"
)

const (
	apiVersion = "2.0.0"

	// maxBodyBytes caps POST bodies.
	maxBodyBytes = 100 << 10
)

// Handlers holds the dependencies for all HTTP handlers.
type Handlers struct {
	tokens  TokenService
	weather WeatherFetcher
	batch   BatchFetcher
	log     *slog.Logger
	dev     bool
}

// NewHandlers constructs Handlers with all required dependencies. When dev is
// true, error envelopes carry diagnostic detail and requests are logged.
func NewHandlers(tokens TokenService, weather WeatherFetcher, batch BatchFetcher, log *slog.Logger, dev bool) *Handlers {
	return &Handlers{
		tokens:  tokens,
		weather: weather,
		batch:   batch,
		log:     log,
		dev:     dev,
	}
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// handlerFunc is an http.HandlerFunc that reports failure by returning an error.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// handle adapts fn so that any returned error goes through the error responder.
func (h *Handlers) handle(fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			h.writeError(w, r, err)
		}
	}
}

// Root handles GET /.
func (h *Handlers) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"message":       "Weather Integration API",
		"version":       apiVersion,
		"documentation": "/api/health",
	})
}

// Health handles GET /api/health. It does not require auth.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "Weather Integration API is running",
		"timestamp": time.Now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	})
}

// IssueToken handles GET /api/auth/token.
func (h *Handlers) IssueToken(w http.ResponseWriter, r *http.Request) error {
	token, err := h.tokens.Issue(auth.Claims{Role: auth.DefaultRole})
	if err != nil {
		return apperr.Internal(err)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"token":      token,
		"expires_in": int64(h.tokens.TTL() / time.Second),
	})
	return nil
}

// GetWeather handles GET /api/weather/{city}.
func (h *Handlers) GetWeather(w http.ResponseWriter, r *http.Request) error {
	city := chi.URLParam(r, "city")
	if decoded, err := url.PathUnescape(city); err == nil {
		city = decoded
	}
	if strings.TrimSpace(city) == "" {
		return apperr.BadRequest("Please provide a city name.")
	}

	data, err := h.weather.FetchByCity(r.Context(), city)
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    data,
	})
	return nil
}

type multipleRequest struct {
	Cities any `json:"cities"`
}

// GetMultipleWeather handles POST /api/weather/multiple.
// Per-city failures are reported inside results; only a structurally invalid
// request fails the whole call.
func (h *Handlers) GetMultipleWeather(w http.ResponseWriter, r *http.Request) error {
	var req multipleRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return &apperr.Error{Kind: apperr.KindBadRequest, Message: "Invalid JSON body", Operational: true, Err: err}
	}

	if err := validate.RequireCitiesArray(req.Cities); err != nil {
		return err
	}
	cities := validate.CleanCityNames(req.Cities.([]any))

	results := h.batch.FetchMany(r.Context(), cities)

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"count":   len(results),
		"results": results,
	})
	return nil
}

// NotFound answers every unmatched route or method.
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]any{
		"success": false,
		"message": "Route " + r.Method + " " + r.URL.Path + " not found",
	})
}
