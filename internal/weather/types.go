package weather

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// Record is the normalized current-weather shape returned to callers.
type Record struct {
	City        string      `json:"city"`
	Country     string      `json:"country,omitempty"`
	Coordinates Coordinates `json:"coordinates"`
	Temperature Temperature `json:"temperature"`
	Weather     Condition   `json:"weather"`
	Wind        Wind        `json:"wind"`
	Humidity    *float64    `json:"humidity,omitempty"`
	Pressure    *float64    `json:"pressure,omitempty"`
	Visibility  *float64    `json:"visibility,omitempty"`
	Clouds      *float64    `json:"clouds,omitempty"`
	Timestamp   string      `json:"timestamp"`
}

// Coordinates holds the city's position as reported upstream.
type Coordinates struct {
	Lat *float64 `json:"lat,omitempty"`
	Lon *float64 `json:"lon,omitempty"`
}

// Temperature values are Celsius with exactly two decimals, or "NaN" when the
// provider omitted the source field.
type Temperature struct {
	Current   string `json:"current"`
	FeelsLike string `json:"feels_like"`
	Min       string `json:"min"`
	Max       string `json:"max"`
	Unit      string `json:"unit"`
}

// Condition is the primary weather condition.
type Condition struct {
	Main        string `json:"main,omitempty"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
}

// Wind speed is in m/s, direction in meteorological degrees.
type Wind struct {
	Speed *float64 `json:"speed,omitempty"`
	Deg   *float64 `json:"deg,omitempty"`
	Unit  string   `json:"unit"`
}

// BatchItemResult is the per-city outcome of a batch lookup. Exactly one of
// Data or Error is set, matching Success.
type BatchItemResult struct {
	City    string  `json:"city"`
	Success bool    `json:"success"`
	Data    *Record `json:"data,omitempty"`
	Error   string  `json:"error,omitempty"`
}

// NotANumber marks a temperature whose Kelvin source was missing.
const NotANumber = "NaN"

var absoluteZero = decimal.RequireFromString("273.15")

// KelvinToCelsius converts k to Celsius rounded half away from zero to two
// decimals. The arithmetic is decimal so 274.275 K becomes "1.13", not the
// binary-float artifact "1.12".
func KelvinToCelsius(k *float64) string {
	if k == nil || math.IsNaN(*k) || math.IsInf(*k, 0) {
		return NotANumber
	}
	return decimal.NewFromFloat(*k).Sub(absoluteZero).Round(2).StringFixed(2)
}

// isoMillis is the JavaScript Date#toISOString layout.
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// epochToISO renders provider Unix seconds as an ISO-8601 UTC timestamp with
// millisecond precision.
func epochToISO(seconds float64) string {
	ms := int64(math.Round(seconds * 1000))
	return time.UnixMilli(ms).UTC().Format(isoMillis)
}

// owmResponse is the subset of the OpenWeatherMap /weather payload we read.
// Pointers distinguish absent fields from zero values.
type owmResponse struct {
	Name string `json:"name"`
	Sys  struct {
		Country string `json:"country"`
	} `json:"sys"`
	Coord struct {
		Lat *float64 `json:"lat"`
		Lon *float64 `json:"lon"`
	} `json:"coord"`
	Main struct {
		Temp      *float64 `json:"temp"`
		FeelsLike *float64 `json:"feels_like"`
		TempMin   *float64 `json:"temp_min"`
		TempMax   *float64 `json:"temp_max"`
		Humidity  *float64 `json:"humidity"`
		Pressure  *float64 `json:"pressure"`
	} `json:"main"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Wind struct {
		Speed *float64 `json:"speed"`
		Deg   *float64 `json:"deg"`
	} `json:"wind"`
	Visibility *float64 `json:"visibility"`
	Clouds     struct {
		All *float64 `json:"all"`
	} `json:"clouds"`
	Dt *float64 `json:"dt"`
}

// owmError is the body OpenWeatherMap sends with non-2xx responses.
type owmError struct {
	Message string `json:"message"`
}

// toRecord reshapes a raw payload. It fails only when the observation time is
// missing, since the timestamp cannot be derived without it.
func (raw *owmResponse) toRecord() (*Record, bool) {
	if raw.Dt == nil {
		return nil, false
	}

	var cond Condition
	if len(raw.Weather) > 0 {
		cond = Condition{
			Main:        raw.Weather[0].Main,
			Description: raw.Weather[0].Description,
			Icon:        raw.Weather[0].Icon,
		}
	}

	return &Record{
		City:    raw.Name,
		Country: raw.Sys.Country,
		Coordinates: Coordinates{
			Lat: raw.Coord.Lat,
			Lon: raw.Coord.Lon,
		},
		Temperature: Temperature{
			Current:   KelvinToCelsius(raw.Main.Temp),
			FeelsLike: KelvinToCelsius(raw.Main.FeelsLike),
			Min:       KelvinToCelsius(raw.Main.TempMin),
			Max:       KelvinToCelsius(raw.Main.TempMax),
			Unit:      "celsius",
		},
		Weather: cond,
		Wind: Wind{
			Speed: raw.Wind.Speed,
			Deg:   raw.Wind.Deg,
			Unit:  "m/s",
		},
		Humidity:   raw.Main.Humidity,
		Pressure:   raw.Main.Pressure,
		Visibility: raw.Visibility,
		Clouds:     raw.Clouds.All,
		Timestamp:  epochToISO(*raw.Dt),
	}, true
}
