package api

import (
	"context"
	"time"

	"github.com/dawe014/web-service-integration-assignment/internal/auth"
	"github.com/dawe014/web-service-integration-assignment/internal/weather"
)

// TokenService defines the credential operations needed by handlers.
type TokenService interface {
	Issue(claims auth.Claims) (string, error)
	Verify(token string) (*auth.Claims, error)
	TTL() time.Duration
}

// WeatherFetcher defines the single-city upstream lookup needed by handlers.
type WeatherFetcher interface {
	FetchByCity(ctx context.Context, city string) (*weather.Record, error)
}

// BatchFetcher defines the multi-city lookup needed by handlers.
type BatchFetcher interface {
	FetchMany(ctx context.Context, cities []string) []weather.BatchItemResult
}
