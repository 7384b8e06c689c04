package weather

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/dawe014/web-service-integration-assignment/internal/apperr"
)

// CityFetcher is the interface satisfied by Client.
type CityFetcher interface {
	FetchByCity(ctx context.Context, city string) (*Record, error)
}

// Batcher resolves a list of cities through a CityFetcher. With a concurrency
// of 1 lookups run strictly one after another in input order; a larger value
// allows at most that many upstream calls in flight at once.
type Batcher struct {
	fetcher     CityFetcher
	concurrency int
}

// NewBatcher constructs a Batcher. Concurrency below 1 is treated as 1.
func NewBatcher(fetcher CityFetcher, concurrency int) *Batcher {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Batcher{fetcher: fetcher, concurrency: concurrency}
}

// FetchMany returns one result per input city, in input order. A failed
// lookup is recorded in its slot and never aborts the rest of the batch.
func (b *Batcher) FetchMany(ctx context.Context, cities []string) []BatchItemResult {
	results := make([]BatchItemResult, len(cities))

	if b.concurrency == 1 {
		for i, city := range cities {
			results[i] = b.fetchOne(ctx, city)
		}
		return results
	}

	var g errgroup.Group
	g.SetLimit(b.concurrency)
	for i, city := range cities {
		i, city := i, city
		g.Go(func() error {
			results[i] = b.fetchOne(ctx, city)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (b *Batcher) fetchOne(ctx context.Context, city string) (res BatchItemResult) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("batch lookup panicked", "city", city, "recover", r)
			res = failed(city, apperr.Internal(fmt.Errorf("lookup panicked: %v", r)))
		}
	}()

	rec, err := b.fetcher.FetchByCity(ctx, city)
	if err != nil {
		return failed(city, err)
	}
	return BatchItemResult{City: city, Success: true, Data: rec}
}

func failed(city string, err error) BatchItemResult {
	return BatchItemResult{City: city, Success: false, Error: apperr.From(err).Message}
}
