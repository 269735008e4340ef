package geolocate

import (
	"context"

	"github.com/golang/geo/r2"
	"golang.org/x/sync/errgroup"
)

// PixelOutcome pairs a clicked pixel with its projection outcome. Misses are
// recorded per pixel rather than failing the whole batch.
type PixelOutcome struct {
	Pixel  r2.Point
	Result ProjectionResult
	Err    error
}

// ProjectBatch projects a list of clicked pixels concurrently, preserving
// input order. Each projection is an independent computation over the
// projector's immutable inputs, so they are safe to run in parallel. workers
// bounds the concurrency; values below one mean unbounded.
func (p Projector) ProjectBatch(ctx context.Context, pixels []r2.Point, workers int) []PixelOutcome {
	outcomes := make([]PixelOutcome, len(pixels))
	group, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		group.SetLimit(workers)
	}
	for i, px := range pixels {
		i, px := i, px
		group.Go(func() error {
			res, err := p.Project(ctx, px.X, px.Y)
			outcomes[i] = PixelOutcome{Pixel: px, Result: res, Err: err}
			return nil
		})
	}
	//nolint:errcheck
	group.Wait()
	return outcomes
}
