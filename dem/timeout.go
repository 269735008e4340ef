package dem

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
)

// ErrReadTimeout is returned when every raster read attempt timed out.
var ErrReadTimeout = errors.New("DEM window read timed out")

// timeoutReader bounds each window read with a deadline and a retry budget so
// a raster read that never resolves cannot stall a refinement loop.
type timeoutReader struct {
	inner    WindowReader
	timeout  time.Duration
	attempts int
	clock    clock.Clock
}

// NewTimeoutReader wraps a WindowReader so each read is abandoned after the
// timeout and retried up to attempts times in total.
func NewTimeoutReader(inner WindowReader, timeout time.Duration, attempts int) WindowReader {
	return newTimeoutReader(inner, timeout, attempts, clock.New())
}

func newTimeoutReader(inner WindowReader, timeout time.Duration, attempts int, clk clock.Clock) WindowReader {
	if attempts < 1 {
		attempts = 1
	}
	return &timeoutReader{inner: inner, timeout: timeout, attempts: attempts, clock: clk}
}

type windowResult struct {
	data []float64
	err  error
}

func (tr *timeoutReader) ReadWindow(ctx context.Context, col0, row0, col1, row1 int) ([]float64, error) {
	for attempt := 0; attempt < tr.attempts; attempt++ {
		res := make(chan windowResult, 1)
		go func() {
			data, err := tr.inner.ReadWindow(ctx, col0, row0, col1, row1)
			res <- windowResult{data, err}
		}()
		timer := tr.clock.Timer(tr.timeout)
		select {
		case r := <-res:
			timer.Stop()
			return r.data, r.err
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
			// abandoned; the goroutine's late send lands in the buffered channel
		}
	}
	return nil, ErrReadTimeout
}
