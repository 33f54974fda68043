package codec

import (
	"context"
	"io"

	"github.com/eliteGoblin/parcel/internal/domain"
)

// tracker converts processed-byte counts into percentage callbacks.
// The percentage is clamped to 100 in case the total was estimated low.
type tracker struct {
	total     int64
	processed int64
	report    domain.ProgressFunc
}

func newTracker(total int64, report domain.ProgressFunc) *tracker {
	return &tracker{total: total, report: report}
}

// add records n more processed bytes attributed to file and reports the new
// overall percentage.
func (t *tracker) add(n int64, file string) {
	t.processed += n
	if t.report == nil {
		return
	}
	percent := 100.0
	if t.total > 0 {
		percent = float64(t.processed) / float64(t.total) * 100
		if percent > 100 {
			percent = 100
		}
	}
	t.report(percent, file)
}

// countingReader reports every chunk read to the tracker and honors context
// cancellation between chunks.
type countingReader struct {
	ctx     context.Context
	src     io.Reader
	tracker *tracker
	file    string
}

func (r *countingReader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	n, err := r.src.Read(p)
	if n > 0 {
		r.tracker.add(int64(n), r.file)
	}
	return n, err
}
