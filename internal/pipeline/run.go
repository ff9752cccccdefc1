package pipeline

import (
	"sync/atomic"

	"parhash/internal/alg"
	"parhash/internal/metrics"
	"parhash/internal/progress"
)

// Run processes entries strictly in order, one file at a time. Skipped
// entries pass through as results without being opened. With
// ContinueOnError unset the first file error stops the run; otherwise the
// error is recorded on the entry's result and processing moves on.
func Run(entries []Entry, specs []alg.Spec, opts Options, stats *metrics.Stats, bar *progress.Bar) ([]FileResult, error) {
	results := make([]FileResult, 0, len(entries))

	emit := func(res FileResult) {
		results = append(results, res)
		if opts.OnResult != nil {
			opts.OnResult(res)
		}
		if stats != nil {
			atomic.AddInt64(&stats.Processed, 1)
		}
	}

	for _, e := range entries {
		if e.Skip != "" {
			if stats != nil {
				atomic.AddInt64(&stats.Skipped, 1)
			}
			emit(FileResult{Path: e.Path, Skipped: e.Skip})
			continue
		}

		var sent int64
		res := Process(e.Path, specs, opts, func(n int64) {
			sent += n
			if stats != nil {
				atomic.AddInt64(&stats.BytesHashed, n)
			}
			if bar != nil {
				bar.AddBytes(n)
			}
		})
		if bar != nil && e.Size > sent {
			bar.AddBytes(e.Size - sent)
		}

		if res.Err != nil {
			if stats != nil {
				atomic.AddInt64(&stats.FileErrors, 1)
			}
			emit(res)
			if !opts.ContinueOnError {
				return results, res.Err
			}
			continue
		}

		if stats != nil {
			atomic.AddInt64(&stats.OK, 1)
		}
		emit(res)
	}
	return results, nil
}
