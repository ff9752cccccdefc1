package verify

import (
	"strings"
	"sync/atomic"

	"parhash/internal/alg"
	"parhash/internal/checkfile"
	"parhash/internal/metrics"
	"parhash/internal/pipeline"
	"parhash/internal/progress"
)

// Verify recomputes every entry's digests in one read per file and compares
// them against the recorded values, case-insensitively. A path passes only
// when all of its digests match; a recompute error fails the path instead of
// stopping the run.
func Verify(entries []checkfile.Entry, specs []alg.Spec, opts pipeline.Options, stats *metrics.Stats, bar *progress.Bar, onRow func(Row)) *Result {
	res := &Result{Rows: make([]Row, 0, len(entries))}

	emit := func(row Row) {
		res.Rows = append(res.Rows, row)
		if !row.OK {
			res.Failed++
		}
		if onRow != nil {
			onRow(row)
		}
		if stats != nil {
			atomic.AddInt64(&stats.Processed, 1)
		}
	}

	for _, en := range entries {
		fr := pipeline.Process(en.Path, specs, opts, func(n int64) {
			if stats != nil {
				atomic.AddInt64(&stats.BytesHashed, n)
			}
			if bar != nil {
				bar.AddBytes(n)
			}
		})

		if fr.Err != nil {
			if stats != nil {
				atomic.AddInt64(&stats.FileErrors, 1)
			}
			emit(Row{OK: false, Path: en.Path, Err: fr.Err})
			continue
		}

		ok := true
		for i, sp := range specs {
			if strings.EqualFold(fr.Digests[i], strings.TrimSpace(en.Expected[i])) {
				continue
			}
			ok = false
			if stats != nil {
				atomic.AddInt64(&stats.Mismatches, 1)
			}
			res.Mismatches = append(res.Mismatches, Mismatch{
				Path:      en.Path,
				Algorithm: sp.Name,
				Expected:  en.Expected[i],
				Computed:  fr.Digests[i],
			})
		}

		if ok && stats != nil {
			atomic.AddInt64(&stats.OK, 1)
		}
		emit(Row{OK: ok, Path: en.Path, Computed: fr.Digests})
	}
	return res
}
