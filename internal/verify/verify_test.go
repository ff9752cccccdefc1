package verify

import (
	"bytes"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"parhash/internal/alg"
	"parhash/internal/checkfile"
	"parhash/internal/metrics"
	"parhash/internal/pipeline"
)

func mustSpecs(t *testing.T, names ...string) []alg.Spec {
	t.Helper()
	sps, err := alg.ParseList(names)
	if err != nil {
		t.Fatalf("ParseList(%v): %v", names, err)
	}
	return sps
}

func digestsFor(specs []alg.Spec, data []byte) []string {
	out := make([]string, len(specs))
	for i, sp := range specs {
		h := sp.New()
		_, _ = h.Write(data)
		out[i] = hex.EncodeToString(h.Sum(nil))
	}
	return out
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, data, 0o600); err != nil {
		t.Fatalf("write file %s: %v", p, err)
	}
	return p
}

func upper(hashes []string) []string {
	out := make([]string, len(hashes))
	for i, h := range hashes {
		out[i] = strings.ToUpper(h)
	}
	return out
}

type want struct {
	processed  int64
	ok         int64
	fileErrors int64
	mismatches int64
}

func TestVerify_TableDriven(t *testing.T) {
	dir := t.TempDir()

	goodContent := bytes.Repeat([]byte("A"), 1024) // 1 KiB
	badContent := bytes.Repeat([]byte("B"), 2048)  // 2 KiB

	goodPath := writeFile(t, dir, "good.bin", goodContent)
	badPath := writeFile(t, dir, "bad.bin", badContent)
	missingPath := filepath.Join(dir, "missing.bin")

	specs := mustSpecs(t, "md5", "sha2-256")

	goodDigests := digestsFor(specs, goodContent)
	wrongDigests := digestsFor(specs, []byte("not the file content"))
	partlyWrong := []string{goodDigests[0], wrongDigests[1]}

	tests := []struct {
		name       string
		entries    []checkfile.Entry
		want       want
		wantFailed int
		wantMis    []Mismatch
	}{
		{
			name: "all ok",
			entries: []checkfile.Entry{
				{Path: goodPath, Expected: goodDigests},
			},
			want:       want{processed: 1, ok: 1},
			wantFailed: 0,
		},
		{
			name: "uppercase expected still matches",
			entries: []checkfile.Entry{
				{Path: goodPath, Expected: upper(goodDigests)},
			},
			want:       want{processed: 1, ok: 1},
			wantFailed: 0,
		},
		{
			name: "every digest wrong",
			entries: []checkfile.Entry{
				{Path: badPath, Expected: wrongDigests},
			},
			want:       want{processed: 1, mismatches: 2},
			wantFailed: 1,
			wantMis: []Mismatch{
				{Path: badPath, Algorithm: "MD5", Expected: wrongDigests[0]},
				{Path: badPath, Algorithm: "SHA2-256", Expected: wrongDigests[1]},
			},
		},
		{
			name: "single algorithm mismatch fails the path",
			entries: []checkfile.Entry{
				{Path: goodPath, Expected: partlyWrong},
			},
			want:       want{processed: 1, mismatches: 1},
			wantFailed: 1,
			wantMis: []Mismatch{
				{Path: goodPath, Algorithm: "SHA2-256", Expected: partlyWrong[1]},
			},
		},
		{
			name: "missing file fails the path",
			entries: []checkfile.Entry{
				{Path: missingPath, Expected: goodDigests},
			},
			want:       want{processed: 1, fileErrors: 1},
			wantFailed: 1,
		},
		{
			name: "mixed batch keeps entry order",
			entries: []checkfile.Entry{
				{Path: goodPath, Expected: goodDigests},
				{Path: badPath, Expected: wrongDigests},
				{Path: missingPath, Expected: goodDigests},
				{Path: badPath, Expected: digestsFor(specs, badContent)},
			},
			want:       want{processed: 4, ok: 2, fileErrors: 1, mismatches: 2},
			wantFailed: 2,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			stats := &metrics.Stats{}
			atomic.StoreInt64(&stats.Total, int64(len(tt.entries)))

			var rows []Row
			res := Verify(tt.entries, specs, pipeline.Options{}, stats, nil, func(row Row) {
				rows = append(rows, row)
			})

			got := want{
				processed:  atomic.LoadInt64(&stats.Processed),
				ok:         atomic.LoadInt64(&stats.OK),
				fileErrors: atomic.LoadInt64(&stats.FileErrors),
				mismatches: atomic.LoadInt64(&stats.Mismatches),
			}
			if got != tt.want {
				t.Fatalf("stats mismatch:\n got: %+v\nwant: %+v", got, tt.want)
			}

			if res.Failed != tt.wantFailed {
				t.Fatalf("Failed mismatch: got %d want %d", res.Failed, tt.wantFailed)
			}
			if len(res.Rows) != len(tt.entries) {
				t.Fatalf("row count mismatch: got %d want %d", len(res.Rows), len(tt.entries))
			}
			if len(rows) != len(res.Rows) {
				t.Fatalf("streamed row count mismatch: got %d want %d", len(rows), len(res.Rows))
			}

			for i, en := range tt.entries {
				if res.Rows[i].Path != en.Path {
					t.Fatalf("row[%d] order mismatch: got %q want %q", i, res.Rows[i].Path, en.Path)
				}
			}

			for _, w := range tt.wantMis {
				found := false
				for _, m := range res.Mismatches {
					if m.Path == w.Path && m.Algorithm == w.Algorithm && strings.EqualFold(m.Expected, w.Expected) {
						found = true
						if strings.TrimSpace(m.Computed) == "" {
							t.Fatalf("mismatch for %s/%s has empty Computed", m.Path, m.Algorithm)
						}
						break
					}
				}
				if !found {
					t.Fatalf("expected mismatch for path=%q algorithm=%q not found; got=%+v", w.Path, w.Algorithm, res.Mismatches)
				}
			}
		})
	}
}

func TestVerify_ErrorRowHasNoDigests(t *testing.T) {
	dir := t.TempDir()
	specs := mustSpecs(t, "md5")

	entries := []checkfile.Entry{
		{Path: filepath.Join(dir, "missing.bin"), Expected: []string{"d41d8cd98f00b204e9800998ecf8427e"}},
	}

	res := Verify(entries, specs, pipeline.Options{}, nil, nil, nil)
	if len(res.Rows) != 1 {
		t.Fatalf("row count mismatch: got %d want 1", len(res.Rows))
	}

	row := res.Rows[0]
	if row.OK {
		t.Fatalf("expected FAILED row for missing file")
	}
	if row.Err == nil {
		t.Fatalf("expected error recorded on the row")
	}
	if row.Computed != nil {
		t.Fatalf("expected no computed digests, got %v", row.Computed)
	}
}
