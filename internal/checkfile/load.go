package checkfile

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"parhash/internal/alg"
)

// Load reads a checksum file previously produced by a hashing run with the
// same algorithm list. Each line carries one hex digest per algorithm
// followed by the path; a leading header line is recognized and skipped.
func Load(path string, specs []alg.Spec) ([]Entry, error) {
	f, err := os.Open(path) // #nosec G304
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	entries, err := Parse(f, specs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

func Parse(r io.Reader, specs []alg.Spec) ([]Entry, error) {
	var entries []Entry

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20) // room for long paths
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if lineNo == 1 && isHeader(line, specs) {
			continue
		}

		hashes, path, ok := splitLine(line, len(specs))
		if !ok {
			return nil, fmt.Errorf("line %d: want %d digests and a path", lineNo, len(specs))
		}
		for i, hx := range hashes {
			if err := checkDigest(hx, specs[i]); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
		}
		entries = append(entries, Entry{Path: path, Expected: hashes})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func isHeader(line string, specs []alg.Spec) bool {
	fields := strings.Fields(line)
	if len(fields) != len(specs)+1 {
		return false
	}
	for i, sp := range specs {
		if !strings.EqualFold(fields[i], sp.Name) {
			return false
		}
	}
	return strings.EqualFold(fields[len(fields)-1], "path")
}

// splitLine pulls n leading whitespace-separated fields off the line and
// returns the remainder as the path, preserving any spacing inside it.
func splitLine(line string, n int) (hashes []string, path string, ok bool) {
	rest := line
	hashes = make([]string, 0, n)
	for i := 0; i < n; i++ {
		rest = strings.TrimLeftFunc(rest, unicode.IsSpace)
		end := strings.IndexFunc(rest, unicode.IsSpace)
		if end <= 0 {
			return nil, "", false
		}
		hashes = append(hashes, rest[:end])
		rest = rest[end:]
	}
	path = strings.TrimSpace(rest)
	if path == "" {
		return nil, "", false
	}
	return hashes, path, true
}

func checkDigest(hx string, sp alg.Spec) error {
	if len(hx) != 2*sp.Size {
		return fmt.Errorf("%s digest has %d hex chars, want %d", sp.Name, len(hx), 2*sp.Size)
	}
	if _, err := hex.DecodeString(hx); err != nil {
		return fmt.Errorf("%s digest is not hex: %q", sp.Name, hx)
	}
	return nil
}
