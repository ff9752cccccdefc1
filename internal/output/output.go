// Package output renders result rows as aligned text, templated text, or
// JSON objects, one row per processed path.
package output

import (
	"fmt"
	"io"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/mitchellh/colorstring"
	"github.com/valyala/fasttemplate"

	"parhash/internal/alg"
	"parhash/internal/pipeline"
	"parhash/internal/verify"
)

// DefaultFormat matches the plain row layout: digests in request order with
// two spaces between columns, then the path.
const DefaultFormat = "{digests}  {path}"

type Options struct {
	Format string // row template with {digests} and {path} tags
	JSON   bool
	Color  bool // colorize verification statuses
}

type Writer struct {
	w     io.Writer
	specs []alg.Spec
	tmpl  *fasttemplate.Template
	json  bool
	color bool
}

func New(w io.Writer, specs []alg.Spec, opts Options) (*Writer, error) {
	format := opts.Format
	if format == "" {
		format = DefaultFormat
	}
	tmpl, err := fasttemplate.NewTemplate(format, "{", "}")
	if err != nil {
		return nil, fmt.Errorf("bad row format %q: %w", format, err)
	}
	return &Writer{w: w, specs: specs, tmpl: tmpl, json: opts.JSON, color: opts.Color}, nil
}

// Header writes the column header for hash output.
func (wr *Writer) Header() error {
	if wr.json {
		return nil
	}
	cols := append(alg.Names(wr.specs), "path")
	_, err := fmt.Fprintln(wr.w, strings.Join(cols, "  "))
	return err
}

// Result writes one hash-mode row. Failed and skipped entries render N/A
// digests with the reason after the path.
func (wr *Writer) Result(res pipeline.FileResult) error {
	if wr.json {
		return wr.jsonResult(res)
	}

	switch {
	case res.Skipped != "":
		return wr.naRow(res.Path, res.Skipped)
	case res.Err != nil:
		return wr.naRow(res.Path, res.Err.Error())
	default:
		line := wr.tmpl.ExecuteString(map[string]interface{}{
			"digests": strings.Join(res.Digests, "  "),
			"path":    res.Path,
		})
		_, err := fmt.Fprintln(wr.w, line)
		return err
	}
}

func (wr *Writer) naRow(path, reason string) error {
	nas := make([]string, len(wr.specs))
	for i := range nas {
		nas[i] = "N/A"
	}
	line := wr.tmpl.ExecuteString(map[string]interface{}{
		"digests": strings.Join(nas, "  "),
		"path":    path,
	})
	_, err := fmt.Fprintf(wr.w, "%s (%s)\n", line, reason)
	return err
}

// VerifyHeader writes the column header for verification output: Result,
// one Hash column per algorithm, Path.
func (wr *Writer) VerifyHeader() error {
	if wr.json {
		return nil
	}
	cols := make([]string, 0, len(wr.specs)+2)
	cols = append(cols, "Result")
	for range wr.specs {
		cols = append(cols, "Hash")
	}
	cols = append(cols, "Path")
	_, err := fmt.Fprintln(wr.w, strings.Join(cols, "\t"))
	return err
}

// VerifyRow writes one verification row: status, recomputed digests, path,
// tab separated.
func (wr *Writer) VerifyRow(row verify.Row) error {
	if wr.json {
		return wr.jsonVerifyRow(row)
	}

	status := "OK"
	if !row.OK {
		status = "FAILED"
	}
	if wr.color {
		if row.OK {
			status = colorstring.Color("[green]OK[reset]")
		} else {
			status = colorstring.Color("[red]FAILED[reset]")
		}
	}

	cols := make([]string, 0, len(wr.specs)+2)
	cols = append(cols, status)
	if row.Computed == nil {
		for range wr.specs {
			cols = append(cols, "N/A")
		}
	} else {
		cols = append(cols, row.Computed...)
	}
	cols = append(cols, row.Path)
	_, err := fmt.Fprintln(wr.w, strings.Join(cols, "\t"))
	return err
}

type jsonDigest struct {
	Algorithm string `json:"algorithm"`
	Digest    string `json:"digest"`
}

type jsonRow struct {
	Path    string       `json:"path"`
	Digests []jsonDigest `json:"digests,omitempty"`
	Skipped string       `json:"skipped,omitempty"`
	Error   string       `json:"error,omitempty"`
}

type jsonVerifyRow struct {
	Path    string       `json:"path"`
	OK      bool         `json:"ok"`
	Digests []jsonDigest `json:"digests,omitempty"`
	Error   string       `json:"error,omitempty"`
}

func (wr *Writer) jsonResult(res pipeline.FileResult) error {
	row := jsonRow{Path: res.Path, Skipped: res.Skipped}
	if res.Err != nil {
		row.Error = res.Err.Error()
	}
	for i, d := range res.Digests {
		row.Digests = append(row.Digests, jsonDigest{Algorithm: wr.specs[i].Name, Digest: d})
	}
	return wr.writeJSON(row)
}

func (wr *Writer) jsonVerifyRow(row verify.Row) error {
	out := jsonVerifyRow{Path: row.Path, OK: row.OK}
	if row.Err != nil {
		out.Error = row.Err.Error()
	}
	for i, d := range row.Computed {
		out.Digests = append(out.Digests, jsonDigest{Algorithm: wr.specs[i].Name, Digest: d})
	}
	return wr.writeJSON(out)
}

func (wr *Writer) writeJSON(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(wr.w, string(data))
	return err
}
