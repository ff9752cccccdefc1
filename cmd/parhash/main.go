package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"parhash/internal/alg"
	"parhash/internal/checkfile"
	"parhash/internal/config"
	"parhash/internal/metrics"
	"parhash/internal/output"
	"parhash/internal/pipeline"
	"parhash/internal/progress"
	"parhash/internal/verify"
	"parhash/internal/walk"
)

var (
	flagAlgorithms []string
	flagCheck      string
	flagShowHeader bool
	flagContinue   bool
	flagNoFollow   bool
	flagChannel    int
	flagChunk      int
	flagOutput     string
	flagExcludes   []string
	flagJSON       bool
	flagFormat     string
	flagConfig     string
	flagNoProgress bool
)

var rootCmd = &cobra.Command{
	Use:   "parhash [flags] [path ...]",
	Short: "Compute several digests per file in a single read",
	Long: `parhash reads each file once and computes every requested digest in
parallel, one hashing worker per algorithm. Directories recurse; with
--check it verifies files against a previously written checksum file.`,
	Version:       "0.1.0",
	Args:          cobra.ArbitraryArgs,
	RunE:          run,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	f := rootCmd.Flags()
	f.StringSliceVarP(&flagAlgorithms, "algorithms", "a", nil,
		"digest algorithms to compute ("+strings.Join(alg.Supported(), ", ")+")")
	f.StringVarP(&flagCheck, "check", "c", "", "verify files listed in a checksum file instead of hashing paths")
	f.BoolVarP(&flagShowHeader, "show-headers", "s", false, "print a column header before the rows")
	f.BoolVar(&flagContinue, "continue-on-error", false, "record per-file failures and keep going")
	f.BoolVar(&flagNoFollow, "no-follow-symlinks", false, "report symlinks instead of hashing their targets")
	f.IntVar(&flagChannel, "channel-size", pipeline.DefaultChannelSize, "chunks buffered per algorithm")
	f.IntVar(&flagChunk, "chunk-size", pipeline.DefaultChunkSize, "bytes read per chunk")
	f.StringVarP(&flagOutput, "output", "o", "", "write rows to a file instead of stdout")
	f.StringSliceVar(&flagExcludes, "exclude", nil, "glob patterns of paths to skip")
	f.BoolVar(&flagJSON, "json", false, "emit one JSON object per row")
	f.StringVar(&flagFormat, "format", "", "row template with {digests} and {path} tags")
	f.StringVar(&flagConfig, "config", "", "YAML settings file")
	f.BoolVar(&flagNoProgress, "no-progress", false, "disable the live progress bar")
}

// usageError marks failures that are the caller's fault; they exit 2 instead
// of 1.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func run(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return usageError{err: err}
	}
	specs, err := cfg.Validate()
	if err != nil {
		return usageError{err: err}
	}

	if flagCheck == "" && len(args) == 0 {
		return usageError{err: fmt.Errorf("no paths given")}
	}
	if flagCheck != "" && len(args) > 0 {
		return usageError{err: fmt.Errorf("--check takes its paths from the checksum file")}
	}

	dest := io.Writer(os.Stdout)
	color := term.IsTerminal(int(os.Stdout.Fd()))
	if cfg.Output != "" {
		f, err := os.Create(cfg.Output) // #nosec G304
		if err != nil {
			return err
		}
		defer func() {
			_ = f.Close()
		}()
		dest = f
		color = false
	}

	out, err := output.New(dest, specs, output.Options{
		Format: cfg.Format,
		JSON:   cfg.JSON,
		Color:  color,
	})
	if err != nil {
		return usageError{err: err}
	}

	if flagCheck != "" {
		return runCheck(cfg, specs, out)
	}
	return runHash(cfg, specs, args, out)
}

// buildConfig layers defaults, the optional YAML file, the environment, and
// finally any flag the user set on the command line.
func buildConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()

	if flagConfig != "" {
		var err error
		cfg, err = config.LoadFile(flagConfig, cfg)
		if err != nil {
			return cfg, err
		}
	}
	cfg = config.LoadEnv(cfg)

	f := cmd.Flags()
	if f.Changed("algorithms") {
		cfg.Algorithms = flagAlgorithms
	}
	if f.Changed("chunk-size") {
		cfg.ChunkSize = flagChunk
	}
	if f.Changed("channel-size") {
		cfg.ChannelSize = flagChannel
	}
	if f.Changed("continue-on-error") {
		cfg.ContinueOnError = flagContinue
	}
	if f.Changed("no-follow-symlinks") {
		cfg.FollowSymlinks = !flagNoFollow
	}
	if f.Changed("show-headers") {
		cfg.ShowHeaders = flagShowHeader
	}
	if f.Changed("exclude") {
		cfg.Excludes = flagExcludes
	}
	if f.Changed("output") {
		cfg.Output = flagOutput
	}
	if f.Changed("format") {
		cfg.Format = flagFormat
	}
	if f.Changed("json") {
		cfg.JSON = flagJSON
	}
	if f.Changed("no-progress") {
		cfg.NoProgress = flagNoProgress
	}
	return cfg, nil
}

func runHash(cfg config.Config, specs []alg.Spec, args []string, out *output.Writer) error {
	entries, err := walk.Expand(args, walk.Options{
		FollowSymlinks:  cfg.FollowSymlinks,
		ContinueOnError: cfg.ContinueOnError,
		Excludes:        cfg.Excludes,
	})
	if err != nil {
		return err
	}

	stats := &metrics.Stats{}
	stats.Start()
	atomic.StoreInt64(&stats.Total, int64(len(entries)))

	var totalBytes int64
	for _, e := range entries {
		totalBytes += e.Size
	}
	atomic.StoreInt64(&stats.TotalBytes, totalBytes)

	bar := newBar(cfg, stats, totalBytes, "hashing")

	if cfg.ShowHeaders {
		if err := out.Header(); err != nil {
			return err
		}
	}

	var rowErr error
	opts := pipeline.Options{
		ChunkSize:       cfg.ChunkSize,
		ChannelSize:     cfg.ChannelSize,
		ContinueOnError: cfg.ContinueOnError,
		OnResult: func(res pipeline.FileResult) {
			if err := out.Result(res); err != nil && rowErr == nil {
				rowErr = err
			}
		},
	}

	_, runErr := pipeline.Run(entries, specs, opts, stats, bar)

	closeBar(bar)
	stats.Stop()
	metrics.Print(os.Stderr, stats)

	if runErr != nil {
		return runErr
	}
	return rowErr
}

func runCheck(cfg config.Config, specs []alg.Spec, out *output.Writer) error {
	entries, err := checkfile.Load(flagCheck, specs)
	if err != nil {
		return err
	}

	stats := &metrics.Stats{}
	stats.Start()
	atomic.StoreInt64(&stats.Total, int64(len(entries)))

	var totalBytes int64
	for _, en := range entries {
		if info, serr := os.Stat(en.Path); serr == nil {
			totalBytes += info.Size()
		}
	}
	atomic.StoreInt64(&stats.TotalBytes, totalBytes)

	bar := newBar(cfg, stats, totalBytes, "verifying")

	if cfg.ShowHeaders {
		if err := out.VerifyHeader(); err != nil {
			return err
		}
	}

	var rowErr error
	opts := pipeline.Options{ChunkSize: cfg.ChunkSize, ChannelSize: cfg.ChannelSize}
	res := verify.Verify(entries, specs, opts, stats, bar, func(row verify.Row) {
		if err := out.VerifyRow(row); err != nil && rowErr == nil {
			rowErr = err
		}
	})

	closeBar(bar)
	stats.Stop()
	metrics.Print(os.Stderr, stats)

	if rowErr != nil {
		return rowErr
	}
	if res.Failed > 0 {
		return fmt.Errorf("verification failed for %d of %d files", res.Failed, len(entries))
	}
	return nil
}

func newBar(cfg config.Config, stats *metrics.Stats, totalBytes int64, label string) *progress.Bar {
	if cfg.NoProgress || !progress.Enabled() {
		return nil
	}
	return progress.New(totalBytes, label, func() (p, total, ok, mismatches, errc, skip, bytesHashed int64) {
		p = atomic.LoadInt64(&stats.Processed)
		total = atomic.LoadInt64(&stats.Total)
		ok = atomic.LoadInt64(&stats.OK)
		mismatches = atomic.LoadInt64(&stats.Mismatches)
		errc = atomic.LoadInt64(&stats.FileErrors)
		skip = atomic.LoadInt64(&stats.Skipped)
		bytesHashed = atomic.LoadInt64(&stats.BytesHashed)
		return p, total, ok, mismatches, errc, skip, bytesHashed
	})
}

func closeBar(b *progress.Bar) {
	if b != nil {
		b.Close()
	}
}

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if err := rootCmd.Execute(); err != nil {
		slog.Error("run failed", "error", err)

		var ue usageError
		if errors.As(err, &ue) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
