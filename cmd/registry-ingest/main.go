// Command registry-ingest builds the company registry bloom filter consumed
// by the API server. It streams gzipped registry dumps (one registration
// number per line), keeps the numbers that pass offline validation, and
// writes the resulting filter to disk.
package main

import (
	"bufio"
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"

	"github.com/nordmark-trading/settlement/internal/domain/vat"
)

const progressEvery = 1_000_000

func main() {
	var (
		outPath  string
		country  string
		capacity uint64
		fpr      float64
	)

	flag.StringVar(&outPath, "out", "registry.bloom", "output path for the bloom filter")
	flag.StringVar(&country, "country", "SE", "country hint for numbers without an ISO prefix")
	flag.Uint64Var(&capacity, "capacity", 10_000_000, "expected number of registry entries")
	flag.Float64Var(&fpr, "fpr", 0.001, "target false positive rate")
	flag.Parse()

	files := flag.Args()
	if len(files) == 0 {
		slog.Error("at least one registry dump file is required")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, files, outPath, country, uint(capacity), fpr); err != nil {
		slog.Error("registry ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("registry ingest completed successfully", slog.String("out", outPath))
}

func run(ctx context.Context, files []string, outPath, country string, capacity uint, fpr float64) error {
	// One filter per file so the files stream concurrently, merged at the
	// end. All filters share the same parameters, which Merge requires.
	filters := make([]*bloom.BloomFilter, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, path := range files {
		g.Go(ingestFile(ctx, i, path, country, capacity, fpr, filters))
	}
	if err := g.Wait(); err != nil {
		return err
	}

	merged := filters[0]
	for _, f := range filters[1:] {
		if err := merged.Merge(f); err != nil {
			return errors.Wrap(err, "merge filters")
		}
	}

	out, err := os.Create(outPath)
	if err != nil {
		return errors.Wrapf(err, "create %s", outPath)
	}

	if _, err := merged.WriteTo(out); err != nil {
		_ = out.Close()
		return errors.Wrap(err, "write filter")
	}
	return out.Close()
}

func ingestFile(
	ctx context.Context,
	idx int,
	path, country string,
	capacity uint,
	fpr float64,
	filters []*bloom.BloomFilter,
) func() error {
	return func() error {
		filter := bloom.NewWithEstimates(capacity, fpr)
		var total, kept uint64

		if err := streamGzFile(ctx, path, func(line string) {
			total++
			if total%progressEvery == 0 {
				slog.Info("ingest progress",
					slog.Int("file", idx+1),
					slog.Uint64("lines", total),
				)
			}

			res := vat.ValidateFormat(line, country)
			if !res.Valid {
				return
			}
			filter.AddString(res.Normalized)
			kept++
		}); err != nil {
			return errors.Wrapf(err, "ingest %s", path)
		}

		slog.Info("ingest complete",
			slog.Int("file", idx+1),
			slog.Uint64("lines", total),
			slog.Uint64("kept", kept),
		)

		filters[idx] = filter
		return nil
	}
}

// streamGzFile opens a gzip-compressed file and calls fn for each line.
func streamGzFile(ctx context.Context, path string, fn func(line string)) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	scanner := bufio.NewScanner(gz)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		fn(scanner.Text())
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}

	return nil
}
