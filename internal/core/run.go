package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/JonMunkholm/importparser/internal/actions"
	"github.com/JonMunkholm/importparser/internal/csvio"
	"github.com/JonMunkholm/importparser/internal/registry"
)

// ErrEmptyInput is returned when the source has no data line.
var ErrEmptyInput = errors.New("input file has no data line")

// ContextCheckInterval is how often (in rows) cancellation is checked.
var ContextCheckInterval = 100

// ProgressInterval is how often (in rows) progress is logged.
var ProgressInterval = 10000

// RunOptions describes one parser run.
type RunOptions struct {
	Source      string
	Destination string // defaults to csvio.DestinationPath(Source)
	Type        RecordType
	Actions     *actions.Compiled
	Registry    *registry.Registry
	Logger      *slog.Logger
	Now         func() time.Time
}

// Run parses the source file into the destination file and returns the
// report of the run. Setup problems fail the run before the destination is
// created; an I/O failure while processing aborts the run and removes the
// partial destination.
func Run(ctx context.Context, opts RunOptions) (report *Report, err error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Destination == "" {
		opts.Destination = csvio.DestinationPath(opts.Source)
	}
	logger := opts.Logger.With("type", opts.Type.Name, "source", opts.Source)
	started := time.Now()

	readerDialect, err := csvio.LookupDialect(opts.Actions.CSV.ReaderDialect)
	if err != nil {
		return nil, err
	}
	writerDialect, err := csvio.LookupDialect(opts.Actions.CSV.WriterDialect)
	if err != nil {
		return nil, err
	}

	src, err := os.Open(opts.Source)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	defer func() { _ = src.Close() }()

	var size int64
	if info, statErr := src.Stat(); statErr == nil {
		size = info.Size()
	}
	counter := csvio.NewCountingReader(src, size)
	decoded, err := csvio.Decode(counter, opts.Actions.CSV.Encoding)
	if err != nil {
		return nil, err
	}
	reader := csvio.NewReader(decoded, readerDialect)

	header, err := reader.Header()
	if err != nil {
		if errors.Is(err, csvio.ErrNoHeader) {
			return nil, ErrEmptyInput
		}
		return nil, err
	}
	firstValues, firstLine, err := reader.Next()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyInput
	}
	if err != nil {
		return nil, err
	}

	report = NewReport(opts.Type.Name)
	report.Source = opts.Source
	report.Destination = opts.Destination
	report.StartedAt = started

	pipeline, err := NewPipeline(opts.Type, opts.Actions, opts.Registry, header, report,
		PipelineOptions{Logger: logger, Now: opts.Now})
	if err != nil {
		return nil, err
	}

	dst, err := os.Create(opts.Destination)
	if err != nil {
		return nil, fmt.Errorf("create destination: %w", err)
	}
	defer func() {
		if closeErr := dst.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close destination: %w", closeErr)
		}
		if err != nil {
			_ = os.Remove(opts.Destination)
			report = nil
		}
	}()

	writer := csvio.NewWriter(dst, writerDialect)
	if err := writer.Write(pipeline.Header()); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	logger.Info("parsing started",
		"destination", opts.Destination,
		"columns_in", len(header),
		"columns_out", len(pipeline.Header()),
		"reader_dialect", readerDialect.Name,
		"writer_dialect", writerDialect.Name,
	)

	values, line := firstValues, firstLine
	for {
		report.LinesTotal++
		decision, rows := pipeline.Process(NewRecord(header, values, line))
		if decision == Keep {
			for _, rec := range rows {
				if err := writer.Write(rec.Values(pipeline.Header())); err != nil {
					return nil, fmt.Errorf("write line %d: %w", line, err)
				}
				report.LinesWritten++
			}
		}

		if report.LinesTotal%ContextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("parsing cancelled at line %d: %w", line, err)
			}
		}
		if report.LinesTotal%ProgressInterval == 0 {
			logger.Info("parsing progress", "lines", report.LinesTotal, "percent", counter.Progress())
		}

		values, line, err = reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", opts.Source, err)
		}
	}

	if err := writer.Flush(); err != nil {
		return nil, fmt.Errorf("flush destination: %w", err)
	}

	report.Elapsed = time.Since(started)
	logger.Info("parsing finished",
		"lines", report.LinesTotal,
		"written", report.LinesWritten,
		"removed", report.LinesRemovedTotal,
		"elapsed", report.Elapsed,
	)
	return report, nil
}
