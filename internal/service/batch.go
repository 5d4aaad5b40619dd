package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"filegate/internal/config"
	"filegate/internal/domain"
	"filegate/internal/filetype"
	"filegate/internal/port"
)

// BatchOptions controls a ParseMany run.
type BatchOptions = domain.BatchOptions

// DefaultBatchOptions returns options seeded from configuration.
func DefaultBatchOptions(cfg config.BatchConfig) BatchOptions {
	return BatchOptions{
		Concurrency:     cfg.Concurrency,
		ContinueOnError: cfg.ContinueOnError,
	}
}

// BatchScheduler runs a RecordParser over many URLs in sequential chunks of
// at most Concurrency concurrent parses.
type BatchScheduler struct {
	parser port.RecordParser
	logger *slog.Logger
}

// NewBatchScheduler creates a new BatchScheduler.
func NewBatchScheduler(parser port.RecordParser, logger *slog.Logger) *BatchScheduler {
	return &BatchScheduler{parser: parser, logger: logger}
}

type settled struct {
	index int
	rec   *domain.ParsedRecord
	err   error
}

// Run parses urls chunk by chunk. A chunk starts only after every parse in
// the previous chunk has settled. A panic or missing record from the parser
// becomes a failed record when ContinueOnError is set and aborts the batch
// otherwise.
func (b *BatchScheduler) Run(ctx context.Context, urls []string, opts BatchOptions) ([]*domain.ParsedRecord, error) {
	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	total := len(urls)
	results := make([]*domain.ParsedRecord, 0, total)
	completed := 0
	start := time.Now()

	b.logger.Info("batch.start", "urls", total, "concurrency", concurrency, "continue_on_error", opts.ContinueOnError)

	for lo := 0; lo < total; lo += concurrency {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		hi := min(lo+concurrency, total)
		chunk := urls[lo:hi]

		g, gctx := errgroup.WithContext(ctx)
		done := make(chan settled, len(chunk))
		for i, u := range chunk {
			g.Go(func() error {
				rec, err := b.parseSafely(gctx, u)
				done <- settled{index: i, rec: rec, err: err}
				if err != nil && !opts.ContinueOnError {
					return err
				}
				return nil
			})
		}

		ordered := make([]*domain.ParsedRecord, len(chunk))
		for range chunk {
			s := <-done
			if s.err != nil {
				if !opts.ContinueOnError {
					err := g.Wait()
					b.logger.Error("batch.aborted", "url", chunk[s.index], "completed", completed, "error", err)
					return nil, err
				}
				b.logger.Warn("batch.item.recovered", "url", chunk[s.index], "error", s.err)
				u := chunk[s.index]
				s.rec = domain.NewFailedRecord(filetype.FileNameFromURL(u), u, domain.CategoryUnknown, s.err.Error())
			}

			completed++
			if opts.OnProgress != nil {
				opts.OnProgress(domain.BatchProgress{Completed: completed, Total: total, Record: s.rec})
			}
			if opts.PreserveOrder {
				ordered[s.index] = s.rec
			} else {
				results = append(results, s.rec)
			}
		}
		_ = g.Wait()

		if opts.PreserveOrder {
			results = append(results, ordered...)
		}
	}

	b.logger.Info("batch.done", "urls", total, "duration_ms", time.Since(start).Milliseconds())
	return results, nil
}

// parseSafely turns a parser panic or nil record into an error.
func (b *BatchScheduler) parseSafely(ctx context.Context, url string) (rec *domain.ParsedRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			rec = nil
			err = fmt.Errorf("parsing %s: panic: %v", url, r)
		}
	}()
	rec = b.parser.ParseOne(ctx, url)
	if rec == nil {
		return nil, fmt.Errorf("parsing %s: parser returned no record", url)
	}
	return rec, nil
}
