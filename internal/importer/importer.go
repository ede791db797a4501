// Package importer bulk-loads the MovieLens CSV files into the catalog.
//
// Rows are buffered and written in batches; each batch is one transaction
// with duplicates ignored, so re-running an import is a no-op for rows that
// already exist. A batch is flushed whenever the processed row count
// (skipped rows included) reaches a multiple of the batch size, and once
// more at end of input.
package importer

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Clark-Hu/movielens-catalog/internal/logging"
	"github.com/Clark-Hu/movielens-catalog/internal/metrics"
	"github.com/Clark-Hu/movielens-catalog/internal/repository"
)

// Kind names a MovieLens input file.
type Kind string

const (
	KindMovies  Kind = "movies"
	KindRatings Kind = "ratings"
	KindTags    Kind = "tags"
)

// Default batch sizes per kind.
const (
	DefaultMovieBatchSize  = 1000
	DefaultRatingBatchSize = 500000
	DefaultTagBatchSize    = 500000
)

// Stats summarises one import run.
type Stats struct {
	RowsProcessed int64
	Queued        int64
	Inserted      int64
	Skipped       int64
	Batches       int
}

// Importer loads CSV streams through the repositories.
type Importer struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// New builds an Importer. A nil logger discards output.
func New(repo *repository.Repository, logger *zap.Logger) *Importer {
	return &Importer{
		repo:   repo,
		logger: logging.Component(logger, "importer"),
	}
}

// ImportFile opens path and dispatches on kind.
func (im *Importer) ImportFile(ctx context.Context, kind Kind, path string, batchSize int) (Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return Stats{}, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	im.logger.Info("import started", zap.String(logging.FieldType, string(kind)), zap.String("path", path))
	start := time.Now()

	var stats Stats
	switch kind {
	case KindMovies:
		stats, err = im.ImportMovies(ctx, f, batchSize)
	case KindRatings:
		stats, err = im.ImportRatings(ctx, f, batchSize)
	case KindTags:
		stats, err = im.ImportTags(ctx, f, batchSize)
	default:
		return Stats{}, errors.Errorf("unknown import kind %q", kind)
	}
	if err != nil {
		return stats, errors.Wrapf(err, "import %s from %s", kind, path)
	}

	im.logger.Info("import completed",
		zap.String(logging.FieldType, string(kind)),
		zap.Int64("rows_processed", stats.RowsProcessed),
		zap.Int64("inserted", stats.Inserted),
		zap.Int64("skipped", stats.Skipped),
		zap.Duration("elapsed", time.Since(start)),
	)
	return stats, nil
}

// batchRun drives the shared read, buffer and flush loop. parse returns
// ok=false for rows that are skipped without aborting the run.
type batchRun[T any] struct {
	im        *Importer
	kind      Kind
	batchSize int
	parse     func(src *csvSource) (item T, ok bool, err error)
	insert    func(ctx context.Context, tx *repository.Repository, batch []T) (int64, error)
	logger    *zap.Logger
}

func (b batchRun[T]) run(ctx context.Context, src *csvSource) (Stats, error) {
	var stats Stats
	if b.batchSize <= 0 {
		return stats, errors.Errorf("batch size must be positive, got %d", b.batchSize)
	}
	b.logger = b.im.logger.With(
		zap.String(logging.FieldType, string(b.kind)),
		zap.String("run_id", uuid.NewString()),
	)

	batch := make([]T, 0, min(b.batchSize, 10000))
	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		err := src.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return stats, err
		}

		stats.RowsProcessed++
		item, ok, err := b.parse(src)
		if err != nil {
			return stats, err
		}
		if ok {
			batch = append(batch, item)
			stats.Queued++
			metrics.ImportRowsTotal.WithLabelValues(string(b.kind), metrics.OutcomeQueued).Inc()
		} else {
			stats.Skipped++
			metrics.ImportRowsTotal.WithLabelValues(string(b.kind), metrics.OutcomeSkipped).Inc()
		}

		if stats.RowsProcessed%int64(b.batchSize) == 0 {
			if err := b.flush(ctx, batch, &stats); err != nil {
				return stats, err
			}
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		if err := b.flush(ctx, batch, &stats); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

func (b batchRun[T]) flush(ctx context.Context, batch []T, stats *Stats) error {
	if len(batch) == 0 {
		return nil
	}

	start := time.Now()
	var inserted int64
	err := b.im.repo.WithTx(ctx, func(tx *repository.Repository) error {
		var err error
		inserted, err = b.insert(ctx, tx, batch)
		return err
	})
	if err != nil {
		return errors.Wrapf(err, "insert %s batch ending at row %d", b.kind, stats.RowsProcessed)
	}

	elapsed := time.Since(start)
	stats.Inserted += inserted
	stats.Batches++
	metrics.ObserveBatch(string(b.kind), inserted, elapsed)

	b.logger.Info("batch imported",
		zap.Int("batch", stats.Batches),
		zap.Int("size", len(batch)),
		zap.Int64("inserted", inserted),
		zap.Int64("rows_processed", stats.RowsProcessed),
		zap.Duration("elapsed", elapsed),
	)
	return nil
}

// movieLookup memoises movie existence for one run and warns once per
// unknown id.
type movieLookup struct {
	im    *Importer
	kind  Kind
	known map[int64]bool
}

func newMovieLookup(im *Importer, kind Kind) *movieLookup {
	return &movieLookup{im: im, kind: kind, known: make(map[int64]bool)}
}

func (l *movieLookup) exists(ctx context.Context, movieID int64) (bool, error) {
	if ok, cached := l.known[movieID]; cached {
		return ok, nil
	}
	ok, err := l.im.repo.Movies.Exists(ctx, movieID)
	if err != nil {
		return false, errors.Wrapf(err, "look up movie %d", movieID)
	}
	l.known[movieID] = ok
	if !ok {
		l.im.logger.Warn("skipping rows for unknown movie",
			zap.String(logging.FieldType, string(l.kind)),
			zap.Int64("movie_id", movieID),
		)
	}
	return ok, nil
}
