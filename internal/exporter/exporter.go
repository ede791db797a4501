// Package exporter writes the movie catalog to CSV.
package exporter

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Clark-Hu/movielens-catalog/internal/domain"
	"github.com/Clark-Hu/movielens-catalog/internal/logging"
	"github.com/Clark-Hu/movielens-catalog/internal/metrics"
)

// DefaultOutput is the file written when no path is given.
const DefaultOutput = "movies_export.csv"

var header = []string{"movieId", "title", "link"}

// MovieSource streams every movie in storage order.
type MovieSource interface {
	Each(ctx context.Context, fn func(domain.Movie) error) error
}

// Exporter renders movies as movieId,title,link rows.
type Exporter struct {
	movies   MovieSource
	linkBase string
	logger   *zap.Logger
}

// New builds an Exporter. An empty linkBase uses domain.DefaultLinkBase.
func New(movies MovieSource, linkBase string, logger *zap.Logger) *Exporter {
	return &Exporter{
		movies:   movies,
		linkBase: linkBase,
		logger:   logging.Component(logger, "exporter"),
	}
}

// Export writes the header and one row per movie to w and returns the
// number of movies written.
func (e *Exporter) Export(ctx context.Context, w io.Writer) (int64, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return 0, errors.Wrap(err, "write header")
	}

	var n int64
	err := e.movies.Each(ctx, func(m domain.Movie) error {
		row := []string{strconv.FormatInt(m.ID, 10), m.Title, domain.Link(e.linkBase, m.ID)}
		if err := cw.Write(row); err != nil {
			return errors.Wrapf(err, "write movie %d", m.ID)
		}
		n++
		metrics.ExportRowsTotal.Inc()
		return nil
	})
	if err != nil {
		return n, err
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return n, errors.Wrap(err, "flush csv")
	}
	return n, nil
}

// outputMode is applied to the finished export; os.CreateTemp creates 0600.
const outputMode os.FileMode = 0o644

// ExportFile writes the catalog to path. Output goes to a sibling
// temporary file that replaces path only on success.
func (e *Exporter) ExportFile(ctx context.Context, path string) (int64, error) {
	if path == "" {
		path = DefaultOutput
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return 0, errors.Wrapf(err, "create temp file for %s", path)
	}
	defer os.Remove(tmp.Name())

	e.logger.Info("export started", zap.String("path", path))
	n, err := e.Export(ctx, tmp)
	if err != nil {
		_ = tmp.Close()
		return n, err
	}
	if err := tmp.Chmod(outputMode); err != nil {
		_ = tmp.Close()
		return n, errors.Wrapf(err, "chmod %s", tmp.Name())
	}
	if err := tmp.Close(); err != nil {
		return n, errors.Wrapf(err, "close %s", tmp.Name())
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return n, errors.Wrapf(err, "rename to %s", path)
	}

	e.logger.Info("export completed", zap.String("path", path), zap.Int64("movies", n))
	return n, nil
}
