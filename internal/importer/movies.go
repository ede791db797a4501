package importer

import (
	"context"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/Clark-Hu/movielens-catalog/internal/domain"
	"github.com/Clark-Hu/movielens-catalog/internal/repository"
)

// ImportMovies loads movieId,title,genres rows. Unknown genre tokens are
// dropped; existing movie ids are left untouched. A blank or oversized
// title aborts the run.
func (im *Importer) ImportMovies(ctx context.Context, r io.Reader, batchSize int) (Stats, error) {
	src, err := newCSVSource(r, "movieId", "title", "genres")
	if err != nil {
		return Stats{}, err
	}

	run := batchRun[repository.MovieCreateParams]{
		im:        im,
		kind:      KindMovies,
		batchSize: batchSize,
		parse: func(src *csvSource) (repository.MovieCreateParams, bool, error) {
			id, err := src.int64Field("movieId")
			if err != nil {
				return repository.MovieCreateParams{}, false, err
			}
			title := src.field("title")
			if strings.TrimSpace(title) == "" {
				return repository.MovieCreateParams{}, false, src.errorf("movie %d: blank title", id)
			}
			if n := utf8.RuneCountInString(title); n > domain.MaxTitleLength {
				return repository.MovieCreateParams{}, false, src.errorf("movie %d: title has %d characters, max %d", id, n, domain.MaxTitleLength)
			}
			return repository.MovieCreateParams{
				ID:     id,
				Title:  title,
				Genres: domain.FilterGenres(src.field("genres")),
			}, true, nil
		},
		insert: func(ctx context.Context, tx *repository.Repository, batch []repository.MovieCreateParams) (int64, error) {
			return tx.Movies.BulkInsert(ctx, batch)
		},
	}
	return run.run(ctx, src)
}
