package importer

import (
	"context"
	"io"

	"github.com/Clark-Hu/movielens-catalog/internal/domain"
	"github.com/Clark-Hu/movielens-catalog/internal/repository"
)

// ImportRatings loads userId,movieId,rating,timestamp rows. Rows naming a
// movie that is not in the catalog are skipped; an out of range score
// aborts the run.
func (im *Importer) ImportRatings(ctx context.Context, r io.Reader, batchSize int) (Stats, error) {
	src, err := newCSVSource(r, "userId", "movieId", "rating", "timestamp")
	if err != nil {
		return Stats{}, err
	}
	lookup := newMovieLookup(im, KindRatings)

	run := batchRun[repository.RatingCreateParams]{
		im:        im,
		kind:      KindRatings,
		batchSize: batchSize,
		parse: func(src *csvSource) (repository.RatingCreateParams, bool, error) {
			var params repository.RatingCreateParams
			movieID, err := src.int64Field("movieId")
			if err != nil {
				return params, false, err
			}
			userID, err := src.int64Field("userId")
			if err != nil {
				return params, false, err
			}
			score, err := src.float64Field("rating")
			if err != nil {
				return params, false, err
			}
			if err := domain.ValidateScore(score); err != nil {
				return params, false, src.errorf("%v", err)
			}
			secs, err := src.int64Field("timestamp")
			if err != nil {
				return params, false, err
			}

			ok, err := lookup.exists(ctx, movieID)
			if err != nil || !ok {
				return params, false, err
			}

			at := domain.FromUnix(secs)
			return repository.RatingCreateParams{
				MovieID:   movieID,
				UserID:    userID,
				Value:     score,
				CreatedAt: &at,
			}, true, nil
		},
		insert: func(ctx context.Context, tx *repository.Repository, batch []repository.RatingCreateParams) (int64, error) {
			return tx.Ratings.BulkInsert(ctx, batch)
		},
	}
	return run.run(ctx, src)
}
