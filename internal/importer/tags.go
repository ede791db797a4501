package importer

import (
	"context"
	"io"

	"github.com/Clark-Hu/movielens-catalog/internal/domain"
	"github.com/Clark-Hu/movielens-catalog/internal/repository"
)

// ImportTags loads userId,movieId,tag,timestamp rows. Unknown movies are
// skipped. Tag text is stored as read; a blank or oversized text aborts
// the run.
func (im *Importer) ImportTags(ctx context.Context, r io.Reader, batchSize int) (Stats, error) {
	src, err := newCSVSource(r, "userId", "movieId", "tag", "timestamp")
	if err != nil {
		return Stats{}, err
	}
	lookup := newMovieLookup(im, KindTags)

	run := batchRun[repository.TagCreateParams]{
		im:        im,
		kind:      KindTags,
		batchSize: batchSize,
		parse: func(src *csvSource) (repository.TagCreateParams, bool, error) {
			var params repository.TagCreateParams
			movieID, err := src.int64Field("movieId")
			if err != nil {
				return params, false, err
			}
			userID, err := src.int64Field("userId")
			if err != nil {
				return params, false, err
			}
			secs, err := src.int64Field("timestamp")
			if err != nil {
				return params, false, err
			}

			text := src.field("tag")
			if err := domain.ValidateTagText(text); err != nil {
				return params, false, src.errorf("movie %d: %v", movieID, err)
			}

			ok, err := lookup.exists(ctx, movieID)
			if err != nil || !ok {
				return params, false, err
			}

			at := domain.FromUnix(secs)
			return repository.TagCreateParams{
				MovieID:   movieID,
				UserID:    userID,
				Text:      text,
				CreatedAt: &at,
			}, true, nil
		},
		insert: func(ctx context.Context, tx *repository.Repository, batch []repository.TagCreateParams) (int64, error) {
			return tx.Tags.BulkInsert(ctx, batch)
		},
	}
	return run.run(ctx, src)
}
