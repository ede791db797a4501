package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Clark-Hu/movielens-catalog/internal/domain"
)

// RatingsRepository provides helpers for movie ratings.
type RatingsRepository struct {
	db querier
}

// RatingCreateParams captures the payload required to store a rating.
// A nil CreatedAt defaults to the database clock.
type RatingCreateParams struct {
	MovieID   int64
	UserID    int64
	Value     float64
	CreatedAt *time.Time
}

// Create inserts a rating. A second rating by the same user for the same
// movie yields ErrConflict; an unknown movie yields ErrMovieMissing.
func (r *RatingsRepository) Create(ctx context.Context, params RatingCreateParams) (domain.Rating, error) {
	const query = `
        INSERT INTO ratings (movie_id, user_id, rating, created_at)
        VALUES ($1, $2, $3, COALESCE($4, now()))
        RETURNING movie_id, user_id, rating, created_at
    `
	var rating domain.Rating
	err := r.db.QueryRow(ctx, query, params.MovieID, params.UserID, params.Value, params.CreatedAt).Scan(
		&rating.MovieID,
		&rating.UserID,
		&rating.Value,
		&rating.CreatedAt,
	)
	if err != nil {
		return domain.Rating{}, mapPgError(err)
	}
	rating.CreatedAt = rating.CreatedAt.UTC()
	return rating, nil
}

// Get retrieves a rating for a specific user/movie combination.
// It returns ErrNotFound when the user has not rated the movie.
func (r *RatingsRepository) Get(ctx context.Context, movieID, userID int64) (domain.Rating, error) {
	const query = `
        SELECT movie_id, user_id, rating, created_at
        FROM ratings
        WHERE movie_id = $1 AND user_id = $2
    `
	var rating domain.Rating
	err := r.db.QueryRow(ctx, query, movieID, userID).Scan(
		&rating.MovieID,
		&rating.UserID,
		&rating.Value,
		&rating.CreatedAt,
	)
	if err != nil {
		return domain.Rating{}, mapPgError(err)
	}
	rating.CreatedAt = rating.CreatedAt.UTC()
	return rating, nil
}

// BulkInsert writes ratings in one statement, ignoring (user, movie)
// duplicates. Every row must carry CreatedAt.
func (r *RatingsRepository) BulkInsert(ctx context.Context, batch []RatingCreateParams) (int64, error) {
	if len(batch) == 0 {
		return 0, nil
	}
	movieIDs := make([]int64, len(batch))
	userIDs := make([]int64, len(batch))
	values := make([]float64, len(batch))
	created := make([]time.Time, len(batch))
	for i, p := range batch {
		movieIDs[i] = p.MovieID
		userIDs[i] = p.UserID
		values[i] = p.Value
		if p.CreatedAt != nil {
			created[i] = *p.CreatedAt
		} else {
			created[i] = time.Now().UTC()
		}
	}

	const query = `
        INSERT INTO ratings (movie_id, user_id, rating, created_at)
        SELECT * FROM unnest($1::bigint[], $2::bigint[], $3::float8[], $4::timestamptz[])
        ON CONFLICT (user_id, movie_id) DO NOTHING
    `
	tag, err := r.db.Exec(ctx, query, movieIDs, userIDs, values, created)
	if err != nil {
		return 0, fmt.Errorf("bulk insert ratings: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Count returns the number of stored ratings.
func (r *RatingsRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM ratings`).Scan(&n)
	return n, err
}
