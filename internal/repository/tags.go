package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Clark-Hu/movielens-catalog/internal/domain"
)

// TagsRepository provides helpers for user tags.
type TagsRepository struct {
	db querier
}

// TagCreateParams captures the payload required to store a tag.
// A nil CreatedAt defaults to the database clock.
type TagCreateParams struct {
	MovieID   int64
	UserID    int64
	Text      string
	CreatedAt *time.Time
}

// TagListResult returns one page of tags plus the total count.
type TagListResult struct {
	Items []domain.Tag
	Total int64
}

// Create inserts a tag. A duplicate (user, movie, text) triple yields
// ErrConflict; an unknown movie yields ErrMovieMissing.
func (r *TagsRepository) Create(ctx context.Context, params TagCreateParams) (domain.Tag, error) {
	const query = `
        INSERT INTO tags (movie_id, user_id, text, created_at)
        VALUES ($1, $2, $3, COALESCE($4, now()))
        RETURNING id, movie_id, user_id, text, created_at
    `
	tag, err := scanTag(r.db.QueryRow(ctx, query, params.MovieID, params.UserID, params.Text, params.CreatedAt))
	if err != nil {
		return domain.Tag{}, mapPgError(err)
	}
	return tag, nil
}

// List returns tags ordered by insertion.
func (r *TagsRepository) List(ctx context.Context, limit, offset int) (TagListResult, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM tags`).Scan(&total); err != nil {
		return TagListResult{}, fmt.Errorf("count tags: %w", err)
	}

	const query = `
        SELECT id, movie_id, user_id, text, created_at
        FROM tags
        ORDER BY id
        LIMIT $1 OFFSET $2
    `
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return TagListResult{}, err
	}
	defer rows.Close()

	items := make([]domain.Tag, 0)
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return TagListResult{}, err
		}
		items = append(items, tag)
	}
	if err := rows.Err(); err != nil {
		return TagListResult{}, err
	}
	return TagListResult{Items: items, Total: total}, nil
}

// BulkInsert writes tags in one statement, ignoring duplicate triples.
func (r *TagsRepository) BulkInsert(ctx context.Context, batch []TagCreateParams) (int64, error) {
	if len(batch) == 0 {
		return 0, nil
	}
	movieIDs := make([]int64, len(batch))
	userIDs := make([]int64, len(batch))
	texts := make([]string, len(batch))
	created := make([]time.Time, len(batch))
	for i, p := range batch {
		movieIDs[i] = p.MovieID
		userIDs[i] = p.UserID
		texts[i] = p.Text
		if p.CreatedAt != nil {
			created[i] = *p.CreatedAt
		} else {
			created[i] = time.Now().UTC()
		}
	}

	const query = `
        INSERT INTO tags (movie_id, user_id, text, created_at)
        SELECT * FROM unnest($1::bigint[], $2::bigint[], $3::text[], $4::timestamptz[])
        ON CONFLICT (user_id, movie_id, text) DO NOTHING
    `
	tag, err := r.db.Exec(ctx, query, movieIDs, userIDs, texts, created)
	if err != nil {
		return 0, fmt.Errorf("bulk insert tags: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Count returns the number of stored tags.
func (r *TagsRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM tags`).Scan(&n)
	return n, err
}

func scanTag(row pgx.Row) (domain.Tag, error) {
	var tag domain.Tag
	if err := row.Scan(&tag.ID, &tag.MovieID, &tag.UserID, &tag.Text, &tag.CreatedAt); err != nil {
		return domain.Tag{}, err
	}
	tag.CreatedAt = tag.CreatedAt.UTC()
	return tag, nil
}
