package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/Clark-Hu/movielens-catalog/internal/domain"
)

// MoviesRepository provides persistence helpers for movie entities.
type MoviesRepository struct {
	db querier
}

// movieColumns selects a movie together with its derived tag texts and
// rating mean.
const movieColumns = `
    m.movie_id,
    m.title,
    m.genres,
    COALESCE((SELECT array_agg(DISTINCT t.text) FROM tags t WHERE t.movie_id = m.movie_id), '{}') AS tag_texts,
    (SELECT AVG(r.rating) FROM ratings r WHERE r.movie_id = m.movie_id) AS average_rating
`

// MovieCreateParams bundles the fields required to create a movie.
type MovieCreateParams struct {
	ID     int64
	Title  string
	Genres []domain.Genre
}

// MovieUpdateParams carries optional replacements; nil fields are untouched.
type MovieUpdateParams struct {
	Title  *string
	Genres *[]domain.Genre
}

// MovieOrder selects the list ordering.
type MovieOrder int

// Supported orderings.
const (
	OrderByID MovieOrder = iota
	OrderByTitle
	OrderByTitleDesc
)

// MovieListFilters encapsulates filtering and pagination options.
type MovieListFilters struct {
	Genre   *domain.Genre
	Tag     *string
	OrderBy MovieOrder
	Limit   int
	Offset  int
}

// MovieListResult returns one page plus the total match count.
type MovieListResult struct {
	Items []domain.Movie
	Total int64
}

// Create inserts a new movie row and returns the stored entity.
func (r *MoviesRepository) Create(ctx context.Context, params MovieCreateParams) (domain.Movie, error) {
	const query = `
        INSERT INTO movies (movie_id, title, genres)
        VALUES ($1, $2, $3)
        RETURNING movie_id, title, genres
    `
	var (
		movie  domain.Movie
		genres []string
	)
	err := r.db.QueryRow(ctx, query, params.ID, params.Title, domain.GenreStrings(params.Genres)).
		Scan(&movie.ID, &movie.Title, &genres)
	if err != nil {
		return domain.Movie{}, mapPgError(err)
	}
	movie.Genres = domain.GenresFromStrings(genres)
	movie.TagTexts = []string{}
	return movie, nil
}

// GetByID fetches a movie by its external identifier.
func (r *MoviesRepository) GetByID(ctx context.Context, id int64) (domain.Movie, error) {
	query := fmt.Sprintf(`SELECT %s FROM movies m WHERE m.movie_id = $1`, movieColumns)
	movie, err := scanMovie(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return domain.Movie{}, mapPgError(err)
	}
	return movie, nil
}

// Exists reports whether a movie with the identifier is stored.
func (r *MoviesRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM movies WHERE movie_id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// Update replaces the provided fields and returns the refreshed movie.
func (r *MoviesRepository) Update(ctx context.Context, id int64, params MovieUpdateParams) (domain.Movie, error) {
	var genres []string
	if params.Genres != nil {
		genres = domain.GenreStrings(*params.Genres)
	}

	const query = `
        UPDATE movies
        SET title = COALESCE($2, title),
            genres = COALESCE($3, genres)
        WHERE movie_id = $1
    `
	tag, err := r.db.Exec(ctx, query, id, params.Title, genres)
	if err != nil {
		return domain.Movie{}, mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.Movie{}, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

// Delete removes a movie; ratings and tags cascade.
func (r *MoviesRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM movies WHERE movie_id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns movies that match the provided filters.
func (r *MoviesRepository) List(ctx context.Context, filters MovieListFilters) (MovieListResult, error) {
	if filters.Limit <= 0 {
		filters.Limit = 20
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}

	where := make([]string, 0)
	args := make([]interface{}, 0)
	arg := func(value interface{}) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	if filters.Genre != nil {
		where = append(where, fmt.Sprintf("%s = ANY(m.genres)", arg(string(*filters.Genre))))
	}
	if filters.Tag != nil && *filters.Tag != "" {
		where = append(where, fmt.Sprintf(
			`EXISTS (SELECT 1 FROM tags t WHERE t.movie_id = m.movie_id AND t.text ILIKE %s ESCAPE '\')`,
			arg(containsPattern(*filters.Tag))))
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM movies m"+whereClause, args...).Scan(&total); err != nil {
		return MovieListResult{}, fmt.Errorf("count movies: %w", err)
	}

	queryBuilder := strings.Builder{}
	queryBuilder.WriteString("SELECT ")
	queryBuilder.WriteString(movieColumns)
	queryBuilder.WriteString(" FROM movies m")
	queryBuilder.WriteString(whereClause)
	queryBuilder.WriteString(" ORDER BY ")
	queryBuilder.WriteString(orderClause(filters.OrderBy))
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", filters.Limit, filters.Offset))

	rows, err := r.db.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return MovieListResult{}, err
	}
	defer rows.Close()

	items := make([]domain.Movie, 0)
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return MovieListResult{}, err
		}
		items = append(items, movie)
	}
	if err := rows.Err(); err != nil {
		return MovieListResult{}, err
	}

	return MovieListResult{Items: items, Total: total}, nil
}

// Each streams every movie in storage order without derived fields.
func (r *MoviesRepository) Each(ctx context.Context, fn func(domain.Movie) error) error {
	rows, err := r.db.Query(ctx, `SELECT movie_id, title, genres FROM movies`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			movie  domain.Movie
			genres []string
		)
		if err := rows.Scan(&movie.ID, &movie.Title, &genres); err != nil {
			return err
		}
		movie.Genres = domain.GenresFromStrings(genres)
		if err := fn(movie); err != nil {
			return err
		}
	}
	return rows.Err()
}

// BulkInsert writes movies in one statement, skipping ids that already
// exist. It returns the number of rows actually inserted.
func (r *MoviesRepository) BulkInsert(ctx context.Context, batch []MovieCreateParams) (int64, error) {
	if len(batch) == 0 {
		return 0, nil
	}
	ids := make([]int64, len(batch))
	titles := make([]string, len(batch))
	genres := make([]string, len(batch))
	for i, m := range batch {
		ids[i] = m.ID
		titles[i] = m.Title
		genres[i] = domain.JoinGenres(m.Genres)
	}

	const query = `
        INSERT INTO movies (movie_id, title, genres)
        SELECT b.movie_id, b.title, string_to_array(b.genres, '|')
        FROM unnest($1::bigint[], $2::text[], $3::text[]) AS b(movie_id, title, genres)
        ON CONFLICT (movie_id) DO NOTHING
    `
	tag, err := r.db.Exec(ctx, query, ids, titles, genres)
	if err != nil {
		return 0, fmt.Errorf("bulk insert movies: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Count returns the number of stored movies.
func (r *MoviesRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM movies`).Scan(&n)
	return n, err
}

func orderClause(order MovieOrder) string {
	switch order {
	case OrderByTitle:
		return "m.title ASC, m.movie_id ASC"
	case OrderByTitleDesc:
		return "m.title DESC, m.movie_id ASC"
	default:
		return "m.movie_id ASC"
	}
}

func scanMovie(row pgx.Row) (domain.Movie, error) {
	var (
		movie    domain.Movie
		genres   []string
		tagTexts []string
		average  *float64
	)

	err := row.Scan(
		&movie.ID,
		&movie.Title,
		&genres,
		&tagTexts,
		&average,
	)
	if err != nil {
		return domain.Movie{}, err
	}

	movie.Genres = domain.GenresFromStrings(genres)
	movie.TagTexts = tagTexts
	if average != nil {
		rounded := domain.RoundAverage(*average)
		movie.AverageRating = &rounded
	}
	return movie, nil
}
