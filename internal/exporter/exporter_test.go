package exporter

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Clark-Hu/movielens-catalog/internal/domain"
	"github.com/Clark-Hu/movielens-catalog/internal/repository"
	"github.com/Clark-Hu/movielens-catalog/internal/testutil/pgtest"
)

type fakeSource struct {
	movies []domain.Movie
	err    error
}

func (f fakeSource) Each(ctx context.Context, fn func(domain.Movie) error) error {
	for _, m := range f.movies {
		if err := fn(m); err != nil {
			return err
		}
	}
	return f.err
}

func TestExport(t *testing.T) {
	src := fakeSource{movies: []domain.Movie{
		{ID: 1, Title: "Toy Story (1995)"},
		{ID: 11, Title: "American President, The (1995)"},
	}}

	var buf bytes.Buffer
	n, err := New(src, "", nil).Export(context.Background(), &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	want := "movieId,title,link\n" +
		"1,Toy Story (1995),https://movielens.org/movies/1\n" +
		"11,\"American President, The (1995)\",https://movielens.org/movies/11\n"
	assert.Equal(t, want, buf.String())
}

func TestExport_CustomLinkBase(t *testing.T) {
	src := fakeSource{movies: []domain.Movie{{ID: 7, Title: "Sabrina (1995)"}}}

	var buf bytes.Buffer
	_, err := New(src, "http://localhost:8000/", nil).Export(context.Background(), &buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "7,Sabrina (1995),http://localhost:8000/movies/7\n")
}

func TestExport_EmptyCatalog(t *testing.T) {
	var buf bytes.Buffer
	n, err := New(fakeSource{}, "", nil).Export(context.Background(), &buf)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, "movieId,title,link\n", buf.String())
}

func TestExportFile_SourceErrorKeepsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, os.WriteFile(path, []byte("previous"), 0o600))

	src := fakeSource{err: errors.New("connection reset")}
	_, err := New(src, "", nil).ExportFile(context.Background(), path)
	require.Error(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestExportFile_WorldReadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movies_export.csv")
	src := fakeSource{movies: []domain.Movie{{ID: 1, Title: "Toy Story (1995)"}}}

	n, err := New(src, "", nil).ExportFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestExportFile_FromDatabase(t *testing.T) {
	repo := repository.NewWithPool(pgtest.NewPool(t, "movies_test_exporter"))
	ctx := context.Background()

	_, err := repo.Movies.BulkInsert(ctx, []repository.MovieCreateParams{
		{ID: 2, Title: "Jumanji (1995)", Genres: []domain.Genre{domain.GenreFantasy}},
		{ID: 1, Title: "Toy Story (1995)", Genres: []domain.Genre{domain.GenreComedy}},
	})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "movies_export.csv")
	n, err := New(repo.Movies, "", nil).ExportFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "movieId,title,link", lines[0])
	assert.ElementsMatch(t, []string{
		"1,Toy Story (1995),https://movielens.org/movies/1",
		"2,Jumanji (1995),https://movielens.org/movies/2",
	}, lines[1:])
}
