package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterGenres(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []Genre
	}{
		{"empty", "", []Genre{}},
		{"single", "Comedy", []Genre{GenreComedy}},
		{"drops unknown", "Adventure|IMAX|Sci-Fi", []Genre{GenreAdventure, GenreSciFi}},
		{"case sensitive", "comedy|Drama", []Genre{GenreDrama}},
		{"no genres listed", "(no genres listed)", []Genre{GenreNoneListed}},
		{"all unknown", "Foo|Bar", []Genre{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterGenres(tt.raw))
		})
	}
}

func TestParseGenreList(t *testing.T) {
	got, err := ParseGenreList(` "Crime|Drama" `)
	require.NoError(t, err)
	assert.Equal(t, []Genre{GenreCrime, GenreDrama}, got)

	got, err = ParseGenreList("")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = ParseGenreList("Action|Cartoon")
	var unknown *UnknownGenreError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "Cartoon", unknown.Value)
}

func TestGenreValid(t *testing.T) {
	assert.True(t, GenreChildrens.Valid())
	assert.True(t, GenreFilmNoir.Valid())
	assert.False(t, Genre("IMAX").Valid())
	assert.False(t, Genre("").Valid())
}

func TestJoinGenres(t *testing.T) {
	assert.Equal(t, "Action|Comedy", JoinGenres([]Genre{GenreAction, GenreComedy}))
	assert.Equal(t, "", JoinGenres(nil))
	assert.Equal(t, []string{"War"}, GenreStrings([]Genre{GenreWar}))
	assert.Equal(t, []Genre{GenreWar}, GenresFromStrings([]string{"War"}))
}
