package domain

import (
	"fmt"
	"strings"
)

// Genre is one value of the closed MovieLens genre enumeration.
type Genre string

// Known genres. Values match the MovieLens dataset spelling exactly.
const (
	GenreAction      Genre = "Action"
	GenreAdventure   Genre = "Adventure"
	GenreAnimation   Genre = "Animation"
	GenreChildrens   Genre = "Children's"
	GenreComedy      Genre = "Comedy"
	GenreCrime       Genre = "Crime"
	GenreDocumentary Genre = "Documentary"
	GenreDrama       Genre = "Drama"
	GenreFantasy     Genre = "Fantasy"
	GenreFilmNoir    Genre = "Film-Noir"
	GenreHorror      Genre = "Horror"
	GenreMusical     Genre = "Musical"
	GenreMystery     Genre = "Mystery"
	GenreRomance     Genre = "Romance"
	GenreSciFi       Genre = "Sci-Fi"
	GenreThriller    Genre = "Thriller"
	GenreWar         Genre = "War"
	GenreWestern     Genre = "Western"
	GenreNoneListed  Genre = "(no genres listed)"
)

// GenreSeparator joins genres in CSV files and API payloads.
const GenreSeparator = "|"

var knownGenres = map[Genre]struct{}{
	GenreAction: {}, GenreAdventure: {}, GenreAnimation: {}, GenreChildrens: {},
	GenreComedy: {}, GenreCrime: {}, GenreDocumentary: {}, GenreDrama: {},
	GenreFantasy: {}, GenreFilmNoir: {}, GenreHorror: {}, GenreMusical: {},
	GenreMystery: {}, GenreRomance: {}, GenreSciFi: {}, GenreThriller: {},
	GenreWar: {}, GenreWestern: {}, GenreNoneListed: {},
}

// UnknownGenreError reports a genre token outside the enumeration.
type UnknownGenreError struct {
	Value string
}

func (e *UnknownGenreError) Error() string {
	return fmt.Sprintf("%q is not a valid genre", e.Value)
}

// Valid reports whether g belongs to the enumeration.
func (g Genre) Valid() bool {
	_, ok := knownGenres[g]
	return ok
}

// ParseGenre converts s into a Genre. Matching is exact.
func ParseGenre(s string) (Genre, bool) {
	g := Genre(s)
	return g, g.Valid()
}

// FilterGenres splits a pipe-delimited list and keeps only known genres,
// preserving input order. Unknown tokens are dropped without error.
func FilterGenres(raw string) []Genre {
	genres := make([]Genre, 0)
	if raw == "" {
		return genres
	}
	for _, token := range strings.Split(raw, GenreSeparator) {
		if g, ok := ParseGenre(token); ok {
			genres = append(genres, g)
		}
	}
	return genres
}

// ParseGenreList is the strict counterpart of FilterGenres used at the API
// boundary. Surrounding whitespace and double quotes are removed before the
// list is split; the first unknown token is returned as *UnknownGenreError.
func ParseGenreList(raw string) ([]Genre, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), `"`, "")
	genres := make([]Genre, 0)
	if cleaned == "" {
		return genres, nil
	}
	for _, token := range strings.Split(cleaned, GenreSeparator) {
		g, ok := ParseGenre(strings.TrimSpace(token))
		if !ok {
			return nil, &UnknownGenreError{Value: token}
		}
		genres = append(genres, g)
	}
	return genres, nil
}

// JoinGenres renders genres as a pipe-joined string.
func JoinGenres(genres []Genre) string {
	parts := make([]string, len(genres))
	for i, g := range genres {
		parts[i] = string(g)
	}
	return strings.Join(parts, GenreSeparator)
}

// GenreStrings converts genres into plain strings for storage.
func GenreStrings(genres []Genre) []string {
	out := make([]string, len(genres))
	for i, g := range genres {
		out[i] = string(g)
	}
	return out
}

// GenresFromStrings converts stored values back into genres. Values are
// trusted because every write path validates them.
func GenresFromStrings(values []string) []Genre {
	out := make([]Genre, len(values))
	for i, v := range values {
		out[i] = Genre(v)
	}
	return out
}
