package importer

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCSVSource(t *testing.T) {
	src, err := newCSVSource(strings.NewReader("\ufeffmovieId, title ,genres\n1,\"Foo, The (1999)\",Drama\n"), "movieId", "title", "genres")
	require.NoError(t, err)

	require.NoError(t, src.next())
	assert.Equal(t, 2, src.line)
	id, err := src.int64Field("movieId")
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	assert.Equal(t, "Foo, The (1999)", src.field("title"))

	assert.ErrorIs(t, src.next(), io.EOF)
}

func TestNewCSVSource_MissingColumn(t *testing.T) {
	_, err := newCSVSource(strings.NewReader("movieId,title\n"), "movieId", "title", "genres")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"genres"`)
}

func TestNewCSVSource_Empty(t *testing.T) {
	_, err := newCSVSource(strings.NewReader(""), "movieId")
	require.Error(t, err)
}

func TestCSVSource_FieldErrorsNameLine(t *testing.T) {
	src, err := newCSVSource(strings.NewReader("userId,rating\n1,4.0\n2,abc\n"), "userId", "rating")
	require.NoError(t, err)

	require.NoError(t, src.next())
	_, err = src.float64Field("rating")
	require.NoError(t, err)

	require.NoError(t, src.next())
	_, err = src.float64Field("rating")
	require.Error(t, err)
	assert.Equal(t, `line 3: invalid rating "abc"`, err.Error())
}

func TestCSVSource_RaggedRow(t *testing.T) {
	src, err := newCSVSource(strings.NewReader("a,b\n1,2\n3\n"), "a", "b")
	require.NoError(t, err)
	require.NoError(t, src.next())
	assert.Error(t, src.next())
}
