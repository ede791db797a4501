package httpserver

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleTags(t *testing.T) {
	srv := buildTestServer(t)
	mustCreateMovie(t, srv, `{"movieId":1,"title":"Toy Story (1995)","genres_list":"Comedy"}`)

	rec := doRequest(t, srv, http.MethodPost, "/tags/", `{"userId":15,"movieId":1,"text":"funny","timestamp":"2006-05-17T12:27:08Z"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	tag := decodeBody[tagResponse](t, rec)
	assert.Equal(t, "funny", tag.Text)
	assert.Equal(t, int64(15), tag.UserID)
	assert.Equal(t, int64(1), tag.MovieID)

	t.Run("duplicate", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/tags", `{"userId":15,"movieId":1,"text":"funny"}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decodeBody[validationBody](t, rec).Details, "non_field_errors")
	})

	t.Run("unknown movie", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/tags/", `{"userId":15,"movieId":99,"text":"funny"}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, []string{"Movie not found."}, decodeBody[validationBody](t, rec).Details["movieId"])
	})

	t.Run("blank text", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/tags/", `{"userId":15,"movieId":1,"text":" "}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decodeBody[validationBody](t, rec).Details, "text")
	})

	t.Run("list", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/tags/", `{"userId":16,"movieId":1,"text":"pixar"}`)
		require.Equal(t, http.StatusCreated, rec.Code)

		type listBody struct {
			Count   int64         `json:"count"`
			Next    *string       `json:"next"`
			Results []tagResponse `json:"results"`
		}
		body := decodeBody[listBody](t, doRequest(t, srv, http.MethodGet, "/tags/?page_size=1", ""))
		assert.Equal(t, int64(2), body.Count)
		require.Len(t, body.Results, 1)
		assert.Equal(t, "funny", body.Results[0].Text)
		assert.NotNil(t, body.Next)

		detail := decodeBody[movieResponse](t, doRequest(t, srv, http.MethodGet, "/movies/1/", ""))
		assert.Equal(t, "funny, pixar", detail.Tags)
	})
}
