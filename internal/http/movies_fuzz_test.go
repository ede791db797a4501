package httpserver

import (
	"net/url"
	"testing"
)

func FuzzBuildMovieFilters(f *testing.F) {
	seeds := []string{
		"genre=Comedy&tag=pixar&ordering=-title",
		"page=abc",
		"page_size=200",
		"tag=%25_%5C",
		"",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, raw string) {
		values, err := url.ParseQuery(raw)
		if err != nil {
			return
		}
		filters, page, err := buildMovieFilters(values, 20, 100)
		if err != nil {
			return
		}
		if filters.Limit < 1 || filters.Limit > 100 {
			t.Fatalf("limit out of range: %d", filters.Limit)
		}
		if page.Number < 1 || filters.Offset < 0 {
			t.Fatalf("invalid paging: %+v", page)
		}
	})
}
