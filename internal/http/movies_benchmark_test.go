package httpserver

import (
	"fmt"
	"net/http"
	"testing"
)

func BenchmarkHandleRateMovie(b *testing.B) {
	srv := buildTestServer(b)
	mustCreateMovie(b, srv, `{"movieId":1,"title":"Benchmark Movie","genres_list":"Drama"}`)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rec := doRequest(b, srv, http.MethodPost, "/movies/1/rate/", fmt.Sprintf(`{"userId":%d,"rating":4.0}`, i+1))
		if rec.Code != http.StatusCreated {
			b.Fatalf("unexpected status %d", rec.Code)
		}
	}
}

func BenchmarkHandleListMovies(b *testing.B) {
	srv := buildTestServer(b)
	for i := 1; i <= 50; i++ {
		mustCreateMovie(b, srv, fmt.Sprintf(`{"movieId":%d,"title":"Movie %d","genres_list":"Comedy"}`, i, i))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rec := doRequest(b, srv, http.MethodGet, "/movies/?genre=Comedy&ordering=title", "")
		if rec.Code != http.StatusOK {
			b.Fatalf("unexpected status %d", rec.Code)
		}
	}
}
