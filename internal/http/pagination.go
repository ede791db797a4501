package httpserver

import (
	"errors"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

var errInvalidPage = errors.New("invalid page")

// pageRequest is a 1-based page number and size.
type pageRequest struct {
	Number int
	Size   int
}

func (p pageRequest) offset() int {
	return (p.Number - 1) * p.Size
}

// pageResponse is the list envelope shared by every collection endpoint.
type pageResponse[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// parsePage reads page and page_size. A non-numeric or non-positive page is
// an error; page_size falls back to def and is capped at maxSize.
func parsePage(query url.Values, def, maxSize int) (pageRequest, error) {
	p := pageRequest{Number: 1, Size: def}
	if val := strings.TrimSpace(query.Get("page")); val != "" {
		n, err := strconv.Atoi(val)
		if err != nil || n < 1 {
			return p, errInvalidPage
		}
		p.Number = n
	}
	if val := strings.TrimSpace(query.Get("page_size")); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			p.Size = n
		}
	}
	if p.Size <= 0 {
		p.Size = 20
	}
	if maxSize > 0 && p.Size > maxSize {
		p.Size = maxSize
	}
	if p.Number-1 > math.MaxInt32/p.Size {
		return p, errInvalidPage
	}
	return p, nil
}

// beyondLast reports a page past the end of a non-empty result set.
func (p pageRequest) beyondLast(total int64) bool {
	return p.Number > 1 && int64(p.offset()) >= total
}

func newPageResponse[T any](r *http.Request, p pageRequest, total int64, results []T) pageResponse[T] {
	resp := pageResponse[T]{Count: total, Results: results}
	if int64(p.offset()+p.Size) < total {
		next := pageURL(r, p.Number+1)
		resp.Next = &next
	}
	if p.Number > 1 {
		prev := pageURL(r, p.Number-1)
		resp.Previous = &prev
	}
	return resp
}

// pageURL rebuilds the request URL pointing at another page. Page 1 drops
// the page parameter.
func pageURL(r *http.Request, number int) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	q := r.URL.Query()
	if number <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(number))
	}
	u := url.URL{Scheme: scheme, Host: r.Host, Path: r.URL.Path, RawQuery: q.Encode()}
	return u.String()
}
