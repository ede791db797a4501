package domain

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// DefaultLinkBase is the site movie links point to.
const DefaultLinkBase = "https://movielens.org"

// MaxTitleLength mirrors the column limit on movie titles and tag texts.
const MaxTitleLength = 255

// Movie represents the canonical movie entity in the database/service.
// ID is the external MovieLens identifier and doubles as primary key.
type Movie struct {
	ID     int64
	Title  string
	Genres []Genre

	// Derived on read; empty for freshly written rows.
	TagTexts      []string
	AverageRating *float64
}

// Link builds the external page URL for a movie id.
func Link(base string, id int64) string {
	if base == "" {
		base = DefaultLinkBase
	}
	return fmt.Sprintf("%s/movies/%d", strings.TrimRight(base, "/"), id)
}

// TagSummary returns the distinct tag texts sorted and joined with ", ".
func TagSummary(texts []string) string {
	seen := make(map[string]struct{}, len(texts))
	unique := make([]string, 0, len(texts))
	for _, t := range texts {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		unique = append(unique, t)
	}
	sort.Strings(unique)
	return strings.Join(unique, ", ")
}

// RoundAverage rounds a rating mean to two decimal places.
func RoundAverage(avg float64) float64 {
	return math.Round(avg*100) / 100
}
