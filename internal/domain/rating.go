package domain

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Score bounds, inclusive.
const (
	MinScore = 0.0
	MaxScore = 5.0
)

// ErrAlreadyRated is returned when a user rates the same movie twice.
var ErrAlreadyRated = errors.New("domain: user already rated movie")

// Rating represents a single user's rating for a movie.
type Rating struct {
	MovieID   int64
	UserID    int64
	Value     float64
	CreatedAt time.Time
}

// ValidateScore enforces the closed 0..5 score range. NaN is rejected.
func ValidateScore(v float64) error {
	if math.IsNaN(v) || v < MinScore || v > MaxScore {
		return fmt.Errorf("rating must be between %.0f and %.0f", MinScore, MaxScore)
	}
	return nil
}

// FromUnix converts a MovieLens unix timestamp into a UTC instant.
func FromUnix(secs int64) time.Time {
	return time.Unix(secs, 0).UTC()
}
