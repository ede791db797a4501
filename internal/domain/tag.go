package domain

import (
	"errors"
	"strings"
	"time"
)

// ErrDuplicateTag is returned when the (user, movie, text) triple exists.
var ErrDuplicateTag = errors.New("domain: duplicate tag")

// Tag is a free-text label a user attached to a movie.
type Tag struct {
	ID        int64
	MovieID   int64
	UserID    int64
	Text      string
	CreatedAt time.Time
}

// ValidateTagText rejects blank or oversized tag texts.
func ValidateTagText(text string) error {
	if strings.TrimSpace(text) == "" {
		return errors.New("text may not be blank")
	}
	if len([]rune(text)) > MaxTitleLength {
		return errors.New("text must be at most 255 characters")
	}
	return nil
}
