package httpserver

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Clark-Hu/movielens-catalog/internal/domain"
	"github.com/Clark-Hu/movielens-catalog/internal/repository"
	"github.com/Clark-Hu/movielens-catalog/internal/validation"
)

const duplicateTagMessage = "The fields userId, movieId, text must make a unique set."

type tagCreateRequest struct {
	UserID    *int64     `json:"userId" validate:"required"`
	MovieID   *int64     `json:"movieId" validate:"required"`
	Text      *string    `json:"text" validate:"required,notblank,max=255"`
	Timestamp *time.Time `json:"timestamp"`
}

type tagResponse struct {
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
	UserID    int64     `json:"userId"`
	MovieID   int64     `json:"movieId"`
}

func (s *Server) handleListTags(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r.URL.Query(), s.cfg.PageSize, s.cfg.MaxPageSize)
	if err != nil {
		s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Invalid page.")
		return
	}

	result, err := s.repo.Tags.List(r.Context(), page.Size, page.offset())
	if err != nil {
		s.respondInternal(w, "list tags failed", err)
		return
	}
	if page.beyondLast(result.Total) {
		s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Invalid page.")
		return
	}

	items := make([]tagResponse, 0, len(result.Items))
	for _, tag := range result.Items {
		items = append(items, toTagResponse(tag))
	}
	s.respondJSON(w, http.StatusOK, newPageResponse(r, page, result.Total, items))
}

func (s *Server) handleCreateTag(w http.ResponseWriter, r *http.Request) {
	var req tagCreateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if errs := validation.Struct(&req); errs != nil {
		s.respondValidation(w, errs)
		return
	}

	text := strings.TrimSpace(*req.Text)
	if err := domain.ValidateTagText(text); err != nil {
		s.respondValidation(w, validation.Single("text", err.Error()))
		return
	}

	var tag domain.Tag
	err := s.repo.WithTx(r.Context(), func(tx *repository.Repository) error {
		exists, err := tx.Movies.Exists(r.Context(), *req.MovieID)
		if err != nil {
			return err
		}
		if !exists {
			return repository.ErrMovieMissing
		}
		tag, err = tx.Tags.Create(r.Context(), repository.TagCreateParams{
			MovieID:   *req.MovieID,
			UserID:    *req.UserID,
			Text:      text,
			CreatedAt: req.Timestamp,
		})
		if errors.Is(err, repository.ErrConflict) {
			return domain.ErrDuplicateTag
		}
		return err
	})
	switch {
	case errors.Is(err, repository.ErrMovieMissing):
		s.respondValidation(w, validation.Single("movieId", "Movie not found."))
		return
	case errors.Is(err, domain.ErrDuplicateTag):
		s.respondValidation(w, validation.Single(validation.NonFieldErrors, duplicateTagMessage))
		return
	case err != nil:
		s.respondInternal(w, "create tag failed", err)
		return
	}

	s.respondJSON(w, http.StatusCreated, toTagResponse(tag))
}

func toTagResponse(tag domain.Tag) tagResponse {
	return tagResponse{
		Text:      tag.Text,
		Timestamp: tag.CreatedAt.UTC(),
		UserID:    tag.UserID,
		MovieID:   tag.MovieID,
	}
}
