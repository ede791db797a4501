package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Clark-Hu/movielens-catalog/internal/domain"
	"github.com/Clark-Hu/movielens-catalog/internal/repository"
	"github.com/Clark-Hu/movielens-catalog/internal/validation"
)

const alreadyRatedMessage = "You have already rated this movie."

type movieWriteRequest struct {
	MovieID    *int64  `json:"movieId" validate:"omitempty,min=1"`
	Title      *string `json:"title" validate:"omitempty,notblank,max=255"`
	GenresList *string `json:"genres_list"`
}

type movieResponse struct {
	MovieID       int64    `json:"movieId"`
	Title         string   `json:"title"`
	Genres        string   `json:"genres"`
	Tags          string   `json:"tags"`
	AverageRating *float64 `json:"average_rating"`
	Link          string   `json:"link"`
}

type rateRequest struct {
	UserID    *int64     `json:"userId" validate:"required"`
	Rating    *float64   `json:"rating" validate:"required"`
	Timestamp *time.Time `json:"timestamp"`
}

type ratingResponse struct {
	UserID    int64     `json:"userId"`
	Rating    float64   `json:"rating"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *Server) handleListMovies(w http.ResponseWriter, r *http.Request) {
	filters, page, err := buildMovieFilters(r.URL.Query(), s.cfg.PageSize, s.cfg.MaxPageSize)
	if err != nil {
		s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Invalid page.")
		return
	}

	result, err := s.repo.Movies.List(r.Context(), filters)
	if err != nil {
		s.respondInternal(w, "list movies failed", err)
		return
	}
	if page.beyondLast(result.Total) {
		s.respondError(w, http.StatusNotFound, "NOT_FOUND", "Invalid page.")
		return
	}

	items := make([]movieResponse, 0, len(result.Items))
	for _, movie := range result.Items {
		items = append(items, s.toMovieResponse(movie))
	}
	s.respondJSON(w, http.StatusOK, newPageResponse(r, page, result.Total, items))
}

// buildMovieFilters turns list query parameters into repository filters.
// Only an invalid page number is an error; unknown orderings fall back to
// movie id order.
func buildMovieFilters(query url.Values, defaultSize, maxSize int) (repository.MovieListFilters, pageRequest, error) {
	var filters repository.MovieListFilters

	page, err := parsePage(query, defaultSize, maxSize)
	if err != nil {
		return filters, page, err
	}
	filters.Limit = page.Size
	filters.Offset = page.offset()

	if val := strings.TrimSpace(query.Get("genre")); val != "" {
		genre := domain.Genre(val)
		filters.Genre = &genre
	}
	if val := strings.TrimSpace(query.Get("tag")); val != "" {
		filters.Tag = &val
	}
	filters.OrderBy = parseOrdering(query.Get("ordering"))
	return filters, page, nil
}

func parseOrdering(raw string) repository.MovieOrder {
	for _, field := range strings.Split(raw, ",") {
		switch strings.TrimSpace(field) {
		case "title":
			return repository.OrderByTitle
		case "-title":
			return repository.OrderByTitleDesc
		}
	}
	return repository.OrderByID
}

func (s *Server) handleCreateMovie(w http.ResponseWriter, r *http.Request) {
	var req movieWriteRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	genres, errs := req.validate(true, true)
	if len(errs) > 0 {
		s.respondValidation(w, errs)
		return
	}

	var movie domain.Movie
	err := s.repo.WithTx(r.Context(), func(tx *repository.Repository) error {
		var err error
		movie, err = tx.Movies.Create(r.Context(), repository.MovieCreateParams{
			ID:     *req.MovieID,
			Title:  strings.TrimSpace(*req.Title),
			Genres: genres,
		})
		return err
	})
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			s.respondValidation(w, validation.Single("movieId", "movie with this movieId already exists."))
			return
		}
		s.respondInternal(w, "create movie failed", err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/movies/%d/", movie.ID))
	s.respondJSON(w, http.StatusCreated, s.toMovieResponse(movie))
}

func (s *Server) handleGetMovie(w http.ResponseWriter, r *http.Request) {
	id, ok := movieIDParam(r)
	if !ok {
		s.respondNotFound(w)
		return
	}

	movie, err := s.repo.Movies.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondNotFound(w)
			return
		}
		s.respondInternal(w, "get movie failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, s.toMovieResponse(movie))
}

func (s *Server) handleReplaceMovie(w http.ResponseWriter, r *http.Request) {
	s.updateMovie(w, r, true)
}

func (s *Server) handlePatchMovie(w http.ResponseWriter, r *http.Request) {
	s.updateMovie(w, r, false)
}

// updateMovie serves PUT and PATCH. movieId in the body is accepted but
// ignored; identifiers are never reassigned.
func (s *Server) updateMovie(w http.ResponseWriter, r *http.Request, full bool) {
	id, ok := movieIDParam(r)
	if !ok {
		s.respondNotFound(w)
		return
	}

	var req movieWriteRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}

	genres, errs := req.validate(false, full)
	if len(errs) > 0 {
		s.respondValidation(w, errs)
		return
	}

	var params repository.MovieUpdateParams
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		params.Title = &title
	}
	if req.GenresList != nil {
		params.Genres = &genres
	}

	var movie domain.Movie
	err := s.repo.WithTx(r.Context(), func(tx *repository.Repository) error {
		var err error
		movie, err = tx.Movies.Update(r.Context(), id, params)
		return err
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondNotFound(w)
			return
		}
		s.respondInternal(w, "update movie failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, s.toMovieResponse(movie))
}

func (s *Server) handleDeleteMovie(w http.ResponseWriter, r *http.Request) {
	id, ok := movieIDParam(r)
	if !ok {
		s.respondNotFound(w)
		return
	}

	err := s.repo.WithTx(r.Context(), func(tx *repository.Repository) error {
		return tx.Movies.Delete(r.Context(), id)
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.respondNotFound(w)
			return
		}
		s.respondInternal(w, "delete movie failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRateMovie(w http.ResponseWriter, r *http.Request) {
	id, ok := movieIDParam(r)
	if !ok {
		s.respondNotFound(w)
		return
	}

	exists, err := s.repo.Movies.Exists(r.Context(), id)
	if err != nil {
		s.respondInternal(w, "fetch movie for rating failed", err)
		return
	}
	if !exists {
		s.respondNotFound(w)
		return
	}

	var req rateRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if errs := req.validate(); len(errs) > 0 {
		s.respondValidation(w, errs)
		return
	}

	var rating domain.Rating
	err = s.repo.WithTx(r.Context(), func(tx *repository.Repository) error {
		_, err := tx.Ratings.Get(r.Context(), id, *req.UserID)
		switch {
		case err == nil:
			return domain.ErrAlreadyRated
		case !errors.Is(err, repository.ErrNotFound):
			return err
		}
		rating, err = tx.Ratings.Create(r.Context(), repository.RatingCreateParams{
			MovieID:   id,
			UserID:    *req.UserID,
			Value:     *req.Rating,
			CreatedAt: req.Timestamp,
		})
		if errors.Is(err, repository.ErrConflict) {
			return domain.ErrAlreadyRated
		}
		return err
	})
	switch {
	case errors.Is(err, domain.ErrAlreadyRated):
		s.respondValidation(w, validation.Single(validation.NonFieldErrors, alreadyRatedMessage))
		return
	case errors.Is(err, repository.ErrMovieMissing):
		s.respondNotFound(w)
		return
	case err != nil:
		s.respondInternal(w, "create rating failed", err)
		return
	}

	s.logger.Debug("rating stored", zap.Int64("movie_id", id), zap.Int64("user_id", rating.UserID))
	s.respondJSON(w, http.StatusCreated, ratingResponse{
		UserID:    rating.UserID,
		Rating:    rating.Value,
		Timestamp: rating.CreatedAt.UTC(),
	})
}

// validate checks field shapes and parses genres_list. The required flags
// differ between create, replace and patch.
func (req movieWriteRequest) validate(requireID, requireTitle bool) ([]domain.Genre, validation.FieldErrors) {
	errs := validation.FieldErrors{}
	errs.Merge(validation.Struct(&req))

	if requireID && req.MovieID == nil {
		errs.Add("movieId", "This field is required.")
	}
	if requireTitle && req.Title == nil {
		errs.Add("title", "This field is required.")
	}

	genres := make([]domain.Genre, 0)
	if req.GenresList != nil {
		parsed, err := domain.ParseGenreList(*req.GenresList)
		if err != nil {
			var unknown *domain.UnknownGenreError
			if errors.As(err, &unknown) {
				errs.Add("genres_list", fmt.Sprintf("%q is not a valid choice.", unknown.Value))
			} else {
				errs.Add("genres_list", err.Error())
			}
		} else {
			genres = parsed
		}
	}
	return genres, errs
}

func (req rateRequest) validate() validation.FieldErrors {
	errs := validation.FieldErrors{}
	errs.Merge(validation.Struct(&req))
	if req.Rating != nil {
		if err := domain.ValidateScore(*req.Rating); err != nil {
			errs.Add("rating", fmt.Sprintf("Ensure this value is between %.0f and %.0f.", domain.MinScore, domain.MaxScore))
		}
	}
	return errs
}

func (s *Server) toMovieResponse(movie domain.Movie) movieResponse {
	resp := movieResponse{
		MovieID: movie.ID,
		Title:   movie.Title,
		Genres:  domain.JoinGenres(movie.Genres),
		Tags:    domain.TagSummary(movie.TagTexts),
		Link:    domain.Link(s.cfg.LinkBaseURL, movie.ID),
	}
	if movie.AverageRating != nil {
		avg := domain.RoundAverage(*movie.AverageRating)
		resp.AverageRating = &avg
	}
	return resp
}

func movieIDParam(r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "movieID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
