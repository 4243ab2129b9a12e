// Package list реализует HTTP-обработчик каталога комиксов с фильтрами,
// сортировкой и пагинацией.
//
// Handler разбирает query-параметры, валидирует их, преобразует в фильтр
// слоя данных и возвращает страницу каталога вместе с числом страниц.
package list

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/comic-platform/internal/http/response"
	"github.com/magabrotheeeer/comic-platform/internal/lib/sl"
	"github.com/magabrotheeeer/comic-platform/internal/models"
)

// Handler управляет HTTP-запросами на выборку каталога.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики каталога.
type Service interface {
	List(ctx context.Context, filter models.ComicFilter) ([]*models.Comic, int, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

var errBadParam = errors.New("bad query parameter")

// ServeHTTP godoc
// @Summary Каталог комиксов
// @Description Возвращает страницу каталога. Поддерживает поиск по названию и автору, фильтры по жанрам, премиальности, рейтингу, лайкам и дате, сортировку и пагинацию.
// @Tags Comics
// @Produce  json
// @Param page query int false "Номер страницы, с единицы"
// @Param limit query int false "Размер страницы, 1..100"
// @Param search query string false "Подстрока в названии или авторе"
// @Param exact query bool false "Точное совпадение поиска"
// @Param genres query string false "Жанры через запятую"
// @Param match_all query bool false "Требовать все перечисленные жанры"
// @Param premium query bool false "Только премиальные или только бесплатные"
// @Param min_rating query number false "Нижний порог среднего рейтинга"
// @Param min_likes query int false "Нижний порог числа лайков"
// @Param created_after query string false "Нижняя граница даты создания, RFC 3339"
// @Param sort_by query string false "createdAt, title, author, averageRating или likesCount"
// @Param sort_order query string false "asc или desc"
// @Success 200 {object} response.Response "Страница каталога"
// @Failure 400 {object} response.ErrorResponse "Некорректный параметр"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /comics [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.comic.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	dummy, err := parseQuery(r)
	if err != nil {
		log.Error("failed to parse query", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error(err.Error()))
		return
	}

	if err := h.validate.Struct(dummy); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	filter, err := buildFilter(dummy)
	if err != nil {
		log.Error("failed to build filter", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error(err.Error()))
		return
	}

	comics, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		log.Error("failed to list comics", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list comics"))
		return
	}

	totalPages := (total + dummy.Limit - 1) / dummy.Limit

	log.Info("comics listed", slog.Int("count", len(comics)), slog.Int("total", total))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"comics":      comics,
		"page":        dummy.Page,
		"limit":       dummy.Limit,
		"total":       total,
		"total_pages": totalPages,
	}))
}

func parseQuery(r *http.Request) (models.DummyComicFilter, error) {
	q := r.URL.Query()
	dummy := models.DummyComicFilter{
		Page:         1,
		Limit:        20,
		Search:       q.Get("search"),
		Genres:       q.Get("genres"),
		Premium:      q.Get("premium"),
		MinRating:    q.Get("min_rating"),
		MinLikes:     q.Get("min_likes"),
		CreatedAfter: q.Get("created_after"),
		SortBy:       q.Get("sort_by"),
		SortOrder:    q.Get("sort_order"),
	}

	var err error
	if raw := q.Get("page"); raw != "" {
		if dummy.Page, err = strconv.Atoi(raw); err != nil {
			return dummy, errors.Join(errBadParam, errors.New("page must be a number"))
		}
	}
	if raw := q.Get("limit"); raw != "" {
		if dummy.Limit, err = strconv.Atoi(raw); err != nil {
			return dummy, errors.Join(errBadParam, errors.New("limit must be a number"))
		}
	}
	if raw := q.Get("exact"); raw != "" {
		if dummy.ExactMatch, err = strconv.ParseBool(raw); err != nil {
			return dummy, errors.Join(errBadParam, errors.New("exact must be a boolean"))
		}
	}
	if raw := q.Get("match_all"); raw != "" {
		if dummy.MatchAll, err = strconv.ParseBool(raw); err != nil {
			return dummy, errors.Join(errBadParam, errors.New("match_all must be a boolean"))
		}
	}
	return dummy, nil
}

func buildFilter(dummy models.DummyComicFilter) (models.ComicFilter, error) {
	filter := models.ComicFilter{
		Search:     dummy.Search,
		ExactMatch: dummy.ExactMatch,
		MatchAll:   dummy.MatchAll,
		SortBy:     dummy.SortBy,
		SortDesc:   dummy.SortOrder == "desc",
		Limit:      dummy.Limit,
		Offset:     (dummy.Page - 1) * dummy.Limit,
	}
	if filter.SortBy == "" {
		filter.SortBy = models.SortCreatedAt
		filter.SortDesc = dummy.SortOrder != "asc"
	}

	if dummy.Genres != "" {
		for _, genre := range strings.Split(dummy.Genres, ",") {
			genre = strings.TrimSpace(genre)
			if !models.IsKnownGenre(genre) {
				return filter, errors.New("unknown genre: " + genre)
			}
			filter.Genres = append(filter.Genres, genre)
		}
	}
	if dummy.Premium != "" {
		premium := dummy.Premium == "true"
		filter.Premium = &premium
	}
	if dummy.MinRating != "" {
		v, err := strconv.ParseFloat(dummy.MinRating, 64)
		if err != nil || v < 0 || v > 5 {
			return filter, errors.New("min_rating must be a number between 0 and 5")
		}
		filter.MinRating = &v
	}
	if dummy.MinLikes != "" {
		v, err := strconv.Atoi(dummy.MinLikes)
		if err != nil || v < 0 {
			return filter, errors.New("min_likes must be a non-negative number")
		}
		filter.MinLikes = &v
	}
	if dummy.CreatedAfter != "" {
		t, err := time.Parse(time.RFC3339, dummy.CreatedAfter)
		if err != nil {
			return filter, errors.New("created_after must be an RFC 3339 timestamp")
		}
		filter.CreatedAfter = &t
	}
	return filter, nil
}
