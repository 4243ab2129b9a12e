// Package list реализует HTTP-обработчик списка отзывов комикса
// с пагинацией, свежие первыми.
package list

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/comic-platform/internal/http/response"
	"github.com/magabrotheeeer/comic-platform/internal/lib/sl"
	"github.com/magabrotheeeer/comic-platform/internal/models"
	"github.com/magabrotheeeer/comic-platform/internal/services/errs"
)

// Handler управляет HTTP-запросами на список отзывов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики списка отзывов.
type Service interface {
	List(ctx context.Context, comicID, limit, offset int) ([]*models.Review, int, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP возвращает страницу отзывов комикса из URL.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.review.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	comicID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid comic id"))
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > 100 {
			log.Error("invalid limit", slog.String("limit", raw))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("limit must be between 1 and 100"))
			return
		}
		limit = v
	}
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			log.Error("invalid page", slog.String("page", raw))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("page must be a positive number"))
			return
		}
		page = v
	}

	reviews, total, err := h.service.List(r.Context(), comicID, limit, (page-1)*limit)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			log.Error("comic not found", slog.Int("comic_id", comicID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("comic not found"))
			return
		}
		log.Error("failed to list reviews", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list reviews"))
		return
	}

	totalPages := (total + limit - 1) / limit

	log.Info("reviews listed", slog.Int("comic_id", comicID), slog.Int("count", len(reviews)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"reviews":     reviews,
		"page":        page,
		"limit":       limit,
		"total":       total,
		"total_pages": totalPages,
	}))
}
