// Package content реализует HTTP-обработчик выдачи контента главы.
//
// Премиальный контент доступен только пользователям с активной
// премиум-подпиской; анонимный запрос к нему получает 403.
package content

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/comic-platform/internal/http/middlewarectx"
	"github.com/magabrotheeeer/comic-platform/internal/http/response"
	"github.com/magabrotheeeer/comic-platform/internal/lib/sl"
	"github.com/magabrotheeeer/comic-platform/internal/models"
	"github.com/magabrotheeeer/comic-platform/internal/services/errs"
)

// Handler управляет HTTP-запросами на контент главы.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики выдачи контента.
type Service interface {
	GetContent(ctx context.Context, chapterID int, userUID string) (*models.Chapter, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Контент главы
// @Description Возвращает главу с контентом. Премиальные главы требуют активной премиум-подписки.
// @Tags Chapters
// @Produce  json
// @Param id path int true "ID главы"
// @Success 200 {object} response.Response "Глава с контентом"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 403 {object} response.ErrorResponse "Нужна премиум-подписка"
// @Failure 404 {object} response.ErrorResponse "Глава не найдена"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /chapters/{id}/content [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.chapter.content"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid chapter id"))
		return
	}

	userUID := middlewarectx.GetUserUID(r.Context())

	chapter, err := h.service.GetContent(r.Context(), id, userUID)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrNotFound):
			log.Error("chapter not found", slog.Int("id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("chapter not found"))
		case errors.Is(err, errs.ErrForbidden):
			log.Error("premium subscription required", slog.Int("id", id))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("premium subscription required"))
		default:
			log.Error("failed to get chapter content", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not get chapter content"))
		}
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"chapter": chapter,
	}))
}
