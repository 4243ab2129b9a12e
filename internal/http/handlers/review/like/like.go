// Package like реализует HTTP-обработчик переключения лайка на отзыве.
//
// Лайкать собственный отзыв нельзя.
package like

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
	"github.com/magabrotheeeer/comic-platform/internal/services/errs"
)

// Handler управляет HTTP-запросами на лайк отзыва.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики лайков отзывов.
type Service interface {
	ToggleLike(ctx context.Context, reviewID int, userUID string) (bool, int, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP ставит либо снимает лайк текущего пользователя на отзыв.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.review.like"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid review id"))
		return
	}

	userUID := middlewarectx.GetUserUID(r.Context())
	if userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	liked, count, err := h.service.ToggleLike(r.Context(), id, userUID)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrNotFound):
			log.Error("review not found", slog.Int("id", id))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("review not found"))
		case errors.Is(err, errs.ErrForbidden):
			log.Error("self like rejected", slog.Int("id", id))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("cannot like own review"))
		default:
			log.Error("failed to toggle like", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not toggle like"))
		}
		return
	}

	log.Info("review like toggled", slog.Int("id", id), slog.Bool("liked", liked))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"liked":       liked,
		"likes_count": count,
	}))
}
