// Package total реализует HTTP-обработчик подсчёта комиксов в каталоге.
package total

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/comic-platform/internal/http/response"
	"github.com/magabrotheeeer/comic-platform/internal/lib/sl"
)

// Handler управляет HTTP-запросами на подсчёт комиксов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики подсчёта.
type Service interface {
	Total(ctx context.Context) (int, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP возвращает общее число комиксов.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.comic.total"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	total, err := h.service.Total(r.Context())
	if err != nil {
		log.Error("failed to count comics", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not count comics"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"total": total,
	}))
}
