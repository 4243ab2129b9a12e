// Package premiumcount реализует HTTP-обработчик подсчёта
// премиум-пользователей для администратора.
package premiumcount

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/comic-platform/internal/http/response"
	"github.com/magabrotheeeer/comic-platform/internal/lib/sl"
)

// Handler управляет HTTP-запросами на подсчёт премиум-пользователей.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики подсчёта.
type Service interface {
	CountPremiumUsers(ctx context.Context) (int, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP возвращает число пользователей с премиум-планом.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.premiumcount"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	count, err := h.service.CountPremiumUsers(r.Context())
	if err != nil {
		log.Error("failed to count premium users", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not count premium users"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"premium_users": count,
	}))
}
