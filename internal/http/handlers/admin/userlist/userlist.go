// Package userlist реализует HTTP-обработчик списка пользователей
// для администратора.
package userlist

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/comic-platform/internal/http/response"
	"github.com/magabrotheeeer/comic-platform/internal/lib/sl"
	"github.com/magabrotheeeer/comic-platform/internal/models"
)

// Handler управляет HTTP-запросами на список пользователей.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики списка пользователей.
type Service interface {
	ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP возвращает страницу пользователей. Параметры limit и page
// читаются из query: limit в пределах 1..100, страницы с единицы.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.userlist"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

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

	users, err := h.service.ListUsers(r.Context(), limit, (page-1)*limit)
	if err != nil {
		log.Error("failed to list users", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list users"))
		return
	}

	log.Info("users listed", slog.Int("count", len(users)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"users": users,
		"page":  page,
		"limit": limit,
	}))
}
