// Package userrole реализует HTTP-обработчик смены роли пользователя.
//
// Администратор не может снять роль с самого себя.
package userrole

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/comic-platform/internal/http/middlewarectx"
	"github.com/magabrotheeeer/comic-platform/internal/http/response"
	"github.com/magabrotheeeer/comic-platform/internal/lib/sl"
	"github.com/magabrotheeeer/comic-platform/internal/models"
	"github.com/magabrotheeeer/comic-platform/internal/services/errs"
)

// Handler управляет HTTP-запросами на смену роли.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики смены роли.
type Service interface {
	UpdateRole(ctx context.Context, actorUID, targetUID, role string) (*models.User, error)
}

// Request новая роль пользователя.
type Request struct {
	Role string `json:"role" validate:"required,oneof=user admin"`
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP меняет роль пользователя из URL.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.userrole"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	actorUID := middlewarectx.GetUserUID(r.Context())
	targetUID := chi.URLParam(r, "uid")

	user, err := h.service.UpdateRole(r.Context(), actorUID, targetUID, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrForbidden):
			log.Error("self demotion rejected", slog.String("uid", targetUID))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("cannot change own role"))
		case errors.Is(err, errs.ErrNotFound):
			log.Error("user not found", slog.String("uid", targetUID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("user not found"))
		default:
			log.Error("failed to update role", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not update role"))
		}
		return
	}

	log.Info("role updated", slog.String("uid", targetUID), slog.String("role", req.Role))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"user": user,
	}))
}
