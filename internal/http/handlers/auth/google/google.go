// Package google реализует HTTP-обработчик входа через Google Sign-In.
package google

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/comic-platform/internal/http/response"
	"github.com/magabrotheeeer/comic-platform/internal/lib/sl"
	"github.com/magabrotheeeer/comic-platform/internal/models"
	"github.com/magabrotheeeer/comic-platform/internal/services/errs"
)

// Handler управляет HTTP-запросами на вход через Google.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики входа через Google.
type Service interface {
	GoogleAuth(ctx context.Context, idToken string) (string, *models.User, error)
}

// Request ID-токен, полученный клиентом от Google.
type Request struct {
	IDToken string `json:"id_token" validate:"required"`
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP проверяет ID-токен Google и возвращает JWT.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.google"
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

	token, user, err := h.service.GoogleAuth(r.Context(), req.IDToken)
	if err != nil {
		if errors.Is(err, errs.ErrInvalidToken) {
			log.Error("invalid google token")
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error("invalid google token"))
			return
		}
		log.Error("failed to authenticate with google", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not authenticate with google"))
		return
	}

	log.Info("user authenticated with google", slog.String("user_uid", user.UID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"token": token,
		"user":  user,
	}))
}
