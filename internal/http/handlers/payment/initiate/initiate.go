// Package initiate реализует HTTP-обработчик создания платежа за
// премиум-подписку.
//
// У пользователя может быть не больше одного незавершённого платежа.
package initiate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/comic-platform/internal/http/middlewarectx"
	"github.com/magabrotheeeer/comic-platform/internal/http/response"
	"github.com/magabrotheeeer/comic-platform/internal/lib/sl"
	"github.com/magabrotheeeer/comic-platform/internal/services/errs"
	"github.com/magabrotheeeer/comic-platform/internal/services/payment"
)

// Handler управляет HTTP-запросами на создание платежа.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики создания платежа.
type Service interface {
	Initiate(ctx context.Context, userUID, planType string) (*payment.InitiateResult, error)
}

// Request тип тарифного плана.
type Request struct {
	PlanType string `json:"plan_type" validate:"required,oneof=monthly quarterly yearly"`
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Создать платёж
// @Description Создает платёж за премиум-подписку у платёжного шлюза и возвращает ссылку для подтверждения.
// @Tags Payments
// @Accept  json
// @Produce  json
// @Param request body Request true "Тип тарифного плана"
// @Success 200 {object} response.Response "Платёж и ссылка подтверждения"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или план"
// @Failure 404 {object} response.ErrorResponse "Тарифный план не настроен"
// @Failure 409 {object} response.ErrorResponse "Уже есть незавершённый платёж"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /payments [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.initiate"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID := middlewarectx.GetUserUID(r.Context())
	if userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

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

	result, err := h.service.Initiate(r.Context(), userUID, req.PlanType)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrInvalidInput):
			log.Error("invalid plan type", slog.String("plan_type", req.PlanType))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(err.Error()))
		case errors.Is(err, errs.ErrNotFound):
			log.Error("plan not configured", slog.String("plan_type", req.PlanType))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("plan not configured"))
		case errors.Is(err, errs.ErrConflict):
			log.Error("payment rejected", slog.String("user_uid", userUID), sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("pending payment or active subscription already exists"))
		default:
			log.Error("failed to initiate payment", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not initiate payment"))
		}
		return
	}

	log.Info("payment initiated",
		slog.String("user_uid", userUID), slog.Int("payment_id", result.Payment.ID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"payment":          result.Payment,
		"confirmation_url": result.ConfirmationURL,
	}))
}
