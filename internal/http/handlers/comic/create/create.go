// Package create реализует HTTP-обработчик добавления комикса в каталог.
//
// Handler принимает JSON-запрос с данными комикса, валидирует их, проверяет
// жанры и уникальность пары название+автор и возвращает созданный комикс.
package create

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

// Handler управляет HTTP-запросами на добавление комикса.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики добавления комикса.
type Service interface {
	Add(ctx context.Context, req models.DummyComic) (*models.Comic, error)
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
// @Summary Добавить комикс
// @Description Создаёт комикс. Пара название+автор уникальна, жанры из фиксированного списка.
// @Tags Comics
// @Accept  json
// @Produce  json
// @Param request body models.DummyComic true "Данные комикса"
// @Success 200 {object} response.Response "Созданный комикс"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или жанр"
// @Failure 409 {object} response.ErrorResponse "Комикс уже существует"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /comics [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.comic.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyComic
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

	comic, err := h.service.Add(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrInvalidInput):
			log.Error("invalid comic data", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(err.Error()))
		case errors.Is(err, errs.ErrConflict):
			log.Error("comic already exists", slog.String("title", req.Title))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("comic with this title and author already exists"))
		default:
			log.Error("failed to create comic", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not create comic"))
		}
		return
	}

	log.Info("comic created", slog.Int("id", comic.ID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"comic": comic,
	}))
}
