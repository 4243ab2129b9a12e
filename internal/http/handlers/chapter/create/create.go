// Package create реализует HTTP-обработчик добавления главы комикса.
//
// Номер главы уникален внутри комикса.
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

// Handler управляет HTTP-запросами на добавление главы.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики добавления главы.
type Service interface {
	Add(ctx context.Context, req models.DummyChapter) (*models.Chapter, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP добавляет главу к существующему комиксу.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.chapter.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyChapter
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

	chapter, err := h.service.Add(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrNotFound):
			log.Error("comic not found", slog.Int("comic_id", req.ComicID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("comic not found"))
		case errors.Is(err, errs.ErrConflict):
			log.Error("chapter number already taken",
				slog.Int("comic_id", req.ComicID), slog.Int("chapter_number", req.ChapterNumber))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("chapter number already taken"))
		default:
			log.Error("failed to create chapter", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not create chapter"))
		}
		return
	}

	log.Info("chapter created", slog.Int("id", chapter.ID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"chapter": chapter,
	}))
}
