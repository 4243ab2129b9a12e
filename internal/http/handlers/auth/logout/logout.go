// Package logout реализует HTTP-обработчик выхода. Токены не хранятся
// на сервере, клиенту достаточно забыть свой JWT.
package logout

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/comic-platform/internal/http/middlewarectx"
	"github.com/magabrotheeeer/comic-platform/internal/http/response"
)

// Handler управляет HTTP-запросами на выход.
type Handler struct {
	log *slog.Logger
}

// New создает новый Handler с переданным логгером.
func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

// ServeHTTP подтверждает выход авторизованного пользователя.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	log.Info("user logged out", slog.String("user_uid", middlewarectx.GetUserUID(r.Context())))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"message": "logged out",
	}))
}
