// Package unreadcount реализует HTTP-обработчик счётчика непрочитанных уведомлений.
package unreadcount

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/leafcare-backend/internal/http/middlewarectx"
	"github.com/magabrotheeeer/leafcare-backend/internal/http/response"
	"github.com/magabrotheeeer/leafcare-backend/internal/lib/sl"
)

// Handler обрабатывает запросы счётчика непрочитанных уведомлений.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис уведомлений
}

// Service описывает интерфейс подсчёта непрочитанных уведомлений.
type Service interface {
	UnreadCount(ctx context.Context, userUID string) (int, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Количество непрочитанных уведомлений
// @Tags Notifications
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} map[string]any "Количество непрочитанных уведомлений"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /notifications/unread-count [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.notification.unreadcount"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	count, err := h.service.UnreadCount(r.Context(), userUID)
	if err != nil {
		log.Error("failed to count unread notifications", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not count unread notifications"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"unread_count": count,
	}))
}
