// Package markallread реализует HTTP-обработчик отметки всех уведомлений прочитанными.
package markallread

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

// Handler обрабатывает запросы массовой отметки уведомлений.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис уведомлений
}

// Service описывает интерфейс массовой отметки уведомлений.
type Service interface {
	MarkAllRead(ctx context.Context, userUID string) (int, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Отметить все уведомления прочитанными
// @Tags Notifications
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} map[string]any "Количество отмеченных уведомлений"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /notifications/read-all [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.notification.markallread"

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

	updated, err := h.service.MarkAllRead(r.Context(), userUID)
	if err != nil {
		log.Error("failed to mark notifications read", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not mark notifications read"))
		return
	}

	log.Info("notifications marked read", slog.Int("count", updated))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"marked_count": updated,
	}))
}
