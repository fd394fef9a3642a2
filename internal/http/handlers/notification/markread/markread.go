// Package markread реализует HTTP-обработчик отметки уведомления прочитанным.
package markread

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/leafcare-backend/internal/http/middlewarectx"
	"github.com/magabrotheeeer/leafcare-backend/internal/http/response"
	"github.com/magabrotheeeer/leafcare-backend/internal/lib/sl"
)

// Handler обрабатывает запросы отметки уведомлений.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис уведомлений
}

// Service описывает интерфейс отметки уведомления прочитанным.
type Service interface {
	MarkRead(ctx context.Context, id int, userUID string) (int, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Отметить уведомление прочитанным
// @Tags Notifications
// @Produce  json
// @Security BearerAuth
// @Param id path int true "Идентификатор уведомления"
// @Success 200 {object} map[string]any "Уведомление отмечено"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Уведомление не найдено"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /notifications/{id}/read [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.notification.markread"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid notification id"))
		return
	}

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	updated, err := h.service.MarkRead(r.Context(), id, userUID)
	if err != nil {
		log.Error("failed to mark notification read", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not mark notification read"))
		return
	}
	if updated == 0 {
		log.Error("notification not found", slog.Int("id", id))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("notification not found"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"read": true,
	}))
}
