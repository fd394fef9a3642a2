// Package feedbacklist реализует HTTP-обработчик списка обращений для администратора.
package feedbacklist

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/leafcare-backend/internal/http/response"
	"github.com/magabrotheeeer/leafcare-backend/internal/lib/sl"
	"github.com/magabrotheeeer/leafcare-backend/internal/models"
)

// Handler обрабатывает запросы списка обращений.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Хранилище обращений
}

// Service описывает интерфейс чтения обращений.
type Service interface {
	ListFeedback(ctx context.Context, status string, limit, offset int) ([]*models.Feedback, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список обращений
// @Description Возвращает обращения пользователей с фильтром по статусу.
// @Tags Admin
// @Produce  json
// @Security BearerAuth
// @Param status query string false "Фильтр по статусу: new, reviewed, resolved"
// @Param limit query int false "Количество записей (по умолчанию 20)"
// @Param offset query int false "Смещение (по умолчанию 0)"
// @Success 200 {object} map[string]any "Список обращений"
// @Failure 403 {object} response.ErrorResponse "Требуется роль администратора"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /admin/feedback [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.feedbacklist"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 20
	}
	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	status := r.URL.Query().Get("status")

	feedback, err := h.service.ListFeedback(r.Context(), status, limit, offset)
	if err != nil {
		log.Error("failed to list feedback", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list feedback"))
		return
	}

	log.Info("feedback listed", slog.Int("count", len(feedback)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"list_count": len(feedback),
		"feedback":   feedback,
	}))
}
