// Package feedbackstatus реализует HTTP-обработчик смены статуса обращения.
package feedbackstatus

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/leafcare-backend/internal/http/response"
	"github.com/magabrotheeeer/leafcare-backend/internal/lib/sl"
	"github.com/magabrotheeeer/leafcare-backend/internal/models"
)

// Handler обрабатывает запросы смены статуса обращения.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Хранилище обращений
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс смены статуса обращения.
type Service interface {
	UpdateFeedbackStatus(ctx context.Context, id int, status string) (int, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Сменить статус обращения
// @Description Переводит обращение в статус new, reviewed или resolved.
// @Tags Admin
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path int true "Идентификатор обращения"
// @Param request body models.DummyFeedbackStatus true "Новый статус"
// @Success 200 {object} map[string]any "Статус изменён"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или ID"
// @Failure 403 {object} response.ErrorResponse "Требуется роль администратора"
// @Failure 404 {object} response.ErrorResponse "Обращение не найдено"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /admin/feedback/{id}/status [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.feedbackstatus"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid feedback id"))
		return
	}

	var req models.DummyFeedbackStatus
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

	updated, err := h.service.UpdateFeedbackStatus(r.Context(), id, req.Status)
	if err != nil {
		log.Error("failed to update feedback status", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not update feedback status"))
		return
	}
	if updated == 0 {
		log.Error("feedback not found", slog.Int("id", id))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("feedback not found"))
		return
	}

	log.Info("feedback status updated", slog.Int("id", id), slog.String("status", req.Status))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"id":     id,
		"status": req.Status,
	}))
}
