// Package read реализует HTTP-обработчик получения рецепта по публичному номеру.
package read

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/leafcare-backend/internal/http/middlewarectx"
	"github.com/magabrotheeeer/leafcare-backend/internal/http/response"
	"github.com/magabrotheeeer/leafcare-backend/internal/lib/sl"
	"github.com/magabrotheeeer/leafcare-backend/internal/models"
	"github.com/magabrotheeeer/leafcare-backend/internal/storage/repository"
)

// Handler обрабатывает запросы рецепта по номеру.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис рецептов
}

// Service описывает интерфейс чтения рецепта по публичному номеру.
type Service interface {
	GetByPublicID(ctx context.Context, prescriptionID, userUID string) (*models.Prescription, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить рецепт
// @Description Возвращает рецепт текущего пользователя по публичному номеру вида RX-20260901-a1b2c3d4.
// @Tags Prescriptions
// @Produce  json
// @Security BearerAuth
// @Param prescription_id path string true "Публичный номер рецепта"
// @Success 200 {object} map[string]any "Данные рецепта"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Рецепт не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /prescriptions/{prescription_id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.prescription.read"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	prescriptionID := chi.URLParam(r, "prescription_id")
	if prescriptionID == "" {
		log.Error("prescription id is missing in url")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("prescription id is required"))
		return
	}

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	res, err := h.service.GetByPublicID(r.Context(), prescriptionID, userUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Error("prescription not found", sl.Err(err))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("prescription not found"))
			return
		}
		log.Error("failed to read prescription", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read prescription"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"prescription": res,
	}))
}
