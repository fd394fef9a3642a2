// Package byanalysis реализует HTTP-обработчик получения рецепта по идентификатору анализа.
package byanalysis

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/leafcare-backend/internal/http/middlewarectx"
	"github.com/magabrotheeeer/leafcare-backend/internal/http/response"
	"github.com/magabrotheeeer/leafcare-backend/internal/lib/sl"
	"github.com/magabrotheeeer/leafcare-backend/internal/models"
	"github.com/magabrotheeeer/leafcare-backend/internal/storage/repository"
)

// Handler обрабатывает запросы рецепта для анализа.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис рецептов
}

// Service описывает интерфейс чтения рецепта по анализу.
type Service interface {
	GetByAnalysisID(ctx context.Context, analysisID int, userUID string) (*models.Prescription, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Рецепт по анализу
// @Description Возвращает рецепт, сгенерированный для указанного анализа.
// @Tags Prescriptions
// @Produce  json
// @Security BearerAuth
// @Param analysis_id path int true "Идентификатор анализа"
// @Success 200 {object} map[string]any "Данные рецепта"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Рецепт не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /prescriptions/by-analysis/{analysis_id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.prescription.byanalysis"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	analysisID, err := strconv.Atoi(chi.URLParam(r, "analysis_id"))
	if err != nil {
		log.Error("failed to decode analysis id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid analysis id"))
		return
	}

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	res, err := h.service.GetByAnalysisID(r.Context(), analysisID, userUID)
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
