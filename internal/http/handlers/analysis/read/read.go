// Package read реализует HTTP-обработчик получения анализа по идентификатору.
package read

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

// Handler обрабатывает запросы отдельного анализа.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис анализа изображений
}

// Service описывает интерфейс чтения анализа по ID.
type Service interface {
	Get(ctx context.Context, id int, userUID string) (*models.Analysis, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить анализ
// @Description Возвращает анализ текущего пользователя по идентификатору.
// @Tags Analysis
// @Produce  json
// @Security BearerAuth
// @Param id path int true "Идентификатор анализа"
// @Success 200 {object} map[string]any "Данные анализа"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Анализ не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /analysis/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.analysis.read"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
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

	res, err := h.service.Get(r.Context(), id, userUID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Error("analysis not found", sl.Err(err))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("analysis not found"))
			return
		}
		log.Error("failed to read analysis", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read analysis"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"analysis": res,
	}))
}
