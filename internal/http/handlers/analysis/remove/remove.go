// Package remove реализует HTTP-обработчик удаления анализа из истории.
package remove

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

// Handler обрабатывает запросы удаления анализа.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис анализа изображений
}

// Service описывает интерфейс удаления анализа.
type Service interface {
	Delete(ctx context.Context, id int, userUID string) (int, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Удалить анализ
// @Description Удаляет анализ текущего пользователя вместе со связанным рецептом.
// @Tags Analysis
// @Produce  json
// @Security BearerAuth
// @Param id path int true "Идентификатор анализа"
// @Success 200 {object} map[string]any "Количество удаленных записей"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Анализ не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /analysis/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.analysis.remove"

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

	removed, err := h.service.Delete(r.Context(), id, userUID)
	if err != nil {
		log.Error("failed to remove analysis", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not remove analysis"))
		return
	}
	if removed == 0 {
		log.Error("analysis not found", slog.Int("id", id))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("analysis not found"))
		return
	}

	log.Info("analysis removed", slog.Int("id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"removed_count": removed,
	}))
}
