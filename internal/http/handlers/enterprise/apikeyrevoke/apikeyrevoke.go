// Package apikeyrevoke реализует HTTP-обработчик отзыва API-ключа.
package apikeyrevoke

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
	"github.com/magabrotheeeer/leafcare-backend/internal/services/apikey"
)

// Handler обрабатывает запросы отзыва API-ключа.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис API-ключей
}

// Service описывает интерфейс отзыва ключа.
type Service interface {
	Revoke(ctx context.Context, id int, userUID string) error
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Отозвать API-ключ
// @Description Деактивирует API-ключ пользователя. Запись сохраняется в истории.
// @Tags Enterprise
// @Produce  json
// @Security BearerAuth
// @Param id path int true "Идентификатор ключа"
// @Success 200 {object} map[string]any "Ключ отозван"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Ключ не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /enterprise/api-keys/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.enterprise.apikeyrevoke"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid api key id"))
		return
	}

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	if err := h.service.Revoke(r.Context(), id, userUID); err != nil {
		if errors.Is(err, apikey.ErrInvalidKey) {
			log.Error("api key not found", sl.Err(err))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("api key not found"))
			return
		}
		log.Error("failed to revoke api key", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not revoke api key"))
		return
	}

	log.Info("api key revoked", slog.Int("id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"revoked": true,
	}))
}
