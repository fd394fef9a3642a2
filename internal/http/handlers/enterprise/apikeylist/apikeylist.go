// Package apikeylist реализует HTTP-обработчик списка API-ключей пользователя.
package apikeylist

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/leafcare-backend/internal/http/middlewarectx"
	"github.com/magabrotheeeer/leafcare-backend/internal/http/response"
	"github.com/magabrotheeeer/leafcare-backend/internal/lib/sl"
	"github.com/magabrotheeeer/leafcare-backend/internal/models"
)

// Handler обрабатывает запросы списка API-ключей.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис API-ключей
}

// Service описывает интерфейс чтения списка ключей.
type Service interface {
	List(ctx context.Context, userUID string) ([]*models.APIKey, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список API-ключей
// @Description Возвращает API-ключи пользователя без хэшей, только с префиксами.
// @Tags Enterprise
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} map[string]any "Список ключей"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /enterprise/api-keys [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.enterprise.apikeylist"

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

	keys, err := h.service.List(r.Context(), userUID)
	if err != nil {
		log.Error("failed to list api keys", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list api keys"))
		return
	}

	log.Info("api keys listed", slog.Int("count", len(keys)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"list_count": len(keys),
		"api_keys":   keys,
	}))
}
