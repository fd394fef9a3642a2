// Package apikeycreate реализует HTTP-обработчик выпуска API-ключа.
//
// Ключ доступен только пользователям с тарифом, включающим программный доступ.
// Открытый текст ключа возвращается один раз; в базе хранится только его хэш.
package apikeycreate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/leafcare-backend/internal/http/middlewarectx"
	"github.com/magabrotheeeer/leafcare-backend/internal/http/response"
	"github.com/magabrotheeeer/leafcare-backend/internal/lib/sl"
	"github.com/magabrotheeeer/leafcare-backend/internal/models"
	"github.com/magabrotheeeer/leafcare-backend/internal/services/apikey"
)

// Handler управляет запросами выпуска API-ключей.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис API-ключей
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс выпуска ключа.
type Service interface {
	Create(ctx context.Context, userUID string, req models.DummyAPIKeyCreate) (string, *models.APIKey, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Выпустить API-ключ
// @Description Создает новый API-ключ. Открытый текст ключа показывается только в этом ответе.
// @Tags Enterprise
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.DummyAPIKeyCreate true "Название ключа"
// @Success 200 {object} map[string]any "Созданный ключ"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Тариф не включает программный доступ"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /enterprise/api-keys [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.enterprise.apikeycreate"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyAPIKeyCreate
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

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	plaintext, key, err := h.service.Create(r.Context(), userUID, req)
	if err != nil {
		if errors.Is(err, apikey.ErrNotEnterprise) {
			log.Error("plan does not include api access", sl.Err(err))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("current plan does not include api access"))
			return
		}
		log.Error("failed to create api key", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create api key"))
		return
	}

	log.Info("api key created", slog.Int("key_id", key.ID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"api_key":    plaintext,
		"key_id":     key.ID,
		"name":       key.Name,
		"key_prefix": key.KeyPrefix,
		"expires_at": key.ExpiresAt,
	}))
}
