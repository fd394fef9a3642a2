// Package ordercreate реализует HTTP-обработчик создания платёжного заказа
// в платёжном шлюзе перед оплатой подписки.
package ordercreate

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
	"github.com/magabrotheeeer/leafcare-backend/internal/services/payment"
	"github.com/magabrotheeeer/leafcare-backend/internal/services/subscription"
)

// Handler управляет запросами создания платёжного заказа.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис платежей
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс создания заказа в платёжном шлюзе.
type Service interface {
	CreateOrder(ctx context.Context, userUID string, req models.DummyOrderCreate) (*payment.Order, error)
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
// @Summary Создать платёжный заказ
// @Description Создает заказ в платёжном шлюзе для оплаты выбранного плана.
// @Tags Payments
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.DummyOrderCreate true "План и цикл оплаты"
// @Success 200 {object} map[string]any "Созданный заказ"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "План не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /payments/order [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.ordercreate"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyOrderCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded", slog.Any("request", req))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}
	log.Info("all fields are validated")

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	order, err := h.service.CreateOrder(r.Context(), userUID, req)
	if err != nil {
		if errors.Is(err, subscription.ErrPlanNotFound) {
			log.Error("plan not found", sl.Err(err))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("plan not found"))
			return
		}
		log.Error("failed to create order", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create payment order"))
		return
	}

	log.Info("order created", slog.String("order_id", order.OrderID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"order": order,
	}))
}
