// Package paymentwebhook реализует HTTP-обработчик уведомлений платёжного шлюза.
//
// Шлюз присылает события жизненного цикла платежа; обработчик извлекает
// идентификатор платежа и событие и передаёт их сервису платежей для смены
// статуса записи в журнале. Неизвестные события подтверждаются без действий.
package paymentwebhook

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/leafcare-backend/internal/http/response"
	"github.com/magabrotheeeer/leafcare-backend/internal/lib/sl"
)

// Payload описывает тело webhook-уведомления платёжного шлюза.
type Payload struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID     string `json:"id"`
				Status string `json:"status"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// Handler управляет webhook-уведомлениями платёжного шлюза.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис платежей
}

// Service описывает интерфейс обработки события платежа.
type Service interface {
	HandleWebhook(ctx context.Context, paymentID, event string) error
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Webhook платёжного шлюза
// @Description Принимает уведомления о событиях платежа и обновляет журнал платежей.
// @Tags Payments
// @Accept  json
// @Produce  json
// @Param request body Payload true "Событие платёжного шлюза"
// @Success 200 {object} map[string]any "Событие обработано"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /payments/webhook [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.paymentwebhook"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var payload Payload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		log.Error("failed to decode webhook payload", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid webhook payload"))
		return
	}
	log.Info("webhook received", slog.String("event", payload.Event))

	paymentID := payload.Payload.Payment.Entity.ID
	if err := h.service.HandleWebhook(r.Context(), paymentID, payload.Event); err != nil {
		log.Error("failed to handle webhook event", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not handle webhook event"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"processed": true,
	}))
}
