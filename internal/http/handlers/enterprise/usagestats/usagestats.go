// Package usagestats реализует HTTP-обработчик сводного расхода корпоративного клиента.
package usagestats

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/leafcare-backend/internal/http/middlewarectx"
	"github.com/magabrotheeeer/leafcare-backend/internal/http/response"
	"github.com/magabrotheeeer/leafcare-backend/internal/lib/sl"
	"github.com/magabrotheeeer/leafcare-backend/internal/services/quota"
)

// Handler обрабатывает запросы сводного расхода.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис квот
}

// Service описывает интерфейс сводного расхода пользователя.
type Service interface {
	UsageStats(ctx context.Context, userUID string) (*quota.UsageStats, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Сводный расход
// @Description Возвращает квоту текущего периода и суммарный расход внешних API.
// @Tags Enterprise
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} map[string]any "Сводка расхода"
// @Failure 401 {object} response.ErrorResponse "Неверный API-ключ"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /enterprise/usage-stats [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.enterprise.usagestats"

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

	stats, err := h.service.UsageStats(r.Context(), userUID)
	if err != nil {
		log.Error("failed to get usage stats", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not get usage stats"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"usage_stats": stats,
	}))
}
