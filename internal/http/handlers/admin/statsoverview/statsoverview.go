// Package statsoverview реализует HTTP-обработчик сводной статистики для администратора.
package statsoverview

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/leafcare-backend/internal/http/response"
	"github.com/magabrotheeeer/leafcare-backend/internal/lib/sl"
	"github.com/magabrotheeeer/leafcare-backend/internal/models"
)

// Handler обрабатывает запросы сводной статистики.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис аналитики
}

// Service описывает интерфейс сводной статистики.
type Service interface {
	Overview(ctx context.Context) (*models.StatsOverview, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Сводная статистика
// @Description Возвращает количество пользователей, анализов, подписок по планам и выручку.
// @Tags Admin
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} map[string]any "Сводная статистика"
// @Failure 403 {object} response.ErrorResponse "Требуется роль администратора"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /admin/stats/overview [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.statsoverview"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	overview, err := h.service.Overview(r.Context())
	if err != nil {
		log.Error("failed to build stats overview", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not build stats overview"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"overview": overview,
	}))
}
