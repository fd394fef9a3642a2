// Package trends реализует HTTP-обработчик трендов использования для администратора.
package trends

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/leafcare-backend/internal/http/response"
	"github.com/magabrotheeeer/leafcare-backend/internal/lib/sl"
	"github.com/magabrotheeeer/leafcare-backend/internal/models"
)

// Handler обрабатывает запросы трендов использования.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис аналитики
}

// Service описывает интерфейс построения трендов.
type Service interface {
	Trends(ctx context.Context, days int) (*models.TrendsReport, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Тренды использования
// @Description Возвращает дневную динамику анализов и расхода внешних API за период.
// @Tags Admin
// @Produce  json
// @Security BearerAuth
// @Param days query int false "Период в днях (по умолчанию 30)"
// @Success 200 {object} map[string]any "Отчет по трендам"
// @Failure 403 {object} response.ErrorResponse "Требуется роль администратора"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /admin/stats/trends [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.trends"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	days, err := strconv.Atoi(r.URL.Query().Get("days"))
	if err != nil || days <= 0 || days > 365 {
		days = 30
	}

	report, err := h.service.Trends(r.Context(), days)
	if err != nil {
		log.Error("failed to build trends report", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not build trends report"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"trends": report,
	}))
}
