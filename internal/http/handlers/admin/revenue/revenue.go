// Package revenue реализует HTTP-обработчик сводки выручки для администратора.
package revenue

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

// Handler обрабатывает запросы сводки выручки.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис аналитики
}

// Service описывает интерфейс сводки выручки.
type Service interface {
	Revenue(ctx context.Context) (*models.RevenueSummary, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Сводка выручки
// @Description Возвращает суммарную выручку и её распределение по типам планов.
// @Tags Admin
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} map[string]any "Сводка выручки"
// @Failure 403 {object} response.ErrorResponse "Требуется роль администратора"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /admin/stats/revenue [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.revenue"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	summary, err := h.service.Revenue(r.Context())
	if err != nil {
		log.Error("failed to build revenue summary", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not build revenue summary"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"revenue": summary,
	}))
}
