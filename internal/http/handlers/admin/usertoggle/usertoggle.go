// Package usertoggle реализует HTTP-обработчик включения и отключения учётных записей.
package usertoggle

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/leafcare-backend/internal/http/response"
	"github.com/magabrotheeeer/leafcare-backend/internal/lib/sl"
)

// Request — структура входных данных для смены статуса учётной записи.
type Request struct {
	IsActive bool `json:"is_active"`
}

// Handler обрабатывает запросы смены статуса учётной записи.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Хранилище пользователей
}

// Service описывает интерфейс смены статуса учётной записи.
type Service interface {
	SetUserActive(ctx context.Context, userUID string, isActive bool) (int, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Включить или отключить пользователя
// @Description Меняет флаг is_active учётной записи. Отключённый пользователь не может войти.
// @Tags Admin
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param uid path string true "Идентификатор пользователя"
// @Param request body Request true "Новый статус"
// @Success 200 {object} map[string]any "Статус изменён"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 403 {object} response.ErrorResponse "Требуется роль администратора"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /admin/users/{uid}/status [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.usertoggle"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	uid := chi.URLParam(r, "uid")
	if uid == "" {
		log.Error("user uid is missing in url")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("user uid is required"))
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	updated, err := h.service.SetUserActive(r.Context(), uid, req.IsActive)
	if err != nil {
		log.Error("failed to update user status", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not update user status"))
		return
	}
	if updated == 0 {
		log.Error("user not found", slog.String("uid", uid))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("user not found"))
		return
	}

	log.Info("user status updated", slog.String("uid", uid), slog.Bool("is_active", req.IsActive))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"uid":       uid,
		"is_active": req.IsActive,
	}))
}
