// Package detect реализует HTTP-обработчик анализа изображения листа растения.
//
// Handler принимает multipart-форму с файлом изображения, проверяет квоту
// пользователя через сервис анализа и возвращает результат диагностики
// вместе с подобранными видео и сгенерированным рецептом.
package detect

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/leafcare-backend/internal/http/middlewarectx"
	"github.com/magabrotheeeer/leafcare-backend/internal/http/response"
	"github.com/magabrotheeeer/leafcare-backend/internal/lib/sl"
	"github.com/magabrotheeeer/leafcare-backend/internal/metrics"
	"github.com/magabrotheeeer/leafcare-backend/internal/models"
	"github.com/magabrotheeeer/leafcare-backend/internal/services/analysis"
	"github.com/magabrotheeeer/leafcare-backend/internal/services/quota"
)

// maxUploadBytes ограничивает размер multipart-формы до проверки тарифа.
const maxUploadBytes = 64 << 20

// Handler управляет запросами анализа изображений.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис анализа изображений
}

// Service описывает интерфейс анализа одного изображения.
type Service interface {
	Detect(ctx context.Context, userUID, username, filename string, image []byte) (*models.Analysis, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Анализ изображения листа
// @Description Принимает файл изображения, распознаёт болезнь и возвращает диагноз с рецептом.
// @Tags Analysis
// @Accept  mpfd
// @Produce  json
// @Security BearerAuth
// @Param image formData file true "Изображение листа растения"
// @Success 200 {object} map[string]any "Результат анализа"
// @Failure 400 {object} response.ErrorResponse "Файл отсутствует или форма некорректна"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Нет активной подписки"
// @Failure 413 {object} response.ErrorResponse "Изображение превышает лимит тарифа"
// @Failure 429 {object} response.ErrorResponse "Месячная квота анализов исчерпана"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /analysis/detect-disease [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.analysis.detect"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	username, _ := r.Context().Value(middlewarectx.User).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		log.Error("failed to parse multipart form", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid multipart form"))
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		log.Error("image file is missing", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("image file is required"))
		return
	}
	defer func() { _ = file.Close() }()

	image, err := io.ReadAll(file)
	if err != nil {
		log.Error("failed to read image file", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("could not read image file"))
		return
	}
	log.Info("image received",
		slog.String("filename", header.Filename),
		slog.Int("size_bytes", len(image)))

	result, err := h.service.Detect(r.Context(), userUID, username, header.Filename, image)
	if err != nil {
		switch {
		case errors.Is(err, quota.ErrQuotaExceeded):
			log.Error("monthly quota exceeded", sl.Err(err))
			metrics.QuotaRejectionsTotal.Inc()
			w.WriteHeader(http.StatusTooManyRequests)
			render.JSON(w, r, response.Error("monthly analysis quota exceeded"))
		case errors.Is(err, quota.ErrNoSubscription):
			log.Error("no active subscription", sl.Err(err))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("no active subscription"))
		case errors.Is(err, analysis.ErrImageTooLarge):
			log.Error("image exceeds plan size limit", sl.Err(err))
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			render.JSON(w, r, response.Error("image exceeds plan size limit"))
		default:
			log.Error("failed to analyze image", sl.Err(err))
			metrics.AnalysesTotal.WithLabelValues("error").Inc()
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("could not analyze image"))
		}
		return
	}

	metrics.AnalysesTotal.WithLabelValues("success").Inc()
	log.Info("analysis completed", slog.Int("analysis_id", result.ID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"analysis": result,
	}))
}
