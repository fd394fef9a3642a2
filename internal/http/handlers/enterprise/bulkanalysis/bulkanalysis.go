// Package bulkanalysis реализует HTTP-обработчик пакетного анализа изображений
// для корпоративных клиентов, аутентифицированных по API-ключу.
//
// Handler принимает multipart-форму с несколькими файлами, ограничивает пакет
// сотней изображений и возвращает результаты в порядке исходных файлов.
package bulkanalysis

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/leafcare-backend/internal/http/middlewarectx"
	"github.com/magabrotheeeer/leafcare-backend/internal/http/response"
	"github.com/magabrotheeeer/leafcare-backend/internal/lib/sl"
	"github.com/magabrotheeeer/leafcare-backend/internal/models"
)

const (
	maxBatchFiles  = 100
	maxUploadBytes = 512 << 20
)

// Handler управляет запросами пакетного анализа.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис анализа изображений
}

// Service описывает интерфейс пакетного анализа.
type Service interface {
	Bulk(ctx context.Context, userUID, username, batchName string, files []models.BulkFile) *models.BulkResult
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Пакетный анализ изображений
// @Description Анализирует до 100 изображений за один запрос. Требует API-ключ с доступом Enterprise.
// @Tags Enterprise
// @Accept  mpfd
// @Produce  json
// @Security ApiKeyAuth
// @Param images formData file true "Изображения листьев (до 100 файлов)"
// @Param batch_name formData string false "Название пакета"
// @Success 200 {object} map[string]any "Результаты пакетного анализа"
// @Failure 400 {object} response.ErrorResponse "Файлы отсутствуют или пакет слишком велик"
// @Failure 401 {object} response.ErrorResponse "Неверный API-ключ"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /enterprise/bulk-analysis [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.enterprise.bulkanalysis"

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

	if r.MultipartForm == nil || len(r.MultipartForm.File["images"]) == 0 {
		log.Error("no image files in request")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("at least one image file is required"))
		return
	}

	headers := r.MultipartForm.File["images"]
	if len(headers) > maxBatchFiles {
		log.Error("too many files in batch", slog.Int("count", len(headers)))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("batch is limited to 100 images"))
		return
	}

	files := make([]models.BulkFile, 0, len(headers))
	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			log.Error("failed to open uploaded file", sl.Err(err),
				slog.String("filename", header.Filename))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("could not read uploaded file"))
			return
		}
		contents, err := io.ReadAll(file)
		_ = file.Close()
		if err != nil {
			log.Error("failed to read uploaded file", sl.Err(err),
				slog.String("filename", header.Filename))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("could not read uploaded file"))
			return
		}
		files = append(files, models.BulkFile{
			Filename: header.Filename,
			Contents: contents,
		})
	}

	batchName := r.FormValue("batch_name")
	log.Info("bulk analysis started",
		slog.Int("files", len(files)),
		slog.String("batch_name", batchName))

	result := h.service.Bulk(r.Context(), userUID, username, batchName, files)

	log.Info("bulk analysis completed",
		slog.String("batch_id", result.BatchID),
		slog.Int("processed", result.ProcessedCount),
		slog.Int("failed", result.FailedCount))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"bulk_result": result,
	}))
}
