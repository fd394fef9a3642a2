// Package register реализует HTTP-обработчик регистрации новых пользователей.
//
// Принимает JSON с данными учётной записи, валидирует их, создаёт пользователя
// через сервис аутентификации и оформляет ему бесплатную подписку Free.
// В случае ошибок формируются соответствующие HTTP-ответы.
package register

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/leafcare-backend/internal/http/response"
	"github.com/magabrotheeeer/leafcare-backend/internal/lib/sl"
	"github.com/magabrotheeeer/leafcare-backend/internal/models"
)

// Handler обрабатывает HTTP-запросы регистрации.
type Handler struct {
	log           *slog.Logger        // Логгер для записи операций и ошибок
	service       Service             // Сервис аутентификации
	subscriptions Subscriptions       // Сервис подписок для оформления плана Free
	validate      *validator.Validate // Валидатор входных данных
}

// Service описывает интерфейс бизнес-логики регистрации.
type Service interface {
	Register(ctx context.Context, req models.DummyRegister) (string, error)
}

// Subscriptions описывает часть сервиса подписок, нужную при регистрации.
type Subscriptions interface {
	SubscribeFree(ctx context.Context, userUID, username string) error
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service, subscriptions Subscriptions) *Handler {
	return &Handler{
		log:           log,
		service:       service,
		subscriptions: subscriptions,
		validate:      validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Регистрация пользователя
// @Description Создает новую учётную запись и оформляет бесплатный тариф Free.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body models.DummyRegister true "Данные новой учётной записи"
// @Success 200 {object} map[string]any "Успешная регистрация"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера при регистрации"
// @Router /auth/register [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyRegister
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded", slog.String("username", req.Username))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}
	log.Info("all fields are validated")

	uid, err := h.service.Register(r.Context(), req)
	if err != nil {
		log.Error("failed to register user", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not register user"))
		return
	}

	if err := h.subscriptions.SubscribeFree(r.Context(), uid, req.Username); err != nil {
		log.Error("failed to assign free plan", sl.Err(err))
	}

	log.Info("user registered", slog.String("uid", uid))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"uid":      uid,
		"username": req.Username,
	}))
}
