package middlewarectx

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

// APIKeyService описывает интерфейс сервиса аутентификации по API-ключу.
type APIKeyService interface {
	Authenticate(ctx context.Context, plaintext string) (*models.User, error)
}

// APIKeyMiddleware возвращает HTTP middleware, который аутентифицирует
// корпоративные запросы по заголовку X-API-Key.
func APIKeyMiddleware(keys APIKeyService, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.APIKeyMiddleware"
			key := r.Header.Get("X-API-Key")

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			if key == "" {
				log.Error("missing api key header")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing X-API-Key header"))
				return
			}

			user, err := keys.Authenticate(r.Context(), key)
			if err != nil {
				log.Error("invalid api key", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid or expired api key"))
				return
			}
			ctx := context.WithValue(r.Context(), UserUID, user.UID)
			ctx = context.WithValue(ctx, User, user.Username)
			ctx = context.WithValue(ctx, Role, user.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
