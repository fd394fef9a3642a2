package middlewarectx

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/leafcare-backend/internal/http/response"
	"github.com/magabrotheeeer/leafcare-backend/internal/lib/quotaperiod"
	"github.com/magabrotheeeer/leafcare-backend/internal/lib/sl"
	"github.com/magabrotheeeer/leafcare-backend/internal/metrics"
)

var limiter = rate.NewLimiter(50, 100)

// RateLimitMiddleware ограничивает общий поток запросов к серверу.
func RateLimitMiddleware(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				log.Error("too many requests")
				metrics.RateLimitRejectionsTotal.Inc()
				render.Status(r, http.StatusTooManyRequests)
				render.JSON(w, r, response.Error("too many requests"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitService возвращает лимит запросов в минуту для тарифа пользователя.
type RateLimitService interface {
	RateLimitFor(ctx context.Context, userUID string) int
}

// MinuteCounter инкрементирует счётчик запросов пользователя за текущую минуту.
type MinuteCounter interface {
	CountPerMinute(ctx context.Context, key string) (int64, error)
}

// PlanRateLimitMiddleware ограничивает частоту запросов пользователя согласно
// его тарифному плану. Счётчик хранится в Redis с ключом текущей минуты,
// при сбое счётчика запрос пропускается.
func PlanRateLimitMiddleware(limits RateLimitService, counter MinuteCounter, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userUID, ok := r.Context().Value(UserUID).(string)
			if !ok || userUID == "" {
				log.Error("user identification missing")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("user identification missing"))
				return
			}

			limit := limits.RateLimitFor(r.Context(), userUID)
			key := fmt.Sprintf("ratelimit:%s:%s", userUID, quotaperiod.MinuteKey(time.Now()))

			count, err := counter.CountPerMinute(r.Context(), key)
			if err != nil {
				log.Warn("rate limit counter unavailable", sl.Err(err))
				next.ServeHTTP(w, r)
				return
			}

			remaining := int64(limit) - count
			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", limit))
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))

			if count > int64(limit) {
				log.Error("plan rate limit exceeded", "user_uid", userUID, "limit", limit)
				metrics.RateLimitRejectionsTotal.Inc()
				render.Status(r, http.StatusTooManyRequests)
				render.JSON(w, r, response.Error("rate limit exceeded, try again later"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
