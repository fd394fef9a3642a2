package leafcare

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	adminfeedbacklist "github.com/magabrotheeeer/leafcare-backend/internal/http/handlers/admin/feedbacklist"
	"github.com/magabrotheeeer/leafcare-backend/internal/http/handlers/admin/feedbackstatus"
	"github.com/magabrotheeeer/leafcare-backend/internal/http/handlers/admin/revenue"
	"github.com/magabrotheeeer/leafcare-backend/internal/http/handlers/admin/statsoverview"
	"github.com/magabrotheeeer/leafcare-backend/internal/http/handlers/admin/trends"
	"github.com/magabrotheeeer/leafcare-backend/internal/http/handlers/admin/userlist"
	"github.com/magabrotheeeer/leafcare-backend/internal/http/handlers/admin/usertoggle"
	"github.com/magabrotheeeer/leafcare-backend/internal/http/handlers/analysis/detect"
	analysislist "github.com/magabrotheeeer/leafcare-backend/internal/http/handlers/analysis/list"
	analysisread "github.com/magabrotheeeer/leafcare-backend/internal/http/handlers/analysis/read"
	"github.com/magabrotheeeer/leafcare-backend/internal/http/handlers/analysis/remove"
	"github.com/magabrotheeeer/leafcare-backend/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/leafcare-backend/internal/http/handlers/auth/me"
	"github.com/magabrotheeeer/leafcare-backend/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/leafcare-backend/internal/http/handlers/enterprise/apikeycreate"
	"github.com/magabrotheeeer/leafcare-backend/internal/http/handlers/enterprise/apikeylist"
	"github.com/magabrotheeeer/leafcare-backend/internal/http/handlers/enterprise/apikeyrevoke"
	"github.com/magabrotheeeer/leafcare-backend/internal/http/handlers/enterprise/bulkanalysis"
	"github.com/magabrotheeeer/leafcare-backend/internal/http/handlers/enterprise/usagestats"
	feedbackcreate "github.com/magabrotheeeer/leafcare-backend/internal/http/handlers/feedback/create"
	"github.com/magabrotheeeer/leafcare-backend/internal/http/handlers/health"
	notificationlist "github.com/magabrotheeeer/leafcare-backend/internal/http/handlers/notification/list"
	"github.com/magabrotheeeer/leafcare-backend/internal/http/handlers/notification/markallread"
	"github.com/magabrotheeeer/leafcare-backend/internal/http/handlers/notification/markread"
	"github.com/magabrotheeeer/leafcare-backend/internal/http/handlers/notification/unreadcount"
	"github.com/magabrotheeeer/leafcare-backend/internal/http/handlers/payment/ordercreate"
	"github.com/magabrotheeeer/leafcare-backend/internal/http/handlers/payment/paymentverify"
	"github.com/magabrotheeeer/leafcare-backend/internal/http/handlers/payment/paymentwebhook"
	prescriptionbyanalysis "github.com/magabrotheeeer/leafcare-backend/internal/http/handlers/prescription/byanalysis"
	prescriptionlist "github.com/magabrotheeeer/leafcare-backend/internal/http/handlers/prescription/list"
	prescriptionread "github.com/magabrotheeeer/leafcare-backend/internal/http/handlers/prescription/read"
	"github.com/magabrotheeeer/leafcare-backend/internal/http/handlers/subscription/cancel"
	"github.com/magabrotheeeer/leafcare-backend/internal/http/handlers/subscription/mysubscription"
	"github.com/magabrotheeeer/leafcare-backend/internal/http/handlers/subscription/paymentlist"
	"github.com/magabrotheeeer/leafcare-backend/internal/http/handlers/subscription/planlist"
	"github.com/magabrotheeeer/leafcare-backend/internal/http/handlers/subscription/subscribe"
	subscriptionusage "github.com/magabrotheeeer/leafcare-backend/internal/http/handlers/subscription/usage"
	"github.com/magabrotheeeer/leafcare-backend/internal/http/middlewarectx"
)

// RegisterRoutes регистрирует все маршруты приложения.
func (a *App) RegisterRoutes(r chi.Router, logger *slog.Logger) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
		middlewarectx.MetricsMiddleware,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Get("/health", health.New(logger, a.db).ServeHTTP)
		r.Post("/auth/register", register.New(logger, a.authService, a.subscriptionService).ServeHTTP)
		r.Post("/auth/login", login.New(logger, a.authService).ServeHTTP)
		r.Get("/plans", planlist.New(logger, a.subscriptionService).ServeHTTP)

		// Webhook платёжного шлюза (без аутентификации)
		r.Post("/payments/webhook", paymentwebhook.New(logger, a.paymentService).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(a.authService, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Use(middlewarectx.PlanRateLimitMiddleware(a.quotaService, a.cache, logger))

			r.Get("/auth/me", me.New(logger, a.authService).ServeHTTP)

			r.Post("/subscriptions", subscribe.New(logger, a.subscriptionService).ServeHTTP)
			r.Get("/subscriptions/my", mysubscription.New(logger, a.subscriptionService).ServeHTTP)
			r.Post("/subscriptions/cancel", cancel.New(logger, a.subscriptionService).ServeHTTP)
			r.Get("/subscriptions/usage", subscriptionusage.New(logger, a.subscriptionService).ServeHTTP)
			r.Get("/payments", paymentlist.New(logger, a.subscriptionService).ServeHTTP)

			r.Post("/payments/order", ordercreate.New(logger, a.paymentService).ServeHTTP)
			r.Post("/payments/verify", paymentverify.New(logger, a.paymentService).ServeHTTP)

			r.Post("/analysis/detect-disease", detect.New(logger, a.analysisService).ServeHTTP)
			r.Get("/analysis", analysislist.New(logger, a.analysisService).ServeHTTP)
			r.Get("/analysis/{id}", analysisread.New(logger, a.analysisService).ServeHTTP)
			r.Delete("/analysis/{id}", remove.New(logger, a.analysisService).ServeHTTP)

			r.Get("/prescriptions", prescriptionlist.New(logger, a.prescriptionService).ServeHTTP)
			r.Get("/prescriptions/{prescription_id}", prescriptionread.New(logger, a.prescriptionService).ServeHTTP)
			r.Get("/prescriptions/by-analysis/{analysis_id}", prescriptionbyanalysis.New(logger, a.prescriptionService).ServeHTTP)

			r.Get("/notifications", notificationlist.New(logger, a.notificationService).ServeHTTP)
			r.Get("/notifications/unread-count", unreadcount.New(logger, a.notificationService).ServeHTTP)
			r.Post("/notifications/{id}/read", markread.New(logger, a.notificationService).ServeHTTP)
			r.Post("/notifications/read-all", markallread.New(logger, a.notificationService).ServeHTTP)

			r.Post("/feedback", feedbackcreate.New(logger, a.db).ServeHTTP)

			r.Post("/enterprise/api-keys", apikeycreate.New(logger, a.apikeyService).ServeHTTP)
			r.Get("/enterprise/api-keys", apikeylist.New(logger, a.apikeyService).ServeHTTP)
			r.Delete("/enterprise/api-keys/{id}", apikeyrevoke.New(logger, a.apikeyService).ServeHTTP)
		})

		// Группа администратора
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(a.authService, logger))
			r.Use(middlewarectx.AdminOnlyMiddleware(logger))

			r.Get("/admin/stats/overview", statsoverview.New(logger, a.analyticsService).ServeHTTP)
			r.Get("/admin/stats/trends", trends.New(logger, a.analyticsService).ServeHTTP)
			r.Get("/admin/stats/revenue", revenue.New(logger, a.analyticsService).ServeHTTP)
			r.Get("/admin/users", userlist.New(logger, a.db).ServeHTTP)
			r.Patch("/admin/users/{uid}/status", usertoggle.New(logger, a.db).ServeHTTP)
			r.Get("/admin/feedback", adminfeedbacklist.New(logger, a.db).ServeHTTP)
			r.Patch("/admin/feedback/{id}/status", feedbackstatus.New(logger, a.db).ServeHTTP)
		})

		// Группа корпоративного API с аутентификацией по ключу
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.APIKeyMiddleware(a.apikeyService, logger))
			r.Use(middlewarectx.PlanRateLimitMiddleware(a.quotaService, a.cache, logger))

			r.Post("/enterprise/bulk-analysis", bulkanalysis.New(logger, a.analysisService).ServeHTTP)
			r.Get("/enterprise/usage-stats", usagestats.New(logger, a.quotaService).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
