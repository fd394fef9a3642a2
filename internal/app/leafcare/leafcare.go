// Package leafcare собирает HTTP-приложение сервиса диагностики растений:
// подключения к хранилищам, сервисы и маршруты.
package leafcare

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/leafcare-backend/internal/cache"
	"github.com/magabrotheeeer/leafcare-backend/internal/config"
	"github.com/magabrotheeeer/leafcare-backend/internal/lib/jwt"
	"github.com/magabrotheeeer/leafcare-backend/internal/migrations"
	"github.com/magabrotheeeer/leafcare-backend/internal/paymentprovider"
	"github.com/magabrotheeeer/leafcare-backend/internal/services/analysis"
	"github.com/magabrotheeeer/leafcare-backend/internal/services/analytics"
	"github.com/magabrotheeeer/leafcare-backend/internal/services/apikey"
	"github.com/magabrotheeeer/leafcare-backend/internal/services/auth"
	"github.com/magabrotheeeer/leafcare-backend/internal/services/notification"
	"github.com/magabrotheeeer/leafcare-backend/internal/services/payment"
	"github.com/magabrotheeeer/leafcare-backend/internal/services/prescription"
	"github.com/magabrotheeeer/leafcare-backend/internal/services/quota"
	"github.com/magabrotheeeer/leafcare-backend/internal/services/subscription"
	"github.com/magabrotheeeer/leafcare-backend/internal/storage/repository"
	"github.com/magabrotheeeer/leafcare-backend/internal/videosearch"
	"github.com/magabrotheeeer/leafcare-backend/internal/visionai"
)

// App инкапсулирует HTTP-сервер и его зависимости.
type App struct {
	server *http.Server
	logger *slog.Logger

	db    *repository.Storage
	cache *cache.Cache

	authService         *auth.Service
	subscriptionService *subscription.Service
	quotaService        *quota.Service
	analysisService     *analysis.Service
	prescriptionService *prescription.Service
	analyticsService    *analytics.Service
	paymentService      *payment.Service
	apikeyService       *apikey.Service
	notificationService *notification.Service
}

// New создает приложение: подключается к PostgreSQL и Redis, применяет
// миграции, собирает сервисы и регистрирует маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.leafcare.New"

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)

	authService := auth.New(db, jwtMaker)
	subscriptionService := subscription.New(db, cacheRedis, logger)
	quotaService := quota.New(db, logger)
	prescriptionService := prescription.New(db, logger)
	analysisService := analysis.New(db,
		visionai.NewClient(cfg.VisionAPI),
		videosearch.NewClient(cfg.VideoAPI),
		quotaService, prescriptionService, logger)
	analyticsService := analytics.New(db, cacheRedis, logger)
	paymentService := payment.New(
		paymentprovider.NewClient(cfg.GatewayKeyID, cfg.GatewayKeySecret, cfg.GatewayBaseURL),
		subscriptionService, db, logger)
	apikeyService := apikey.New(db, logger)
	notificationService := notification.New(db, logger)

	app := &App{
		logger:              logger,
		db:                  db,
		cache:               cacheRedis,
		authService:         authService,
		subscriptionService: subscriptionService,
		quotaService:        quotaService,
		analysisService:     analysisService,
		prescriptionService: prescriptionService,
		analyticsService:    analyticsService,
		paymentService:      paymentService,
		apikeyService:       apikeyService,
		notificationService: notificationService,
	}

	router := chi.NewRouter()
	app.RegisterRoutes(router, logger)

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return app, nil
}

// Run запускает HTTP-сервер и корректно останавливает его при отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting http server", slog.String("address", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		a.logger.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		if err := a.db.DB.Close(); err != nil {
			a.logger.Error("failed to close database connection", slog.String("error", err.Error()))
		}
		return nil
	}
}

const shutdownTimeout = 15 * time.Second
