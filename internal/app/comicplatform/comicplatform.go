// Package comicplatform собирает и запускает основной HTTP-процесс платформы.
package comicplatform

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/comic-platform/internal/cache"
	"github.com/magabrotheeeer/comic-platform/internal/config"
	"github.com/magabrotheeeer/comic-platform/internal/lib/jwt"
	"github.com/magabrotheeeer/comic-platform/internal/lib/smtp"
	"github.com/magabrotheeeer/comic-platform/internal/migrations"
	"github.com/magabrotheeeer/comic-platform/internal/oauth"
	"github.com/magabrotheeeer/comic-platform/internal/paymentprovider"
	adminservice "github.com/magabrotheeeer/comic-platform/internal/services/admin"
	authservice "github.com/magabrotheeeer/comic-platform/internal/services/auth"
	catalogservice "github.com/magabrotheeeer/comic-platform/internal/services/catalog"
	chapterservice "github.com/magabrotheeeer/comic-platform/internal/services/chapter"
	paymentservice "github.com/magabrotheeeer/comic-platform/internal/services/payment"
	reviewservice "github.com/magabrotheeeer/comic-platform/internal/services/review"
	senderservice "github.com/magabrotheeeer/comic-platform/internal/services/sender"
	"github.com/magabrotheeeer/comic-platform/internal/storage/repository"
)

// App агрегирует ресурсы HTTP-процесса: сервер, базу и кэш.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
}

// New инициализирует хранилище, миграции, кэш и все сервисы платформы.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	transport := smtp.NewTransport(cfg.SMTPConnection, logger)
	mailer := senderservice.NewSenderService(logger, transport, cfg.PasswordResetURL)
	googleVerifier := oauth.NewGoogleVerifier(cfg.GoogleOAuth.ClientID)
	providerClient := paymentprovider.NewClient(cfg.PaymentProvider.APIURL, cfg.PaymentProvider.SecretKey)

	authService := authservice.New(db, db, mailer, googleVerifier, jwtMaker, logger)
	catalogService := catalogservice.New(db, cacheRedis, logger)
	chapterService := chapterservice.New(db, db, cacheRedis, logger)
	reviewService := reviewservice.New(db, cacheRedis, logger)
	paymentService := paymentservice.New(db, db, providerClient, mailer, cacheRedis, logger)
	adminService := adminservice.New(db)

	router := chi.NewRouter()

	RegisterRoutes(router, logger, cfg, jwtMaker, db, &Services{
		Auth:    authService,
		Catalog: catalogService,
		Chapter: chapterService,
		Review:  reviewService,
		Payment: paymentService,
		Admin:   adminService,
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его по отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if closeErr := a.db.DB.Close(); closeErr != nil {
			a.logger.Error("failed to close database", slog.Any("err", closeErr))
		}
		return err
	}
}
