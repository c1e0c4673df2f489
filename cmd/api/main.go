package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"server/internal/adapter/repo"
	"server/internal/domain"
	"server/internal/http/handlers"
	"server/internal/http/httpapi"
	"server/internal/imagegen"
	"server/internal/infra"
	"server/internal/storage"
	"server/migrations"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()

	// Tracking is optional: without DATABASE_URL the service runs in
	// no-tracking mode and still serves generations.
	var generations domain.GenerationRepository
	if cfg.DatabaseURL != "" {
		dbpool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			if cfg.PersistenceMode == infra.PersistenceStrict {
				logger.Fatal().Err(err).Msg("failed to connect database")
			}
			logger.Warn().Err(err).Msg("database unavailable, continuing without generation tracking")
		} else {
			defer dbpool.Close()
			if err := infra.ApplyMigrations(ctx, dbpool, migrations.Files(), logger); err != nil {
				logger.Fatal().Err(err).Msg("failed to apply migrations")
			}
			generations = repo.NewGenerationRepository(dbpool)
		}
	} else {
		logger.Info().Msg("DATABASE_URL not set, generation tracking disabled")
	}

	var store storage.ObjectStore
	switch cfg.StorageBackend {
	case infra.StorageBackendMinio:
		store, err = storage.NewMinioStore(storage.MinioOptions{
			Endpoint:   cfg.MinioEndpoint,
			AccessKey:  cfg.MinioAccessKey,
			SecretKey:  cfg.MinioSecretKey,
			Bucket:     cfg.MinioBucket,
			UseSSL:     cfg.MinioUseSSL,
			PublicBase: cfg.MinioPublicBase,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize minio storage")
		}
	default:
		store, err = storage.NewFileStore(cfg.StorageBasePath, cfg.StorageBaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize filesystem storage")
		}
	}

	generator := imagegen.NewClient(imagegen.Options{
		BaseURL: cfg.StabilityBaseURL,
		APIKey:  cfg.StabilityAPIKey,
		Timeout: cfg.GenerationTimeout,
	})

	app := handlers.NewApp(cfg, logger, generator, store, generations)
	router := httpapi.NewRouter(app)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
