package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"go.uber.org/fx"

	"watchtower/config"
	"watchtower/internal/alert"
	"watchtower/internal/delivery"
	"watchtower/internal/delivery/http"
	"watchtower/internal/delivery/http/middleware"
	"watchtower/internal/delivery/http/router/handler"
	"watchtower/internal/domain/service"
	"watchtower/internal/infra/analysis"
	"watchtower/internal/infra/auth"
	"watchtower/internal/infra/auth/google"
	"watchtower/internal/infra/camera"
	logs "watchtower/internal/infra/log"
	"watchtower/internal/infra/notification"
	"watchtower/internal/infra/persistence/postgres"
	"watchtower/internal/infra/pubsub"
	"watchtower/internal/usecase/impl"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			startCamera,
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		postgres.New,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			postgres.NewUserRepository,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			auth.NewBcryptHasher,
			auth.NewJWTService,
			google.NewVerifier,
			analysis.NewHTTPClient,
			pubsub.NewEventPublisher,
			newAlertClassifier,
			newCameraHub,
			newFirebaseService,
		),
	)
}

// newFirebaseService creates a Firebase alert notifier with dependency injection
func newFirebaseService(ctx context.Context, cfg *config.Config) (service.AlertNotifier, error) {
	if cfg.Firebase == nil {
		return nil, nil // Firebase is optional
	}

	svc, err := notification.NewFirebaseService(ctx, cfg.Firebase.CredentialsPath, cfg.Firebase.AlertTopic)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firebase service: %w", err)
	}

	return svc, nil
}

// newAlertClassifier creates the sentinel classifier from configuration
func newAlertClassifier(cfg *config.Config) *alert.Classifier {
	return alert.NewClassifier(cfg.Analysis.Sentinel)
}

// newCameraHub creates the shared frame hub from configuration
func newCameraHub(cfg *config.Config, logger *slog.Logger) *camera.Hub {
	interval := config.DefaultFrameInterval
	if cfg.Camera != nil && cfg.Camera.FrameInterval > 0 {
		interval = cfg.Camera.FrameInterval
	}

	return camera.NewHub(interval, logger)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewAuthService,
			impl.NewAnalysisService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			middleware.NewIdentityMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewAuthHandler,
			handler.NewAnalysisHandler,
			handler.NewStreamHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				http.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

// startCamera starts the capture loop at boot when a source is configured.
// Failure is non-fatal: the loop can be (re)started later over HTTP.
func startCamera(ctx context.Context, cfg *config.Config, hub *camera.Hub, logger *slog.Logger) {
	if cfg.Camera == nil || cfg.Camera.SourceURL == "" {
		return
	}

	if err := hub.Start(ctx, cfg.Camera.SourceURL); err != nil {
		logger.Warn("Camera source unavailable at boot",
			slog.String("sourceURL", cfg.Camera.SourceURL),
			slog.Any("error", err),
		)
	}
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}
