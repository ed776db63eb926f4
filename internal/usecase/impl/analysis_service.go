package impl

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/fx"

	"watchtower/config"
	"watchtower/internal/alert"
	deliverycontext "watchtower/internal/delivery/context"
	"watchtower/internal/domain/entity"
	domainerrors "watchtower/internal/domain/errors"
	"watchtower/internal/domain/service"
	"watchtower/internal/usecase"
)

const (
	sourceAsk  = "ask"
	sourceAuto = "auto"
)

// analysisService implements the AnalysisUsecase interface.
type analysisService struct {
	client     service.AnalysisClient
	classifier *alert.Classifier
	publisher  service.EventPublisher
	notifier   service.AlertNotifier
	cache      *throttledCache
	autoPrompt string
	logger     *slog.Logger
}

// AnalysisServiceParams holds dependencies for AnalysisService, injected by Fx.
type AnalysisServiceParams struct {
	fx.In

	Client     service.AnalysisClient
	Classifier *alert.Classifier
	Publisher  service.EventPublisher
	Notifier   service.AlertNotifier `optional:"true"`
	Config     *config.Config
	Logger     *slog.Logger
}

// NewAnalysisService is the constructor for analysisService.
func NewAnalysisService(params AnalysisServiceParams) usecase.AnalysisUsecase {
	return &analysisService{
		client:     params.Client,
		classifier: params.Classifier,
		publisher:  params.Publisher,
		notifier:   params.Notifier,
		cache:      newThrottledCache(params.Config.Analysis.Window, time.Now),
		autoPrompt: params.Config.Analysis.AutoPrompt,
		logger:     params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *analysisService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Ask runs a single uncached analysis with a caller-supplied question.
func (srv *analysisService) Ask(ctx context.Context, input usecase.AskInput) (*entity.AnalysisResult, error) {
	if strings.TrimSpace(input.Question) == "" || input.FrameBase64 == "" {
		return nil, domainerrors.ErrMissingFields.WrapMessage("question and frame are required")
	}

	return srv.analyze(ctx, input.FrameBase64, input.Question, sourceAsk)
}

// AutoAnalyze serves the cached result while the throttle window is open,
// refreshing it with the fixed monitoring prompt otherwise.
func (srv *analysisService) AutoAnalyze(ctx context.Context, frameBase64 string) (*entity.AnalysisResult, error) {
	if frameBase64 == "" {
		return nil, domainerrors.ErrMissingFields.WrapMessage("frame is required")
	}

	return srv.cache.GetOrRefresh(ctx, func(ctx context.Context) (*entity.AnalysisResult, error) {
		return srv.analyze(ctx, frameBase64, srv.autoPrompt, sourceAuto)
	})
}

// analyze performs one upstream call and post-processes the raw answer.
func (srv *analysisService) analyze(ctx context.Context, frameBase64, prompt, source string) (*entity.AnalysisResult, error) {
	srv.log(ctx).Debug("Requesting analysis", slog.String("source", source))

	rawAnswer, err := srv.client.Analyze(ctx, frameBase64, prompt)
	if err != nil {
		var upstreamErr *service.UpstreamError
		if errors.As(err, &upstreamErr) {
			srv.log(ctx).Warn("Analysis upstream returned an error",
				slog.String("source", source),
				slog.Int("status", upstreamErr.Status),
			)

			return nil, domainerrors.ErrUpstreamFailed.WrapMessage("analysis upstream rejected the request")
		}

		srv.log(ctx).Error("Analysis upstream unreachable", slog.String("source", source), slog.Any("error", err))

		return nil, domainerrors.ErrUpstreamFailed.WrapMessage("analysis upstream unreachable")
	}

	answer, alerted := srv.classifier.Classify(rawAnswer)

	result := &entity.AnalysisResult{
		Answer:     answer,
		Alert:      alerted,
		ComputedAt: time.Now(),
	}

	if alerted {
		srv.log(ctx).Info("Alert condition detected", slog.String("source", source))
		srv.dispatchAlert(ctx, result, source)
	}

	return result, nil
}

// dispatchAlert fans the alert out to the event bus and the push channel.
// Both are best-effort: a broken consumer never fails the analysis request.
func (srv *analysisService) dispatchAlert(ctx context.Context, result *entity.AnalysisResult, source string) {
	event := &service.AlertEvent{
		Answer:     result.Answer,
		ComputedAt: result.ComputedAt,
		Source:     source,
	}

	if err := srv.publisher.PublishAlertEvent(ctx, event); err != nil {
		srv.log(ctx).Error("Failed to publish alert event", slog.Any("error", err))
	}

	if srv.notifier == nil {
		return
	}

	data := map[string]string{
		"source":      source,
		"computed_at": result.ComputedAt.UTC().Format(time.RFC3339),
	}
	if err := srv.notifier.NotifyAlert(ctx, "Camera alert", result.Answer, data); err != nil {
		srv.log(ctx).Error("Failed to send alert notification", slog.Any("error", err))
	}
}
