package usecase

import (
	"context"

	"watchtower/internal/domain/entity"
)

// AskInput defines an on-demand analysis request: one frame, one question.
type AskInput struct {
	Question    string
	FrameBase64 string
}

// AnalysisUsecase defines the interface for vision analysis operations.
type AnalysisUsecase interface {
	// Ask runs a single uncached analysis of a frame with a caller-supplied
	// question.
	Ask(ctx context.Context, input AskInput) (*entity.AnalysisResult, error)

	// AutoAnalyze runs the fixed monitoring prompt against the frame,
	// serving a cached result while the throttle window is open.
	AutoAnalyze(ctx context.Context, frameBase64 string) (*entity.AnalysisResult, error)
}
