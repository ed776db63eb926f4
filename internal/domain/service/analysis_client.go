package service

import (
	"context"
	"fmt"
)

// UpstreamError describes a failed call to the external analysis service.
// The message is safe to log; it is never echoed verbatim to API clients.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("analysis upstream failed with status %d: %s", e.Status, e.Message)
}

// AnalysisClient is the black-box multimodal AI call: image plus prompt in,
// raw text answer out.
type AnalysisClient interface {
	// Analyze submits a base64-encoded frame and a prompt, returning the
	// raw answer text. Failures surface as *UpstreamError where the
	// upstream responded, or a transport error otherwise.
	Analyze(ctx context.Context, frameBase64, prompt string) (string, error)
}
