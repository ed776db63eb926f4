package handler

import (
	"encoding/base64"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"watchtower/internal/delivery/http/response"
	"watchtower/internal/domain/entity"
	"watchtower/internal/infra/camera"
	"watchtower/internal/usecase"
)

// AnalysisHandler holds dependencies for vision analysis handlers.
type AnalysisHandler struct {
	uc     usecase.AnalysisUsecase
	hub    *camera.Hub
	logger *slog.Logger
}

// NewAnalysisHandler is the constructor for AnalysisHandler, injected by Fx.
func NewAnalysisHandler(uc usecase.AnalysisUsecase, hub *camera.Hub, logger *slog.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		uc:     uc,
		hub:    hub,
		logger: logger,
	}
}

type askRequest struct {
	Question string `json:"question"`
	Frame    string `json:"frame"`
}

type autoRequest struct {
	Frame string `json:"frame"`
}

type analysisPayload struct {
	Answer     string    `json:"answer"`
	Alert      bool      `json:"alert"`
	ComputedAt time.Time `json:"computedAt"`
}

func toAnalysisPayload(result *entity.AnalysisResult) *analysisPayload {
	return &analysisPayload{
		Answer:     result.Answer,
		Alert:      result.Alert,
		ComputedAt: result.ComputedAt,
	}
}

// Ask handles an on-demand analysis of one frame with a caller question.
func (h *AnalysisHandler) Ask(c echo.Context) error {
	var input askRequest
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid analysis input")
	}

	result, err := h.uc.Ask(c.Request().Context(), usecase.AskInput{
		Question:    input.Question,
		FrameBase64: input.Frame,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toAnalysisPayload(result), "Analysis complete")
}

// AutoAnalyze handles the throttled automatic analysis. The caller may send
// a frame; when it omits one and the capture loop is running, the latest
// captured frame is used instead.
func (h *AnalysisHandler) AutoAnalyze(c echo.Context) error {
	var input autoRequest
	// A missing or empty body is fine here, the frame is optional.
	if err := c.Bind(&input); err != nil {
		input.Frame = ""
	}

	frame := input.Frame
	if frame == "" && h.hub.Running() {
		if raw, ok := h.hub.Latest(); ok {
			frame = base64.StdEncoding.EncodeToString(raw)
		}
	}

	result, err := h.uc.AutoAnalyze(c.Request().Context(), frame)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toAnalysisPayload(result), "Analysis complete")
}
