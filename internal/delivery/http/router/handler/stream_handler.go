package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"watchtower/config"
	"watchtower/internal/delivery/http/response"
	domainerrors "watchtower/internal/domain/errors"
	"watchtower/internal/infra/camera"
)

const mjpegBoundary = "frame"

// StreamHandler exposes the camera frame relay over HTTP.
type StreamHandler struct {
	hub    *camera.Hub
	cfg    *config.Config
	logger *slog.Logger
}

// NewStreamHandler is the constructor for StreamHandler, injected by Fx.
func NewStreamHandler(hub *camera.Hub, cfg *config.Config, logger *slog.Logger) *StreamHandler {
	return &StreamHandler{
		hub:    hub,
		cfg:    cfg,
		logger: logger,
	}
}

type startStreamRequest struct {
	StreamURL string `json:"stream_url"`
}

// StartStream (re)starts the capture loop, optionally against a new source.
func (h *StreamHandler) StartStream(c echo.Context) error {
	var input startStreamRequest
	// The body is optional, the configured source is the default.
	if err := c.Bind(&input); err != nil {
		input.StreamURL = ""
	}

	sourceURL := input.StreamURL
	if sourceURL == "" && h.cfg.Camera != nil {
		sourceURL = h.cfg.Camera.SourceURL
	}
	if sourceURL == "" {
		return response.BadRequest(c, "MISSING_FIELDS", "No stream source configured or provided")
	}

	if err := h.hub.Start(c.Request().Context(), sourceURL); err != nil {
		if errors.Is(err, camera.ErrSourceUnavailable) {
			return domainerrors.ErrStreamUnavailable.WrapMessage("failed to start stream")
		}

		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]bool{"running": true}, "Stream started")
}

// Feed serves the latest captured frames as an MJPEG multipart stream until
// the client disconnects or the capture loop stops.
func (h *StreamHandler) Feed(c echo.Context) error {
	if !h.hub.Running() {
		return domainerrors.ErrStreamUnavailable.WrapMessage("capture loop is not running")
	}

	c.Response().Header().Set(echo.HeaderContentType, "multipart/x-mixed-replace; boundary="+mjpegBoundary)
	c.Response().WriteHeader(http.StatusOK)

	ticker := time.NewTicker(h.hub.FrameInterval())
	defer ticker.Stop()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if !h.hub.Running() {
				return nil
			}

			frame, ok := h.hub.Latest()
			if !ok {
				continue
			}

			if _, err := fmt.Fprintf(c.Response(),
				"--%s\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n",
				mjpegBoundary, len(frame)); err != nil {
				return nil
			}
			if _, err := c.Response().Write(frame); err != nil {
				return nil
			}
			if _, err := fmt.Fprint(c.Response(), "\r\n"); err != nil {
				return nil
			}
			c.Response().Flush()
		}
	}
}
