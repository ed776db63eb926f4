// Package camera relays frames from a camera snapshot source: a background
// loop polls the source and keeps only the latest JPEG, which the delivery
// layer streams out or hands to the analysis path.
package camera

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"
)

const maxFrameBytes = 8 << 20

// ErrSourceUnavailable is returned when the capture source cannot be opened.
var ErrSourceUnavailable = errors.New("could not open video source")

// Hub owns the single shared frame slot. Start replaces any running capture
// loop; Latest hands out the most recent frame without copying on the hot
// path beyond the unavoidable snapshot copy.
type Hub struct {
	interval time.Duration
	client   *http.Client
	logger   *slog.Logger

	// startMu serializes Start and Stop so two racing Starts cannot both
	// spawn a loop and orphan one of them.
	startMu sync.Mutex

	mu      sync.RWMutex
	latest  []byte
	running bool

	stop chan struct{}
	done chan struct{}
}

// NewHub is the constructor for Hub.
func NewHub(interval time.Duration, logger *slog.Logger) *Hub {
	return &Hub{
		interval: interval,
		client:   &http.Client{Timeout: 10 * time.Second},
		logger:   logger,
	}
}

// Start probes the source once, then (re)starts the capture loop with the
// new URL. A running loop is signalled to stop and waited on first, so at
// most one loop writes the slot.
func (h *Hub) Start(ctx context.Context, sourceURL string) error {
	frame, err := h.fetchFrame(ctx, sourceURL)
	if err != nil {
		h.logger.Error("Failed to open video source",
			slog.String("sourceURL", sourceURL), slog.Any("error", err))

		return errors.Wrap(ErrSourceUnavailable, err.Error())
	}

	h.startMu.Lock()
	defer h.startMu.Unlock()

	h.stopLoop()

	h.mu.Lock()
	h.latest = frame
	h.running = true
	h.stop = make(chan struct{})
	h.done = make(chan struct{})
	stop, done := h.stop, h.done
	h.mu.Unlock()

	go h.captureLoop(sourceURL, stop, done)

	h.logger.Info("Started video stream", slog.String("sourceURL", sourceURL))

	return nil
}

// Stop terminates the capture loop if one is running and waits for it.
func (h *Hub) Stop() {
	h.startMu.Lock()
	defer h.startMu.Unlock()

	h.stopLoop()
}

func (h *Hub) stopLoop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()

		return
	}
	h.running = false
	stop, done := h.stop, h.done
	h.mu.Unlock()

	close(stop)
	<-done
}

// Running reports whether a capture loop is active.
func (h *Hub) Running() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.running
}

// Latest returns a copy of the most recent frame, if any.
func (h *Hub) Latest() ([]byte, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.latest) == 0 {
		return nil, false
	}

	frame := make([]byte, len(h.latest))
	copy(frame, h.latest)

	return frame, true
}

// FrameInterval returns the pacing interval for feeds.
func (h *Hub) FrameInterval() time.Duration {
	return h.interval
}

func (h *Hub) captureLoop(sourceURL string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			h.logger.Info("Video stream loop has stopped")

			return
		case <-ticker.C:
			frame, err := h.fetchFrame(context.Background(), sourceURL)
			if err != nil {
				h.logger.Warn("Failed to read frame from source, retrying",
					slog.Any("error", err))

				// Back off before hammering a broken source again.
				select {
				case <-stop:
					return
				case <-time.After(2 * time.Second):
				}

				continue
			}

			h.mu.Lock()
			h.latest = frame
			h.mu.Unlock()
		}
	}
}

func (h *Hub) fetchFrame(ctx context.Context, sourceURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create frame request")
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch frame")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("frame source returned status %d", resp.StatusCode)
	}

	frame, err := io.ReadAll(io.LimitReader(resp.Body, maxFrameBytes))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read frame body")
	}
	if len(frame) == 0 {
		return nil, errors.New("frame source returned empty body")
	}

	return frame, nil
}
