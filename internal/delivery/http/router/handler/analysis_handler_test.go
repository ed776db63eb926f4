package handler

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"watchtower/internal/domain/entity"
	domainerrors "watchtower/internal/domain/errors"
	"watchtower/internal/infra/camera"
	"watchtower/internal/usecase"
)

type fakeAnalysisUsecase struct {
	ask  func(ctx context.Context, input usecase.AskInput) (*entity.AnalysisResult, error)
	auto func(ctx context.Context, frameBase64 string) (*entity.AnalysisResult, error)
}

func (f *fakeAnalysisUsecase) Ask(ctx context.Context, input usecase.AskInput) (*entity.AnalysisResult, error) {
	return f.ask(ctx, input)
}

func (f *fakeAnalysisUsecase) AutoAnalyze(ctx context.Context, frameBase64 string) (*entity.AnalysisResult, error) {
	return f.auto(ctx, frameBase64)
}

func TestAnalysisHandler_Ask(t *testing.T) {
	uc := &fakeAnalysisUsecase{
		ask: func(_ context.Context, input usecase.AskInput) (*entity.AnalysisResult, error) {
			assert.Equal(t, "what do you see?", input.Question)
			assert.Equal(t, "ZnJhbWU=", input.FrameBase64)

			return &entity.AnalysisResult{Answer: "A hallway.", Alert: false, ComputedAt: time.Now()}, nil
		},
	}
	hub := camera.NewHub(time.Second, discardLogger())
	h := NewAnalysisHandler(uc, hub, discardLogger())

	c, rec := newEchoContext(t, http.MethodPost, "/analysis/ask",
		`{"question":"what do you see?","frame":"ZnJhbWU="}`)

	require.NoError(t, h.Ask(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"A hallway."`)
	assert.Contains(t, rec.Body.String(), `"alert":false`)
}

func TestAnalysisHandler_AutoAnalyze_PassesFrameThrough(t *testing.T) {
	uc := &fakeAnalysisUsecase{
		auto: func(_ context.Context, frameBase64 string) (*entity.AnalysisResult, error) {
			assert.Equal(t, "ZnJhbWU=", frameBase64)

			return &entity.AnalysisResult{Answer: "Quiet.", ComputedAt: time.Now()}, nil
		},
	}
	hub := camera.NewHub(time.Second, discardLogger())
	h := NewAnalysisHandler(uc, hub, discardLogger())

	c, rec := newEchoContext(t, http.MethodPost, "/analysis/auto", `{"frame":"ZnJhbWU="}`)

	require.NoError(t, h.AutoAnalyze(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAnalysisHandler_AutoAnalyze_FallsBackToCapturedFrame(t *testing.T) {
	rawFrame := []byte("captured-jpeg")
	source := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(rawFrame)
	}))
	defer source.Close()

	hub := camera.NewHub(time.Hour, discardLogger())
	defer hub.Stop()
	require.NoError(t, hub.Start(context.Background(), source.URL))

	uc := &fakeAnalysisUsecase{
		auto: func(_ context.Context, frameBase64 string) (*entity.AnalysisResult, error) {
			assert.Equal(t, base64.StdEncoding.EncodeToString(rawFrame), frameBase64)

			return &entity.AnalysisResult{Answer: "Quiet.", ComputedAt: time.Now()}, nil
		},
	}
	h := NewAnalysisHandler(uc, hub, discardLogger())

	// No body at all: the handler borrows the hub's latest frame.
	c, rec := newEchoContext(t, http.MethodPost, "/analysis/auto", "")

	require.NoError(t, h.AutoAnalyze(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAnalysisHandler_AutoAnalyze_NoFrameAnywhere(t *testing.T) {
	uc := &fakeAnalysisUsecase{
		auto: func(_ context.Context, frameBase64 string) (*entity.AnalysisResult, error) {
			assert.Empty(t, frameBase64)

			return nil, domainerrors.ErrMissingFields
		},
	}
	hub := camera.NewHub(time.Second, discardLogger())
	h := NewAnalysisHandler(uc, hub, discardLogger())

	c, _ := newEchoContext(t, http.MethodPost, "/analysis/auto", "")

	err := h.AutoAnalyze(c)

	assert.Error(t, err)
}
