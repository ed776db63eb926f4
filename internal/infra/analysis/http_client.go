// Package analysis implements the external vision service client.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"watchtower/config"
	"watchtower/internal/domain/service"
)

const requestTimeout = 60 * time.Second

// httpClient implements service.AnalysisClient against a JSON-over-HTTP
// vision endpoint: base64 image plus prompt in, text answer out.
type httpClient struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewHTTPClient is the constructor for the vision service client.
func NewHTTPClient(cfg *config.Config) (service.AnalysisClient, error) {
	if cfg.Analysis == nil || cfg.Analysis.Endpoint == "" {
		return nil, errors.New("analysis endpoint must be provided")
	}

	return &httpClient{
		endpoint: cfg.Analysis.Endpoint,
		apiKey:   cfg.Analysis.APIKey,
		client:   &http.Client{Timeout: requestTimeout},
	}, nil
}

type analyzeRequest struct {
	Image  string `json:"image"`
	Prompt string `json:"prompt"`
}

type analyzeResponse struct {
	Answer string `json:"answer"`
}

// Analyze submits the frame and prompt. A non-2xx response surfaces as
// *service.UpstreamError; the upstream body is kept out of it beyond a short
// message so raw provider errors never reach API clients.
func (c *httpClient) Analyze(ctx context.Context, frameBase64, prompt string) (string, error) {
	body, err := json.Marshal(analyzeRequest{Image: frameBase64, Prompt: prompt})
	if err != nil {
		return "", errors.Wrap(err, "failed to encode analyze request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "failed to create analyze request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "failed to call analysis service")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain so the connection can be reused; the body itself is not
		// forwarded anywhere.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

		return "", &service.UpstreamError{
			Status:  resp.StatusCode,
			Message: http.StatusText(resp.StatusCode),
		}
	}

	var out analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", errors.Wrap(err, "failed to decode analyze response")
	}

	return out.Answer, nil
}
