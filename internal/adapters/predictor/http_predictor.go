package predictor

import (
	"bytes"
	"context"
	"delivery-route-optimizer/internal/ports"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPPredictor calls a remote model server that hosts the trained model.
type HTTPPredictor struct {
	session  *http.Client
	endpoint string
}

type predictRequest struct {
	Features ports.Features `json:"features"`
}

type predictResponse struct {
	Duration *float64 `json:"duration"`
}

func NewHTTPPredictor(endpoint string, timeout time.Duration) (*HTTPPredictor, error) {
	if strings.TrimSpace(endpoint) == "" {
		return nil, errors.New("predictor endpoint is empty")
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPPredictor{
		session:  &http.Client{Timeout: timeout},
		endpoint: endpoint,
	}, nil
}

func (p *HTTPPredictor) Predict(ctx context.Context, f ports.Features) (float64, error) {
	payload, err := json.Marshal(predictRequest{Features: f})
	if err != nil {
		return 0, fmt.Errorf("predict: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("predict: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := p.session.Do(req)
	if err != nil {
		return 0, fmt.Errorf("predict: execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return 0, fmt.Errorf("predict: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var decoded predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return 0, fmt.Errorf("predict: decode response: %w", err)
	}
	if decoded.Duration == nil {
		return 0, errors.New("predict: response has no duration")
	}

	return *decoded.Duration, nil
}
