package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ModelLoader loads a model into the completion server via its /models/load
// endpoint and waits for it to become available.
type ModelLoader struct {
	baseURL      string
	client       *http.Client
	pollInterval time.Duration
	maxAttempts  int
}

// NewModelLoader creates a new model loader.
func NewModelLoader(baseURL string) *ModelLoader {
	return &ModelLoader{
		baseURL:      baseURL,
		client:       http.DefaultClient,
		pollInterval: time.Second,
		maxAttempts:  30,
	}
}

// LoadModelRequest represents the request payload for loading a model.
type LoadModelRequest struct {
	Model string `json:"model"`
}

// LoadModelResponse represents the response from the load endpoint.
type LoadModelResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// ModelStatus represents one entry from the /models endpoint.
type ModelStatus struct {
	ID      string `json:"id"`
	InCache bool   `json:"in_cache"`
	Status  struct {
		Value  string `json:"value"`
		Failed *bool  `json:"failed,omitempty"`
	} `json:"status"`
}

// ModelsResponse represents the response from the /models endpoint.
type ModelsResponse struct {
	Data []ModelStatus `json:"data"`
}

// EnsureLoaded loads modelName into the server unless it is already cached,
// then polls until the model is available. Loading happens asynchronously
// on the server, so a successful load request alone is not enough.
func (ml *ModelLoader) EnsureLoaded(ctx context.Context, modelName string) error {
	loaded, err := ml.isLoaded(ctx, modelName)
	if err == nil && loaded {
		return nil
	}

	body, err := json.Marshal(LoadModelRequest{Model: modelName})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", ml.baseURL+"/models/load", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := ml.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("bad status %d: %s", resp.StatusCode, string(raw))
	}

	var loadResp LoadModelResponse
	if err := json.NewDecoder(resp.Body).Decode(&loadResp); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if !loadResp.Success {
		return fmt.Errorf("model load failed: %s", loadResp.Error)
	}

	for i := 0; i < ml.maxAttempts; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(ml.pollInterval):
		}

		loaded, err := ml.isLoaded(ctx, modelName)
		if err != nil {
			continue // transient; keep polling
		}
		if loaded {
			return nil
		}
	}

	return fmt.Errorf("model %s did not load within timeout period", modelName)
}

// isLoaded reports whether modelName is cached on the server. A load that
// failed server-side is surfaced as an error rather than polled forever.
func (ml *ModelLoader) isLoaded(ctx context.Context, modelName string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", ml.baseURL+"/models", nil)
	if err != nil {
		return false, fmt.Errorf("failed to create status request: %w", err)
	}

	resp, err := ml.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to check model status: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return false, fmt.Errorf("bad status %d: %s", resp.StatusCode, string(raw))
	}

	var modelsResp ModelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&modelsResp); err != nil {
		return false, fmt.Errorf("failed to decode models response: %w", err)
	}

	for _, model := range modelsResp.Data {
		if model.ID != modelName {
			continue
		}
		if model.Status.Failed != nil && *model.Status.Failed {
			return false, fmt.Errorf("model %s failed to load on server", modelName)
		}
		return model.InCache, nil
	}

	return false, nil
}
